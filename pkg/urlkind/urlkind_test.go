package urlkind

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"https://www.reddit.com/r/pics/", false},
		{"  https://example.com/a  ", false},
		{"not a url", true},
		{"/relative/path", true},
		{"https://", true},
		{"http://[::1/", true},
	}
	for _, tt := range tests {
		_, err := Parse(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) err = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
	}
	if _, err := Parse("example.com"); !errors.Is(err, ErrMalformed) {
		t.Errorf("Parse(example.com) err = %v, want ErrMalformed", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		raw      string
		wantKind Kind
		wantURL  string
	}{
		{"https://www.reddit.com/r/pics/comments/abc123/my_dog/", Permalink, "https://www.reddit.com/r/pics/comments/abc123/my_dog/"},
		{"https://old.reddit.com/r/pics/comments/abc123/", Permalink, "https://old.reddit.com/r/pics/comments/abc123/"},
		{"https://www.reddit.com/r/pics/comments/abc123/my_dog/?tl=de", Listing, "https://www.reddit.com/r/pics/comments/abc123/my_dog/?tl=de"},
		{"https://www.reddit.com/r/pics/", Listing, "https://www.reddit.com/r/pics/"},
		{"https://www.reddit.com/user/someuser/", Listing, "https://www.reddit.com/user/someuser/"},
		{"https://www.reddit.com/user/comments_fan/", Listing, "https://www.reddit.com/user/comments_fan/"},
		{"https://www.reddit.com/user/someuser/comments/xyz/title/", Permalink, "https://www.reddit.com/user/someuser/comments/xyz/title/"},
		{"https://www.reddit.com/gallery/abc123", Listing, "https://www.reddit.com/gallery/abc123"},
		{"https://redd.it/abc123", Listing, "https://redd.it/abc123"},
		{"https://www.facebook.com/groups/DogLovers/posts/998877/", Group, "https://www.facebook.com/groups/doglovers/"},
		{"https://m.facebook.com/groups/doglovers", Group, "https://www.facebook.com/groups/doglovers/"},
		{"https://www.facebook.com/someone/photos/1", External, "https://www.facebook.com/someone/photos/1"},
		{"https://example.com/blog/post", External, "https://example.com/blog/post"},
		{"http://example.com/blog/post", Unknown, "http://example.com/blog/post"},
	}
	for _, tt := range tests {
		u, err := Parse(tt.raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.raw, err)
		}
		kind, got := Classify(u)
		if kind != tt.wantKind || got != tt.wantURL {
			t.Errorf("Classify(%q) = %v, %q; want %v, %q", tt.raw, kind, got, tt.wantKind, tt.wantURL)
		}
	}
}

func TestPostID(t *testing.T) {
	tests := map[string]string{
		"https://www.reddit.com/r/pics/comments/AbC123/title/": "abc123",
		"https://www.reddit.com/comments/x9y8z7":               "x9y8z7",
		"https://www.reddit.com/r/pics/":                       "",
		"":                                                     "",
	}
	for in, want := range tests {
		if got := PostID(in); got != want {
			t.Errorf("PostID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMediaPredicates(t *testing.T) {
	tests := []struct {
		raw       string
		direct    bool
		reddit    bool
		thumbnail bool
	}{
		{"https://i.redd.it/abc.jpg", true, true, false},
		{"https://preview.redd.it/abc.png?width=640", true, true, false},
		{"https://b.thumbs.redditmedia.com/xyz.jpg", true, true, true},
		{"https://styles.redditmedia.com/t5_2qh0u/styles/banner.png", true, true, true},
		{"https://example.com/photos/dog.JPEG", true, false, false},
		{"https://example.com/photos/dog", false, false, false},
		{"https://i.imgur.com/abc", true, false, false},
		{"garbage", false, false, false},
	}
	for _, tt := range tests {
		if got := IsDirectMedia(tt.raw); got != tt.direct {
			t.Errorf("IsDirectMedia(%q) = %v, want %v", tt.raw, got, tt.direct)
		}
		if got := IsRedditMedia(tt.raw); got != tt.reddit {
			t.Errorf("IsRedditMedia(%q) = %v, want %v", tt.raw, got, tt.reddit)
		}
		if got := IsThumbnailAsset(tt.raw); got != tt.thumbnail {
			t.Errorf("IsThumbnailAsset(%q) = %v, want %v", tt.raw, got, tt.thumbnail)
		}
	}
}

func TestSameSite(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"www.example.com", "cdn.example.com", true},
		{"example.com", "example.com", true},
		{"example.com", "example.org", false},
		{"localhost", "localhost", false},
	}
	for _, tt := range tests {
		if got := SameSite(tt.a, tt.b); got != tt.want {
			t.Errorf("SameSite(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
