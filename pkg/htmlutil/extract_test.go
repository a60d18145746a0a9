package htmlutil

import "testing"

const samplePage = `<!DOCTYPE html>
<html><head>
<title>Jane Doe (@jane_doe) &bull; Instagram photos</title>
<meta name="description" content="1,204 Followers, 12 Posts - See photos from Jane Doe">
<meta content="Jane Doe on Instagram" property="og:title">
</head><body><h1>ignored</h1></body></html>`

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"entity decoded", samplePage, "Jane Doe (@jane_doe) • Instagram photos"},
		{"multiline", "<title>\n  Line one\n  line two\n</title>", "Line one line two"},
		{"attributes", `<title data-x="1">Hi</title>`, "Hi"},
		{"missing", "<html><body>no title</body></html>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.html); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescription(t *testing.T) {
	if got, want := Description(samplePage), "1,204 Followers, 12 Posts - See photos from Jane Doe"; got != want {
		t.Errorf("Description() = %q, want %q", got, want)
	}
	reversed := `<meta content="reversed order" name="description">`
	if got := Description(reversed); got != "reversed order" {
		t.Errorf("Description(reversed) = %q, want %q", got, "reversed order")
	}

	tests := []struct {
		name string
		html string
		want string
	}{
		{"apostrophe in double quotes", `<meta name="description" content="Jane's photos and videos (@jane_doe)">`, "Jane's photos and videos (@jane_doe)"},
		{"apostrophe reversed", `<meta content="Jane's photos (@jane_doe)" name="description">`, "Jane's photos (@jane_doe)"},
		{"single quoted with double quote", `<meta name='description' content='The "real" Jane'>`, `The "real" Jane`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Description(tt.html); got != tt.want {
				t.Errorf("Description() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOGTitle(t *testing.T) {
	if got, want := OGTitle(samplePage), "Jane Doe on Instagram"; got != want {
		t.Errorf("OGTitle() = %q, want %q", got, want)
	}
	direct := `<meta property="og:title" content="Direct">`
	if got := OGTitle(direct); got != "Direct" {
		t.Errorf("OGTitle(direct) = %q, want %q", got, "Direct")
	}
	apostrophe := `<meta property="og:title" content="Jane's Instagram (@jane_doe)">`
	if got, want := OGTitle(apostrophe), "Jane's Instagram (@jane_doe)"; got != want {
		t.Errorf("OGTitle(apostrophe) = %q, want %q", got, want)
	}
	reversed := `<meta content='Jane&#39;s page' property='og:title'>`
	if got, want := OGTitle(reversed), "Jane's page"; got != want {
		t.Errorf("OGTitle(reversed) = %q, want %q", got, want)
	}
}

func TestSummary(t *testing.T) {
	want := "Jane Doe (@jane_doe) • Instagram photos 1,204 Followers, 12 Posts - See photos from Jane Doe Jane Doe on Instagram"
	if got := Summary(samplePage); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
	if got := Summary("<html></html>"); got != "" {
		t.Errorf("Summary(empty) = %q, want empty", got)
	}
}
