// Package auth reads session cookies from local browser profiles.
package auth

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/all" // register every browser cookie store
	"github.com/browserutils/kooky/browser/chrome"
	"github.com/browserutils/kooky/browser/firefox"
)

// RedditDomain is the cookie domain for Reddit sessions.
const RedditDomain = "reddit.com"

// RedditCookies are the cookies that carry a logged-in Reddit session.
var RedditCookies = []string{"reddit_session", "token_v2", "loid", "edgebucket"}

// BrowserSource reads cookies from browser cookie stores.
type BrowserSource struct {
	logger *slog.Logger
	home   string
}

// NewBrowserSource creates a browser cookie source.
func NewBrowserSource(logger *slog.Logger) *BrowserSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowserSource{logger: logger, home: os.Getenv("HOME")}
}

// profileStore is a browser kooky does not auto-detect.
type profileStore struct {
	name  string
	glob  string // relative to $HOME
	read  func(ctx context.Context, file string, filters ...kooky.Filter) ([]*kooky.Cookie, error)
	fatal func(error) bool
}

var profileStores = []profileStore{
	{
		name: "zen",
		glob: filepath.Join("Library", "Application Support", "zen", "Profiles", "*", "cookies.sqlite"),
		read: firefox.ReadCookies,
	},
	{
		name: "chrome-canary",
		glob: filepath.Join("Library", "Application Support", "Google", "Chrome Canary", "*", "Cookies"),
		read: chrome.ReadCookies,
		fatal: func(err error) bool {
			msg := err.Error()
			return strings.Contains(msg, "encryption") || strings.Contains(msg, "decrypt")
		},
	},
	{
		name: "firefox",
		glob: filepath.Join("Library", "Application Support", "Firefox", "Profiles", "*", "cookies.sqlite"),
		read: firefox.ReadCookies,
	},
}

// Cookies returns the wanted cookies for domain, trying profile stores kooky
// cannot find on its own before falling back to its auto-detection. A nil map
// with a nil error means no cookies were found.
func (s *BrowserSource) Cookies(ctx context.Context, domain string, wanted []string) (map[string]string, error) {
	s.logger.DebugContext(ctx, "reading browser cookies", "domain", domain)

	if s.home != "" {
		for _, ps := range profileStores {
			if c := s.readProfiles(ctx, ps, domain, wanted); len(c) > 0 {
				return c, nil
			}
		}
	}

	kookies, err := kooky.ReadCookies(ctx, kooky.Valid, kooky.DomainHasSuffix(domain))
	if err != nil {
		s.logger.Debug("failed to read browser cookies", "domain", domain, "error", err)
		return nil, nil //nolint:nilnil // unreadable browser stores are not fatal
	}
	if len(kookies) == 0 {
		return nil, nil //nolint:nilnil // no browser cookies is not an error
	}
	return s.keep(toMap(kookies), domain, wanted), nil
}

func (s *BrowserSource) readProfiles(ctx context.Context, ps profileStore, domain string, wanted []string) map[string]string {
	files, err := filepath.Glob(filepath.Join(s.home, ps.glob))
	if err != nil || len(files) == 0 {
		return nil
	}
	for _, f := range files {
		profile := filepath.Base(filepath.Dir(f))
		kookies, err := ps.read(ctx, f, kooky.Valid, kooky.DomainHasSuffix(domain))
		if err != nil {
			if ps.fatal != nil && ps.fatal(err) {
				s.logger.Warn("browser cookies exist but cannot be decrypted",
					"browser", ps.name, "profile", profile,
					"hint", "try Firefox or pass cookies through the config file")
			} else {
				s.logger.Debug("failed to read browser cookies", "browser", ps.name, "profile", profile, "error", err)
			}
			continue
		}
		if len(kookies) > 0 {
			s.logger.Debug("found browser cookies", "browser", ps.name, "profile", profile, "count", len(kookies))
			return s.keep(toMap(kookies), domain, wanted)
		}
	}
	return nil
}

func toMap(kookies []*kooky.Cookie) map[string]string {
	out := make(map[string]string, len(kookies))
	for _, c := range kookies {
		out[c.Name] = c.Value
	}
	return out
}

// keep filters cookies down to wanted, or returns them all when wanted is empty.
func (s *BrowserSource) keep(cookies map[string]string, domain string, wanted []string) map[string]string {
	if len(wanted) == 0 {
		return cookies
	}
	out := make(map[string]string)
	var missing []string
	for _, name := range wanted {
		if v, ok := cookies[name]; ok {
			out[name] = v
		} else {
			missing = append(missing, name)
		}
	}
	if len(out) > 0 {
		found := make([]string, 0, len(out))
		for k := range out {
			found = append(found, k)
		}
		slices.Sort(found)
		s.logger.Info("browser cookies found", "domain", domain, "keys", found)
	}
	if len(missing) > 0 {
		s.logger.Info("browser cookies missing", "domain", domain, "keys", missing)
	}
	return out
}
