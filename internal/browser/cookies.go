package browser

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chromedp/cdproto/network"
	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// storedCookie is the on-disk cookie shape. The raw CDP type is not
// persisted directly: its generated unmarshaler rejects empty enum values
// (priority, sourceScheme), so a file written from a partially populated
// cookie would never load again. Only the fields the restore path needs are
// kept.
type storedCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Expires  float64 `json:"expires,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	SameSite string  `json:"sameSite,omitempty"`
}

// CookieJar persists captured browser cookies to a single JSON file so a
// logged-in session survives process restarts. The file carries session
// credentials and is written with owner-only permissions.
type CookieJar struct {
	path   string
	logger *zap.Logger
}

// NewCookieJar resolves the jar path, expanding a leading "~".
func NewCookieJar(path string, logger *zap.Logger) (*CookieJar, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expanding cookie file path %q: %w", path, err)
	}
	return &CookieJar{path: expanded, logger: logger.Named("cookiejar")}, nil
}

// Path returns the resolved on-disk location of the jar.
func (j *CookieJar) Path() string { return j.path }

// Save replaces the jar contents with the given cookie set.
func (j *CookieJar) Save(cookies []*network.Cookie) error {
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: string(c.SameSite),
		})
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cookies: %w", err)
	}

	if dir := filepath.Dir(j.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating cookie directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(j.path, data, 0o600); err != nil {
		return fmt.Errorf("writing cookie file %q: %w", j.path, err)
	}

	j.logger.Info("Cookies saved.", zap.String("path", j.path), zap.Int("count", len(cookies)))
	return nil
}

// Load reads the persisted cookie set. A missing file is an error; callers
// treat it as "no stored session".
func (j *CookieJar) Load() ([]*network.Cookie, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		return nil, fmt.Errorf("reading cookie file %q: %w", j.path, err)
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decoding cookie file %q: %w", j.path, err)
	}

	cookies := make([]*network.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &network.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: network.CookieSameSite(c.SameSite),
		})
	}
	return cookies, nil
}
