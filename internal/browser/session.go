// Package browser drives a real Chrome instance for the cookie-based login
// flow. OAuth credentials cover the API surface; the browser session exists
// for accounts that only have an interactive web login.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/sablewing/magpie/internal/config"
)

// sessionCookieName marks a completed web login. The platform sets it only
// after authentication succeeds.
const sessionCookieName = "auth_token"

// loginPollInterval is how often the login flow re-reads browser cookies
// while waiting for the user to finish signing in.
const loginPollInterval = 2 * time.Second

// Session owns one browser lifetime and the cookie jar it syncs with.
type Session struct {
	cfg    config.BrowserConfig
	jar    *CookieJar
	logger *zap.Logger
}

// NewSession prepares a browser session around the configured cookie file.
func NewSession(cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	jar, err := NewCookieJar(cfg.CookieFile, logger)
	if err != nil {
		return nil, err
	}
	return &Session{cfg: cfg, jar: jar, logger: logger.Named("browser")}, nil
}

// Jar exposes the cookie store backing this session.
func (s *Session) Jar() *CookieJar { return s.jar }

// allocatorOptions builds the Chrome launch flags. Login is interactive, so
// headless is only honored when explicitly configured.
func (s *Session) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
	)
	opts = append(opts, chromedp.Flag("headless", s.cfg.Headless))
	return opts
}

// newBrowserContext spins up an allocator and a tab context derived from the
// caller's context so cancellation tears the browser process down.
func (s *Session) newBrowserContext(ctx context.Context) (context.Context, context.CancelFunc) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, s.allocatorOptions()...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		tabCancel()
		allocCancel()
	}
	return tabCtx, cancel
}

// Login opens the platform login page, waits for the user to complete the
// sign-in, then captures and persists the resulting cookie set.
func (s *Session) Login(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.LoginTimeout)
	defer cancel()

	tabCtx, cancelBrowser := s.newBrowserContext(ctx)
	defer cancelBrowser()

	s.logger.Info("Opening login page.",
		zap.String("url", s.cfg.LoginURL),
		zap.Duration("timeout", s.cfg.LoginTimeout))

	if err := chromedp.Run(tabCtx, chromedp.Navigate(s.cfg.LoginURL)); err != nil {
		return fmt.Errorf("navigating to login page: %w", err)
	}

	cookies, err := s.waitForLogin(tabCtx)
	if err != nil {
		return err
	}

	if err := s.jar.Save(cookies); err != nil {
		return err
	}
	s.logger.Info("Login complete, session captured.", zap.String("cookie_file", s.jar.Path()))
	return nil
}

// waitForLogin polls the tab's cookies until the session cookie appears or
// the login deadline expires.
func (s *Session) waitForLogin(tabCtx context.Context) ([]*network.Cookie, error) {
	ticker := time.NewTicker(loginPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-tabCtx.Done():
			return nil, fmt.Errorf("login not completed before deadline: %w", tabCtx.Err())
		case <-ticker.C:
			cookies, err := s.readCookies(tabCtx)
			if err != nil {
				// Navigation between login steps can briefly detach the
				// target. Keep polling until the deadline.
				s.logger.Debug("Cookie read failed, retrying.", zap.Error(err))
				continue
			}
			if hasSessionCookie(cookies) {
				return cookies, nil
			}
		}
	}
}

// Check restores the persisted cookies into a fresh browser, loads the home
// page, and confirms the session cookie survived. It reports an error when
// the stored session is missing or no longer accepted.
func (s *Session) Check(ctx context.Context) error {
	stored, err := s.jar.Load()
	if err != nil {
		return fmt.Errorf("no stored session: %w", err)
	}
	if !hasSessionCookie(stored) {
		return fmt.Errorf("cookie file %q has no %s cookie", s.jar.Path(), sessionCookieName)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.LoginTimeout)
	defer cancel()

	tabCtx, cancelBrowser := s.newBrowserContext(ctx)
	defer cancelBrowser()

	err = chromedp.Run(tabCtx,
		network.SetCookies(toCookieParams(stored)),
		chromedp.Navigate(s.cfg.HomeURL),
	)
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}

	live, err := s.readCookies(tabCtx)
	if err != nil {
		return fmt.Errorf("reading cookies after restore: %w", err)
	}
	if !hasSessionCookie(live) {
		return fmt.Errorf("stored session rejected by platform")
	}

	s.logger.Info("Stored session is valid.", zap.String("cookie_file", s.jar.Path()))
	return nil
}

func (s *Session) readCookies(tabCtx context.Context) ([]*network.Cookie, error) {
	var cookies []*network.Cookie
	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	return cookies, err
}

func hasSessionCookie(cookies []*network.Cookie) bool {
	for _, c := range cookies {
		if c.Name == sessionCookieName && c.Value != "" {
			return true
		}
	}
	return false
}

// toCookieParams converts captured cookies into the form the CDP setter
// accepts. Session cookies carry no expiry.
func toCookieParams(cookies []*network.Cookie) []*network.CookieParam {
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: c.SameSite,
		}
		if c.Expires > 0 {
			expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			p.Expires = &expires
		}
		params = append(params, p)
	}
	return params
}
