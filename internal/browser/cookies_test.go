package browser

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCookieJarRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cookies.json")
	jar, err := NewCookieJar(path, zaptest.NewLogger(t))
	require.NoError(t, err)

	in := []*network.Cookie{
		{Name: "auth_token", Value: "abc123", Domain: ".x.com", Path: "/", Secure: true, HTTPOnly: true, Expires: 1.9e9, SameSite: network.CookieSameSiteLax},
		{Name: "lang", Value: "en", Domain: ".x.com", Path: "/"},
	}
	require.NoError(t, jar.Save(in))

	out, err := jar.Load()
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "auth_token", out[0].Name)
	assert.Equal(t, "abc123", out[0].Value)
	assert.True(t, out[0].HTTPOnly)
	assert.InDelta(t, 1.9e9, out[0].Expires, 1)
	assert.Equal(t, network.CookieSameSiteLax, out[0].SameSite)
}

func TestCookieJarRoundTripSparseCookie(t *testing.T) {
	// A cookie captured with only name and value set must survive the
	// round trip; the browser does not populate every CDP field.
	jar, err := NewCookieJar(filepath.Join(t.TempDir(), "cookies.json"), zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, jar.Save([]*network.Cookie{{Name: "auth_token", Value: "v"}}))

	out, err := jar.Load()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "auth_token", out[0].Name)
	assert.Equal(t, "v", out[0].Value)
}

func TestCookieJarFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}

	path := filepath.Join(t.TempDir(), "cookies.json")
	jar, err := NewCookieJar(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, jar.Save([]*network.Cookie{{Name: "auth_token", Value: "v"}}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestCookieJarLoadMissingFile(t *testing.T) {
	jar, err := NewCookieJar(filepath.Join(t.TempDir(), "absent.json"), zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = jar.Load()
	require.Error(t, err)
}

func TestCookieJarRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	jar, err := NewCookieJar(path, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = jar.Load()
	require.Error(t, err)
}

func TestHasSessionCookie(t *testing.T) {
	assert.False(t, hasSessionCookie(nil))
	assert.False(t, hasSessionCookie([]*network.Cookie{{Name: "lang", Value: "en"}}))
	assert.False(t, hasSessionCookie([]*network.Cookie{{Name: "auth_token", Value: ""}}))
	assert.True(t, hasSessionCookie([]*network.Cookie{{Name: "auth_token", Value: "tok"}}))
}

func TestToCookieParams(t *testing.T) {
	params := toCookieParams([]*network.Cookie{
		{Name: "auth_token", Value: "tok", Domain: ".x.com", Path: "/", Secure: true, HTTPOnly: true, Expires: 1.9e9},
		{Name: "session_only", Value: "v", Domain: ".x.com", Path: "/"},
	})

	require.Len(t, params, 2)
	assert.Equal(t, "auth_token", params[0].Name)
	require.NotNil(t, params[0].Expires, "persistent cookie keeps its expiry")
	assert.Nil(t, params[1].Expires, "session cookie carries no expiry")
}
