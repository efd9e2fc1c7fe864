package browser

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if !opts.Headless {
		t.Error("Expected headless to be true by default")
	}

	if opts.Timeout != 30*time.Second {
		t.Errorf("Expected timeout to be 30s, got %v", opts.Timeout)
	}

	if opts.ViewportWidth != 1920 || opts.ViewportHeight != 1080 {
		t.Errorf("Expected viewport to be 1920x1080, got %dx%d", opts.ViewportWidth, opts.ViewportHeight)
	}

	if opts.Locale != "ko-KR" {
		t.Errorf("Expected locale to be ko-KR, got %s", opts.Locale)
	}

	if opts.Driver != DriverPlaywright {
		t.Errorf("Expected playwright driver by default, got %s", opts.Driver)
	}
}

func TestLocatorString(t *testing.T) {
	assert.Equal(t, "css=a.edge_nav.nav_next", CSS("a.edge_nav.nav_next").String())
	assert.Equal(t, `xpath=//a[normalize-space()="2"]`, XPath(`//a[normalize-space()="2"]`).String())
}

func TestOpenUnknownDriver(t *testing.T) {
	opts := DefaultOptions()
	opts.Driver = "selenium"

	session, err := Open(context.Background(), opts)
	assert.Nil(t, session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown browser driver")
}

func TestPlaywrightPageLifecycle(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()

	session, err := Open(ctx, DefaultOptions())
	require.NoError(t, err)
	defer session.Close()

	page, err := session.NewPage()
	require.NoError(t, err)
	defer page.Close()

	require.NoError(t, page.Navigate(ctx, "data:text/html,<a class='num' href='#'>2</a>"))

	el, err := page.WaitClickable(ctx, XPath(`//a[contains(@class, "num") and normalize-space()="2"]`), 3*time.Second)
	require.NoError(t, err)

	class, err := el.Attribute(ctx, "class")
	require.NoError(t, err)
	assert.Equal(t, "num", class)

	_, err = page.WaitClickable(ctx, CSS("a.edge_nav.nav_next"), 500*time.Millisecond)
	assert.ErrorIs(t, err, ErrNotFound)
}
