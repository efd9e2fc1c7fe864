package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPaginator() (*Paginator, *pauseRecorder) {
	rec := &pauseRecorder{}
	p := NewPaginator(DefaultPaginatorOptions())
	p.pause = rec.pause
	return p, rec
}

func TestPaginatorClicksNumberLink(t *testing.T) {
	site := newFakeListing()
	site.links[1] = []int{2, 3, 4}
	site.next[1] = nextActive

	p, rec := newTestPaginator()

	outcome, err := p.Next(context.Background(), site, 1)
	require.NoError(t, err)
	assert.Equal(t, AdvancedByNumber, outcome)
	assert.True(t, outcome.Advanced())
	assert.Equal(t, 2, site.current)
	assert.Equal(t, []string{"num 2"}, site.clicks)
	assert.Equal(t, []time.Duration{DefaultSettlePause, DefaultReloadPause}, rec.pauses)
}

func TestPaginatorTargetsNextPageOnly(t *testing.T) {
	for _, current := range []int{1, 7, 10, 199} {
		site := newFakeListing()
		site.current = current

		p, _ := newTestPaginator()
		_, err := p.Next(context.Background(), site, current)
		require.NoError(t, err)

		require.Len(t, site.probedNumbers(), 1)
		assert.Equal(t, NumberLinkLocator(current+1).Expr, site.probedNumbers()[0])
	}
}

func TestPaginatorFallsBackToNextButton(t *testing.T) {
	site := newFakeListing()
	site.current = 10
	site.links[10] = []int{6, 7, 8, 9}
	site.next[10] = nextActive

	p, _ := newTestPaginator()

	outcome, err := p.Next(context.Background(), site, 10)
	require.NoError(t, err)
	assert.Equal(t, AdvancedByNext, outcome)
	assert.Equal(t, 11, site.current)
	assert.Equal(t, []string{"next"}, site.clicks)
	assert.Equal(t, []string{NumberLinkLocator(11).Expr, NextButtonSelector}, site.probes)
}

func TestPaginatorDisabledNextButtonEndsListing(t *testing.T) {
	site := newFakeListing()
	site.current = 12
	site.next[12] = nextDisabled

	p, rec := newTestPaginator()

	outcome, err := p.Next(context.Background(), site, 12)
	require.NoError(t, err)
	assert.Equal(t, EndOfListing, outcome)
	assert.False(t, outcome.Advanced())
	assert.Empty(t, site.clicks)
	assert.Empty(t, rec.pauses)
}

func TestPaginatorInactiveMarkers(t *testing.T) {
	for _, class := range []string{"edge_nav nav_next disabled", "edge_nav nav_next off"} {
		site := newFakeListing()
		site.next[1] = nextActive
		site.nextClass = class

		p, _ := newTestPaginator()
		outcome, err := p.Next(context.Background(), site, 1)
		require.NoError(t, err)
		assert.Equal(t, EndOfListing, outcome, class)
	}
}

func TestPaginatorNoControls(t *testing.T) {
	site := newFakeListing()

	p, _ := newTestPaginator()

	outcome, err := p.Next(context.Background(), site, 1)
	require.NoError(t, err)
	assert.Equal(t, NoControls, outcome)
	assert.Empty(t, site.clicks)
}

func TestPaginatorClickFailureIsNotAnError(t *testing.T) {
	site := newFakeListing()
	site.links[1] = []int{2}
	site.clickErr = errors.New("detached")

	p, _ := newTestPaginator()

	outcome, err := p.Next(context.Background(), site, 1)
	require.NoError(t, err)
	assert.Equal(t, NavigationFailed, outcome)
	assert.Equal(t, 1, site.current)
}

func TestPaginatorCancelled(t *testing.T) {
	site := newFakeListing()
	site.links[1] = []int{2}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, _ := newTestPaginator()

	_, err := p.Next(ctx, site, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, site.current)
}

func TestOutcomeStrings(t *testing.T) {
	assert.Equal(t, "advanced_by_number", AdvancedByNumber.String())
	assert.Equal(t, "end_of_listing", EndOfListing.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}

func TestNumberLinkLocator(t *testing.T) {
	assert.Equal(t, `//a[contains(@class, "num") and normalize-space()="3"]`, NumberLinkLocator(3).Expr)
}
