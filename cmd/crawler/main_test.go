package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/maltedev/fridge-capacity-crawler/internal/models"
	"github.com/maltedev/fridge-capacity-crawler/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderedSink struct {
	events *[]string
	err    error
}

func (s *orderedSink) Name() string { return "ordered" }

func (s *orderedSink) Save(ctx context.Context, result models.Snapshot) error {
	*s.events = append(*s.events, "save")
	return s.err
}

func TestPersistClosesBrowserBeforeWriting(t *testing.T) {
	var events []string
	closeBrowser := func() { events = append(events, "close browser") }

	writer := storage.NewWriter(&orderedSink{events: &events})
	result := models.Snapshot{Rows: []models.ProductRow{models.NewProductRow("ABC Fridge", 870, 367, 503)}}

	require.NoError(t, persist(context.Background(), closeBrowser, writer, result))
	assert.Equal(t, []string{"close browser", "save"}, events)
}

func TestPersistWritesCSVAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	closed := false

	writer := storage.NewWriter(storage.NewCSVSink(path))
	require.NoError(t, persist(context.Background(), func() { closed = true }, writer, models.Snapshot{}))

	assert.True(t, closed)
	assert.FileExists(t, path)
}

func TestPersistReturnsPrimaryError(t *testing.T) {
	var events []string
	writer := storage.NewWriter(&orderedSink{events: &events, err: errors.New("disk full")})

	err := persist(context.Background(), func() { events = append(events, "close browser") }, writer, models.Snapshot{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, []string{"close browser", "save"}, events)
}
