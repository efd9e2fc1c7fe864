package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/maltedev/fridge-capacity-crawler/internal/models"
)

const (
	defaultRowsLimit = 100
	maxRowsLimit     = 1000
)

// StateProvider exposes the live crawl state.
type StateProvider interface {
	Snapshot() models.Snapshot
}

type Handlers struct {
	state  StateProvider
	logger *slog.Logger
}

func NewHandlers(state StateProvider, logger *slog.Logger) *Handlers {
	return &Handlers{
		state:  state,
		logger: logger.With("component", "status_api"),
	}
}

// CrawlResponse is the crawl progress without the row payload
type CrawlResponse struct {
	RunID        string            `json:"run_id"`
	CurrentPage  int               `json:"current_page"`
	PagesVisited int               `json:"pages_visited"`
	Rows         int               `json:"rows"`
	Running      bool              `json:"running"`
	StopReason   models.StopReason `json:"stop_reason,omitempty"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   *time.Time        `json:"finished_at,omitempty"`
}

// RowsResponse is a window of extracted rows
type RowsResponse struct {
	Total  int                 `json:"total"`
	Offset int                 `json:"offset"`
	Rows   []models.ProductRow `json:"rows"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetCrawl reports progress of the current run
func (h *Handlers) GetCrawl(w http.ResponseWriter, r *http.Request) {
	snap := h.state.Snapshot()

	resp := CrawlResponse{
		RunID:        snap.RunID,
		CurrentPage:  snap.CurrentPage,
		PagesVisited: snap.PagesVisited,
		Rows:         len(snap.Rows),
		Running:      snap.Running,
		StopReason:   snap.StopReason,
		StartedAt:    snap.StartedAt,
	}
	if !snap.FinishedAt.IsZero() {
		finished := snap.FinishedAt
		resp.FinishedAt = &finished
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// GetRows returns extracted rows, paged with offset and limit query params
func (h *Handlers) GetRows(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		h.respondError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	limit, err := queryInt(r, "limit", defaultRowsLimit)
	if err != nil || limit <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	limit = min(limit, maxRowsLimit)

	rows := h.state.Snapshot().Rows
	resp := RowsResponse{Total: len(rows), Offset: offset, Rows: []models.ProductRow{}}
	if offset < len(rows) {
		end := offset + min(limit, len(rows)-offset)
		resp.Rows = rows[offset:end]
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
