package models

import (
	"strconv"
	"sync"
	"time"
)

// ProductRow is one fully parsed listing entry. All three capacities are in liters.
type ProductRow struct {
	Name     string `json:"name"`
	TotalL   int    `json:"total_l"`
	FreezerL int    `json:"freezer_l"`
	FridgeL  int    `json:"fridge_l"`
}

func NewProductRow(name string, totalL, freezerL, fridgeL int) ProductRow {
	return ProductRow{
		Name:     name,
		TotalL:   totalL,
		FreezerL: freezerL,
		FridgeL:  fridgeL,
	}
}

// Record returns the row in output column order: name, total, freezer, fridge.
func (r ProductRow) Record() []string {
	return []string{r.Name, strconv.Itoa(r.TotalL), strconv.Itoa(r.FreezerL), strconv.Itoa(r.FridgeL)}
}

// Capacities holds the three optional values found in a spec text.
// A nil field means the label was not present.
type Capacities struct {
	Total   *int
	Fridge  *int
	Freezer *int
}

func (c Capacities) Complete() bool {
	return c.Total != nil && c.Fridge != nil && c.Freezer != nil
}

// Row builds a ProductRow when all three capacities are present.
func (c Capacities) Row(name string) (ProductRow, bool) {
	if !c.Complete() {
		return ProductRow{}, false
	}
	return NewProductRow(name, *c.Total, *c.Freezer, *c.Fridge), true
}

type StopReason string

const (
	StopNone         StopReason = ""
	StopPageCap      StopReason = "page_cap"
	StopEndOfListing StopReason = "end_of_listing"
	StopNoControls   StopReason = "no_controls"
	StopNavFailed    StopReason = "navigation_failed"
	StopPageError    StopReason = "page_error"
	StopCancelled    StopReason = "cancelled"
)

// CrawlState is the in-memory state of one run. The crawl loop is the only
// writer; the status API reads it through Snapshot.
type CrawlState struct {
	mu           sync.RWMutex
	runID        string
	currentPage  int
	pagesVisited int
	rows         []ProductRow
	stopReason   StopReason
	startedAt    time.Time
	finishedAt   time.Time
}

func NewCrawlState(runID string) *CrawlState {
	return &CrawlState{
		runID:       runID,
		currentPage: 1,
		rows:        make([]ProductRow, 0),
		startedAt:   time.Now(),
	}
}

func (s *CrawlState) CurrentPage() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPage
}

// AddPage records a visited page and the rows extracted from it.
func (s *CrawlState) AddPage(rows []ProductRow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pagesVisited++
	s.rows = append(s.rows, rows...)
}

// Advance moves to the next page and returns the new page number.
func (s *CrawlState) Advance() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentPage++
	return s.currentPage
}

func (s *CrawlState) Finish(reason StopReason) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopReason = reason
	s.finishedAt = time.Now()
}

// Snapshot is a copy of the crawl state safe to hand to other goroutines.
type Snapshot struct {
	RunID        string       `json:"run_id"`
	CurrentPage  int          `json:"current_page"`
	PagesVisited int          `json:"pages_visited"`
	Rows         []ProductRow `json:"rows"`
	StopReason   StopReason   `json:"stop_reason,omitempty"`
	Running      bool         `json:"running"`
	StartedAt    time.Time    `json:"started_at"`
	FinishedAt   time.Time    `json:"finished_at,omitempty"`
}

func (s *CrawlState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]ProductRow, len(s.rows))
	copy(rows, s.rows)

	return Snapshot{
		RunID:        s.runID,
		CurrentPage:  s.currentPage,
		PagesVisited: s.pagesVisited,
		Rows:         rows,
		StopReason:   s.stopReason,
		Running:      s.finishedAt.IsZero(),
		StartedAt:    s.startedAt,
		FinishedAt:   s.finishedAt,
	}
}
