package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/fridge-capacity-crawler/internal/models"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event
type EventType string

const (
	// EventTypeCapacityExtracted is published once per row of a finished run
	EventTypeCapacityExtracted EventType = "FRIDGE_CAPACITY_EXTRACTED"
	// EventTypeCrawlCompleted closes a run on the stream
	EventTypeCrawlCompleted EventType = "CRAWL_COMPLETED"

	DefaultStream = "stream:fridge_capacity"
)

// RedisClient interface for Redis operations (for testing)
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

type CapacityPayload struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Position  int       `json:"position"`
	Name      string    `json:"name"`
	TotalL    int       `json:"total_l"`
	FreezerL  int       `json:"freezer_l"`
	FridgeL   int       `json:"fridge_l"`
}

type CompletedPayload struct {
	EventID      string            `json:"event_id"`
	EventType    string            `json:"event_type"`
	Timestamp    time.Time         `json:"timestamp"`
	RunID        string            `json:"run_id"`
	PagesVisited int               `json:"pages_visited"`
	Rows         int               `json:"rows"`
	StopReason   models.StopReason `json:"stop_reason"`
}

// Publisher appends crawl results to a Redis stream
type Publisher struct {
	redis  RedisClient
	stream string
	maxLen int64
	now    func() time.Time
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string, maxLen int64, logger *slog.Logger) *Publisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &Publisher{
		redis:  client,
		stream: stream,
		maxLen: maxLen,
		now:    time.Now,
		logger: logger.With("component", "event_publisher"),
	}
}

func (p *Publisher) Name() string { return "redis:" + p.stream }

// Save publishes one event per row followed by a completion event.
func (p *Publisher) Save(ctx context.Context, result models.Snapshot) error {
	for i, row := range result.Rows {
		payload := CapacityPayload{
			EventID:   uuid.New().String(),
			EventType: string(EventTypeCapacityExtracted),
			Timestamp: p.now(),
			RunID:     result.RunID,
			Position:  i,
			Name:      row.Name,
			TotalL:    row.TotalL,
			FreezerL:  row.FreezerL,
			FridgeL:   row.FridgeL,
		}
		if err := p.publish(ctx, payload.EventID, EventTypeCapacityExtracted, result.RunID, payload); err != nil {
			return err
		}
	}

	done := CompletedPayload{
		EventID:      uuid.New().String(),
		EventType:    string(EventTypeCrawlCompleted),
		Timestamp:    p.now(),
		RunID:        result.RunID,
		PagesVisited: result.PagesVisited,
		Rows:         len(result.Rows),
		StopReason:   result.StopReason,
	}
	if err := p.publish(ctx, done.EventID, EventTypeCrawlCompleted, result.RunID, done); err != nil {
		return err
	}

	p.logger.Info("events published",
		"stream", p.stream,
		"run_id", result.RunID,
		"rows", len(result.Rows),
	)
	return nil
}

func (p *Publisher) publish(ctx context.Context, eventID string, eventType EventType, runID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"event_id":   eventID,
			"event_type": string(eventType),
			"run_id":     runID,
			"payload":    string(data),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.redis.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}
