// Package recurring runs batch generation of recurring job instances against
// the durable store and announces the results.
package recurring

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
	"github.com/Alijeyrad/serviceflow_backend/internal/recurrence"
	"github.com/Alijeyrad/serviceflow_backend/pkg/observability"
)

const (
	// SubjectGenerate receives generation requests (request/reply).
	SubjectGenerate = "serviceflow.recurrence.generate"
	// SubjectGeneratedPrefix is followed by the owner id.
	SubjectGeneratedPrefix = "serviceflow.jobs.generated."

	SourceHTTP    = "http"
	SourceNATS    = "nats"
	SourceCatchUp = "catchup"
	SourceCLI     = "cli"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// GenerateRequest is the NATS request body.
type GenerateRequest struct {
	OwnerID   uuid.UUID `json:"owner_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
}

// GenerateReply answers a GenerateRequest.
type GenerateReply struct {
	Generated int    `json:"generated"`
	Error     string `json:"error,omitempty"`
}

// GeneratedEvent is published once per owner after a run that created jobs.
type GeneratedEvent struct {
	OwnerID   uuid.UUID `json:"owner_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Generated int       `json:"generated"`
}

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Generate fills rng with the owner's missing instances and returns how
	// many were written.
	Generate(ctx context.Context, source string, owner uuid.UUID, rng recurrence.Range) (int, error)
	// GenerateAll does the same for every owner.
	GenerateAll(ctx context.Context, source string, rng recurrence.Range) (int, error)
	// HandleRequest serves a raw NATS request and returns the reply body.
	HandleRequest(ctx context.Context, data []byte) []byte
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type recurringService struct {
	gen     *recurrence.Generator
	pub     Publisher
	metrics *observability.GenerationMetrics
	logger  *slog.Logger
}

// New builds the service. pub and metrics may be nil.
func New(store recurrence.Store, pub Publisher, metrics *observability.GenerationMetrics, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &recurringService{
		gen:     recurrence.NewGenerator(store, logger),
		pub:     pub,
		metrics: metrics,
		logger:  logger,
	}
}

// ParseRange validates a pair of ISO dates. An inverted range is valid and
// generates nothing.
func ParseRange(start, end string) (recurrence.Range, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return recurrence.Range{}, ErrInvalidRange
	}
	rng, err := recurrence.ParseRange(start, end)
	if err != nil {
		return recurrence.Range{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return rng, nil
}

func (s *recurringService) Generate(ctx context.Context, source string, owner uuid.UUID, rng recurrence.Range) (int, error) {
	if owner == uuid.Nil {
		return 0, ErrOwnerRequired
	}
	res, err := s.run(ctx, source, owner, rng)
	if err != nil {
		return 0, err
	}
	s.announce(rng, res.Jobs)
	return res.Generated, nil
}

func (s *recurringService) GenerateAll(ctx context.Context, source string, rng recurrence.Range) (int, error) {
	res, err := s.run(ctx, source, uuid.Nil, rng)
	if err != nil {
		return 0, err
	}
	s.announce(rng, res.Jobs)
	return res.Generated, nil
}

func (s *recurringService) run(ctx context.Context, source string, owner uuid.UUID, rng recurrence.Range) (recurrence.Result, error) {
	ctx, span := s.metrics.Start(ctx, source)
	defer span.End()
	span.SetAttributes(
		attribute.String("recurrence.range", rng.Key()),
		attribute.String("recurrence.owner_id", owner.String()),
	)

	start := time.Now()
	res, err := s.gen.Generate(ctx, owner, rng)
	s.metrics.Record(ctx, source, res.Generated, res.Skipped, res.Failed, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		s.logger.Error("recurring: generation failed", "source", source, "owner_id", owner, "range", rng.Key(), "err", err)
		return res, fmt.Errorf("generate recurring jobs: %w", err)
	}

	span.SetAttributes(attribute.Int("recurrence.generated", res.Generated))
	if res.Generated > 0 {
		s.logger.Info("recurring: instances generated",
			"source", source,
			"owner_id", owner,
			"range", rng.Key(),
			"generated", res.Generated,
			"skipped", res.Skipped,
		)
	}
	return res, nil
}

// announce publishes one GeneratedEvent per owner that received instances.
func (s *recurringService) announce(rng recurrence.Range, jobs []model.Job) {
	if s.pub == nil || len(jobs) == 0 {
		return
	}

	counts := make(map[uuid.UUID]int)
	var order []uuid.UUID
	for i := range jobs {
		if counts[jobs[i].OwnerID] == 0 {
			order = append(order, jobs[i].OwnerID)
		}
		counts[jobs[i].OwnerID]++
	}

	for _, owner := range order {
		body, err := json.Marshal(GeneratedEvent{
			OwnerID:   owner,
			StartDate: rng.Start.String(),
			EndDate:   rng.End.String(),
			Generated: counts[owner],
		})
		if err != nil {
			continue
		}
		if err := s.pub.Publish(SubjectGeneratedPrefix+owner.String(), body); err != nil {
			s.logger.Warn("recurring: publish generated event failed", "owner_id", owner, "err", err)
		}
	}
}

func (s *recurringService) HandleRequest(ctx context.Context, data []byte) []byte {
	reply := func(r GenerateReply) []byte {
		b, _ := json.Marshal(r)
		return b
	}

	var req GenerateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return reply(GenerateReply{Error: "invalid request body"})
	}
	rng, err := ParseRange(req.StartDate, req.EndDate)
	if err != nil {
		return reply(GenerateReply{Error: err.Error()})
	}

	var n int
	if req.OwnerID == uuid.Nil {
		n, err = s.GenerateAll(ctx, SourceNATS, rng)
	} else {
		n, err = s.Generate(ctx, SourceNATS, req.OwnerID, rng)
	}
	if err != nil {
		return reply(GenerateReply{Error: err.Error()})
	}
	return reply(GenerateReply{Generated: n})
}
