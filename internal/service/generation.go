package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mealhow/mealhow-api/internal/core"
	"github.com/mealhow/mealhow-api/internal/domain/model"
	apperrors "github.com/mealhow/mealhow-api/internal/errors"
)

// GenerationServiceOptions groups dependencies for GenerationService.
type GenerationServiceOptions struct {
	Publisher       core.Publisher // Required: dispatch sink
	ProjectID       string         // Required: project segment of topic names
	PollInterval    time.Duration  // Optional: defaults to 1s
	PollMaxAttempts int            // Optional: defaults to 30
	Logger          *slog.Logger   // Optional: structured logger
}

// GenerationRequest describes one dispatch-and-await cycle. The caller owns
// the record store queries; this service owns ordering and timing.
type GenerationRequest struct {
	// TopicID is the short topic name the job payload is published to.
	TopicID string
	// Payload is marshalled to JSON and published as the job message.
	Payload any
	// CheckConflict reports whether a generation job of this kind is already
	// pending for the caller. Checked before anything else happens.
	CheckConflict func(ctx context.Context) (bool, error)
	// BeforeDispatch runs after the conflict check and before publishing.
	// Used to persist state the worker will read. Optional.
	BeforeDispatch func(ctx context.Context) error
	// Poll checks whether the worker has produced a resolved result. It is
	// called once per attempt; the caller captures the result in the closure.
	Poll func(ctx context.Context) (done bool, err error)
}

// GenerationService is the bridge between synchronous API requests and the
// asynchronous generation workers. It publishes a job message and then polls
// the record store until the worker flips the record out of in_progress, the
// attempt budget runs out, or the request context is canceled.
type GenerationService struct {
	publisher       core.Publisher
	projectID       string
	pollInterval    time.Duration
	pollMaxAttempts int
	logger          *slog.Logger
}

// NewGenerationService constructs a new GenerationService.
func NewGenerationService(opts GenerationServiceOptions) (*GenerationService, error) {
	if opts.Publisher == nil {
		return nil, errors.New("Publisher is required")
	}
	if opts.ProjectID == "" {
		return nil, errors.New("ProjectID is required")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.PollMaxAttempts <= 0 {
		opts.PollMaxAttempts = 30
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "generation_service")
	}

	return &GenerationService{
		publisher:       opts.Publisher,
		projectID:       opts.ProjectID,
		pollInterval:    opts.PollInterval,
		pollMaxAttempts: opts.PollMaxAttempts,
		logger:          logger,
	}, nil
}

// CreateAndAwait runs one full generation cycle: conflict check, optional
// pre-dispatch mutation, publish, then a bounded poll loop. A successful
// return means req.Poll reported done; the caller reads the result out of
// its own closure state.
func (s *GenerationService) CreateAndAwait(ctx context.Context, req GenerationRequest) error {
	if req.CheckConflict != nil {
		conflicted, err := req.CheckConflict(ctx)
		if err != nil {
			return fmt.Errorf("check pending job: %w", err)
		}
		if conflicted {
			return apperrors.Conflict("A generation job is already in progress")
		}
	}

	if req.BeforeDispatch != nil {
		if err := req.BeforeDispatch(ctx); err != nil {
			return fmt.Errorf("prepare dispatch: %w", err)
		}
	}

	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "marshal job payload")
	}
	topic := model.TopicName(s.projectID, req.TopicID)
	if err := s.publisher.Publish(ctx, model.DispatchEvent{Topic: topic, Payload: payload}); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "generation job dispatched",
			"topic", topic,
			"poll_interval", s.pollInterval,
			"max_attempts", s.pollMaxAttempts,
		)
	}

	return s.await(ctx, req.Poll)
}

// await polls until done, attempts are exhausted, or ctx is canceled. The
// first wait happens before the first poll: the worker cannot have finished
// faster than the message reached it.
func (s *GenerationService) await(ctx context.Context, poll func(ctx context.Context) (bool, error)) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= s.pollMaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return apperrors.MapDBError(ctx.Err())
		case <-ticker.C:
		}

		done, err := poll(ctx)
		if err != nil {
			return fmt.Errorf("poll attempt %d: %w", attempt, err)
		}
		if done {
			return nil
		}
	}

	return apperrors.Timeout("Timed out waiting for the result")
}
