package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"CompetitorBot/internal/domain"
	"CompetitorBot/internal/ports"
)

// Outcome tags the orchestrator's local view of a remote run.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
	OutcomeTimedOut
)

// Advance maps a polled remote status plus the elapsed wall clock onto the
// next outcome. Pure, so the lifecycle mapping is testable without I/O.
// Terminal remote states win over the local timeout.
func Advance(status string, elapsed, bound time.Duration) Outcome {
	switch status {
	case domain.RunCompleted:
		return OutcomeSucceeded
	case domain.RunFailed, domain.RunCancelled, domain.RunExpired:
		return OutcomeFailed
	}
	if elapsed > bound {
		return OutcomeTimedOut
	}
	return OutcomePending
}

// RunFailureError reports that the remote run reached a terminal failure
// state.
type RunFailureError struct {
	Status string
}

func (e *RunFailureError) Error() string {
	return fmt.Sprintf("assistant run ended with status %s", e.Status)
}

// ErrRunTimeout reports that the wall-clock bound elapsed before the run
// reached a terminal state.
var ErrRunTimeout = errors.New("assistant run timed out")

// fallbackReply is returned when a completed run carries no assistant text.
const fallbackReply = "I couldn't produce a response this time."

// OrchestratorDeps wires the run orchestrator.
type OrchestratorDeps struct {
	API          ports.AssistantAPI
	Assembler    *Assembler
	Instructions string
	RunTimeout   time.Duration
	PollInterval time.Duration
	Logger       *slog.Logger
}

// RunOrchestrator submits the assembled prompt to the assistant, polls the
// run to a terminal state on a fixed interval, and extracts the reply.
type RunOrchestrator struct {
	api          ports.AssistantAPI
	assembler    *Assembler
	instructions string
	runTimeout   time.Duration
	pollInterval time.Duration
	logger       *slog.Logger
}

var _ ports.Orchestrator = (*RunOrchestrator)(nil)

// NewRunOrchestrator constructs the orchestrator; the timeout defaults to
// 90s and the poll interval to 1s.
func NewRunOrchestrator(deps OrchestratorDeps) *RunOrchestrator {
	assembler := deps.Assembler
	if assembler == nil {
		assembler = NewAssembler(0)
	}
	runTimeout := deps.RunTimeout
	if runTimeout <= 0 {
		runTimeout = 90 * time.Second
	}
	pollInterval := deps.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RunOrchestrator{
		api:          deps.API,
		assembler:    assembler,
		instructions: deps.Instructions,
		runTimeout:   runTimeout,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Answer posts the prompt, runs the assistant, and returns the reply text.
// Terminal failure and timeout surface as distinguishable errors.
func (o *RunOrchestrator) Answer(ctx context.Context, threadID, question string, docs []domain.ResearchDocument) (string, error) {
	prompt := o.assembler.Build(question, docs)

	if err := o.api.CreateMessage(ctx, threadID, prompt); err != nil {
		return "", err
	}

	runID, err := o.api.CreateRun(ctx, threadID, o.instructions)
	if err != nil {
		return "", err
	}
	o.logger.Debug("run submitted", "thread", threadID, "run", runID)

	start := time.Now()
	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		status, err := o.api.RetrieveRunStatus(ctx, threadID, runID)
		if err != nil {
			return "", err
		}

		switch Advance(status, time.Since(start), o.runTimeout) {
		case OutcomeSucceeded:
			text, err := o.api.LatestAssistantText(ctx, threadID)
			if err != nil {
				return "", err
			}
			if text == "" {
				return fallbackReply, nil
			}
			return text, nil

		case OutcomeFailed:
			return "", &RunFailureError{Status: status}

		case OutcomeTimedOut:
			// best effort only; the error to surface is the timeout
			if err := o.api.CancelRun(ctx, threadID, runID); err != nil {
				o.logger.Warn("run cancel failed", "run", runID, "error", err)
			}
			return "", ErrRunTimeout
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}
