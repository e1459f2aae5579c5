package merge

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/justinaw04/box-pdf-merger/pkg/pdfco"
)

// PollNode returns a state node that polls the merge job at a fixed interval
// until a terminal status or the wall-clock budget is exceeded. The interval
// sleep is the run's only deliberate suspension and is context-aware, so it
// does not hold a worker for the full timeout window.
func PollNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		job, err := extractJob(s)
		if err != nil {
			return s, fmt.Errorf("poll: %w", err)
		}

		status, polls, err := pollUntilTerminal(ctx, rt, job.ID)
		if err != nil {
			return s, fmt.Errorf("poll: %w", err)
		}

		switch status {
		case pdfco.StatusSuccess:
		case pdfco.StatusFailed:
			return s, fmt.Errorf("poll: %w", ErrJobFailed)
		case pdfco.StatusAborted:
			return s, fmt.Errorf("poll: %w", ErrJobAborted)
		default:
			return s, fmt.Errorf("poll: unexpected terminal status %q", status)
		}

		rt.Logger.InfoContext(
			ctx, "poll node complete",
			"job_id", job.ID,
			"polls", polls,
		)

		return s, nil
	})
}

func pollUntilTerminal(ctx context.Context, rt *Runtime, jobID string) (pdfco.Status, int, error) {
	start := time.Now()
	polls := 0

	for {
		if time.Since(start) > rt.PollBudget {
			return "", polls, ErrTimeout
		}

		if err := wait(ctx, rt.PollInterval); err != nil {
			return "", polls, err
		}

		status, err := rt.Converter.CheckJob(ctx, jobID)
		if err != nil {
			return "", polls, err
		}
		polls++

		rt.Logger.DebugContext(
			ctx, "job status",
			"job_id", jobID,
			"status", status,
			"polls", polls,
		)

		if status.Terminal() {
			return status, polls, nil
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func extractJob(s state.State) (*pdfco.Job, error) {
	val, ok := s.Get(KeyJob)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", KeyJob)
	}
	job, ok := val.(*pdfco.Job)
	if !ok {
		return nil, fmt.Errorf("%s is not *pdfco.Job", KeyJob)
	}
	return job, nil
}
