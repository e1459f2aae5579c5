package merge

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// SubmitNode returns a state node that submits the staged URLs as an
// asynchronous merge job. A submission that yields no job id aborts the run.
func SubmitNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		outputName, err := extractString(s, KeyOutputName)
		if err != nil {
			return s, fmt.Errorf("submit: %w", err)
		}

		stagedVal, ok := s.Get(KeyStaged)
		if !ok {
			return s, fmt.Errorf("submit: missing %s in state", KeyStaged)
		}
		staged, ok := stagedVal.([]string)
		if !ok {
			return s, fmt.Errorf("submit: %s is not []string", KeyStaged)
		}

		job, err := rt.Converter.SubmitMerge(ctx, staged, outputName)
		if err != nil {
			return s, fmt.Errorf("submit: %w", err)
		}
		if job.ID == "" {
			return s, fmt.Errorf("submit: %w", ErrNoJob)
		}

		rt.Logger.InfoContext(
			ctx, "submit node complete",
			"job_id", job.ID,
			"sources", len(staged),
		)

		s = s.Set(KeyJob, job)
		return s, nil
	})
}

func extractString(s state.State, key string) (string, error) {
	val, ok := s.Get(key)
	if !ok {
		return "", fmt.Errorf("missing %s in state", key)
	}
	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s is not string", key)
	}
	return str, nil
}
