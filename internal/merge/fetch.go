package merge

import (
	"bytes"
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// FetchNode returns a state node that downloads the merged result from the
// conversion job's result URL. Transport failure here is fatal for the run.
// The page count is extracted best-effort for the outcome and logs.
func FetchNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		job, err := extractJob(s)
		if err != nil {
			return s, fmt.Errorf("fetch: %w", err)
		}

		data, err := rt.Converter.FetchResult(ctx, job.ResultURL)
		if err != nil {
			return s, fmt.Errorf("fetch: %w", err)
		}

		pages := extractPageCount(rt, data)

		rt.Logger.InfoContext(
			ctx, "fetch node complete",
			"size", len(data),
			"page_count", pages,
		)

		s = s.Set(KeyResult, data)
		s = s.Set(KeyPageCount, pages)
		return s, nil
	})
}

func extractPageCount(rt *Runtime, data []byte) int {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		rt.Logger.Warn("failed to extract merged page count", "error", err)
		return 0
	}
	return count
}
