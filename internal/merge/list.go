package merge

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/justinaw04/box-pdf-merger/pkg/box"
)

// ListNode returns a state node that lists the source folder's PDF files and
// enforces the entry gates: an empty listing and a listing below the minimum
// source count both abort the run before any conversion-service call.
func ListNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		folderID, session, err := extractListState(s)
		if err != nil {
			return s, fmt.Errorf("list: %w", err)
		}

		files, err := rt.Storage.ListPDFs(ctx, session, folderID)
		if err != nil {
			return s, fmt.Errorf("list: %w", err)
		}

		if len(files) == 0 {
			return s, fmt.Errorf("list: %w", ErrNoSources)
		}
		if len(files) < rt.MinSources {
			return s, fmt.Errorf("list: %w", ErrTooFewSources)
		}

		names := make([]string, len(files))
		for i, f := range files {
			names[i] = f.Name
		}
		rt.Logger.InfoContext(
			ctx, "list node complete",
			"count", len(files),
			"names", names,
		)

		s = s.Set(KeyFiles, files)
		return s, nil
	})
}

func extractListState(s state.State) (string, *box.Session, error) {
	folderVal, ok := s.Get(KeyFolderID)
	if !ok {
		return "", nil, fmt.Errorf("missing %s in state", KeyFolderID)
	}
	folderID, ok := folderVal.(string)
	if !ok {
		return "", nil, fmt.Errorf("%s is not string", KeyFolderID)
	}

	sessionVal, ok := s.Get(KeySession)
	if !ok {
		return "", nil, fmt.Errorf("missing %s in state", KeySession)
	}
	session, ok := sessionVal.(*box.Session)
	if !ok {
		return "", nil, fmt.Errorf("%s is not *box.Session", KeySession)
	}

	return folderID, session, nil
}
