package merge

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/justinaw04/box-pdf-merger/pkg/box"
)

// LinkNode returns a state node that requests a shared link for the stored
// merge result with open access and download enabled. Link failures — a
// backend response without a URL or a transport error — degrade the run
// instead of failing it: merge and upload already succeeded.
func LinkNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		session, file, err := extractLinkState(s)
		if err != nil {
			return s, fmt.Errorf("link: %w", err)
		}

		url, err := rt.Storage.CreateSharedLink(ctx, session, file.ID, box.SharedLinkOptions{
			Access:      "open",
			CanDownload: true,
			CanPreview:  true,
		})
		if err != nil {
			rt.Logger.WarnContext(
				ctx, "shared link creation failed",
				"file_id", file.ID,
				"error", err,
			)
			url = ""
		}

		rt.Logger.InfoContext(
			ctx, "link node complete",
			"file_id", file.ID,
			"degraded", url == "",
		)

		s = s.Set(KeyLink, url)
		s = s.Set(KeyDegraded, url == "")
		return s, nil
	})
}

func extractLinkState(s state.State) (*box.Session, *box.File, error) {
	sessionVal, ok := s.Get(KeySession)
	if !ok {
		return nil, nil, fmt.Errorf("missing %s in state", KeySession)
	}
	session, ok := sessionVal.(*box.Session)
	if !ok {
		return nil, nil, fmt.Errorf("%s is not *box.Session", KeySession)
	}

	fileVal, ok := s.Get(KeyUpload)
	if !ok {
		return nil, nil, fmt.Errorf("missing %s in state", KeyUpload)
	}
	file, ok := fileVal.(*box.File)
	if !ok {
		return nil, nil, fmt.Errorf("%s is not *box.File", KeyUpload)
	}

	return session, file, nil
}
