package merge

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/justinaw04/box-pdf-merger/pkg/box"
)

// StoreNode returns a state node that uploads the merged bytes back into the
// original source folder under the requested output name.
func StoreNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		session, folderID, outputName, data, err := extractStoreState(s)
		if err != nil {
			return s, fmt.Errorf("store: %w", err)
		}

		file, err := rt.Storage.Upload(ctx, session, folderID, outputName, data)
		if err != nil {
			return s, fmt.Errorf("store: %w: %w", ErrStoreFailed, err)
		}

		rt.Logger.InfoContext(
			ctx, "store node complete",
			"file_id", file.ID,
			"name", file.Name,
		)

		s = s.Set(KeyUpload, file)
		return s, nil
	})
}

func extractStoreState(s state.State) (*box.Session, string, string, []byte, error) {
	sessionVal, ok := s.Get(KeySession)
	if !ok {
		return nil, "", "", nil, fmt.Errorf("missing %s in state", KeySession)
	}
	session, ok := sessionVal.(*box.Session)
	if !ok {
		return nil, "", "", nil, fmt.Errorf("%s is not *box.Session", KeySession)
	}

	folderID, err := extractString(s, KeyFolderID)
	if err != nil {
		return nil, "", "", nil, err
	}

	outputName, err := extractString(s, KeyOutputName)
	if err != nil {
		return nil, "", "", nil, err
	}

	dataVal, ok := s.Get(KeyResult)
	if !ok {
		return nil, "", "", nil, fmt.Errorf("missing %s in state", KeyResult)
	}
	data, ok := dataVal.([]byte)
	if !ok {
		return nil, "", "", nil, fmt.Errorf("%s is not []byte", KeyResult)
	}

	return session, folderID, outputName, data, nil
}
