package merge

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/justinaw04/box-pdf-merger/pkg/box"
)

// PrepareNode returns a state node that downloads each listed file,
// validates it as a well-formed PDF, and stages it into the conversion
// service — strictly sequentially, in listing order. A single file's
// failure is logged and the file skipped; the node only aborts when no
// file could be prepared.
func PrepareNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		session, files, err := extractPrepareState(s)
		if err != nil {
			return s, fmt.Errorf("prepare: %w", err)
		}

		var staged []string
		for _, file := range files {
			url, err := prepareFile(ctx, rt, session, file)
			if err != nil {
				rt.Logger.WarnContext(
					ctx, "skipping file",
					"file_id", file.ID,
					"name", file.Name,
					"error", err,
				)
				continue
			}
			staged = append(staged, url)
		}

		if len(staged) == 0 {
			return s, fmt.Errorf("prepare: %w", ErrNonePrepared)
		}

		rt.Logger.InfoContext(
			ctx, "prepare node complete",
			"staged", len(staged),
			"skipped", len(files)-len(staged),
		)

		s = s.Set(KeyStaged, staged)
		return s, nil
	})
}

func prepareFile(ctx context.Context, rt *Runtime, session *box.Session, file box.File) (string, error) {
	data, err := rt.Storage.Download(ctx, session, file.ID)
	if err != nil {
		return "", err
	}

	if err := rt.Validate(data); err != nil {
		return "", fmt.Errorf("invalid PDF: %w", err)
	}

	return rt.Converter.Stage(ctx, file.Name, data)
}

func extractPrepareState(s state.State) (*box.Session, []box.File, error) {
	sessionVal, ok := s.Get(KeySession)
	if !ok {
		return nil, nil, fmt.Errorf("missing %s in state", KeySession)
	}
	session, ok := sessionVal.(*box.Session)
	if !ok {
		return nil, nil, fmt.Errorf("%s is not *box.Session", KeySession)
	}

	filesVal, ok := s.Get(KeyFiles)
	if !ok {
		return nil, nil, fmt.Errorf("missing %s in state", KeyFiles)
	}
	files, ok := filesVal.([]box.File)
	if !ok {
		return nil, nil, fmt.Errorf("%s is not []box.File", KeyFiles)
	}

	return session, files, nil
}
