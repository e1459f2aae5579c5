package merge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/justinaw04/box-pdf-merger/pkg/box"
	"github.com/justinaw04/box-pdf-merger/pkg/pdfco"
)

// Execute runs the merge workflow for one folder. It fails fast on missing
// configuration before any remote call, derives a fresh session for the run,
// builds the state graph (list → prepare → submit → poll → fetch → store →
// link), executes it, and extracts the Outcome from the final state.
func Execute(ctx context.Context, rt *Runtime, folderID, outputName string) (*Outcome, error) {
	run := *rt
	run.normalize()
	run.Logger = rt.Logger.With(
		"run_id", uuid.NewString(),
		"folder_id", folderID,
	)

	if !run.Storage.Configured() {
		return nil, fmt.Errorf("preflight: %w", box.ErrNotConfigured)
	}
	if !run.Converter.Configured() {
		return nil, fmt.Errorf("preflight: %w", pdfco.ErrNotConfigured)
	}

	session, err := run.Storage.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	graph, err := buildGraph(&run)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyFolderID, folderID)
	initialState = initialState.Set(KeyOutputName, outputName)
	initialState = initialState.Set(KeySession, session)

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		return nil, err
	}

	return extractOutcome(finalState)
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("box-merge")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	nodes := []struct {
		name string
		node state.StateNode
	}{
		{"list", ListNode(rt)},
		{"prepare", PrepareNode(rt)},
		{"submit", SubmitNode(rt)},
		{"poll", PollNode(rt)},
		{"fetch", FetchNode(rt)},
		{"store", StoreNode(rt)},
		{"link", LinkNode(rt)},
	}

	for _, n := range nodes {
		if err := graph.AddNode(n.name, n.node); err != nil {
			return nil, err
		}
	}

	// The workflow is a straight chain; every node exits early by
	// returning an error.
	for i := 0; i < len(nodes)-1; i++ {
		if err := graph.AddEdge(nodes[i].name, nodes[i+1].name, nil); err != nil {
			return nil, err
		}
	}

	if err := graph.SetEntryPoint("list"); err != nil {
		return nil, err
	}
	if err := graph.SetExitPoint("link"); err != nil {
		return nil, err
	}

	return graph, nil
}

func extractOutcome(s state.State) (*Outcome, error) {
	fileVal, ok := s.Get(KeyUpload)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyUpload)
	}
	file, ok := fileVal.(*box.File)
	if !ok {
		return nil, fmt.Errorf("%s is not *box.File", KeyUpload)
	}

	link, err := extractString(s, KeyLink)
	if err != nil {
		return nil, err
	}

	degradedVal, ok := s.Get(KeyDegraded)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyDegraded)
	}
	degraded, ok := degradedVal.(bool)
	if !ok {
		return nil, fmt.Errorf("%s is not bool", KeyDegraded)
	}

	stagedVal, ok := s.Get(KeyStaged)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyStaged)
	}
	staged, ok := stagedVal.([]string)
	if !ok {
		return nil, fmt.Errorf("%s is not []string", KeyStaged)
	}

	pageCountVal, ok := s.Get(KeyPageCount)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyPageCount)
	}
	pageCount, ok := pageCountVal.(int)
	if !ok {
		return nil, fmt.Errorf("%s is not int", KeyPageCount)
	}

	return &Outcome{
		File:        file,
		SharedLink:  link,
		Degraded:    degraded,
		SourceCount: len(staged),
		PageCount:   pageCount,
		CompletedAt: time.Now(),
	}, nil
}
