package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/justinaw04/box-pdf-merger/internal/api"
	"github.com/justinaw04/box-pdf-merger/internal/config"
	"github.com/justinaw04/box-pdf-merger/internal/infrastructure"
	"github.com/justinaw04/box-pdf-merger/internal/merge"
	"github.com/justinaw04/box-pdf-merger/pkg/box"
	"github.com/justinaw04/box-pdf-merger/pkg/lifecycle"
	"github.com/justinaw04/box-pdf-merger/pkg/module"
	"github.com/justinaw04/box-pdf-merger/pkg/pdfco"
)

type fakeStorage struct {
	configured bool
	files      []box.File
	linkURL    string
}

func (f *fakeStorage) Start(lc *lifecycle.Coordinator) error { return nil }

func (f *fakeStorage) Configured() bool { return f.configured }

func (f *fakeStorage) Authenticate(ctx context.Context) (*box.Session, error) {
	return &box.Session{}, nil
}

func (f *fakeStorage) ListPDFs(ctx context.Context, s *box.Session, folderID string) ([]box.File, error) {
	return f.files, nil
}

func (f *fakeStorage) Download(ctx context.Context, s *box.Session, fileID string) ([]byte, error) {
	return []byte("pdf-" + fileID), nil
}

func (f *fakeStorage) Upload(ctx context.Context, s *box.Session, folderID, name string, data []byte) (*box.File, error) {
	return &box.File{ID: "uploaded-1", Name: name}, nil
}

func (f *fakeStorage) CreateSharedLink(ctx context.Context, s *box.Session, fileID string, opts box.SharedLinkOptions) (string, error) {
	return f.linkURL, nil
}

type fakeConverter struct {
	configured bool
}

func (f *fakeConverter) Start(lc *lifecycle.Coordinator) error { return nil }

func (f *fakeConverter) Configured() bool { return f.configured }

func (f *fakeConverter) Stage(ctx context.Context, name string, data []byte) (string, error) {
	return "https://staged/" + name, nil
}

func (f *fakeConverter) SubmitMerge(ctx context.Context, urls []string, outputName string) (*pdfco.Job, error) {
	return &pdfco.Job{ID: "job-1", ResultURL: "https://staged/result"}, nil
}

func (f *fakeConverter) CheckJob(ctx context.Context, jobID string) (pdfco.Status, error) {
	return pdfco.StatusSuccess, nil
}

func (f *fakeConverter) FetchResult(ctx context.Context, resultURL string) ([]byte, error) {
	return []byte("merged-bytes"), nil
}

func newTestServer(t *testing.T, storage box.System, converter pdfco.System) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		API: config.APIConfig{BasePath: "/api", AppPath: "/app"},
		Workflow: config.MergeConfig{
			PollInterval:   "1ms",
			PollBudget:     "1s",
			MinSources:     2,
			SkipValidation: true,
		},
	}

	infra := &infrastructure.Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Box:       storage,
		Converter: converter,
	}

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	router := module.NewRouter()
	router.Mount(m)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postMerge(t *testing.T, srv *httptest.Server, body string) (*http.Response, map[string]string) {
	t.Helper()

	resp, err := http.Post(srv.URL+"/api/merge", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func TestMergeEndpoint(t *testing.T) {
	storage := &fakeStorage{
		configured: true,
		files: []box.File{
			{ID: "1", Name: "a.pdf"},
			{ID: "2", Name: "b.pdf"},
		},
		linkURL: "https://app.box.com/s/shared",
	}
	srv := newTestServer(t, storage, &fakeConverter{configured: true})

	resp, body := postMerge(t, srv, `{"folder_id":"838861","output_name":"merged.pdf"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body["message"], "merged.pdf") {
		t.Errorf("message: got %q", body["message"])
	}
	if !strings.Contains(body["message"], "successfully") {
		t.Errorf("message should report success: %q", body["message"])
	}
	if body["link"] != "https://app.box.com/s/shared" {
		t.Errorf("link: got %q", body["link"])
	}
}

func TestMergeEndpointDegraded(t *testing.T) {
	storage := &fakeStorage{
		configured: true,
		files: []box.File{
			{ID: "1", Name: "a.pdf"},
			{ID: "2", Name: "b.pdf"},
		},
	}
	srv := newTestServer(t, storage, &fakeConverter{configured: true})

	resp, body := postMerge(t, srv, `{"folder_id":"838861"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body["message"], "no shareable link") {
		t.Errorf("message should report missing link: %q", body["message"])
	}
	if body["link"] != "" {
		t.Errorf("link: got %q, want empty", body["link"])
	}
}

func TestMergeEndpointValidation(t *testing.T) {
	storage := &fakeStorage{configured: true, files: []box.File{{ID: "1", Name: "a.pdf"}, {ID: "2", Name: "b.pdf"}}}
	srv := newTestServer(t, storage, &fakeConverter{configured: true})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"malformed json", `{not json`, http.StatusBadRequest},
		{"missing folder", `{"output_name":"merged.pdf"}`, http.StatusBadRequest},
		{"blank folder", `{"folder_id":"   "}`, http.StatusBadRequest},
		{"bad output name", `{"folder_id":"1","output_name":"merged.txt"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postMerge(t, srv, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status: got %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if body["error"] == "" {
				t.Error("error body missing")
			}
		})
	}
}

func TestMergeEndpointNotConfigured(t *testing.T) {
	srv := newTestServer(t, &fakeStorage{}, &fakeConverter{})

	resp, body := postMerge(t, srv, `{"folder_id":"838861"}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", resp.StatusCode)
	}
	if body["error"] == "" {
		t.Error("error body missing")
	}
}

func TestMergeEndpointTooFewSources(t *testing.T) {
	storage := &fakeStorage{configured: true, files: []box.File{{ID: "1", Name: "a.pdf"}}}
	srv := newTestServer(t, storage, &fakeConverter{configured: true})

	resp, _ := postMerge(t, srv, `{"folder_id":"838861"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want 422", resp.StatusCode)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		req      api.MergeRequest
		wantErr  error
		wantName string
	}{
		{
			name:     "defaults applied",
			req:      api.MergeRequest{FolderID: "1"},
			wantName: api.DefaultOutputName,
		},
		{
			name:     "explicit name kept",
			req:      api.MergeRequest{FolderID: "1", OutputName: "report.pdf"},
			wantName: "report.pdf",
		},
		{
			name:     "uppercase extension accepted",
			req:      api.MergeRequest{FolderID: "1", OutputName: "report.PDF"},
			wantName: "report.PDF",
		},
		{
			name:    "missing folder",
			req:     api.MergeRequest{},
			wantErr: api.ErrFolderRequired,
		},
		{
			name:    "whitespace folder",
			req:     api.MergeRequest{FolderID: "  "},
			wantErr: api.ErrFolderRequired,
		},
		{
			name:    "wrong extension",
			req:     api.MergeRequest{FolderID: "1", OutputName: "report.docx"},
			wantErr: api.ErrInvalidOutputName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Normalize()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error: got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.req.OutputName != tt.wantName {
				t.Errorf("output name: got %q, want %q", tt.req.OutputName, tt.wantName)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"folder required", api.ErrFolderRequired, http.StatusBadRequest},
		{"invalid output name", api.ErrInvalidOutputName, http.StatusBadRequest},
		{"not configured", box.ErrNotConfigured, http.StatusServiceUnavailable},
		{"authentication", box.ErrAuthentication, http.StatusBadGateway},
		{"backend", box.ErrBackend, http.StatusBadGateway},
		{"job failed", merge.ErrJobFailed, http.StatusBadGateway},
		{"timeout", merge.ErrTimeout, http.StatusGatewayTimeout},
		{"too few sources", merge.ErrTooFewSources, http.StatusUnprocessableEntity},
		{"wrapped timeout", fmt.Errorf("poll: %w", merge.ErrTimeout), http.StatusGatewayTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := api.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestResultMessage(t *testing.T) {
	full := &merge.Outcome{SharedLink: "https://app.box.com/s/abc", CompletedAt: time.Now()}
	if msg := api.ResultMessage(full, "merged.pdf"); !strings.Contains(msg, "successfully") {
		t.Errorf("message: got %q", msg)
	}

	degraded := &merge.Outcome{Degraded: true, CompletedAt: time.Now()}
	msg := api.ResultMessage(degraded, "merged.pdf")
	if !strings.Contains(msg, "no shareable link") {
		t.Errorf("message: got %q", msg)
	}
	if !strings.Contains(msg, "merged.pdf") {
		t.Errorf("message should name the file: %q", msg)
	}
}
