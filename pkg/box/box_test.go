package box_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/justinaw04/box-pdf-merger/pkg/box"
)

// newTestSystem starts a server that answers the token exchange itself and
// delegates every other request to handler, then authenticates against it.
func newTestSystem(t *testing.T, handler http.HandlerFunc) (box.System, *box.Session) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "session-token",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer session-token" {
			t.Errorf("authorization: got %q", got)
		}
		handler(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := &box.Config{
		CredentialsJSON: testCredentialsJSON(t, "9001", ""),
		APIURL:          srv.URL,
		UploadURL:       srv.URL,
		TokenURL:        srv.URL + "/oauth2/token",
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize config: %v", err)
	}

	system, err := box.New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("new system: %v", err)
	}

	session, err := system.Authenticate(context.Background())
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	return system, session
}

func TestListPDFs(t *testing.T) {
	system, session := newTestSystem(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/folders/838861/items") {
			t.Errorf("path: got %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"total_count": 5,
			"entries": []map[string]string{
				{"type": "file", "id": "1", "name": "alpha.pdf"},
				{"type": "folder", "id": "2", "name": "subfolder"},
				{"type": "file", "id": "3", "name": "notes.txt"},
				{"type": "file", "id": "4", "name": "BETA.PDF"},
				{"type": "file", "id": "5", "name": "report.pdf.bak"},
			},
		})
	})

	files, err := system.ListPDFs(context.Background(), session, "838861")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []box.File{
		{ID: "1", Name: "alpha.pdf"},
		{ID: "4", Name: "BETA.PDF"},
	}
	if len(files) != len(want) {
		t.Fatalf("files: got %d, want %d", len(files), len(want))
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("file %d: got %+v, want %+v", i, files[i], want[i])
		}
	}
}

func TestListPDFsEmptyFolder(t *testing.T) {
	system, session := newTestSystem(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"total_count": 0, "entries": []any{}})
	})

	files, err := system.ListPDFs(context.Background(), session, "0")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("files: got %d, want 0", len(files))
	}
}

func TestDownload(t *testing.T) {
	content := []byte("%PDF-1.4 fake body")

	system, session := newTestSystem(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/42/content" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		w.Write(content)
	})

	data, err := system.Download(context.Background(), session, "42")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(data) != string(content) {
		t.Errorf("content: got %q", data)
	}
}

func TestUpload(t *testing.T) {
	system, session := newTestSystem(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/content" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}

		var attrs struct {
			Name   string `json:"name"`
			Parent struct {
				ID string `json:"id"`
			} `json:"parent"`
		}
		if err := json.Unmarshal([]byte(r.FormValue("attributes")), &attrs); err != nil {
			t.Fatalf("parse attributes: %v", err)
		}
		if attrs.Name != "merged.pdf" {
			t.Errorf("name: got %q", attrs.Name)
		}
		if attrs.Parent.ID != "838861" {
			t.Errorf("parent: got %q", attrs.Parent.ID)
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"entries": []map[string]string{{"id": "99", "name": "merged.pdf"}},
		})
	})

	file, err := system.Upload(context.Background(), session, "838861", "merged.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if file.ID != "99" || file.Name != "merged.pdf" {
		t.Errorf("file: got %+v", file)
	}
}

func TestUploadNoEntries(t *testing.T) {
	system, session := newTestSystem(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"entries": []any{}})
	})

	_, err := system.Upload(context.Background(), session, "838861", "merged.pdf", []byte("x"))
	if !errors.Is(err, box.ErrBackend) {
		t.Errorf("error: got %v, want ErrBackend", err)
	}
}

func TestCreateSharedLink(t *testing.T) {
	system, session := newTestSystem(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method: got %q", r.Method)
		}
		if r.URL.Path != "/files/99" {
			t.Errorf("path: got %q", r.URL.Path)
		}

		var payload struct {
			SharedLink struct {
				Access      string `json:"access"`
				Permissions struct {
					CanDownload bool `json:"can_download"`
					CanPreview  bool `json:"can_preview"`
				} `json:"permissions"`
			} `json:"shared_link"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.SharedLink.Access != "open" {
			t.Errorf("access: got %q", payload.SharedLink.Access)
		}
		if !payload.SharedLink.Permissions.CanDownload {
			t.Error("can_download should be set")
		}

		json.NewEncoder(w).Encode(map[string]any{
			"shared_link": map[string]string{"url": "https://app.box.com/s/abc123"},
		})
	})

	opts := box.SharedLinkOptions{Access: "open", CanDownload: true, CanPreview: true}
	url, err := system.CreateSharedLink(context.Background(), session, "99", opts)
	if err != nil {
		t.Fatalf("shared link: %v", err)
	}
	if url != "https://app.box.com/s/abc123" {
		t.Errorf("url: got %q", url)
	}
}

func TestCreateSharedLinkMissing(t *testing.T) {
	system, session := newTestSystem(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	})

	url, err := system.CreateSharedLink(context.Background(), session, "99", box.SharedLinkOptions{Access: "open"})
	if err != nil {
		t.Fatalf("missing link should not be an error, got %v", err)
	}
	if url != "" {
		t.Errorf("url: got %q, want empty", url)
	}
}

func TestBackendErrorStatus(t *testing.T) {
	system, session := newTestSystem(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"folder not found"}`, http.StatusNotFound)
	})

	_, err := system.ListPDFs(context.Background(), session, "missing")
	if !errors.Is(err, box.ErrBackend) {
		t.Errorf("error: got %v, want ErrBackend", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error should carry status: %v", err)
	}
}
