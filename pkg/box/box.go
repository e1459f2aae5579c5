// Package box provides the storage gateway for the Box content API:
// JWT session establishment, folder listing, file transfer, and shared links.
package box

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/justinaw04/box-pdf-merger/pkg/formatting"
	"github.com/justinaw04/box-pdf-merger/pkg/lifecycle"
)

// File identifies a file in a Box folder. Produced by listing and upload,
// consumed by download and shared-link creation.
type File struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SharedLinkOptions carries the access settings for a shared-link request.
type SharedLinkOptions struct {
	Access      string
	CanDownload bool
	CanPreview  bool
}

// System manages Box storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that reports credential readiness.
	Start(lc *lifecycle.Coordinator) error
	// Configured reports whether JWT app credentials were loaded.
	Configured() bool
	// Authenticate derives a fresh authenticated session from the app credentials.
	Authenticate(ctx context.Context) (*Session, error)
	// ListPDFs lists the first page of a folder's children, filtered to PDF files.
	ListPDFs(ctx context.Context, s *Session, folderID string) ([]File, error)
	// Download fetches the full content of one file.
	Download(ctx context.Context, s *Session, fileID string) ([]byte, error)
	// Upload streams content into a folder under the given name.
	Upload(ctx context.Context, s *Session, folderID, name string, data []byte) (*File, error)
	// CreateSharedLink requests a shared URL for an existing file. Returns ""
	// without error when the backend responds without a link.
	CreateSharedLink(ctx context.Context, s *Session, fileID string, opts SharedLinkOptions) (string, error)
}

type client struct {
	cfg    *Config
	creds  *Credentials
	http   *http.Client
	logger *slog.Logger
}

// New creates a Box system from the given configuration. Missing credentials
// are tolerated; malformed credentials are not.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	creds, err := LoadCredentials(cfg)
	if err != nil && !errors.Is(err, ErrNotConfigured) {
		return nil, err
	}

	return &client{
		cfg:    cfg,
		creds:  creds,
		http:   &http.Client{},
		logger: logger.With("system", "box"),
	}, nil
}

func (c *client) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting box system")

	lc.OnStartup(func() {
		if c.creds == nil {
			c.logger.Warn("box credentials not configured; merge requests will fail fast")
			return
		}
		subType, _ := c.creds.Subject()
		c.logger.Info("box credentials loaded", "subject_type", subType)
	})

	return nil
}

func (c *client) Configured() bool {
	return c.creds != nil
}

type listResponse struct {
	Entries []struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"entries"`
	TotalCount int `json:"total_count"`
}

func (c *client) ListPDFs(ctx context.Context, s *Session, folderID string) ([]File, error) {
	endpoint := fmt.Sprintf(
		"%s/folders/%s/items?limit=%d&fields=type,name",
		c.cfg.APIURL, url.PathEscape(folderID), c.cfg.ListLimit,
	)

	body, err := c.get(ctx, s, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: list folder %s: %w", ErrBackend, folderID, err)
	}

	var listing listResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("%w: parse folder listing: %w", ErrBackend, err)
	}

	var files []File
	for _, entry := range listing.Entries {
		if entry.Type == "file" && strings.HasSuffix(strings.ToLower(entry.Name), ".pdf") {
			files = append(files, File{ID: entry.ID, Name: entry.Name})
		}
	}

	// Only the first listing page is fetched; folders beyond the page
	// limit are truncated, so surface the counts.
	c.logger.Info(
		"folder listed",
		"folder_id", folderID,
		"entries", len(listing.Entries),
		"total", listing.TotalCount,
		"pdfs", len(files),
	)

	return files, nil
}

func (c *client) Download(ctx context.Context, s *Session, fileID string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/files/%s/content", c.cfg.APIURL, url.PathEscape(fileID))

	body, err := c.get(ctx, s, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: download file %s: %w", ErrBackend, fileID, err)
	}

	c.logger.Debug("file downloaded", "file_id", fileID, "size", formatting.FormatBytes(int64(len(body)), 1))
	return body, nil
}

type uploadResponse struct {
	Entries []File `json:"entries"`
}

func (c *client) Upload(ctx context.Context, s *Session, folderID, name string, data []byte) (*File, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	attributes := fmt.Sprintf(`{"name":%q,"parent":{"id":%q}}`, name, folderID)
	if err := form.WriteField("attributes", attributes); err != nil {
		return nil, fmt.Errorf("%w: build upload form: %w", ErrBackend, err)
	}

	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("%w: build upload form: %w", ErrBackend, err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("%w: build upload form: %w", ErrBackend, err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("%w: build upload form: %w", ErrBackend, err)
	}

	endpoint := c.cfg.UploadURL + "/files/content"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("%w: build upload request: %w", ErrBackend, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.Token())
	req.Header.Set("Content-Type", form.FormDataContentType())

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: upload %s: %w", ErrBackend, name, err)
	}

	var uploaded uploadResponse
	if err := json.Unmarshal(body, &uploaded); err != nil {
		return nil, fmt.Errorf("%w: parse upload response: %w", ErrBackend, err)
	}
	if len(uploaded.Entries) == 0 {
		return nil, fmt.Errorf("%w: upload response contained no entries", ErrBackend)
	}

	file := uploaded.Entries[0]
	c.logger.Info(
		"file uploaded",
		"file_id", file.ID,
		"name", file.Name,
		"folder_id", folderID,
		"size", formatting.FormatBytes(int64(len(data)), 1),
	)
	return &file, nil
}

type sharedLinkRequest struct {
	SharedLink struct {
		Access      string `json:"access"`
		Permissions struct {
			CanDownload bool `json:"can_download"`
			CanPreview  bool `json:"can_preview"`
		} `json:"permissions"`
	} `json:"shared_link"`
}

type sharedLinkResponse struct {
	SharedLink *struct {
		URL string `json:"url"`
	} `json:"shared_link"`
}

func (c *client) CreateSharedLink(ctx context.Context, s *Session, fileID string, opts SharedLinkOptions) (string, error) {
	var payload sharedLinkRequest
	payload.SharedLink.Access = opts.Access
	payload.SharedLink.Permissions.CanDownload = opts.CanDownload
	payload.SharedLink.Permissions.CanPreview = opts.CanPreview

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: build shared link request: %w", ErrBackend, err)
	}

	endpoint := fmt.Sprintf("%s/files/%s?fields=shared_link", c.cfg.APIURL, url.PathEscape(fileID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: build shared link request: %w", ErrBackend, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.Token())
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("%w: create shared link for %s: %w", ErrBackend, fileID, err)
	}

	var link sharedLinkResponse
	if err := json.Unmarshal(body, &link); err != nil {
		return "", fmt.Errorf("%w: parse shared link response: %w", ErrBackend, err)
	}

	// A response without a link is a soft failure, not an error.
	if link.SharedLink == nil || link.SharedLink.URL == "" {
		c.logger.Warn("no shared link returned", "file_id", fileID)
		return "", nil
	}

	return link.SharedLink.URL, nil
}

func (c *client) get(ctx context.Context, s *Session, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.Token())
	return c.do(req)
}

func (c *client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
