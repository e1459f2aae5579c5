// Package pdfco provides the conversion gateway for the PDF.co API:
// file staging, asynchronous merge jobs, status polling, and result fetch.
package pdfco

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/justinaw04/box-pdf-merger/pkg/formatting"
	"github.com/justinaw04/box-pdf-merger/pkg/lifecycle"
)

// Status is a merge job state reported by the job check endpoint.
type Status string

// Job states. A job transitions monotonically from working to exactly one
// of the terminal states.
const (
	StatusWorking Status = "working"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusAborted Status = "aborted"
)

// Terminal reports whether the status ends the polling loop.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusAborted
}

// Job identifies a submitted merge job and the URL its result will appear at.
type Job struct {
	ID        string
	ResultURL string
}

// System manages conversion-service operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that reports API key readiness.
	Start(lc *lifecycle.Coordinator) error
	// Configured reports whether an API key was provided.
	Configured() bool
	// Stage uploads file bytes to the service's temporary storage and
	// returns the staged resource URL.
	Stage(ctx context.Context, name string, data []byte) (string, error)
	// SubmitMerge submits an asynchronous merge of the staged URLs.
	SubmitMerge(ctx context.Context, urls []string, outputName string) (*Job, error)
	// CheckJob performs a single status check without waiting.
	CheckJob(ctx context.Context, jobID string) (Status, error)
	// FetchResult downloads the merged result, following redirects.
	FetchResult(ctx context.Context, resultURL string) ([]byte, error)
}

type client struct {
	cfg    *Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a PDF.co system from the given configuration.
func New(cfg *Config, logger *slog.Logger) System {
	return &client{
		cfg:    cfg,
		http:   &http.Client{},
		logger: logger.With("system", "pdfco"),
	}
}

func (c *client) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting pdfco system")

	lc.OnStartup(func() {
		if !c.Configured() {
			c.logger.Warn("pdf.co api key not configured; merge requests will fail fast")
			return
		}
		c.logger.Info("pdf.co api key loaded")
	})

	return nil
}

func (c *client) Configured() bool {
	return c.cfg.APIKey != ""
}

type presignResponse struct {
	Error        bool   `json:"error"`
	Message      string `json:"message"`
	PresignedURL string `json:"presignedUrl"`
	URL          string `json:"url"`
}

func (c *client) Stage(ctx context.Context, name string, data []byte) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	endpoint := fmt.Sprintf(
		"%s/file/upload/get-presigned-url?name=%s",
		c.cfg.BaseURL, url.QueryEscape(name),
	)

	var presign presignResponse
	if err := c.getJSON(ctx, endpoint, &presign); err != nil {
		return "", fmt.Errorf("%w: presign %s: %w", ErrService, name, err)
	}
	if presign.Error {
		return "", fmt.Errorf("%w: presign %s: %s", ErrService, name, presign.Message)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presign.PresignedURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: build staging upload: %w", ErrService, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	if _, err := c.do(req); err != nil {
		return "", fmt.Errorf("%w: stage %s: %w", ErrService, name, err)
	}

	c.logger.Info("file staged", "name", name, "size", formatting.FormatBytes(int64(len(data)), 1))
	return presign.URL, nil
}

type mergeRequest struct {
	URL        string `json:"url"`
	Name       string `json:"name"`
	Async      bool   `json:"async"`
	Expiration int    `json:"expiration"`
}

type mergeResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	JobID   string `json:"jobId"`
	URL     string `json:"url"`
}

func (c *client) SubmitMerge(ctx context.Context, urls []string, outputName string) (*Job, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(mergeRequest{
		URL:        strings.Join(urls, ","),
		Name:       outputName,
		Async:      true,
		Expiration: c.cfg.Expiration,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: build merge request: %w", ErrService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/pdf/merge", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build merge request: %w", ErrService, err)
	}
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: submit merge: %w", ErrService, err)
	}

	var merge mergeResponse
	if err := json.Unmarshal(body, &merge); err != nil {
		return nil, fmt.Errorf("%w: parse merge response: %w", ErrService, err)
	}
	if merge.Error {
		return nil, fmt.Errorf("%w: submit merge: %s", ErrService, merge.Message)
	}

	c.logger.Info("merge job submitted", "job_id", merge.JobID, "sources", len(urls))
	return &Job{ID: merge.JobID, ResultURL: merge.URL}, nil
}

type jobResponse struct {
	Status Status `json:"status"`
}

func (c *client) CheckJob(ctx context.Context, jobID string) (Status, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/job/check?jobid=%s", c.cfg.BaseURL, url.QueryEscape(jobID))

	var job jobResponse
	if err := c.getJSON(ctx, endpoint, &job); err != nil {
		return "", fmt.Errorf("%w: check job %s: %w", ErrService, jobID, err)
	}
	return job.Status, nil
}

func (c *client) FetchResult(ctx context.Context, resultURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build result request: %w", ErrService, err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch result: %w", ErrService, err)
	}

	c.logger.Debug("result fetched", "size", formatting.FormatBytes(int64(len(body)), 1))
	return body, nil
}

func (c *client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-api-key", c.cfg.APIKey)

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
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
