// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recognize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pdiddy/latex-ocr/internal/httputil"
	"github.com/pdiddy/latex-ocr/pkg/types"
)

const (
	predictPath = "/predict/"
	formField   = "file"
	// maxErrorBody bounds how much of an error response is quoted.
	maxErrorBody = 512
)

// HTTPRecognizer sends images to a pix2tex-compatible API server. The server
// accepts a multipart upload in field "file" at /predict/ and answers with
// the LaTeX as a JSON string.
type HTTPRecognizer struct {
	client     *http.Client
	baseURL    string
	token      string
	userAgent  string
	maxRetries int
}

// NewHTTPRecognizer creates a recognizer for the server at cfg.URL. It probes
// the server root and fails when the server does not answer.
func NewHTTPRecognizer(ctx context.Context, client *http.Client, cfg types.RecognizerConfig) (*HTTPRecognizer, error) {
	base := strings.TrimRight(cfg.URL, "/")
	if base == "" {
		base = DefaultURL
	}
	h := &HTTPRecognizer{
		client:     client,
		baseURL:    base,
		token:      cfg.APIToken,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
	}
	if err := h.probe(ctx); err != nil {
		return nil, fmt.Errorf("recognition server %s not reachable: %w", base, err)
	}
	return h, nil
}

func (h *HTTPRecognizer) Name() string { return "http:" + h.baseURL }

func (h *HTTPRecognizer) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/", nil)
	if err != nil {
		return err
	}
	h.decorate(req)
	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("health check returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// Recognize uploads the image and decodes the server's LaTeX answer.
func (h *HTTPRecognizer) Recognize(ctx context.Context, img Image) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(formField, filepath.Base(img.Path))
	if err != nil {
		return "", fmt.Errorf("building upload for %s: %w", img.Path, err)
	}
	if _, err := part.Write(img.PNG); err != nil {
		return "", fmt.Errorf("building upload for %s: %w", img.Path, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("building upload for %s: %w", img.Path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+predictPath, bytes.NewReader(body.Bytes()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	h.decorate(req)

	resp, err := httputil.DoWithRetry(ctx, h.client, req, h.maxRetries)
	if err != nil {
		return "", fmt.Errorf("posting %s: %w", img.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("recognition server returned HTTP %d for %s: %s",
			resp.StatusCode, img.Path, strings.TrimSpace(string(msg)))
	}

	var latex string
	if err := json.NewDecoder(resp.Body).Decode(&latex); err != nil {
		return "", fmt.Errorf("decoding response for %s: %w", img.Path, err)
	}
	return latex, nil
}

func (h *HTTPRecognizer) decorate(req *http.Request) {
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
}
