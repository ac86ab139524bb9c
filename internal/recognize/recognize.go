// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recognize turns formula images into LaTeX through pluggable
// recognizer backends and runs the per-image recognition pass.
package recognize

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/latex-ocr/internal/container"
	"github.com/pdiddy/latex-ocr/pkg/types"
)

const (
	// DefaultImage is the container image used by the container backend.
	DefaultImage = "pix2tex:latest"
	// DefaultURL is where a locally started pix2tex API server listens.
	DefaultURL = "http://localhost:8502"
)

// ErrEmptyResult is returned when a backend produced no text for an image.
var ErrEmptyResult = errors.New("recognizer returned empty result")

// Recognizer transforms one image into a LaTeX fragment. Different backends
// (container, http, tesseract) implement this interface.
type Recognizer interface {
	// Name identifies the backend and its model, e.g. "container:pix2tex:latest".
	Name() string

	// Recognize returns the LaTeX source recognized in img.
	Recognize(ctx context.Context, img Image) (string, error)
}

// Option customizes how New constructs a backend.
type Option func(*options)

type options struct {
	runtime    container.Runtime
	httpClient *http.Client
}

// WithRuntime injects the container runtime instead of detecting one.
func WithRuntime(rt container.Runtime) Option {
	return func(o *options) { o.runtime = rt }
}

// WithHTTPClient sets the client used by the http backend.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// New loads the recognizer selected by cfg.Backend. Loading happens once per
// run; an error here means no image can be processed.
func New(ctx context.Context, cfg types.RecognizerConfig, opts ...Option) (Recognizer, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch cfg.Backend {
	case types.BackendContainer, "":
		rt := o.runtime
		if rt == nil {
			detected, err := container.DetectRuntime(ctx)
			if err != nil {
				return nil, err
			}
			rt = detected
		}
		image := cfg.Image
		if image == "" {
			image = DefaultImage
		}
		r, err := NewContainerRecognizer(ctx, rt, image)
		if err != nil {
			return nil, err
		}
		return r, nil

	case types.BackendHTTP:
		client := o.httpClient
		if client == nil {
			client = &http.Client{Timeout: cfg.Timeout}
		}
		r, err := NewHTTPRecognizer(ctx, client, cfg)
		if err != nil {
			return nil, err
		}
		return r, nil

	case types.BackendTesseract:
		r, err := NewTesseractRecognizer(cfg.Languages)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	return nil, fmt.Errorf("unsupported recognizer backend %q: use container, http, or tesseract", cfg.Backend)
}
