// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !tesseract

package recognize

import (
	"context"
	"errors"
)

// ErrTesseractNotEnabled is returned when the tesseract backend is selected
// in a binary built without it. Rebuild with -tags tesseract (requires
// libtesseract and its headers).
var ErrTesseractNotEnabled = errors.New("tesseract backend not enabled; rebuild with -tags tesseract")

// TesseractRecognizer is unavailable in this build.
type TesseractRecognizer struct{}

// NewTesseractRecognizer always fails in this build.
func NewTesseractRecognizer(langs []string) (*TesseractRecognizer, error) {
	return nil, ErrTesseractNotEnabled
}

func (t *TesseractRecognizer) Name() string { return "tesseract" }

func (t *TesseractRecognizer) Recognize(context.Context, Image) (string, error) {
	return "", ErrTesseractNotEnabled
}

func (t *TesseractRecognizer) Close() error { return nil }
