// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build tesseract

package recognize

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer runs plain-text OCR through libtesseract. It does not
// understand formula layout and is meant as a fallback when no LaTeX model
// is installed. One client is held for the whole run.
type TesseractRecognizer struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseractRecognizer creates a client configured for langs (default "eng").
func NewTesseractRecognizer(langs []string) (*TesseractRecognizer, error) {
	if len(langs) == 0 {
		langs = []string{"eng"}
	}
	c := gosseract.NewClient()
	if err := c.SetLanguage(langs...); err != nil {
		c.Close()
		return nil, fmt.Errorf("configuring tesseract languages %v: %w", langs, err)
	}
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		c.Close()
		return nil, fmt.Errorf("configuring tesseract: %w", err)
	}
	return &TesseractRecognizer{client: c}, nil
}

func (t *TesseractRecognizer) Name() string { return "tesseract" }

// Recognize returns the text tesseract reads in img.
func (t *TesseractRecognizer) Recognize(ctx context.Context, img Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImageFromBytes(img.PNG); err != nil {
		return "", fmt.Errorf("set image %s: %w", img.Path, err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text %s: %w", img.Path, err)
	}
	return text, nil
}

// Close releases the tesseract client.
func (t *TesseractRecognizer) Close() error {
	return t.client.Close()
}
