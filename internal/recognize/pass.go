// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recognize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/latex-ocr/pkg/types"
)

// previewLen is how many characters of a recognized formula are logged.
const previewLen = 50

// Cache stores recognized LaTeX keyed by image content and backend.
type Cache interface {
	Lookup(ctx context.Context, key string) (latex string, ok bool, err error)
	Store(ctx context.Context, key, source, latex string) error
}

// PassOptions configures a recognition pass.
type PassOptions struct {
	Preprocess types.PreprocessConfig

	// Cache is consulted before the recognizer when non-nil.
	Cache Cache

	Logger zerolog.Logger
}

// Attempt is the result of recognizing one image: exactly one of Formula
// and Failure is set.
type Attempt struct {
	Formula *types.Formula
	Failure *types.RecognitionFailure
	Cached  bool
}

// Outcome folds the attempts of a pass into formulas and failures, both in
// discovery order.
type Outcome struct {
	Formulas  []types.Formula
	Failures  []types.RecognitionFailure
	CacheHits int

	// Err is set when the context was cancelled before all images were tried.
	Err error
}

// Pass recognizes each image in paths with r, in order. A failure on one
// image is logged and recorded; it never stops the pass.
func Pass(ctx context.Context, r Recognizer, paths []string, opts PassOptions) Outcome {
	out := Outcome{
		Formulas: []types.Formula{},
	}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			out.Err = err
			break
		}
		opts.Logger.Info().Str("image", p).Msg("processing")

		a := Try(ctx, r, p, opts)
		switch {
		case a.Formula != nil:
			out.Formulas = append(out.Formulas, *a.Formula)
			if a.Cached {
				out.CacheHits++
			}
		case a.Failure != nil:
			out.Failures = append(out.Failures, *a.Failure)
		}
	}
	return out
}

// Try loads and recognizes a single image. Errors and panics raised by the
// loader or the backend are converted into a Failure.
func Try(ctx context.Context, r Recognizer, path string, opts PassOptions) (a Attempt) {
	log := opts.Logger.With().Str("image", path).Logger()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("recognizer panicked")
			a = failed(path, fmt.Errorf("recognizer panicked: %v", rec))
		}
	}()

	img, err := Load(path, opts.Preprocess)
	if err != nil {
		log.Error().Err(err).Msg("error loading image")
		return failed(path, err)
	}

	key := CacheKey(img, r.Name(), opts.Preprocess)
	if opts.Cache != nil {
		latex, ok, err := opts.Cache.Lookup(ctx, key)
		if err != nil {
			log.Warn().Err(err).Msg("cache lookup failed")
		}
		if ok {
			log.Info().Str("latex", preview(latex)).Msg("recognized (cached)")
			return Attempt{Formula: formula(img, latex), Cached: true}
		}
	}

	latex, err := r.Recognize(ctx, img)
	if err != nil {
		log.Error().Err(err).Msg("error recognizing image")
		return failed(path, err)
	}
	latex = strings.TrimSpace(latex)
	if latex == "" {
		log.Error().Err(ErrEmptyResult).Msg("error recognizing image")
		return failed(path, ErrEmptyResult)
	}

	if opts.Cache != nil {
		if err := opts.Cache.Store(ctx, key, path, latex); err != nil {
			log.Warn().Err(err).Msg("cache store failed")
		}
	}

	log.Info().Str("latex", preview(latex)).Msg("recognized")
	return Attempt{Formula: formula(img, latex)}
}

// CacheKey identifies a recognition result: the same pixels recognized by the
// same backend with the same preprocessing always map to the same key.
func CacheKey(img Image, backend string, pre types.PreprocessConfig) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|gray=%t|w=%d|h=%d", img.Digest, backend, pre.Grayscale, pre.MaxWidth, pre.MaxHeight)
	return hex.EncodeToString(h.Sum(nil))
}

func formula(img Image, latex string) *types.Formula {
	return &types.Formula{SourcePath: img.Path, Stem: img.Stem, LaTeX: latex}
}

func failed(path string, err error) Attempt {
	return Attempt{Failure: &types.RecognitionFailure{SourcePath: path, Reason: err.Error()}}
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return string(r[:previewLen]) + "..."
}
