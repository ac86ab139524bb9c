// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one batch: discover images, recognize them, assemble
// the document and compile it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/latex-ocr/internal/discover"
	"github.com/pdiddy/latex-ocr/internal/document"
	"github.com/pdiddy/latex-ocr/internal/recognize"
	"github.com/pdiddy/latex-ocr/internal/typeset"
	"github.com/pdiddy/latex-ocr/pkg/types"
)

// Defaults for the run parameters.
const (
	DefaultInputDir   = "files"
	DefaultOutputDir  = "."
	DefaultOutputName = "all_formulas"
)

var (
	// ErrNoImages means the input directory holds no *.png file.
	ErrNoImages = errors.New("no PNG files found")
	// ErrModelLoad wraps the failure to construct the recognizer.
	ErrModelLoad = errors.New("loading recognition model")
	// ErrNoFormulas means no image was recognized successfully.
	ErrNoFormulas = errors.New("no formulas were recognized successfully")
)

// RecognizerFactory loads the recognition model.
type RecognizerFactory func(ctx context.Context, cfg types.RecognizerConfig) (recognize.Recognizer, error)

// Deps are the collaborators of a run. Tests replace them with fakes.
type Deps struct {
	NewRecognizer RecognizerFactory
	Typesetter    typeset.Typesetter

	// Cache is optional.
	Cache recognize.Cache

	Logger zerolog.Logger
}

// Run executes the pipeline described by cfg. The returned result is always
// populated with the status of the stage that ended the run; the error is
// non-nil for every status that does not count as success.
func Run(ctx context.Context, deps Deps, cfg types.RunConfig) (types.RunResult, error) {
	cfg = withDefaults(cfg)
	res := types.RunResult{
		ID:       uuid.NewString(),
		Formulas: []types.Formula{},
		Compile:  types.CompileOutcome{State: types.CompileNotAttempted},
	}
	log := deps.Logger.With().Str("run_id", res.ID).Logger()
	ctx = log.WithContext(ctx)

	abs, _ := filepath.Abs(cfg.InputDir)
	log.Info().Str("dir", abs).Msg("searching for PNG files")

	paths, err := discover.Images(cfg.InputDir)
	if err != nil {
		res.Status = types.RunNoImages
		return res, err
	}
	res.Images = len(paths)
	if len(paths) == 0 {
		res.Status = types.RunNoImages
		log.Warn().Str("dir", cfg.InputDir).Msg("no PNG files found in the folder")
		return res, ErrNoImages
	}
	log.Info().Int("count", len(paths)).Msg("found PNG files")

	log.Info().Str("backend", string(cfg.Recognizer.Backend)).Msg("loading OCR model")
	rec, err := deps.NewRecognizer(ctx, cfg.Recognizer)
	if err != nil {
		res.Status = types.RunModelLoadFailed
		log.Error().Err(err).Msg("model load failed")
		return res, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	if c, ok := rec.(io.Closer); ok {
		defer c.Close()
	}

	outcome := recognize.Pass(ctx, rec, paths, recognize.PassOptions{
		Preprocess: cfg.Recognizer.Preprocess,
		Cache:      deps.Cache,
		Logger:     log,
	})
	res.Formulas = outcome.Formulas
	res.Failures = outcome.Failures
	if outcome.Err != nil {
		res.Status = types.RunNoFormulas
		return res, fmt.Errorf("recognition interrupted: %w", outcome.Err)
	}
	log.Info().
		Int("recognized", len(outcome.Formulas)).
		Int("failed", len(outcome.Failures)).
		Int("cache_hits", outcome.CacheHits).
		Msg("recognition finished")
	if len(res.Formulas) == 0 {
		res.Status = types.RunNoFormulas
		log.Error().Msg("no formulas were recognized successfully")
		return res, ErrNoFormulas
	}

	records := types.RecordsFile{Backend: rec.Name(), Formulas: res.Formulas}
	if err := Assemble(&res, cfg, records, log); err != nil {
		return res, err
	}

	if !cfg.Typeset.Enabled {
		res.Status = types.RunTexOnly
		return res, nil
	}
	return res, Compile(ctx, deps.Typesetter, &res, cfg.Typeset)
}

// Assemble renders the document for records and writes it, plus the records
// sidecar when enabled, under cfg.OutputDir.
func Assemble(res *types.RunResult, cfg types.RunConfig, records types.RecordsFile, log zerolog.Logger) error {
	cfg = withDefaults(cfg)
	content, err := document.Render(cfg.Document.Template, records.Formulas, document.Options{
		Title:    cfg.Document.Title,
		Author:   cfg.Document.Author,
		Language: cfg.Document.Language,
	})
	if err != nil {
		res.Status = types.RunWriteFailed
		return err
	}

	texPath := filepath.Join(cfg.OutputDir, cfg.OutputName+".tex")
	if err := document.Write(texPath, content); err != nil {
		res.Status = types.RunWriteFailed
		return err
	}
	res.TexPath = texPath
	log.Info().Str("tex", texPath).Str("template", string(cfg.Document.Template)).Msg("LaTeX code saved")

	if cfg.Document.Records {
		recPath := filepath.Join(cfg.OutputDir, cfg.OutputName+".yaml")
		if err := document.SaveRecords(recPath, records); err != nil {
			res.Status = types.RunWriteFailed
			return err
		}
		res.RecordsPath = recPath
		log.Info().Str("records", recPath).Msg("records saved")
	}
	return nil
}

// Compile drives ts on res.TexPath and sets the run status from the outcome.
func Compile(ctx context.Context, ts typeset.Typesetter, res *types.RunResult, cfg types.TypesetConfig) error {
	outcome, err := ts.Compile(ctx, res.TexPath, cfg.Passes)
	res.Compile = outcome
	switch {
	case err != nil:
		res.Status = types.RunCompileFailed
		return fmt.Errorf("compiling %s: %w", res.TexPath, err)
	case outcome.State == types.CompileProbeFailed:
		res.Status = types.RunCompilerUnavailable
	default:
		res.Status = types.RunCompiled
		res.PDFPath = outcome.PDFPath
	}
	return nil
}

func withDefaults(cfg types.RunConfig) types.RunConfig {
	if cfg.InputDir == "" {
		cfg.InputDir = DefaultInputDir
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.OutputName == "" {
		cfg.OutputName = DefaultOutputName
	}
	if cfg.Document.Template == "" {
		cfg.Document.Template = types.TemplateFull
	}
	return cfg
}
