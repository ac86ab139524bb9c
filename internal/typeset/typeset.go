// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package typeset drives an external LaTeX engine to turn the assembled
// document into a PDF.
//
// The engine is probed with --version first. A missing engine is not an
// error: the outcome ends in probe_failed and the .tex file remains the
// deliverable. Otherwise the engine runs the configured number of passes in
// non-interactive mode from the document's directory, and the intermediate
// .aux, .log, .out and .toc files are removed once every pass succeeded.
// Subprocesses have no timeout.
package typeset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog"

	"github.com/pdiddy/latex-ocr/pkg/types"
)

const (
	// DefaultEngine is the typesetting binary used when none is configured.
	DefaultEngine = "pdflatex"
	// DefaultPasses resolves numbered and tagged references.
	DefaultPasses = 2

	interactionFlag = "-interaction=nonstopmode"
	versionFlag     = "--version"
)

// IntermediateExts are the byproducts removed after a successful compile.
var IntermediateExts = []string{".aux", ".log", ".out", ".toc"}

// ErrPassFailed matches any *PassError with errors.Is.
var ErrPassFailed = errors.New("typesetting pass failed")

// PassError reports a pass that exited non-zero. Stdout and Stderr hold the
// engine's captured streams for diagnosis.
type PassError struct {
	Engine string
	Pass   int
	Err    error
	Stdout string
	Stderr string
}

func (e *PassError) Error() string {
	return fmt.Sprintf("%s pass %d failed: %v", e.Engine, e.Pass, e.Err)
}

func (e *PassError) Unwrap() error { return e.Err }

func (e *PassError) Is(target error) bool { return target == ErrPassFailed }

// Typesetter compiles a LaTeX document into a binary artifact.
type Typesetter interface {
	// Available reports whether the engine is installed and answers a probe.
	Available(ctx context.Context) bool

	// Compile runs the engine passes times on texPath. A nil error with
	// State probe_failed means the engine is missing (soft success).
	Compile(ctx context.Context, texPath string, passes int) (types.CompileOutcome, error)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Engine implements Typesetter for a pdflatex-compatible binary.
type Engine struct {
	bin       string
	verify    bool
	exec      executor
	pageCount func(path string) (int, error)
	log       zerolog.Logger
}

// NewEngine returns an engine for cfg.Engine (default pdflatex).
func NewEngine(cfg types.TypesetConfig, log zerolog.Logger) *Engine {
	return newEngine(cfg, log, &osExecutor{})
}

func newEngine(cfg types.TypesetConfig, log zerolog.Logger, exec executor) *Engine {
	bin := cfg.Engine
	if bin == "" {
		bin = DefaultEngine
	}
	return &Engine{
		bin:       bin,
		verify:    cfg.VerifyPDF,
		exec:      exec,
		pageCount: api.PageCountFile,
		log:       log.With().Str("engine", bin).Logger(),
	}
}

// Name returns the engine binary name.
func (e *Engine) Name() string { return e.bin }

func (e *Engine) Available(ctx context.Context) bool {
	if _, err := e.exec.LookPath(e.bin); err != nil {
		return false
	}
	_, _, err := e.exec.Run(ctx, "", e.bin, versionFlag)
	return err == nil
}

func (e *Engine) Compile(ctx context.Context, texPath string, passes int) (types.CompileOutcome, error) {
	out := types.CompileOutcome{State: types.CompileNotAttempted}
	if passes <= 0 {
		passes = DefaultPasses
	}

	if !e.Available(ctx) {
		out.State = types.CompileProbeFailed
		e.log.Warn().Msgf("%s not found, only the .tex file was created", e.bin)
		return out, nil
	}
	out.State = types.CompileProbed

	dir := filepath.Dir(texPath)
	file := filepath.Base(texPath)
	base := strings.TrimSuffix(file, filepath.Ext(file))

	e.log.Info().Str("document", texPath).Int("passes", passes).Msg("compiling to PDF")
	for pass := 1; pass <= passes; pass++ {
		stdout, stderr, err := e.exec.Run(ctx, dir, e.bin, interactionFlag, file)
		out.Stdout, out.Stderr = string(stdout), string(stderr)
		if err != nil {
			out.State = failedState(pass)
			e.log.Error().Err(err).Int("pass", pass).Msg("compilation error")
			return out, &PassError{
				Engine: e.bin,
				Pass:   pass,
				Err:    err,
				Stdout: out.Stdout,
				Stderr: out.Stderr,
			}
		}
		out.State = passState(pass)
	}

	out.PDFPath = filepath.Join(dir, base+".pdf")
	out.Removed = Cleanup(dir, base)
	out.State = types.CompileCleaned
	e.log.Info().Str("pdf", out.PDFPath).Strs("removed", out.Removed).Msg("compiled")

	if e.verify {
		pages, err := e.pageCount(out.PDFPath)
		if err != nil {
			e.log.Warn().Err(err).Str("pdf", out.PDFPath).Msg("PDF verification failed")
		} else {
			out.Pages = pages
		}
	}
	return out, nil
}

// Cleanup removes the intermediate files of base in dir and returns the
// paths it deleted. Missing files are ignored.
func Cleanup(dir, base string) []string {
	var removed []string
	for _, ext := range IntermediateExts {
		p := filepath.Join(dir, base+ext)
		if err := os.Remove(p); err == nil {
			removed = append(removed, p)
		}
	}
	return removed
}

func passState(pass int) types.CompileState {
	if pass == 1 {
		return types.CompilePass1
	}
	return types.CompilePass2
}

func failedState(pass int) types.CompileState {
	if pass == 1 {
		return types.CompilePass1Failed
	}
	return types.CompilePass2Failed
}
