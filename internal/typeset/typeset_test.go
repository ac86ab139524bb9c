// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package typeset

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/latex-ocr/pkg/types"
)

// fakeLaTeX simulates a pdflatex binary: each pass writes the PDF and the
// usual byproducts next to the document, and failOn makes a pass exit non-zero.
type fakeLaTeX struct {
	installed  bool
	versionErr error
	failOn     int
	calls      [][]string
	dirs       []string
	passes     int
}

func (f *fakeLaTeX) LookPath(file string) (string, error) {
	if f.installed {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

func (f *fakeLaTeX) Run(_ context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if len(args) == 1 && args[0] == versionFlag {
		return []byte("pdfTeX 3.141592653"), nil, f.versionErr
	}
	f.passes++
	f.dirs = append(f.dirs, dir)
	base := strings.TrimSuffix(args[len(args)-1], ".tex")
	for _, ext := range []string{".aux", ".log", ".out"} {
		_ = os.WriteFile(filepath.Join(dir, base+ext), []byte("x"), 0o644)
	}
	if f.passes == f.failOn {
		return []byte("! Undefined control sequence."), []byte("fatal"), errors.New("exit status 1")
	}
	_ = os.WriteFile(filepath.Join(dir, base+".pdf"), []byte("%PDF-1.5"), 0o644)
	return []byte("Output written on " + base + ".pdf"), nil, nil
}

func setupTex(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "all_formulas.tex")
	require.NoError(t, os.WriteFile(path, []byte(`\documentclass{article}`), 0o644))
	return path
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestCompile_Success(t *testing.T) {
	tex := setupTex(t)
	dir := filepath.Dir(tex)
	fake := &fakeLaTeX{installed: true}
	e := newEngine(types.TypesetConfig{}, zerolog.Nop(), fake)

	out, err := e.Compile(context.Background(), tex, 0)
	require.NoError(t, err)

	assert.Equal(t, types.CompileCleaned, out.State)
	assert.Equal(t, filepath.Join(dir, "all_formulas.pdf"), out.PDFPath)
	assert.True(t, exists(out.PDFPath))
	assert.Equal(t, 2, fake.passes, "default is two passes")
	for _, ext := range IntermediateExts {
		assert.False(t, exists(filepath.Join(dir, "all_formulas"+ext)), "%s should be removed", ext)
	}
	assert.Len(t, out.Removed, 3, ".toc never existed and is ignored")

	assert.Equal(t, []string{"pdflatex", "-interaction=nonstopmode", "all_formulas.tex"}, fake.calls[1])
	assert.Equal(t, []string{dir, dir}, fake.dirs, "passes run in the document directory")
	assert.Contains(t, out.Stdout, "Output written on")
}

func TestCompile_EngineMissing(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeLaTeX
	}{
		{name: "not on PATH", fake: &fakeLaTeX{}},
		{name: "version probe fails", fake: &fakeLaTeX{installed: true, versionErr: errors.New("exit status 127")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex := setupTex(t)
			var logBuf bytes.Buffer
			e := newEngine(types.TypesetConfig{}, zerolog.New(&logBuf), tt.fake)

			out, err := e.Compile(context.Background(), tex, 2)
			require.NoError(t, err, "a missing engine is a soft success")
			assert.Equal(t, types.CompileProbeFailed, out.State)
			assert.Empty(t, out.PDFPath)
			assert.Equal(t, 0, tt.fake.passes)
			assert.True(t, exists(tex))
			assert.False(t, exists(strings.TrimSuffix(tex, ".tex")+".pdf"))
			assert.Contains(t, logBuf.String(), "only the .tex file was created")
		})
	}
}

func TestCompile_PassFailure(t *testing.T) {
	tests := []struct {
		name      string
		failOn    int
		wantState types.CompileState
	}{
		{name: "first pass", failOn: 1, wantState: types.CompilePass1Failed},
		{name: "second pass", failOn: 2, wantState: types.CompilePass2Failed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex := setupTex(t)
			dir := filepath.Dir(tex)
			fake := &fakeLaTeX{installed: true, failOn: tt.failOn}
			e := newEngine(types.TypesetConfig{}, zerolog.Nop(), fake)

			out, err := e.Compile(context.Background(), tex, 2)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrPassFailed)

			var pe *PassError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.failOn, pe.Pass)
			assert.Contains(t, pe.Stdout, "Undefined control sequence")
			assert.Equal(t, "fatal", pe.Stderr)

			assert.Equal(t, tt.wantState, out.State)
			assert.Equal(t, tt.failOn, fake.passes, "no pass runs after a failure")
			assert.Empty(t, out.PDFPath)
			assert.Empty(t, out.Removed)
			for _, ext := range []string{".aux", ".log", ".out"} {
				assert.True(t, exists(filepath.Join(dir, "all_formulas"+ext)), "%s is kept for inspection", ext)
			}
		})
	}
}

func TestCompile_Verify(t *testing.T) {
	tex := setupTex(t)

	t.Run("page count reported", func(t *testing.T) {
		e := newEngine(types.TypesetConfig{VerifyPDF: true}, zerolog.Nop(), &fakeLaTeX{installed: true})
		e.pageCount = func(string) (int, error) { return 3, nil }

		out, err := e.Compile(context.Background(), tex, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, out.Pages)
	})

	t.Run("invalid pdf is logged, not fatal", func(t *testing.T) {
		var logBuf bytes.Buffer
		e := newEngine(types.TypesetConfig{VerifyPDF: true}, zerolog.New(&logBuf), &fakeLaTeX{installed: true})

		out, err := e.Compile(context.Background(), tex, 2)
		require.NoError(t, err)
		assert.Equal(t, types.CompileCleaned, out.State)
		assert.Equal(t, 0, out.Pages)
		assert.Contains(t, logBuf.String(), "PDF verification failed")
	})
}

func TestNewEngine_CustomBinary(t *testing.T) {
	fake := &fakeLaTeX{installed: true}
	e := newEngine(types.TypesetConfig{Engine: "xelatex"}, zerolog.Nop(), fake)
	assert.Equal(t, "xelatex", e.Name())
	assert.True(t, e.Available(context.Background()))
	assert.Equal(t, []string{"xelatex", "--version"}, fake.calls[0])
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	for _, ext := range []string{".aux", ".toc", ".pdf", ".tex"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "doc"+ext), nil, 0o644))
	}

	removed := Cleanup(dir, "doc")
	assert.ElementsMatch(t, []string{filepath.Join(dir, "doc.aux"), filepath.Join(dir, "doc.toc")}, removed)
	assert.True(t, exists(filepath.Join(dir, "doc.pdf")))
	assert.True(t, exists(filepath.Join(dir, "doc.tex")))
	assert.Empty(t, Cleanup(dir, "doc"), "second cleanup finds nothing")
}

func TestCompileState_Terminal(t *testing.T) {
	terminal := []types.CompileState{types.CompileProbeFailed, types.CompileCleaned, types.CompilePass1Failed, types.CompilePass2Failed}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), s)
	}
	for _, s := range []types.CompileState{types.CompileNotAttempted, types.CompileProbed, types.CompilePass1, types.CompilePass2} {
		assert.False(t, s.Terminal(), s)
	}
}
