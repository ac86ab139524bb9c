// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/latex-ocr/internal/pipeline"
	"github.com/pdiddy/latex-ocr/pkg/types"
)

func TestPrintSummary(t *testing.T) {
	tests := []struct {
		name    string
		res     types.RunResult
		err     error
		want    []string
		notWant []string
	}{
		{
			name: "compiled",
			res: types.RunResult{
				Status:   types.RunCompiled,
				Images:   2,
				Formulas: []types.Formula{{Stem: "a"}},
				Failures: []types.RecognitionFailure{{SourcePath: "files/b.png", Reason: "boom"}},
				TexPath:  "out/all_formulas.tex",
				PDFPath:  "out/all_formulas.pdf",
			},
			want: []string{"=== Done! ===", "- all_formulas.tex", "- all_formulas.pdf", "Recognized 1 of 2 images", "skipped files/b.png: boom"},
		},
		{
			name: "compiler unavailable is a success",
			res:  types.RunResult{Status: types.RunCompilerUnavailable, TexPath: "all_formulas.tex"},
			want: []string{"=== Done! ===", "Only the .tex file was created"},
		},
		{
			name:    "no images",
			res:     types.RunResult{Status: types.RunNoImages},
			err:     pipeline.ErrNoImages,
			want:    []string{"=== Process completed with errors ===", "discovery failed (no_images)"},
			notWant: []string{"Done!"},
		},
		{
			name: "compile failure shows engine output",
			res: types.RunResult{
				Status:  types.RunCompileFailed,
				Compile: types.CompileOutcome{Stdout: "! Undefined control sequence.", Stderr: "fatal"},
			},
			err:  errors.New("pass 1 failed"),
			want: []string{"compilation failed (compile_failed)", "Compilation error:", "! Undefined control sequence.", "fatal"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printSummary(&buf, tt.res, tt.err)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, buf.String(), w)
			}
		})
	}
}

func TestDefaultCachePath(t *testing.T) {
	assert.Contains(t, defaultCachePath(), "latex-ocr")
}
