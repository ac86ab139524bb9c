// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/latex-ocr/internal/cache"
	"github.com/pdiddy/latex-ocr/internal/pipeline"
	"github.com/pdiddy/latex-ocr/internal/recognize"
	"github.com/pdiddy/latex-ocr/internal/typeset"
	"github.com/pdiddy/latex-ocr/pkg/types"
)

var runFlagKeys = map[string]string{
	"input":       "input_dir",
	"output-dir":  "output_dir",
	"output-name": "output_name",
	"template":    "document.template",
	"title":       "document.title",
	"author":      "document.author",
	"language":    "document.language",
	"records":     "document.records",
	"backend":     "recognizer.backend",
	"image":       "recognizer.image",
	"url":         "recognizer.url",
	"grayscale":   "recognizer.preprocess.grayscale",
	"max-width":   "recognizer.preprocess.max_width",
	"max-height":  "recognizer.preprocess.max_height",
	"engine":      "typeset.engine",
	"verify-pdf":  "typeset.verify_pdf",
	"cache":       "cache.path",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Recognize all PNG files in a folder and build the LaTeX document",
	Long: `Run scans the input folder for *.png files, recognizes each image, writes
<output-name>.tex with one numbered equation per recognized formula and
compiles it to PDF with two engine passes.

Images that fail recognition are skipped. If the typesetting engine is not
installed the .tex file is still produced and the run succeeds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd, runFlagKeys); err != nil {
			return err
		}
		cfg := runConfig()
		if noPDF, _ := cmd.Flags().GetBool("no-pdf"); noPDF {
			cfg.Typeset.Enabled = false
		}

		deps := pipeline.Deps{
			NewRecognizer: func(ctx context.Context, rc types.RecognizerConfig) (recognize.Recognizer, error) {
				return recognize.New(ctx, rc)
			},
			Typesetter: typeset.NewEngine(cfg.Typeset, log),
			Logger:     log,
		}
		if cfg.Cache.Path != "" {
			store, err := cache.Open(cfg.Cache.Path)
			if err != nil {
				return err
			}
			defer store.Close()
			deps.Cache = store
		}

		fmt.Fprintln(cmd.OutOrStdout(), "=== LaTeX OCR for all PNG files ===")
		res, err := pipeline.Run(cmd.Context(), deps, cfg)
		printSummary(cmd.OutOrStdout(), res, err)
		fmt.Fprintf(cmd.OutOrStdout(), "\nProcessed files in folder: %s\n", cfg.InputDir)
		return err
	},
}

// printSummary writes the human-facing result of a run to w.
func printSummary(w io.Writer, res types.RunResult, err error) {
	if err != nil || !res.Status.Succeeded() {
		fmt.Fprintln(w, "\n=== Process completed with errors ===")
		if err != nil {
			fmt.Fprintf(w, "%s failed (%s): %v\n", res.Status.Stage(), res.Status, err)
		}
		if res.Status == types.RunCompileFailed {
			printCompileOutput(w, res.Compile)
		}
		return
	}

	fmt.Fprintln(w, "\n=== Done! ===")
	fmt.Fprintln(w, "Results:")
	fmt.Fprintf(w, "- %s\n", filepath.Base(res.TexPath))
	if res.RecordsPath != "" {
		fmt.Fprintf(w, "- %s\n", filepath.Base(res.RecordsPath))
	}
	if res.PDFPath != "" {
		fmt.Fprintf(w, "- %s\n", filepath.Base(res.PDFPath))
	}
	if res.Status == types.RunCompilerUnavailable {
		fmt.Fprintln(w, "Warning: typesetting engine not found. Only the .tex file was created")
	}
	if res.Images > 0 {
		fmt.Fprintf(w, "Recognized %d of %d images\n", len(res.Formulas), res.Images)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(w, "  skipped %s: %s\n", f.SourcePath, f.Reason)
	}
}

func printCompileOutput(w io.Writer, out types.CompileOutcome) {
	fmt.Fprintln(w, "Compilation error:")
	if out.Stdout != "" {
		fmt.Fprintln(w, out.Stdout)
	}
	if out.Stderr != "" {
		fmt.Fprintln(w, out.Stderr)
	}
}

func init() {
	f := runCmd.Flags()
	f.String("input", "files", "folder scanned for *.png images")
	f.String("output-dir", ".", "directory for the generated files")
	f.String("output-name", "all_formulas", "base name of the generated files")
	f.String("template", "full", "document layout: full or simple")
	f.String("title", "", "document title (full template)")
	f.String("author", "", "document author (full template)")
	f.String("language", "", "babel language (full template)")
	f.Bool("records", false, "also write <output-name>.yaml with the recognized formulas")
	f.String("backend", "container", "recognition backend: container, http, or tesseract")
	f.String("image", recognize.DefaultImage, "container image for the container backend")
	f.String("url", recognize.DefaultURL, "server URL for the http backend")
	f.Bool("grayscale", false, "convert images to grayscale before recognition")
	f.Int("max-width", 0, "downscale images wider than this (0 disables)")
	f.Int("max-height", 0, "downscale images taller than this (0 disables)")
	f.String("engine", typeset.DefaultEngine, "typesetting engine: pdflatex, xelatex, or lualatex")
	f.Bool("no-pdf", false, "write the .tex file only")
	f.Bool("verify-pdf", false, "read the produced PDF back and report its page count")
	f.String("cache", "", "recognition cache database (empty disables)")
	f.Lookup("cache").NoOptDefVal = defaultCachePath()

	rootCmd.AddCommand(runCmd)
}
