// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/latex-ocr/internal/document"
	"github.com/pdiddy/latex-ocr/internal/pipeline"
	"github.com/pdiddy/latex-ocr/internal/typeset"
	"github.com/pdiddy/latex-ocr/pkg/types"
)

var renderFlagKeys = map[string]string{
	"output-dir": "output_dir",
	"template":   "document.template",
	"title":      "document.title",
	"author":     "document.author",
	"language":   "document.language",
	"engine":     "typeset.engine",
	"verify-pdf": "typeset.verify_pdf",
}

var renderCmd = &cobra.Command{
	Use:   "render <records.yaml>",
	Short: "Rebuild the LaTeX document from saved records",
	Long: `Render reads a records file written by "run --records" and writes the
document again without calling the recognition model. Use it to switch
templates or change the title block. Pass --pdf to compile the result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd, renderFlagKeys); err != nil {
			return err
		}
		records, err := document.LoadRecords(args[0])
		if err != nil {
			return err
		}

		cfg := runConfig()
		cfg.Document.Records = false
		cfg.OutputName, _ = cmd.Flags().GetString("output-name")
		if cfg.OutputName == "" {
			cfg.OutputName = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}

		res := types.RunResult{
			Formulas: records.Formulas,
			Compile:  types.CompileOutcome{State: types.CompileNotAttempted},
		}
		if err := pipeline.Assemble(&res, cfg, *records, log); err != nil {
			printSummary(cmd.OutOrStdout(), res, err)
			return err
		}

		res.Status = types.RunTexOnly
		if compile, _ := cmd.Flags().GetBool("pdf"); compile {
			err = pipeline.Compile(cmd.Context(), typeset.NewEngine(cfg.Typeset, log), &res, cfg.Typeset)
		}
		printSummary(cmd.OutOrStdout(), res, err)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", args[0], err)
		}
		return nil
	},
}

func init() {
	f := renderCmd.Flags()
	f.String("output-dir", ".", "directory for the generated files")
	f.String("output-name", "", "base name of the generated files (default: records file name)")
	f.String("template", "full", "document layout: full or simple")
	f.String("title", "", "document title (full template)")
	f.String("author", "", "document author (full template)")
	f.String("language", "", "babel language (full template)")
	f.Bool("pdf", false, "compile the document after writing it")
	f.String("engine", typeset.DefaultEngine, "typesetting engine: pdflatex, xelatex, or lualatex")
	f.Bool("verify-pdf", false, "read the produced PDF back and report its page count")

	rootCmd.AddCommand(renderCmd)
}
