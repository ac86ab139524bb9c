// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/latex-ocr/internal/pipeline"
	"github.com/pdiddy/latex-ocr/internal/typeset"
	"github.com/pdiddy/latex-ocr/pkg/types"
)

var compileFlagKeys = map[string]string{
	"engine":     "typeset.engine",
	"passes":     "typeset.passes",
	"verify-pdf": "typeset.verify_pdf",
}

var compileCmd = &cobra.Command{
	Use:   "compile <file.tex>",
	Short: "Compile an existing LaTeX document to PDF",
	Long: `Compile runs the typesetting engine on a document in its own directory,
twice by default so cross references and equation numbers resolve, then
removes the .aux, .log, .out and .toc byproducts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd, compileFlagKeys); err != nil {
			return err
		}
		cfg := typesetConfig()
		res := types.RunResult{TexPath: args[0]}
		err := pipeline.Compile(cmd.Context(), typeset.NewEngine(cfg, log), &res, cfg)
		printSummary(cmd.OutOrStdout(), res, err)
		return err
	},
}

func init() {
	f := compileCmd.Flags()
	f.String("engine", typeset.DefaultEngine, "typesetting engine: pdflatex, xelatex, or lualatex")
	f.Int("passes", typeset.DefaultPasses, "number of engine passes")
	f.Bool("verify-pdf", false, "read the produced PDF back and report its page count")

	rootCmd.AddCommand(compileCmd)
}
