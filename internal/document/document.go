// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document renders recognized formulas into a LaTeX document.
// Rendering is a pure function of the formulas and the options: the same
// input always yields byte-identical output.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/latex-ocr/pkg/types"
)

// Defaults for the title block and babel language of the full template.
const (
	DefaultTitle    = "Recognized Formulas"
	DefaultAuthor   = "LaTeX OCR"
	DefaultLanguage = "russian"
)

// Options configures the full template. Zero fields take the defaults.
type Options struct {
	Title    string
	Author   string
	Language string
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Author == "" {
		o.Author = DefaultAuthor
	}
	if o.Language == "" {
		o.Language = DefaultLanguage
	}
	return o
}

// Full renders the complete document: package preamble, title block, one
// numbered subsection per formula with its source path, tagged equation and
// a rule separator. Numbering is 1-based and contiguous.
func Full(formulas []types.Formula, opts Options) string {
	opts = opts.withDefaults()

	var b strings.Builder
	b.WriteString("\\documentclass{article}\n")
	b.WriteString("\\usepackage{amsmath}\n")
	b.WriteString("\\usepackage{amssymb}\n")
	b.WriteString("\\usepackage{amsfonts}\n")
	b.WriteString("\\usepackage[utf8]{inputenc}\n")
	fmt.Fprintf(&b, "\\usepackage[%s]{babel}\n", opts.Language)
	b.WriteString("\\usepackage{geometry}\n")
	b.WriteString("\\geometry{a4paper, margin=2cm}\n\n")

	fmt.Fprintf(&b, "\\title{%s}\n", opts.Title)
	fmt.Fprintf(&b, "\\author{%s}\n", opts.Author)
	b.WriteString("\\date{\\today}\n\n")
	b.WriteString("\\begin{document}\n\n")
	b.WriteString("\\maketitle\n\n")
	b.WriteString("\\section{Formulas}\n\n")

	for i, f := range formulas {
		fmt.Fprintf(&b, "\\subsection{Formula %d: %s}\n\n", i+1, f.Stem)
		fmt.Fprintf(&b, "Source: \\texttt{%s}\n\n", f.SourcePath)
		writeEquation(&b, f)
		b.WriteString("\\hrule\n\n")
	}

	b.WriteString("\\end{document}")
	return b.String()
}

// Simple renders the lean variant: minimal preamble, a comment naming each
// source file and the tagged equation. No title block, no separators.
func Simple(formulas []types.Formula) string {
	var b strings.Builder
	b.WriteString("\\documentclass{article}\n")
	b.WriteString("\\usepackage{amsmath}\n")
	b.WriteString("\\usepackage{amssymb}\n\n")
	b.WriteString("\\begin{document}\n\n")

	for _, f := range formulas {
		fmt.Fprintf(&b, "%% From file: %s\n", f.SourcePath)
		writeEquation(&b, f)
	}

	b.WriteString("\\end{document}")
	return b.String()
}

func writeEquation(b *strings.Builder, f types.Formula) {
	b.WriteString("\\begin{equation}\n")
	fmt.Fprintf(b, "\\tag{%s}\n", f.Stem)
	b.WriteString(f.LaTeX)
	b.WriteString("\n\\end{equation}\n\n")
}

// Render dispatches to the template named by tmpl. An empty name selects
// the full template.
func Render(tmpl types.TemplateName, formulas []types.Formula, opts Options) (string, error) {
	switch tmpl {
	case types.TemplateFull, "":
		return Full(formulas, opts), nil
	case types.TemplateSimple:
		return Simple(formulas), nil
	}
	return "", fmt.Errorf("unknown template %q: use full or simple", tmpl)
}

// Write stores content at path, creating the parent directory if needed.
func Write(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
