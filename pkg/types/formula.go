// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data model and configuration shared by the
// latex-ocr pipeline stages.
package types

// Formula is one successfully recognized image. Formulas are created once by
// the recognition pass and never modified afterwards.
type Formula struct {
	// SourcePath is the image path exactly as discovered (e.g. "files/eq01.png").
	SourcePath string `json:"source_path" yaml:"source_path"`

	// Stem is the filename without extension. It is used as the equation tag.
	Stem string `json:"stem" yaml:"stem"`

	// LaTeX is the recognized LaTeX fragment. It is trusted and never escaped.
	LaTeX string `json:"latex" yaml:"latex"`
}

// RecognitionFailure records an image that was skipped during the pass.
type RecognitionFailure struct {
	SourcePath string `json:"source_path" yaml:"source_path"`
	Reason     string `json:"reason" yaml:"reason"`
}

// RecordsFile is the on-disk sidecar written next to the generated document.
// It allows a document to be rendered again without re-running recognition.
type RecordsFile struct {
	// Backend names the recognizer that produced the formulas.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	Formulas []Formula `json:"formulas" yaml:"formulas"`
}
