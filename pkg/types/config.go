// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by backends that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "latex-ocr/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// RecognizerBackend identifies the image-to-LaTeX engine.
type RecognizerBackend string

const (
	BackendContainer RecognizerBackend = "container"
	BackendHTTP      RecognizerBackend = "http"
	BackendTesseract RecognizerBackend = "tesseract"
)

// PreprocessConfig controls image preparation before recognition.
type PreprocessConfig struct {
	// Grayscale converts images to grayscale before recognition.
	Grayscale bool `json:"grayscale" yaml:"grayscale"`

	// MaxWidth and MaxHeight downscale larger images, preserving the aspect
	// ratio. Zero disables the bound.
	MaxWidth  int `json:"max_width" yaml:"max_width"`
	MaxHeight int `json:"max_height" yaml:"max_height"`
}

// Enabled reports whether any preprocessing step is configured.
func (p PreprocessConfig) Enabled() bool {
	return p.Grayscale || p.MaxWidth > 0 || p.MaxHeight > 0
}

// RecognizerConfig holds settings for the recognition stage.
type RecognizerConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backend selects the recognizer: container, http, or tesseract.
	Backend RecognizerBackend `json:"backend" yaml:"backend"`

	// Image is the container image for the container backend
	// (default "pix2tex:latest"). The image reads a PNG on stdin and writes
	// LaTeX to stdout.
	Image string `json:"image" yaml:"image"`

	// URL is the base URL of the recognition server for the http backend
	// (e.g. "http://localhost:8502").
	URL string `json:"url" yaml:"url"`

	// APIToken is an optional bearer token for the http backend.
	APIToken string `json:"api_token,omitempty" yaml:"api_token,omitempty"`

	// Languages are tesseract language hints (default "eng").
	Languages []string `json:"languages,omitempty" yaml:"languages,omitempty"`

	Preprocess PreprocessConfig `json:"preprocess" yaml:"preprocess"`
}

// TemplateName selects the document layout.
type TemplateName string

const (
	TemplateFull   TemplateName = "full"
	TemplateSimple TemplateName = "simple"
)

// DocumentConfig holds settings for document assembly.
type DocumentConfig struct {
	// Template selects the layout: full or simple.
	Template TemplateName `json:"template" yaml:"template"`

	// Title and Author fill the title block of the full template.
	Title  string `json:"title" yaml:"title"`
	Author string `json:"author" yaml:"author"`

	// Language is the babel language of the full template (default "russian").
	Language string `json:"language" yaml:"language"`

	// Records writes a YAML sidecar of the recognized formulas next to the document.
	Records bool `json:"records" yaml:"records"`
}

// TypesetConfig holds settings for the compilation stage.
type TypesetConfig struct {
	// Enabled runs the typesetting engine after the document is written.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Engine is the typesetting binary: pdflatex, xelatex, or lualatex.
	Engine string `json:"engine" yaml:"engine"`

	// Passes is the number of engine invocations (default 2).
	Passes int `json:"passes" yaml:"passes"`

	// VerifyPDF reads the produced PDF back and reports its page count.
	VerifyPDF bool `json:"verify_pdf" yaml:"verify_pdf"`
}

// CacheConfig holds settings for the recognition cache.
type CacheConfig struct {
	// Path is the SQLite database file. Empty disables the cache.
	Path string `json:"path" yaml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	JSON  bool   `json:"json" yaml:"json"`

	// File enables an additional rotating log file.
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
}

// RunConfig groups all stage configurations for one pipeline run.
type RunConfig struct {
	// InputDir is the directory scanned for *.png images (default "files").
	InputDir string `json:"input_dir" yaml:"input_dir"`

	// OutputDir is where the document and its byproducts are written (default ".").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// OutputName is the base name of the generated files (default "all_formulas").
	OutputName string `json:"output_name" yaml:"output_name"`

	Recognizer RecognizerConfig `json:"recognizer" yaml:"recognizer"`
	Document   DocumentConfig   `json:"document" yaml:"document"`
	Typeset    TypesetConfig    `json:"typeset" yaml:"typeset"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`
}
