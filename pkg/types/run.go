// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RunStatus identifies how a pipeline run ended and which stage decided it.
type RunStatus string

const (
	// RunNoImages means discovery found no matching images. No document is written.
	RunNoImages RunStatus = "no_images"
	// RunModelLoadFailed means the recognizer could not be constructed.
	RunModelLoadFailed RunStatus = "model_load_failed"
	// RunNoFormulas means every image failed recognition. No document is written.
	RunNoFormulas RunStatus = "no_formulas"
	// RunWriteFailed means the document or records sidecar could not be written.
	RunWriteFailed RunStatus = "write_failed"
	// RunTexOnly means the document was written and compilation was not requested.
	RunTexOnly RunStatus = "tex_only"
	// RunCompilerUnavailable means the document was written but the
	// typesetting engine is not installed. This is a soft success.
	RunCompilerUnavailable RunStatus = "compiler_unavailable"
	// RunCompileFailed means a compiler pass exited non-zero.
	RunCompileFailed RunStatus = "compile_failed"
	// RunCompiled means the document was compiled to PDF and cleaned up.
	RunCompiled RunStatus = "compiled"
)

// Succeeded reports whether the status counts as a successful run. The
// compiler-unavailable case degrades to LaTeX-only output and is a success.
func (s RunStatus) Succeeded() bool {
	switch s {
	case RunTexOnly, RunCompilerUnavailable, RunCompiled:
		return true
	}
	return false
}

// Stage returns the pipeline stage that produced the status.
func (s RunStatus) Stage() string {
	switch s {
	case RunNoImages:
		return "discovery"
	case RunModelLoadFailed, RunNoFormulas:
		return "recognition"
	case RunWriteFailed, RunTexOnly:
		return "assembly"
	case RunCompilerUnavailable, RunCompileFailed, RunCompiled:
		return "compilation"
	}
	return "unknown"
}

// CompileState is a node of the compilation state machine.
//
//	not_attempted → probe_failed
//	not_attempted → probed → pass1 → pass2 → cleaned
//	probed → pass1_failed, pass1 → pass2_failed
type CompileState string

const (
	CompileNotAttempted CompileState = "not_attempted"
	CompileProbeFailed  CompileState = "probe_failed"
	CompileProbed       CompileState = "probed"
	CompilePass1        CompileState = "pass1"
	CompilePass2        CompileState = "pass2"
	CompileCleaned      CompileState = "cleaned"
	CompilePass1Failed  CompileState = "pass1_failed"
	CompilePass2Failed  CompileState = "pass2_failed"
)

// Terminal reports whether no further transition is possible from s.
func (s CompileState) Terminal() bool {
	switch s {
	case CompileProbeFailed, CompileCleaned, CompilePass1Failed, CompilePass2Failed:
		return true
	}
	return false
}

// CompileOutcome describes the result of driving the typesetting engine.
type CompileOutcome struct {
	State CompileState `json:"state" yaml:"state"`

	// PDFPath is set only when both passes succeeded.
	PDFPath string `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`

	// Pages is the verified page count, or zero when verification was skipped.
	Pages int `json:"pages,omitempty" yaml:"pages,omitempty"`

	// Stdout and Stderr hold the captured streams of the last pass run.
	Stdout string `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty" yaml:"stderr,omitempty"`

	// Removed lists the intermediate files deleted during cleanup.
	Removed []string `json:"removed,omitempty" yaml:"removed,omitempty"`
}

// RunResult aggregates everything a pipeline run produced.
type RunResult struct {
	// ID is a unique identifier attached to every log line of the run.
	ID string `json:"id" yaml:"id"`

	Status RunStatus `json:"status" yaml:"status"`

	// Images is the number of discovered images.
	Images int `json:"images" yaml:"images"`

	Formulas []Formula            `json:"formulas" yaml:"formulas"`
	Failures []RecognitionFailure `json:"failures,omitempty" yaml:"failures,omitempty"`

	TexPath     string `json:"tex_path,omitempty" yaml:"tex_path,omitempty"`
	RecordsPath string `json:"records_path,omitempty" yaml:"records_path,omitempty"`
	PDFPath     string `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`

	Compile CompileOutcome `json:"compile" yaml:"compile"`
}
