package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/crmscan/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter:   newBaseWriter(output),
		indent:       false,
		indentPrefix: "",
		indentString: "",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the bare report in JSON format. The field names and
// ordering follow the report contract exactly, so this is the output
// downstream tools should parse.
func (w *JSONWriter) Write(report *model.QualityReport) (int, error) {
	return w.writeJSON(report)
}

// WriteEnvelope outputs the report wrapped with source, version, and
// optional explanation.
func (w *JSONWriter) WriteEnvelope(envelope *Envelope) (int, error) {
	return w.writeJSON(envelope)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// FullJSONWriter outputs complete reports inside an Envelope.
// Use this when the consumer wants to know which input and tool
// version produced the report.
type FullJSONWriter struct {
	*JSONWriter

	// version is the crmscan version string.
	version string

	// source names the analyzed input.
	source string
}

// NewFullJSONWriter creates a writer for enveloped reports.
func NewFullJSONWriter(output io.Writer, version, source string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
		source:     source,
	}
}

// Write outputs the report wrapped with the writer's version and source.
func (w *FullJSONWriter) Write(report *model.QualityReport) (int, error) {
	return w.writeJSON(NewEnvelope(report, w.version, w.source))
}
