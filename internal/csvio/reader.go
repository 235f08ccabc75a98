package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/nao1215/crmscan/internal/model"
)

// utf8BOM is the byte order mark some spreadsheet exporters prepend to
// UTF-8 output. It is transport noise, not data, so the reader strips it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadAll parses CSV from r into a header row and data rows.
//
// It returns a model.StructuralError with kind UnreadableEncoding when
// the input is not valid UTF-8 or is not well-formed CSV (for example,
// rows with inconsistent field counts or unterminated quotes). I/O
// failures from r are returned as plain errors.
func ReadAll(r io.Reader) (header []string, rows [][]string, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read csv input: %w", err)
	}
	return parse(data)
}

// ReadFile parses the CSV file at path into a header row and data rows.
func ReadFile(path string) (header []string, rows [][]string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read csv file: %w", err)
	}
	return parse(data)
}

// parse converts raw bytes into header and rows, mapping every decode
// failure to an UnreadableEncoding structural error.
func parse(data []byte) ([]string, [][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		return nil, nil, model.NewUnreadableEncodingError("input is not valid UTF-8")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	records, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, nil, model.NewUnreadableEncodingError(
				fmt.Sprintf("malformed csv at line %d: %v", parseErr.Line, parseErr.Err))
		}
		return nil, nil, model.NewUnreadableEncodingError(err.Error())
	}

	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}
