package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding matches the export format of the BI tool the data comes from.
const DefaultEncoding = "ISO-8859-1"

// CSVOptions controls how a delimited text file is read.
type CSVOptions struct {
	// Encoding is any WHATWG encoding label ("utf-8", "latin1", "windows-1252", ...).
	// Empty means DefaultEncoding.
	Encoding string
	// Delimiter defaults to ','.
	Delimiter rune
}

// LoadCSV reads a CSV file whose first record is the header.
func LoadCSV(path string, opts CSVOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Kind: LoadFileNotFound, Source: path, Err: err}
		}
		return nil, &LoadError{Kind: LoadOther, Source: path, Err: err}
	}
	defer f.Close()

	return ReadCSV(path, f, opts)
}

// ReadCSV parses CSV from r. name labels the dataset and its errors.
func ReadCSV(name string, r io.Reader, opts CSVOptions) (*Dataset, error) {
	enc, err := lookupEncoding(opts.Encoding)
	if err != nil {
		return nil, &LoadError{Kind: LoadEncoding, Source: name, Err: err}
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Kind: LoadOther, Source: name, Err: err}
	}

	text, err := decode(enc, raw)
	if err != nil {
		return nil, &LoadError{Kind: LoadEncoding, Source: name, Err: err}
	}

	cr := csv.NewReader(strings.NewReader(text))
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	// Rows are checked against the header below instead.
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, &LoadError{Kind: LoadOther, Source: name, Err: err}
	}
	if len(records) == 0 {
		return nil, &LoadError{Kind: LoadOther, Source: name, Err: errors.New("no header row")}
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rows, err := fitRows(records[1:], len(header))
	if err != nil {
		return nil, &LoadError{Kind: LoadOther, Source: name, Err: err}
	}

	ds, err := New(name, header, rows)
	if err != nil {
		return nil, &LoadError{Kind: LoadOther, Source: name, Err: err}
	}
	return ds, nil
}

// fitRows pads short rows with empty (missing) cells. A row with more
// fields than the header cannot be attributed to columns and is an error.
func fitRows(rows [][]string, width int) ([][]string, error) {
	for i, r := range rows {
		switch {
		case len(r) > width:
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(r), width)
		case len(r) < width:
			rows[i] = append(r, make([]string, width-len(r))...)
		}
	}
	return rows, nil
}

func lookupEncoding(label string) (encoding.Encoding, error) {
	if strings.TrimSpace(label) == "" {
		label = DefaultEncoding
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	return enc, nil
}

// decode converts raw bytes to UTF-8. Single-byte code pages cannot fail;
// for UTF-8 input, invalid sequences are reported instead of being replaced.
func decode(enc encoding.Encoding, raw []byte) (string, error) {
	if enc == unicode.UTF8 {
		if !utf8.Valid(raw) {
			return "", errors.New("input is not valid UTF-8")
		}
		return string(raw), nil
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
