package core

// parse.go implements the validate step of the import pipeline.
//
// The parser reads a header line plus data lines from a byte stream and
// produces one ValidatedHost per well-formed data row. Malformed rows never
// abort the import: they are skipped and reported as RowErrors. Only
// file-level problems (empty file, missing required header column, overlong
// line) fail the whole attempt.
//
// Required-field policy: an empty required field is row-scoped. The row is
// skipped and parsing continues, matching the handling of short rows.

import (
	"io"
	"strings"

	"github.com/hostfleet/csvimport/internal/schema"
)

// Parser reads and validates host CSV files against a schema registry.
// The zero value is not usable; create parsers with NewParser.
type Parser struct {
	// Separator is the field separator character (default ';').
	Separator byte

	// MaxLineLen is the maximum physical line length in bytes (default 1024).
	// Longer lines fail the whole import.
	MaxLineLen int

	// Registry defines the expected columns.
	Registry *schema.Registry
}

// NewParser creates a parser with default settings for the given registry.
// A nil registry means the stock host schema.
func NewParser(reg *schema.Registry) *Parser {
	if reg == nil {
		reg = schema.Default()
	}
	return &Parser{
		Separator:  DefaultSeparator,
		MaxLineLen: DefaultMaxLineLen,
		Registry:   reg,
	}
}

// Parse reads the stream and returns validated rows in file order plus
// diagnostics for skipped rows. A non-nil error is always a *FileError (or
// an I/O failure) and means no usable result.
//
// Line numbering starts at 1 for the header, 2 for the first data row.
func (p *Parser) Parse(r io.Reader) (*ParseResult, error) {
	sep := p.Separator
	if sep == 0 {
		sep = DefaultSeparator
	}

	ls := newLineScanner(r, p.MaxLineLen)

	header, err := p.readHeader(ls, sep)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	for {
		line, err := ls.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		host, rowErr := p.validateRow(ls.line, splitFields(line, sep), header)
		if rowErr != nil {
			result.RowErrors = append(result.RowErrors, *rowErr)
			continue
		}
		result.Hosts = append(result.Hosts, host)
	}

	return result, nil
}

// readHeader reads and normalizes the header line and verifies that every
// required column is present. Column order in the file is irrelevant.
func (p *Parser) readHeader(ls *lineScanner, sep byte) ([]string, error) {
	line, err := ls.next()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, err
	}

	cells := splitFields(line, sep)
	header := make([]string, len(cells))
	for i, cell := range cells {
		header[i] = schema.Normalize(cell)
	}

	for _, spec := range p.Registry.Required() {
		found := false
		for _, name := range header {
			if name == spec.Name {
				found = true
				break
			}
		}
		if !found {
			return nil, NewMissingColumnError(spec.Name)
		}
	}

	return header, nil
}

// validateRow maps one data line into a ValidatedHost. Columns not in the
// registry are ignored; surplus fields beyond the header length are dropped.
func (p *Parser) validateRow(line int, fields []string, header []string) (ValidatedHost, *RowError) {
	if len(fields) < len(header) {
		return ValidatedHost{}, NewShortRowError(line, header[len(fields)])
	}

	row := make(map[string]string, len(header))
	for i, name := range header {
		row[name] = strings.TrimSpace(fields[i])
	}

	host := ValidatedHost{
		Line:   line,
		Fields: make(map[string]string, p.Registry.Len()),
	}
	for _, spec := range p.Registry.Columns() {
		value, present := row[spec.Name]
		if spec.Required && value == "" {
			return ValidatedHost{}, NewEmptyRequiredError(line, spec.Name)
		}
		if !present {
			value = spec.Default
		}
		host.Fields[spec.Name] = value
	}

	return host, nil
}

// splitFields splits a physical line on the separator. No quoting rules:
// the format is a plain single-character-delimited file.
func splitFields(line string, sep byte) []string {
	return strings.Split(line, string(sep))
}
