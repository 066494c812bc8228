package core

// reader.go provides the line scanner used by the parser. It enforces the
// configured maximum physical line length and skips the UTF-8 BOM that
// Windows tools commonly prepend, which would otherwise corrupt the first
// header cell.

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// lineScanner reads physical lines from a byte stream, tracking line
// numbers starting at 1.
type lineScanner struct {
	scanner *bufio.Scanner
	maxLen  int
	line    int
}

func newLineScanner(r io.Reader, maxLen int) *lineScanner {
	if maxLen <= 0 {
		maxLen = DefaultMaxLineLen
	}
	s := bufio.NewScanner(newBOMSkippingReader(r))
	// One extra byte so a line of exactly maxLen bytes still fits.
	s.Buffer(make([]byte, 0, 512), maxLen+1)
	return &lineScanner{scanner: s, maxLen: maxLen}
}

// next returns the next line with the trailing CR stripped. It returns
// io.EOF at end of input and a *FileError when a line exceeds the cap.
func (ls *lineScanner) next() (string, error) {
	if !ls.scanner.Scan() {
		if err := ls.scanner.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				return "", NewLineTooLongError(ls.line+1, ls.maxLen)
			}
			return "", err
		}
		return "", io.EOF
	}
	ls.line++
	line := ls.scanner.Text()
	if len(line) > ls.maxLen {
		return "", NewLineTooLongError(ls.line, ls.maxLen)
	}
	return strings.TrimSuffix(line, "\r"), nil
}

// bomSkippingReader wraps an io.Reader and drops a leading UTF-8 BOM.
type bomSkippingReader struct {
	reader  io.Reader
	checked bool
	pending []byte
}

func newBOMSkippingReader(r io.Reader) *bomSkippingReader {
	return &bomSkippingReader{reader: r}
}

// Read implements io.Reader. On the first call it inspects the first three
// bytes and discards them if they are the UTF-8 BOM.
func (r *bomSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true

		var buf [3]byte
		n, err := io.ReadFull(r.reader, buf[:])
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
		if n == 3 && bytes.Equal(buf[:], utf8BOM) {
			r.pending = nil
		} else {
			r.pending = append([]byte(nil), buf[:n]...)
		}
	}

	if len(r.pending) > 0 {
		n := copy(p, r.pending)
		r.pending = r.pending[n:]
		return n, nil
	}

	return r.reader.Read(p)
}
