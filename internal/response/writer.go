package response

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/nhdewitt/henkaku-server/internal/headers"
)

type writerState int

const (
	StateWritingStatusLine writerState = iota
	StateWritingHeaders
	StateWritingBody
	StateDone
)

var ErrWriterState = errors.New("writer state out-of-order")

// Writer serializes a single response onto a connection. Each part must be
// written in order: status line, headers, then one body.
type Writer struct {
	writer io.Writer
	state  writerState
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		writer: w,
		state:  StateWritingStatusLine,
	}
}

func (w *Writer) State() writerState {
	return w.state
}

func (w *Writer) WriteStatusLine(statusCode StatusCode) error {
	if w.state != StateWritingStatusLine {
		return ErrWriterState
	}

	if _, err := fmt.Fprintf(w.writer, "HTTP/1.1 %d %s\r\n", statusCode, statusCode.Reason()); err != nil {
		return fmt.Errorf("error writing status line: %w", err)
	}

	w.state = StateWritingHeaders
	return nil
}

// WriteHeaders writes h in sorted order so identical responses produce
// identical bytes.
func (w *Writer) WriteHeaders(h headers.Headers) error {
	if w.state != StateWritingHeaders {
		return ErrWriterState
	}

	if err := writeFields(w.writer, h); err != nil {
		return err
	}

	w.state = StateWritingBody
	return nil
}

func (w *Writer) WriteBody(p []byte) (int, error) {
	if w.state != StateWritingBody {
		return 0, ErrWriterState
	}

	w.state = StateDone
	return w.writer.Write(p)
}

// WriteChunkedBody writes p as one chunk. Empty slices are skipped since a
// zero-length chunk terminates the body.
func (w *Writer) WriteChunkedBody(p []byte) (int, error) {
	if w.state != StateWritingBody {
		return 0, ErrWriterState
	}
	if len(p) == 0 {
		return 0, nil
	}

	if _, err := fmt.Fprintf(w.writer, "%x\r\n", len(p)); err != nil {
		return 0, err
	}
	n, err := w.writer.Write(p)
	if err != nil {
		return n, err
	}
	if _, err := io.WriteString(w.writer, "\r\n"); err != nil {
		return n, err
	}
	return n, nil
}

// WriteChunkedBodyDone writes the zero-length last chunk and ends the body.
func (w *Writer) WriteChunkedBodyDone() (int, error) {
	if w.state != StateWritingBody {
		return 0, ErrWriterState
	}

	w.state = StateDone
	return io.WriteString(w.writer, "0\r\n\r\n")
}

func writeFields(w io.Writer, h headers.Headers) error {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s: %s\r\n", headers.Canonical(k), h[k]); err != nil {
			return fmt.Errorf("error writing headers: %w", err)
		}
	}
	if _, err := io.WriteString(w, "\r\n"); err != nil {
		return fmt.Errorf("error writing headers: %w", err)
	}
	return nil
}
