package response

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/nhdewitt/henkaku-server/internal/headers"
)

const chunkSize = 32 * 1024

// Response is one complete reply to one request.
type Response interface {
	Status() StatusCode
	ContentType() string
	// Write serializes the response and releases anything it holds.
	Write(w *Writer) error
}

// DefaultHeaders carries no Date, so identical requests get identical bytes.
func DefaultHeaders(contentLen int) headers.Headers {
	h := headers.NewHeaders()
	h.Replace("Content-Length", strconv.Itoa(contentLen))
	h.Replace("Connection", "close")
	h.Replace("Content-Type", "text/plain")

	return h
}

// Fixed is a response whose whole body is already in memory.
type Fixed struct {
	Code StatusCode
	Type string
	Body []byte
}

func (f *Fixed) Status() StatusCode  { return f.Code }
func (f *Fixed) ContentType() string { return f.Type }

func (f *Fixed) Write(w *Writer) error {
	if err := w.WriteStatusLine(f.Code); err != nil {
		return err
	}
	h := DefaultHeaders(len(f.Body))
	h.Replace("Content-Type", f.Type)
	if err := w.WriteHeaders(h); err != nil {
		return err
	}
	n, err := w.WriteBody(f.Body)
	if err != nil {
		return err
	}
	if n != len(f.Body) {
		return io.ErrShortWrite
	}
	return nil
}

// Streamed is a 200 response whose body is copied from Body in chunks.
// Write owns Body and always closes it.
type Streamed struct {
	Type string
	Body io.ReadCloser
}

func (s *Streamed) Status() StatusCode  { return StatusOK }
func (s *Streamed) ContentType() string { return s.Type }

func (s *Streamed) Write(w *Writer) (err error) {
	defer func() {
		err = errors.Join(err, s.Body.Close())
	}()

	if err := w.WriteStatusLine(StatusOK); err != nil {
		return err
	}
	h := DefaultHeaders(0)
	h.Del("Content-Length")
	h.Replace("Content-Type", s.Type)
	h.Replace("Transfer-Encoding", "chunked")
	if err := w.WriteHeaders(h); err != nil {
		return err
	}

	buf := make([]byte, chunkSize)
	for {
		n, rerr := s.Body.Read(buf)
		if n > 0 {
			if _, err := w.WriteChunkedBody(buf[:n]); err != nil {
				return fmt.Errorf("error writing chunk: %w", err)
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			// Leave the body unterminated so the client sees a truncated transfer.
			return fmt.Errorf("error reading body: %w", rerr)
		}
	}

	_, err = w.WriteChunkedBodyDone()
	return err
}

func Text(code StatusCode, body string) *Fixed {
	return &Fixed{Code: code, Type: "text/plain", Body: []byte(body)}
}

func HTML(code StatusCode, body string) *Fixed {
	return &Fixed{Code: code, Type: "text/html", Body: []byte(body)}
}

func NotFound() *Fixed {
	return Text(StatusNotFound, "Not found")
}
