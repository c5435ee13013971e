package response

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhdewitt/henkaku-server/internal/headers"
)

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

type failingReader struct {
	data []byte
	sent bool
}

func (f *failingReader) Read(p []byte) (int, error) {
	if !f.sent {
		f.sent = true
		return copy(p, f.data), nil
	}
	return 0, errors.New("truncated asset")
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestFixedWrite(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, NotFound().Write(w))

	want := "HTTP/1.1 404 Not Found\r\n" +
		"Connection: close\r\n" +
		"Content-Length: 9\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"Not found"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, StateDone, w.State())
}

func TestStreamedWrite(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader("<html></html>")}
	resp := &Streamed{Type: "text/html", Body: body}

	var buf bytes.Buffer
	require.NoError(t, resp.Write(NewWriter(&buf)))

	want := "HTTP/1.1 200 OK\r\n" +
		"Connection: close\r\n" +
		"Content-Type: text/html\r\n" +
		"Transfer-Encoding: chunked\r\n" +
		"\r\n" +
		"d\r\n<html></html>\r\n" +
		"0\r\n\r\n"
	assert.Equal(t, want, buf.String())
	assert.True(t, body.closed)
	assert.Equal(t, StatusOK, resp.Status())
}

func TestStreamedWriteLargeBody(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, chunkSize+100)
	body := &trackingBody{Reader: bytes.NewReader(payload)}

	var buf bytes.Buffer
	require.NoError(t, (&Streamed{Type: "application/octet-stream", Body: body}).Write(NewWriter(&buf)))

	out := buf.Bytes()
	assert.Contains(t, string(out), "\r\n8000\r\n")
	assert.Contains(t, string(out), "\r\n64\r\n")
	assert.True(t, bytes.HasSuffix(out, []byte("\r\n0\r\n\r\n")))
	assert.True(t, body.closed)
}

func TestStreamedClosesOnReadError(t *testing.T) {
	body := &trackingBody{Reader: &failingReader{data: []byte("partial")}}

	var buf bytes.Buffer
	err := (&Streamed{Type: "text/plain", Body: body}).Write(NewWriter(&buf))
	require.Error(t, err)
	assert.True(t, body.closed)
	assert.False(t, strings.HasSuffix(buf.String(), "0\r\n\r\n"))
}

func TestStreamedClosesOnWriteError(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader("data")}
	err := (&Streamed{Type: "text/plain", Body: body}).Write(NewWriter(failingWriter{}))
	require.Error(t, err)
	assert.True(t, body.closed)
}

func TestWriterStateOrder(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	_, err := w.WriteBody([]byte("x"))
	require.ErrorIs(t, err, ErrWriterState)
	require.ErrorIs(t, w.WriteHeaders(headers.NewHeaders()), ErrWriterState)

	require.NoError(t, w.WriteStatusLine(StatusOK))
	require.ErrorIs(t, w.WriteStatusLine(StatusOK), ErrWriterState)
	_, err = w.WriteChunkedBody([]byte("x"))
	require.ErrorIs(t, err, ErrWriterState)

	require.NoError(t, w.WriteHeaders(headers.NewHeaders()))
	n, err := w.WriteChunkedBody(nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = w.WriteChunkedBodyDone()
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\n0\r\n\r\n", buf.String())

	_, err = w.WriteChunkedBody([]byte("x"))
	require.ErrorIs(t, err, ErrWriterState)
}

func TestHelpers(t *testing.T) {
	r := HTML(StatusInternalServerError, "<html></html>")
	assert.Equal(t, StatusInternalServerError, r.Status())
	assert.Equal(t, "text/html", r.ContentType())

	nf := NotFound()
	assert.Equal(t, StatusNotFound, nf.Status())
	assert.Equal(t, "text/plain", nf.ContentType())
	assert.Equal(t, "Not found", string(nf.Body))

	assert.Equal(t, "Bad Request", StatusBadRequest.Reason())
}

func TestFixedWriteIsRepeatable(t *testing.T) {
	var first, second bytes.Buffer
	require.NoError(t, HTML(StatusOK, "<html></html>").Write(NewWriter(&first)))
	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, HTML(StatusOK, "<html></html>").Write(NewWriter(&second)))
	assert.Equal(t, first.String(), second.String())
	assert.NotContains(t, first.String(), "Date:")
}
