package request

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/nhdewitt/henkaku-server/internal/headers"
)

type requestState int

const (
	bufferSize = 8
	crlf       = "\r\n"

	// MaxHeaderBytes bounds the request line plus the header section.
	MaxHeaderBytes = 8<<10 + 64<<10
)

const (
	stateRequestLine requestState = iota
	stateHeaders
	stateDone
)

// ErrIncomplete is returned when the connection ends before the header
// section has been terminated.
var ErrIncomplete = errors.New("early EOF")

// ErrTooLarge is returned once more than MaxHeaderBytes arrive without the
// header section ending.
var ErrTooLarge = errors.New("request header too large")

type Request struct {
	RequestLine RequestLine
	Headers     headers.Headers
	state       requestState
}

type RequestLine struct {
	HttpVersion   string
	RequestTarget string
	Method        string
}

// RequestFromReader reads a request line and header section from reader.
// Anything after the header section is left unread; bodies are not
// supported.
func RequestFromReader(reader io.Reader) (*Request, error) {
	buf := make([]byte, bufferSize)
	readToIndex := 0
	consumed := 0

	r := &Request{
		Headers: headers.NewHeaders(),
		state:   stateRequestLine,
	}

	for r.state != stateDone {
		if consumed+readToIndex >= MaxHeaderBytes {
			return nil, fmt.Errorf("error parsing data: %w", ErrTooLarge)
		}
		if readToIndex == len(buf) {
			grown := make([]byte, min(len(buf)*2, MaxHeaderBytes))
			copy(grown, buf[:readToIndex])
			buf = grown
		}

		n, err := reader.Read(buf[readToIndex:])
		if n > 0 {
			readToIndex += n

			parsed, perr := r.parse(buf[:readToIndex])
			if perr != nil {
				return nil, perr
			}

			copy(buf, buf[parsed:readToIndex])
			readToIndex -= parsed
			consumed += parsed
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				if r.state != stateDone {
					return nil, fmt.Errorf("error parsing data: %w", ErrIncomplete)
				}
				break
			}
			return nil, err
		}
	}

	return r, nil
}

// parse consumes as many complete lines from data as it can.
func (r *Request) parse(data []byte) (int, error) {
	total := 0
	for r.state != stateDone {
		n, err := r.parseOne(data[total:])
		if err != nil {
			return 0, err
		}
		if n == 0 {
			break
		}
		total += n
	}
	return total, nil
}

func (r *Request) parseOne(data []byte) (int, error) {
	switch r.state {
	case stateRequestLine:
		n, rl, err := parseRequestLine(data)
		if err != nil {
			return 0, fmt.Errorf("error parsing data: %w", err)
		}
		if n == 0 {
			return 0, nil
		}
		r.RequestLine = rl
		r.state = stateHeaders
		return n, nil
	case stateHeaders:
		n, done, err := r.Headers.Parse(data)
		if err != nil {
			return 0, fmt.Errorf("error parsing headers: %w", err)
		}
		if done {
			r.state = stateDone
		}
		return n, nil
	case stateDone:
		return 0, fmt.Errorf("error: trying to read data in a done state")
	default:
		return 0, fmt.Errorf("error: unknown state")
	}
}

func parseRequestLine(data []byte) (int, RequestLine, error) {
	idx := bytes.Index(data, []byte(crlf))
	if idx == -1 {
		return 0, RequestLine{}, nil
	}

	rl, err := requestLineFromString(string(data[:idx]))
	if err != nil {
		return 0, RequestLine{}, err
	}

	return idx + len(crlf), *rl, nil
}

func requestLineFromString(s string) (*RequestLine, error) {
	parts := strings.Fields(s)
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid request line: %s", s)
	}

	method := parts[0]
	for _, c := range method {
		if c < 'A' || c > 'Z' {
			return nil, fmt.Errorf("invalid method: %s", method)
		}
	}

	protocol, version, ok := strings.Cut(parts[2], "/")
	if !ok || protocol != "HTTP" {
		return nil, fmt.Errorf("invalid HTTP version: %s", parts[2])
	}
	if version != "1.0" && version != "1.1" {
		return nil, fmt.Errorf("unsupported HTTP version: %s", parts[2])
	}

	return &RequestLine{
		Method:        method,
		RequestTarget: parts[1],
		HttpVersion:   version,
	}, nil
}

// Path returns the request target without its query and fragment, with
// percent-escapes decoded. A target that fails to decode is returned as is.
func (r *Request) Path() string {
	target := r.RequestLine.RequestTarget
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	if p, err := url.PathUnescape(target); err == nil {
		return p
	}
	return target
}

// UserAgent reports the User-Agent value and whether the header was sent.
func (r *Request) UserAgent() (string, bool) {
	return r.Headers.Lookup("User-Agent")
}
