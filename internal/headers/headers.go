package headers

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	crlf       = "\r\n"
	tokenChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!#$%&'*+-.^_`|~"
)

// Headers maps lowercased field names to their values.
type Headers map[string]string

func NewHeaders() Headers {
	return Headers{}
}

// Parse consumes a single field line from data. It reports done once the
// empty line terminating the header section has been consumed. A return of
// n == 0 with a nil error means more data is needed.
func (h Headers) Parse(data []byte) (n int, done bool, err error) {
	idx := bytes.Index(data, []byte(crlf))
	switch idx {
	case -1:
		return 0, false, nil
	case 0:
		return len(crlf), true, nil
	}

	line := data[:idx]
	name, value, ok := bytes.Cut(line, []byte(":"))
	if !ok {
		return 0, false, fmt.Errorf("malformed field line (no colon): %q", line)
	}
	if len(name) == 0 || bytes.ContainsAny(name, " \t") {
		return 0, false, fmt.Errorf("malformed field-name: %q", line)
	}
	if !validToken(name) {
		return 0, false, fmt.Errorf("invalid character in field-name: %q", line)
	}

	h.Set(string(name), string(bytes.TrimSpace(value)))
	return idx + len(crlf), false, nil
}

func validToken(name []byte) bool {
	for _, c := range name {
		if c >= 0x80 || strings.IndexByte(tokenChars, c) == -1 {
			return false
		}
	}
	return true
}

// Set adds value under key, joining it to any existing value with ", ".
func (h Headers) Set(key, value string) {
	key = strings.ToLower(key)
	if prev, ok := h[key]; ok {
		h[key] = prev + ", " + value
		return
	}
	h[key] = value
}

// Replace overwrites any existing value under key.
func (h Headers) Replace(key, value string) {
	h[strings.ToLower(key)] = value
}

func (h Headers) Get(key string) string {
	return h[strings.ToLower(key)]
}

// Lookup is Get that also reports whether the field was present at all.
func (h Headers) Lookup(key string) (string, bool) {
	v, ok := h[strings.ToLower(key)]
	return v, ok
}

func (h Headers) Del(key string) {
	delete(h, strings.ToLower(key))
}

// Canonical returns the wire form of a field name, e.g. "content-type"
// becomes "Content-Type". Casers are stateful, so one is built per call.
func Canonical(name string) string {
	return cases.Title(language.English).String(name)
}
