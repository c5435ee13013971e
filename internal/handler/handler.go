// Package handler turns a parsed request into exactly one response.
//
// Two paths, "/" and the bare target "stage1", are gated: a client that
// sends a User-Agent without the configured marker gets a warning page
// instead of the asset. Everything else is looked up in the asset store.
package handler

import (
	"fmt"
	"html"
	"io"
	"log"
	"strings"

	"github.com/nhdewitt/henkaku-server/internal/assets"
	"github.com/nhdewitt/henkaku-server/internal/mimetype"
	"github.com/nhdewitt/henkaku-server/internal/request"
	"github.com/nhdewitt/henkaku-server/internal/response"
)

const internalErrorPage = "<html><body><h3>Internal server error</h3></body></html>"

type Options struct {
	// ClientMarker must appear in the User-Agent of supported clients.
	ClientMarker string
	// Warning is the plain-text message shown to unsupported clients.
	Warning string
	Logger  *log.Logger
}

type Handler struct {
	store   assets.Store
	marker  string
	warning []byte
	logger  *log.Logger
}

func New(store assets.Store, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Handler{
		store:   store,
		marker:  opts.ClientMarker,
		warning: fmt.Appendf(nil, "<html><body><h2>%s</h2></body></html>", html.EscapeString(opts.Warning)),
		logger:  logger,
	}
}

func (h *Handler) Handle(req *request.Request) response.Response {
	uri := req.Path()
	h.logger.Printf("Request URI: %s", uri)

	if agent, ok := req.UserAgent(); ok && h.gated(agent, uri) {
		h.logger.Printf("Request from unsupported client, agent: %s", agent)
		return &response.Fixed{Code: response.StatusOK, Type: "text/html", Body: h.warning}
	}

	name := strings.TrimPrefix(uri, "/")
	body, err := h.store.Open(name)
	switch assets.KindOf(err) {
	case 0:
		mime := mimetype.ByName(name)
		h.logger.Printf("Serving %s with mime %s", uri, mime)
		return &response.Streamed{Type: mime, Body: body}
	case assets.NotFound:
		return response.NotFound()
	default:
		h.logger.Printf("Error opening %s: %v", uri, err)
		return response.HTML(response.StatusInternalServerError, internalErrorPage)
	}
}

// gated reports whether uri should show the warning page to agent. Only the
// exact targets "/" and "stage1" are checked.
func (h *Handler) gated(agent, uri string) bool {
	if strings.Contains(agent, h.marker) {
		return false
	}
	return uri == "/" || uri == "stage1"
}
