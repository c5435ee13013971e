package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhdewitt/henkaku-server/internal/request"
	"github.com/nhdewitt/henkaku-server/internal/response"
)

// Handler resolves one request into one response. It must not return nil.
type Handler func(req *request.Request) response.Response

type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// BindError is returned by Start when the listening socket could not be
// acquired. The server remains stopped.
type BindError struct {
	Port int
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("cannot listen on port %d: %v", e.Port, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

type Server struct {
	handler Handler
	logger  *log.Logger

	mu       sync.Mutex
	state    State
	listener net.Listener
	done     chan struct{}
}

func New(handler Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		handler: handler,
		logger:  logger,
	}
}

// Start binds port on all interfaces and begins accepting connections.
// Calling Start on a running server does nothing. Port 0 picks a free port;
// see Addr.
func (s *Server) Start(port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Running {
		return nil
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return &BindError{Port: port, Err: err}
	}

	s.listener = listener
	s.state = Running
	s.done = make(chan struct{})
	go s.listen(listener, s.done)

	s.logger.Printf("listening on %s", listener.Addr())
	return nil
}

// Stop closes the listening socket. Connections already accepted are left
// to finish. Calling Stop on a stopped server does nothing.
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return nil
	}
	listener, done := s.listener, s.done
	s.listener = nil
	s.state = Stopped
	s.mu.Unlock()

	err := listener.Close()
	<-done
	s.logger.Printf("stopped listening on %s", listener.Addr())
	return err
}

func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Addr returns the bound address, or nil when stopped.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) listen(listener net.Listener, done chan struct{}) {
	defer close(done)
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Printf("Error accepting connection: %v", err)
			continue
		}

		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	id := uuid.NewString()
	start := time.Now()

	w := response.NewWriter(conn)

	req, err := request.RequestFromReader(conn)
	if err != nil {
		s.logger.Printf("[%s] %s bad request: %v", id, conn.RemoteAddr(), err)
		if werr := response.Text(response.StatusBadRequest, "Bad request").Write(w); werr != nil {
			s.logger.Printf("[%s] error writing response: %v", id, werr)
		}
		return
	}

	resp := s.serve(id, req)
	if err := resp.Write(w); err != nil {
		s.logger.Printf("[%s] error writing response: %v", id, err)
	}
	s.logger.Printf("[%s] %s %s %s -> %d (%s) %q", id, conn.RemoteAddr(), req.RequestLine.Method,
		req.RequestLine.RequestTarget, resp.Status(), time.Since(start).Round(time.Microsecond),
		req.Headers.Get("User-Agent"))
}

// serve runs the handler, turning a panic or a nil response into a 500.
func (s *Server) serve(id string, req *request.Request) (resp response.Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("[%s] handler panic: %v", id, r)
			resp = internalError()
		}
	}()

	resp = s.handler(req)
	if resp == nil {
		s.logger.Printf("[%s] handler returned no response", id)
		resp = internalError()
	}
	return resp
}

func internalError() response.Response {
	return response.HTML(response.StatusInternalServerError, "<html><body><h3>Internal server error</h3></body></html>")
}
