package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/nhdewitt/henkaku-server/internal/assets"
	"github.com/nhdewitt/henkaku-server/internal/config"
	"github.com/nhdewitt/henkaku-server/internal/handler"
	"github.com/nhdewitt/henkaku-server/internal/locale"
	"github.com/nhdewitt/henkaku-server/internal/netutil"
	"github.com/nhdewitt/henkaku-server/internal/server"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, "usage: henkakuserver [-port N] [-root DIR] [-marker UA] [-lang TAG]")
		return
	}
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	srv := newServer(cfg)
	if err := srv.Start(cfg.Port); err != nil {
		var bindErr *server.BindError
		if errors.As(err, &bindErr) {
			log.Fatalf("Cannot start server listening on port %d: %v", bindErr.Port, bindErr.Err)
		}
		log.Fatalf("Error starting server: %v", err)
	}

	log.Println("Server started, open", accessURL(srv))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	stopOnSignal(srv, sigChan)
}

// stopOnSignal blocks until a signal arrives, then stops srv before
// reporting the shutdown.
func stopOnSignal(srv *server.Server, sigChan <-chan os.Signal) {
	sig := <-sigChan
	log.Printf("Received %s, stopping server", sig)
	if err := srv.Stop(); err != nil {
		log.Printf("Error stopping server: %v", err)
	}
	log.Println("Server gracefully stopped")
}

func newServer(cfg *config.Config) *server.Server {
	h := handler.New(assets.NewDir(cfg.Root), handler.Options{
		ClientMarker: cfg.ClientMarker,
		Warning:      locale.Warning(cfg.Language, cfg.ClientMarker),
		Logger:       log.New(os.Stdout, "henkaku ", log.LstdFlags),
	})
	return server.New(h.Handle, log.New(os.Stdout, "http ", log.LstdFlags))
}

func accessURL(srv *server.Server) string {
	port := srv.Addr().(*net.TCPAddr).Port
	ip, err := netutil.LocalIPv4()
	if err != nil {
		ip = net.IPv4(127, 0, 0, 1)
	}
	return netutil.AccessURL(ip, port)
}
