// Command reqdump prints every request it receives. Point a client at it to
// see exactly which headers, User-Agent included, the client sends.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"slices"

	"github.com/nhdewitt/henkaku-server/internal/headers"
	"github.com/nhdewitt/henkaku-server/internal/request"
	"github.com/nhdewitt/henkaku-server/internal/response"
)

func main() {
	addr := flag.String("addr", ":8357", "address to listen on")
	flag.Parse()

	listener, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("error listening: %v", err)
	}
	defer listener.Close()

	fmt.Println("Listening for TCP traffic on", *addr)
	for {
		c, err := listener.Accept()
		if err != nil {
			log.Fatalf("error accepting connection: %v", err)
		}
		log.Println("Connection accepted:", c.RemoteAddr())

		req, err := request.RequestFromReader(c)
		if err != nil {
			log.Printf("error parsing request: %v", err)
			c.Close()
			continue
		}

		dump(log.Writer(), req)
		if err := response.Text(response.StatusOK, "ok").Write(response.NewWriter(c)); err != nil {
			log.Printf("error writing response: %v", err)
		}
		c.Close()
		fmt.Println("Connection to", c.RemoteAddr(), "closed")
	}
}

func dump(w io.Writer, req *request.Request) {
	fmt.Fprintln(w, "Request line:")
	fmt.Fprintf(w, "- Method: %s\n", req.RequestLine.Method)
	fmt.Fprintf(w, "- Target: %s\n", req.RequestLine.RequestTarget)
	fmt.Fprintf(w, "- Version: %s\n", req.RequestLine.HttpVersion)
	fmt.Fprintln(w, "Headers:")

	keys := make([]string, 0, len(req.Headers))
	for k := range req.Headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "- %s: %s\n", headers.Canonical(k), req.Headers[k])
	}
}
