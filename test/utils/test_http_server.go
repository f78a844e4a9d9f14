package testutils

import (
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/phayes/freeport"
)

// TestHttpServer serves registered test sources on a free local port.
type TestHttpServer struct {
	*http.ServeMux
	port int
}

func NewTestHttpServer() *TestHttpServer {
	return &TestHttpServer{ServeMux: http.NewServeMux()}
}

// Start begins serving and returns the port. The listener is bound
// before Start returns, so requests can be sent right away. The server
// is closed with the test.
func (s *TestHttpServer) Start(t *testing.T) int {
	t.Helper()

	port, err := freeport.GetFreePort()
	if err != nil {
		t.Fatalf("cannot find free port for test server: %v", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		t.Fatalf("cannot listen on port %d: %v", port, err)
	}

	srv := &http.Server{Handler: s}
	t.Cleanup(func() {
		srv.Close()
	})

	go func() {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			t.Errorf("test server stopped: %v", err)
		}
	}()

	s.port = port
	return port
}

// URL returns the address of path on the started server.
func (s *TestHttpServer) URL(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", s.port, path)
}

type RequestCounter struct {
	count int64
}

func (c *RequestCounter) Count() int64 {
	return atomic.LoadInt64(&c.count)
}

// ServeData registers a source responding with data and counts its requests.
func (s *TestHttpServer) ServeData(path, contentType string, data []byte) *RequestCounter {
	counter := &RequestCounter{}

	s.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&counter.count, 1)
		w.Header().Set("Content-Type", contentType)
		w.Write(data)
	})

	return counter
}
