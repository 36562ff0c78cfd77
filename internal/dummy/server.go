package dummy

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// DefaultAddr is where the standalone dummy server listens.
const DefaultAddr = "127.0.0.1:5001"

// Server is a local stand-in for the public IP-echo services, so the probe
// pipeline can be exercised without network egress. No per-request access
// logging is installed; test output stays clean.
type Server struct {
	lis      net.Listener
	srv      *http.Server
	serveErr chan error
}

// Router builds the dummy endpoints: /ip, /headers, and a JSON 404.
func Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/ip", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ip": "127.0.0.1", "service": "dummy"})
	})
	r.Get("/headers", func(w http.ResponseWriter, req *http.Request) {
		headers := map[string]string{}
		for name, values := range req.Header {
			if len(values) > 0 {
				headers[name] = values[0]
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"headers": headers})
	})
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Start binds addr and serves on a background goroutine. The listener is
// open by the time Start returns, so callers can probe immediately without
// a readiness sleep.
func Start(addr string) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		lis:      lis,
		srv:      &http.Server{Handler: Router()},
		serveErr: make(chan error, 1),
	}
	go func() {
		if err := s.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.serveErr <- err
		}
		close(s.serveErr)
	}()
	return s, nil
}

// URL returns the base URL of the listening server.
func (s *Server) URL() string {
	return "http://" + s.lis.Addr().String()
}

// Shutdown stops accepting connections, lets in-flight requests finish, and
// waits for the serve goroutine to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	if serveErr := <-s.serveErr; serveErr != nil && err == nil {
		err = serveErr
	}
	return err
}
