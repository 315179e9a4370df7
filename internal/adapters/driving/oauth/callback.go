// Package oauth provides the loopback callback server and browser
// utilities for the CLI login flow.
package oauth

import (
	"context"
	"fmt"
	"html"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

// Callback carries the provider's response back to the login flow.
// State is returned alongside the code so the session can perform the
// CSRF check itself.
type Callback struct {
	Code  string
	State string
}

// CallbackServer receives the OAuth redirect on a local HTTP server.
type CallbackServer struct {
	mu       sync.Mutex
	port     int
	results  chan Callback
	errs     chan error
	server   *http.Server
	listener net.Listener
}

// NewCallbackServer creates a callback server. Port 0 picks a free
// port.
func NewCallbackServer(port int) *CallbackServer {
	return &CallbackServer{
		port:    port,
		results: make(chan Callback, 1),
		errs:    make(chan error, 1),
	}
}

// Start begins listening on 127.0.0.1.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case s.errs <- err:
			default:
			}
		}
	}()

	return nil
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		errDesc := r.URL.Query().Get("error_description")
		s.errs <- fmt.Errorf("oauth error: %s - %s", errParam, errDesc)
		writePage(w, "Authorization failed: "+html.EscapeString(errDesc), "")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		s.errs <- fmt.Errorf("no authorization code received")
		writePage(w, "Authorization failed: no code received", "")
		return
	}

	select {
	case s.results <- Callback{Code: code, State: r.URL.Query().Get("state")}:
	default:
	}

	writePage(w, "Authorization successful!", "You can close this window and return to the terminal.")
}

// Wait blocks until the callback arrives or the timeout elapses.
func (s *CallbackServer) Wait(timeout time.Duration) (Callback, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	select {
	case cb := <-s.results:
		return cb, nil
	case err := <-s.errs:
		return Callback{}, err
	case <-ctx.Done():
		return Callback{}, fmt.Errorf("timeout waiting for authorization callback")
	}
}

// Stop shuts down the server.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Port returns the bound port.
func (s *CallbackServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// RedirectURI returns the redirect URI for this server.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d/callback", s.Port())
}

func writePage(w http.ResponseWriter, title, message string) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Journal - Google Calendar</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 20vh;">
  <h1>%s</h1>
  <p>%s</p>
</body>
</html>`, title, message)
}

// OpenBrowser opens the default browser to the given URL.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
