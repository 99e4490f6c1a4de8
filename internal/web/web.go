package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"rangepick/internal/app"
	"rangepick/internal/config"
	appLog "rangepick/internal/log"
	"rangepick/internal/picker"
)

// maxBodyBytes caps request bodies of the input endpoints.
const maxBodyBytes = 64 << 10

// Server exposes one picker over JSON.
type Server struct {
	app   *app.App
	debug bool
	mux   *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(a *app.App, debug bool) *Server {
	s := &Server{
		app:   a,
		debug: debug,
		mux:   http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.app.Config().Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	cfg := s.app.Config()
	if cfg.BasicAuth == nil {
		return false
	}
	// an empty password disables auth
	return cfg.BasicAuth.Username != "" && cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.app.Config().BasicAuth.Username
	password := s.app.Config().BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="rangepick", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Serve listens on the configured address until ctx is done, then shuts
// down gracefully.
func Serve(ctx context.Context, s *Server) error {
	srv := &http.Server{
		Addr:              s.app.Config().Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+srv.Addr, "debug", s.debug)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/picker", s.handleView)
	s.mux.HandleFunc("GET /api/picker/events", s.handleEvents)

	s.mux.HandleFunc("POST /api/picker/click", s.handleClick)
	s.mux.HandleFunc("POST /api/picker/prev", s.handleNavigate(false))
	s.mux.HandleFunc("POST /api/picker/next", s.handleNavigate(true))
	s.mux.HandleFunc("POST /api/picker/month", s.handleMonthYear)
	s.mux.HandleFunc("POST /api/picker/time", s.handleTime)
	s.mux.HandleFunc("POST /api/picker/preset", s.handlePreset)
	s.mux.HandleFunc("POST /api/picker/dates", s.handleDates)
	s.mux.HandleFunc("POST /api/picker/apply", s.handleSimple(picker.Apply{}))
	s.mux.HandleFunc("POST /api/picker/cancel", s.handleSimple(picker.Cancel{}))
	s.mux.HandleFunc("POST /api/picker/show", s.handleSimple(picker.Show{}))
	s.mux.HandleFunc("POST /api/picker/hide", s.handleSimple(picker.Hide{}))
	s.mux.HandleFunc("POST /api/picker/clear", s.handleSimple(picker.Clear{}))
	s.mux.HandleFunc("PUT /api/picker/boundary", s.handleBoundary)

	s.mux.HandleFunc("POST /api/presets/refresh", s.handleRefreshPresets)
	s.mux.HandleFunc("POST /api/markers/refresh", s.handleRefreshMarkers)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toViewDTO(s.app.View(), s.app.Location()))
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, eventsResponse{Events: toEventDTOs(s.app.Events())})
}

// dispatch runs inputs as one unit and answers with the new view and their
// events.
func (s *Server) dispatch(w http.ResponseWriter, inputs ...picker.Input) {
	v, events, err := s.app.Dispatch(inputs...)
	if err != nil {
		var cfgErr *picker.ConfigurationError
		if errors.As(err, &cfgErr) {
			writeError(w, http.StatusBadRequest, cfgErr.Error())
			return
		}
		appLog.Error("picker input failed", err)
		writeError(w, http.StatusInternalServerError, "input failed")
		return
	}
	if s.debug {
		for _, in := range inputs {
			appLog.Debug("picker input", "input", inputName(in), "phase", v.Phase.String())
		}
		appLog.Debug("picker inputs applied", "inputs", len(inputs), "events", len(events))
	}
	writeJSON(w, http.StatusOK, dispatchResponse{
		View:   toViewDTO(v, s.app.Location()),
		Events: toEventDTOs(events),
	})
}

func (s *Server) handleSimple(in picker.Input) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.dispatch(w, in)
	}
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, err := req.input(s.app.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.dispatch(w, in)
}

func (s *Server) handleNavigate(next bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sideRequest
		if !decodeBody(w, r, &req) {
			return
		}
		side, err := req.side()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if next {
			s.dispatch(w, picker.ClickNext{Side: side})
			return
		}
		s.dispatch(w, picker.ClickPrev{Side: side})
	}
}

func (s *Server) handleMonthYear(w http.ResponseWriter, r *http.Request) {
	var req monthYearRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.dispatch(w, in)
}

func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) {
	var req timeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.dispatch(w, in)
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	var req presetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Label == "" {
		writeError(w, http.StatusBadRequest, "label is required")
		return
	}
	s.dispatch(w, picker.ClickPreset{Label: req.Label})
}

// handleDates sets start and/or end, the way a host syncing a text input
// would. Both are applied before any other request sees the picker.
func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	var req datesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	inputs, err := req.inputs(s.app)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.dispatch(w, inputs...)
}

func (s *Server) handleBoundary(w http.ResponseWriter, r *http.Request) {
	var req boundaryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := s.app.ResolveBoundary(config.BoundaryConfig(req))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.dispatch(w, picker.SetBoundary{Boundary: b})
}

func (s *Server) handleRefreshPresets(w http.ResponseWriter, _ *http.Request) {
	if err := s.app.RefreshPresets(); err != nil {
		appLog.Error("preset refresh failed", err)
		writeError(w, http.StatusInternalServerError, "preset refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, toViewDTO(s.app.View(), s.app.Location()))
}

// handleRefreshMarkers reloads rules and marker calendars. Partial failures
// are reported next to the refreshed view.
func (s *Server) handleRefreshMarkers(w http.ResponseWriter, r *http.Request) {
	resp := refreshResponse{}
	if err := s.app.RefreshMarkers(r.Context()); err != nil {
		resp.Error = err.Error()
	}
	resp.View = toViewDTO(s.app.View(), s.app.Location())
	writeJSON(w, http.StatusOK, resp)
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// EncodeView writes the current view of a as indented JSON.
func EncodeView(w io.Writer, a *app.App) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toViewDTO(a.View(), a.Location()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
