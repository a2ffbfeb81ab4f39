// Package api provides the HTTP REST API server for the financial analysis
// dashboard.
//
// It exposes endpoints for listing tickers, reading merged statements,
// running trend and common-size analysis, comparing tickers, rendering
// reports, and a WebSocket feed of document and analysis events.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/phuslu/log"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/config"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/dashboard"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/datasource"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/report"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/statement"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/pkg/models"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/pkg/utils"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/web"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// errBadRequest marks malformed or invalid request input.
var errBadRequest = errors.New("bad request")

var validate = validator.New()

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	svc     *dashboard.Service
	wsHub   *WSHub
	version string
	serveUI bool // when true, serve the embedded web UI at /
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(svc *dashboard.Service, version string) *Server {
	srv := &Server{
		cfg:     svc.Config(),
		svc:     svc,
		wsHub:   NewWSHub(),
		version: version,
		serveUI: true,
	}
	srv.router = srv.buildRouter()
	return srv
}

// SetServeUI controls whether the embedded web UI is served.
// Must be called before ListenAndServe.
func (s *Server) SetServeUI(enabled bool) {
	s.serveUI = enabled
	s.router = s.buildRouter()
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// NotifyStatementsUpdated tells WebSocket clients that a ticker's document
// changed on disk. It matches the datasource.Watcher callback.
func (s *Server) NotifyStatementsUpdated(ticker string) {
	s.wsHub.Broadcast(WSMessage{
		Type:   EventStatementsUpdated,
		Ticker: ticker,
		Data:   map[string]any{"ticker": ticker, "time_ist": utils.FormatDateTimeIST(utils.NowIST())},
	})
}

// ListenAndServe starts the HTTP server and shuts it down gracefully when
// ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.wsHub.Run(hubCtx)

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)

			// Data
			r.Get("/tickers", s.handleTickers)
			r.Get("/calendar", s.handleCalendar)
			r.Get("/statements/{ticker}", s.handleStatements)

			// Analysis
			r.Post("/analyze", s.handleAnalyze)
			r.Post("/compare", s.handleCompare)
			r.Get("/report/{ticker}", s.handleReport)

			// Configuration
			r.Get("/config", s.handleGetConfig)
			r.Get("/config/keys", s.handleGetConfigKeys)

			// WebSocket
			r.Get("/ws", s.handleWebSocket)
		})
	})

	// Serve embedded web UI
	if s.serveUI {
		s.mountSPA(r, web.DistFS())
	}

	return r
}

// mountSPA serves the embedded static page. Unknown paths fall back to
// index.html.
func (s *Server) mountSPA(r chi.Router, distFS fs.FS) {
	fileServer := http.FileServerFS(distFS)

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		rPath := strings.TrimPrefix(r.URL.Path, "/")
		if rPath == "" {
			rPath = "index.html"
		}

		f, err := distFS.Open(rPath)
		if err != nil {
			serveIndexHTML(w, distFS)
			return
		}
		f.Close()

		if strings.HasSuffix(rPath, ".html") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}
		fileServer.ServeHTTP(w, r)
	})
}

// serveIndexHTML reads and serves the embedded index.html.
func serveIndexHTML(w http.ResponseWriter, distFS fs.FS) {
	data, err := fs.ReadFile(distFS, "index.html")
	if err != nil {
		http.Error(w, "web UI not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// requireToken enforces the configured bearer token. WebSocket clients that
// cannot set headers may pass it as ?token=.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := s.cfg.API.Token
		if want == "" {
			next.ServeHTTP(w, r)
			return
		}
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			got = r.URL.Query().Get("token")
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			writeError(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request through the structured logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		ev := log.Info()
		if status >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success  bool     `json:"success"`
	Data     any      `json:"data,omitempty"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// CalendarEntry is one quarter of the master calendar.
type CalendarEntry struct {
	Period        string `json:"period"`
	FiscalQuarter string `json:"fiscalQuarter"`
}

// StatementsResponse is the body of GET /api/v1/statements/{ticker}.
type StatementsResponse struct {
	Ticker         string                    `json:"ticker"`
	Source         models.DocumentFormat     `json:"source"`
	Selection      statement.Selection       `json:"selection"`
	SkippedRecords []statement.SkippedRecord `json:"skippedRecords"`
	Merged         statement.MergedTable     `json:"merged"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":   "ok",
			"version":  s.version,
			"source":   s.svc.Source().Name(),
			"periods":  s.svc.Calendar().Len(),
			"ws":       s.wsHub.ClientCount(),
			"time_ist": utils.FormatDateTimeIST(utils.NowIST()),
		},
	})
}

func (s *Server) handleTickers(w http.ResponseWriter, r *http.Request) {
	tickers, err := s.svc.Source().List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: tickers})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	periods := s.svc.Calendar().Periods()
	out := make([]CalendarEntry, len(periods))
	for i, p := range periods {
		out[i] = CalendarEntry{
			Period:        p.String(),
			FiscalQuarter: utils.FiscalQuarterLabel(p.Month().Calendar(), p.Year()),
		}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: out})
}

// handleStatements returns the merged statements of a ticker for the window
// given by ?from=&to= or ?periods=. ?type= restricts the columns to one
// statement.
func (s *Server) handleStatements(w http.ResponseWriter, r *http.Request) {
	req := requestFromQuery(r, chi.URLParam(r, "ticker"))
	if err := validate.Struct(req); err != nil {
		writeErr(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	var typ statement.StatementType
	if t := r.URL.Query().Get("type"); t != "" {
		var err error
		if typ, err = statement.ParseStatementType(t); err != nil {
			writeErr(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	}

	res, err := s.svc.Run(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}

	merged := res.Merged
	if typ != "" {
		merged = merged.Sub(typ)
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: StatementsResponse{
			Ticker:         res.Ticker,
			Source:         res.Source,
			Selection:      res.Selection,
			SkippedRecords: res.SkippedRecords,
			Merged:         merged,
		},
		Warnings: res.Warnings(),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	res, err := s.svc.Run(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type:   EventAnalysisComplete,
		Ticker: res.Ticker,
		Data: map[string]any{
			"run_id":  res.RunID,
			"ticker":  res.Ticker,
			"periods": res.Merged.Len(),
		},
	})

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: res, Warnings: res.Warnings()})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req models.CompareRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	cmp, err := s.svc.Compare(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}

	var warnings []string
	for _, f := range cmp.Failures {
		warnings = append(warnings, f.Ticker+": "+f.Error)
	}
	s.wsHub.Broadcast(WSMessage{
		Type: EventAnalysisComplete,
		Data: map[string]any{
			"run_id":  cmp.RunID,
			"tickers": len(cmp.Results),
			"failed":  len(cmp.Failures),
		},
	})
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: cmp, Warnings: warnings})
}

// handleReport renders a report for one ticker. ?format= is html (default)
// or markdown; ?sections= is a comma-separated subset.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	req := requestFromQuery(r, chi.URLParam(r, "ticker"))
	if err := validate.Struct(req); err != nil {
		writeErr(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	cfg := report.DefaultReportConfig()
	if v := r.URL.Query().Get("sections"); v != "" {
		cfg.Sections = nil
		for _, name := range splitQuery(v) {
			sec, err := report.ParseSection(name)
			if err != nil {
				writeErr(w, fmt.Errorf("%w: %v", errBadRequest, err))
				return
			}
			cfg.Sections = append(cfg.Sections, sec)
		}
	}
	format := report.ReportFormat(strings.ToLower(r.URL.Query().Get("format")))
	if format == "" {
		format = report.FormatHTML
	}
	if format != report.FormatHTML && format != report.FormatMarkdown {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported report format %q", format))
		return
	}

	res, err := s.svc.Run(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}

	if format == report.FormatMarkdown {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, report.Markdown(res, cfg)) //nolint:errcheck
		return
	}
	out, err := report.GenerateHTML(res, cfg)
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, out) //nolint:errcheck
}

// ============================================================
// Helpers
// ============================================================

// requestFromQuery builds an analysis request from ?from=&to=&periods=
// &metrics=&base_metric=&base_period=.
func requestFromQuery(r *http.Request, ticker string) models.AnalyzeRequest {
	q := r.URL.Query()
	return models.AnalyzeRequest{
		Ticker:     ticker,
		From:       q.Get("from"),
		To:         q.Get("to"),
		Periods:    splitQuery(q.Get("periods")),
		Metrics:    splitQuery(q.Get("metrics")),
		BaseMetric: q.Get("base_metric"),
		BasePeriod: q.Get("base_period"),
	}
}

func splitQuery(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// decodeBody decodes a JSON body into v and validates it.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, statement.ErrInvalidRange),
		errors.Is(err, statement.ErrInvalidPeriodFormat),
		errors.Is(err, datasource.ErrInvalidTicker),
		errors.Is(err, dashboard.ErrTooManyTickers):
		return http.StatusBadRequest
	case errors.Is(err, datasource.ErrTickerNotFound):
		return http.StatusNotFound
	case errors.Is(err, datasource.ErrDocumentFormat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

func writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeError(w, status, err.Error())
}
