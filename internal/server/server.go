// Package server is the HTTP adapter used by the block-editor playground:
// it parses field text into expressions and runs whole programs.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/blockcraft/blockscript/pkg/diagnostics"
	"github.com/blockcraft/blockscript/pkg/evaluator"
	"github.com/blockcraft/blockscript/pkg/formatter"
	"github.com/blockcraft/blockscript/pkg/runtime"
)

// ProgramFile is the file name reported in diagnostics for submitted programs.
const ProgramFile = "playground.bs"

// ParseRequest is the body of POST /v1/parse.
type ParseRequest struct {
	Expression string `json:"expression"`
}

// ParseResponse is the reply to POST /v1/parse.
type ParseResponse struct {
	OK          bool                     `json:"ok"`
	Formatted   string                   `json:"formatted,omitempty"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
}

// RunRequest is the body of POST /v1/run and POST /v1/check.
type RunRequest struct {
	Source string `json:"source"`
}

// RunResponse is the reply to POST /v1/run.
type RunResponse struct {
	OK          bool                     `json:"ok"`
	RunID       string                   `json:"runId,omitempty"`
	Output      []string                 `json:"output"`
	Variables   json.RawMessage          `json:"variables,omitempty"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
}

// CheckResponse is the reply to POST /v1/check.
type CheckResponse struct {
	OK          bool                     `json:"ok"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
}

// Server serves the playground API.
type Server struct {
	rt      *runtime.Runtime
	cfg     runtime.ServeConfig
	log     log15.Logger
	limiter *rate.Limiter
	handler http.Handler
}

// New builds the playground server around rt.
func New(rt *runtime.Runtime, cfg runtime.ServeConfig, logger log15.Logger) *Server {
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}
	s := &Server{rt: rt, cfg: cfg, log: logger}
	if cfg.RunsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RunsPerSecond), cfg.RunBurst)
	}

	router := httprouter.New()
	router.GET("/v1/health", s.handleHealth)
	router.POST("/v1/parse", s.handleParse)
	router.POST("/v1/check", s.handleCheck)
	router.POST("/v1/run", s.handleRun)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	})
	s.handler = c.Handler(router)
	return s
}

// RunConfig returns cfg with the serve budget applied to every run, since
// the rate limiter bounds how often runs start but not how long they last.
// A stricter run limit already in cfg is kept.
func RunConfig(cfg runtime.Config) runtime.Config {
	cfg.Run.MaxSteps = stricter(cfg.Run.MaxSteps, cfg.Serve.MaxSteps)
	cfg.Run.TimeLimitMs = stricter(cfg.Run.TimeLimitMs, cfg.Serve.TimeLimitMs)
	return cfg
}

// stricter returns the smaller positive limit; 0 means unlimited.
func stricter(a, b int64) int64 {
	if a <= 0 || (b > 0 && b < a) {
		return b
	}
	return a
}

// Handler returns the HTTP handler with CORS applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("playground listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req ParseRequest
	if !s.decode(w, r, &req) {
		return
	}
	op, err := s.rt.ParseExpression(req.Expression)
	if err != nil {
		writeJSON(w, http.StatusOK, ParseResponse{Diagnostics: runtime.Diagnose(err)})
		return
	}
	writeJSON(w, http.StatusOK, ParseResponse{
		OK:          true,
		Formatted:   formatter.FormatOperation(op),
		Diagnostics: []diagnostics.Diagnostic{},
	})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req RunRequest
	if !s.decode(w, r, &req) {
		return
	}
	diags := s.rt.Check(req.Source, ProgramFile)
	if diags == nil {
		diags = []diagnostics.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, CheckResponse{OK: !diagnostics.HasErrors(diags), Diagnostics: diags})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.limiter != nil && !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "too many runs, slow down")
		return
	}
	var req RunRequest
	if !s.decode(w, r, &req) {
		return
	}
	start := time.Now()
	res, err := s.rt.Run(req.Source, ProgramFile)

	resp := RunResponse{OK: err == nil, Output: []string{}, Diagnostics: runtime.Diagnose(err)}
	if res != nil {
		resp.RunID = res.RunID
		if res.Output != nil {
			resp.Output = res.Output
		}
		if vars, err := evaluator.GlobalsToJSON(res.Globals); err == nil {
			resp.Variables = vars
		} else {
			s.log.Warn("Failed to encode variables", "run", res.RunID, "err", err)
		}
	}
	if resp.Diagnostics == nil {
		resp.Diagnostics = []diagnostics.Diagnostic{}
	}
	s.log.Debug("playground run", "run", resp.RunID, "ok", resp.OK, "lines", len(resp.Output), "elapsed", time.Since(start))
	writeJSON(w, http.StatusOK, resp)
}

// decode reads a JSON body, replying with 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if s.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.log.Debug("bad request", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
