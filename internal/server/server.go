// Package server exposes the solver over HTTP. Definitions are posted as
// JSON using the same field names as the YAML files, analysed, and answered
// with reactions, extremes and sampled diagrams.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/aversten/beamsolve/internal/beam"
	"github.com/aversten/beamsolve/internal/config"
	"github.com/aversten/beamsolve/internal/expr"
	"github.com/aversten/beamsolve/internal/solve"
)

const (
	maxBodyBytes = 1 << 20
	maxSamples   = 10000
)

// Server routes analysis requests. It implements http.Handler.
type Server struct {
	router  *mux.Router
	limiter *ipRateLimiter
}

// New builds a server with per-client rate limiting on the API routes.
func New() *Server {
	s := &Server{
		router:  mux.NewRouter(),
		limiter: newIPRateLimiter(rate.Limit(5), 10),
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.limiter.middleware)
	api.HandleFunc("/analyse", s.handleAnalyse).Methods("POST")
	api.HandleFunc("/presets", s.handlePresets).Methods("GET")
	api.HandleFunc("/presets/{family}/{name}", s.handlePreset).Methods("GET")

	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok\n")
	}).Methods("GET")

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	log.Printf("listening on %s", addr)
	return srv.ListenAndServe()
}

// AnalyseResponse is the answer to an analysis request.
type AnalyseResponse struct {
	Name      string             `json:"name,omitempty"`
	Length    float64            `json:"length"`
	Degree    int                `json:"degree"`
	Reactions []solve.Reaction   `json:"reactions"`
	Extremes  map[string]Extreme `json:"extremes"`
	Queries   []QueryResult      `json:"queries,omitempty"`
	Samples   *SampleSet         `json:"samples,omitempty"`
}

// Extreme is a min/max pair for one diagram.
type Extreme struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// QueryResult holds every quantity evaluated at one position.
type QueryResult struct {
	X          float64 `json:"x"`
	Normal     float64 `json:"normal"`
	Shear      float64 `json:"shear"`
	Moment     float64 `json:"moment"`
	Slope      float64 `json:"slope"`
	Deflection float64 `json:"deflection"`
}

// SampleSet is the sampled diagrams as parallel arrays.
type SampleSet struct {
	X          []float64 `json:"x"`
	Normal     []float64 `json:"normal"`
	Shear      []float64 `json:"shear"`
	Moment     []float64 `json:"moment"`
	Slope      []float64 `json:"slope"`
	Deflection []float64 `json:"deflection"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleAnalyse reads a beam definition, solves it and answers with the
// results. JSON parses as a YAML subset, so the body shares the file format.
// The samples query parameter asks for sampled diagrams.
func (s *Server) handleAnalyse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}
	cfg, err := config.Parse(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid definition: "+err.Error())
		return
	}

	b, err := cfg.Build()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := b.Analyse(); err != nil {
		// Structural and configuration problems are the client's to fix;
		// anything else is ours.
		status := http.StatusInternalServerError
		if errors.Is(err, solve.ErrUnstable) || errors.Is(err, solve.ErrSingular) ||
			errors.Is(err, expr.ErrUnintegrable) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}

	resp, err := buildResponse(b, cfg.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if raw := r.URL.Query().Get("samples"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSamples {
			writeError(w, http.StatusBadRequest, "samples must be between 1 and 10000")
			return
		}
		samples, err := b.Sample(n)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Samples = &SampleSet{
			X:          samples.X,
			Normal:     samples.Normal,
			Shear:      samples.Shear,
			Moment:     samples.Moment,
			Slope:      samples.Slope,
			Deflection: samples.Deflection,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func buildResponse(b *beam.Beam, name string) (*AnalyseResponse, error) {
	cls, err := b.Classification()
	if err != nil {
		return nil, err
	}
	reactions, err := b.Reactions()
	if err != nil {
		return nil, err
	}

	resp := &AnalyseResponse{
		Name:      name,
		Length:    b.Length(),
		Degree:    cls.Degree,
		Reactions: reactions,
		Extremes:  make(map[string]Extreme, 5),
	}
	for _, q := range beam.Quantities() {
		min, max, err := b.Extremes(q)
		if err != nil {
			return nil, err
		}
		resp.Extremes[q.String()] = Extreme{Min: min, Max: max}
	}

	for _, x := range b.QueryPoints() {
		qr := QueryResult{X: x}
		dst := []*float64{&qr.Normal, &qr.Shear, &qr.Moment, &qr.Slope, &qr.Deflection}
		for i, q := range beam.Quantities() {
			vals, err := b.Query(q, x)
			if err != nil {
				return nil, err
			}
			*dst[i] = vals[0]
		}
		resp.Queries = append(resp.Queries, qr)
	}
	return resp, nil
}

// handlePresets lists the available preset families and names.
func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	out := make(map[string][]string, len(config.Presets))
	for family := range config.Presets {
		names := config.ListPresets(family)
		sort.Strings(names)
		out[family] = names
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePreset returns one preset definition.
func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cfg := config.GetPreset(vars["family"], vars["name"])
	if cfg == nil {
		writeError(w, http.StatusNotFound, "no such preset")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// ipRateLimiter keeps one token bucket per client address.
type ipRateLimiter struct {
	mu    sync.Mutex
	ips   map[string]*rate.Limiter
	limit rate.Limit
	burst int
}

func newIPRateLimiter(limit rate.Limit, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		ips:   make(map[string]*rate.Limiter),
		limit: limit,
		burst: burst,
	}
}

func (l *ipRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.ips[ip]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.ips[ip] = lim
	}
	return lim
}

func (l *ipRateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.get(r.RemoteAddr).Allow() {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
