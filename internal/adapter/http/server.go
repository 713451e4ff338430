package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/swasthya-alert/internal/domain"
	"github.com/couchcryptid/swasthya-alert/internal/inference"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 64 << 10

// Assessor runs one assessment through the classifier.
type Assessor interface {
	Assess(ctx context.Context, a domain.Assessment) (domain.Prediction, error)
}

// Server exposes the assessment form, the JSON API, and the health,
// readiness and metrics endpoints.
type Server struct {
	httpServer *http.Server
	assessor   Assessor
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the form at /, the /api/v1 routes,
// and /healthz, /readyz, and /metrics.
func NewServer(addr string, assessor Assessor, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		assessor: assessor,
		logger:   logger,
	}

	mux.HandleFunc("GET /{$}", s.handleForm)
	mux.HandleFunc("POST /predict", s.handleFormPredict)
	mux.HandleFunc("POST /api/v1/predict", s.handleAPIPredict)
	mux.HandleFunc("POST /api/v1/encode", s.handleAPIEncode)
	mux.HandleFunc("GET /api/v1/schema", s.handleAPISchema)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleForm(w http.ResponseWriter, _ *http.Request) {
	s.renderPage(w, http.StatusOK, newPageView(nil, nil))
}

func (s *Server) handleFormPredict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		view := newPageView(nil, nil)
		view.Failure = "The form could not be read. Please submit it again."
		s.renderPage(w, http.StatusBadRequest, view)
		return
	}

	in, err := parseForm(r.PostForm)
	if err != nil {
		var verr *domain.ValidationError
		errors.As(err, &verr)
		s.renderPage(w, http.StatusUnprocessableEntity, newPageView(&in, verr))
		return
	}

	view := newPageView(&in, nil)
	prediction, err := s.assessor.Assess(r.Context(), in.assessment)
	if err != nil {
		status, msg := s.failure(err)
		view.Failure = msg
		s.renderPage(w, status, view)
		return
	}

	s.logPrediction(in.assessment, prediction)
	view.Result = &prediction
	view.Summary = summarize(in.assessment)
	s.renderPage(w, http.StatusOK, view)
}

func (s *Server) handleAPIPredict(w http.ResponseWriter, r *http.Request) {
	a, ok := s.decodeAssessment(w, r)
	if !ok {
		return
	}

	prediction, err := s.assessor.Assess(r.Context(), a)
	if err != nil {
		status, msg := s.failure(err)
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}

	s.logPrediction(a, prediction)
	writeJSON(w, http.StatusOK, domain.ScoredAssessment{
		ID:         domain.VectorID(domain.Encode(a)),
		Assessment: a,
		Prediction: prediction,
	})
}

func (s *Server) handleAPIEncode(w http.ResponseWriter, r *http.Request) {
	a, ok := s.decodeAssessment(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, encodeResponse{
		SchemaVersion: domain.SchemaVersion,
		Features:      domain.Encode(a).Named(),
	})
}

func (s *Server) handleAPISchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, schemaResponse{
		SchemaVersion:      domain.SchemaVersion,
		FeatureCount:       domain.FeatureCount,
		FeatureNames:       domain.FeatureNames(),
		NumericFields:      domain.NumericFields[:],
		Treatments:         domain.Treatments(),
		ReferenceTreatment: domain.ReferenceTreatment,
	})
}

// decodeAssessment reads and validates a JSON assessment, writing the error
// response itself when it returns false.
func (s *Server) decodeAssessment(w http.ResponseWriter, r *http.Request) (domain.Assessment, bool) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body too large or unreadable"})
		return domain.Assessment{}, false
	}

	a, err := domain.ParseAssessment(buf.Bytes())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return domain.Assessment{}, false
	}

	if err := a.Validate(); err != nil {
		var verr *domain.ValidationError
		errors.As(err, &verr)
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid assessment", Fields: verr.Fields})
		return domain.Assessment{}, false
	}
	return a, true
}

// failure maps an inference error onto a status code and a user-facing message.
func (s *Server) failure(err error) (int, string) {
	s.logger.Error("prediction failed", "error", err, "kind", inference.ErrorKind(err))
	switch {
	case errors.Is(err, domain.ErrModelUnavailable):
		return http.StatusServiceUnavailable, "The risk model is currently unavailable. Please try again later."
	case errors.Is(err, domain.ErrSchemaMismatch):
		return http.StatusInternalServerError, "The risk model does not match this form's inputs. Please contact the administrator."
	default:
		return http.StatusInternalServerError, "The prediction could not be completed. Please try again."
	}
}

func (s *Server) logPrediction(a domain.Assessment, p domain.Prediction) {
	s.logger.Info("prediction served",
		"risk", p.Risk,
		"treatment", a.Treatment,
		"schema_version", p.SchemaVersion,
	)
}

func (s *Server) renderPage(w http.ResponseWriter, status int, view pageView) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		s.logger.Error("render page failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes()) //nolint:errcheck // client may have gone away
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type encodeResponse struct {
	SchemaVersion string                `json:"schema_version"`
	Features      []domain.NamedFeature `json:"features"`
}

type schemaResponse struct {
	SchemaVersion      string             `json:"schema_version"`
	FeatureCount       int                `json:"feature_count"`
	FeatureNames       []string           `json:"feature_names"`
	NumericFields      []domain.FieldSpec `json:"numeric_fields"`
	Treatments         []domain.Treatment `json:"treatments"`
	ReferenceTreatment domain.Treatment   `json:"reference_treatment"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
