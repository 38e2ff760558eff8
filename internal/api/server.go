// Package api exposes recommendations over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/spigell/hh-recommender/internal/logger"
	"github.com/spigell/hh-recommender/internal/recommend"
)

const (
	requestIDHeader = "X-Request-ID"
	sourceStore     = "postgres"
)

// Pinger reports whether the backing storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the HTTP API.
type Deps struct {
	Recommender *recommend.Recommender
	Users       recommend.UserSource
	Jobs        recommend.JobSource
	Health      Pinger
	Logger      *zap.Logger
}

type Server struct {
	deps   Deps
	logger *zap.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

type recommendationsResponse struct {
	User            string                     `json:"user"`
	All             bool                       `json:"all"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

func New(deps Deps) *Server {
	log := logger.WithFields(deps.Logger)
	if deps.Recommender == nil {
		deps.Recommender = recommend.New(log)
	}

	return &Server{deps: deps, logger: log}
}

// Handler returns the router wrapped with request logging and CORS.
func (s *Server) Handler(allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/users/{email}/recommendations", s.handleRecommendations).Methods(http.MethodGet)
	r.Use(s.requestLogger)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet},
		AllowedOrigins: allowedOrigins,
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{requestIDHeader},
	})

	return c.Handler(r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		if err := s.deps.Health.Ping(r.Context()); err != nil {
			requestLogger(r, s.logger).Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "storage unavailable"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	log := requestLogger(r, s.logger).With(zap.String(logger.FieldUser, email), zap.String(logger.FieldSource, sourceStore))

	all := false
	if raw := r.URL.Query().Get("all"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid value for all"})
			return
		}
		all = parsed
	}

	userSkills, jobs, err := recommend.Lookup(r.Context(), s.deps.Users, s.deps.Jobs, email)
	var recs []recommend.Recommendation
	if err == nil {
		if all {
			recs, err = s.deps.Recommender.Score(r.Context(), userSkills, jobs)
		} else {
			recs, err = s.deps.Recommender.Recommend(r.Context(), userSkills, jobs)
		}
	}

	if err != nil {
		status, message := errorStatus(err)
		if status == http.StatusInternalServerError {
			log.Error("recommendations failed", zap.Error(err))
		} else {
			log.Info("recommendations unavailable", zap.Error(err))
		}
		writeJSON(w, status, errorResponse{Error: message})
		return
	}

	if recs == nil {
		recs = []recommend.Recommendation{}
	}

	log.Info("recommendations served", zap.Int("count", len(recs)), zap.Bool("all", all))
	writeJSON(w, http.StatusOK, recommendationsResponse{User: email, All: all, Recommendations: recs})
}

// errorStatus maps the recommendation errors to an HTTP status and a client message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, recommend.ErrNoSkills):
		return http.StatusNotFound, "user has no skills"
	case errors.Is(err, recommend.ErrNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, recommend.ErrNoJobs):
		return http.StatusNotFound, "no jobs available"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request cancelled"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

type ctxKey struct{}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		log := s.logger.With(zap.String(logger.FieldRunID, id))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), ctxKey{}, log)))

		log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func requestLogger(r *http.Request, fallback *zap.Logger) *zap.Logger {
	if log, ok := r.Context().Value(ctxKey{}).(*zap.Logger); ok {
		return log
	}
	return fallback
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
