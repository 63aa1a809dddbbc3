package exercises

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/maestro-drills/backend/internal/logger"
	"github.com/maestro-drills/backend/internal/models"
	"github.com/maestro-drills/backend/internal/srs"
)

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterRoutes mounts the exercise API on r, usually the /api/v1 subrouter.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/exercises", h.ListExercises).Methods("GET")
	r.HandleFunc("/exercises", h.CreateExercise).Methods("POST")
	r.HandleFunc("/exercises/{id}", h.GetExercise).Methods("GET")
	r.HandleFunc("/exercises/{id}", h.ArchiveExercise).Methods("DELETE")
	r.HandleFunc("/exercises/{id}/reviews", h.ListReviews).Methods("GET")
	r.HandleFunc("/exercises/{id}/rate", h.Rate).Methods("POST")
	r.HandleFunc("/exercises/{id}/steps/{step:[0-9]+}/toggle", h.ToggleStep).Methods("POST")
	r.HandleFunc("/exercises/{id}/skip", h.Skip).Methods("POST")
	r.HandleFunc("/exercises/{id}/reset", h.Reset).Methods("POST")

	r.HandleFunc("/recommended", h.Recommended).Methods("GET")
	r.HandleFunc("/next", h.Next).Methods("GET")
	r.HandleFunc("/stats", h.Stats).Methods("GET")
	r.HandleFunc("/insights", h.Insights).Methods("GET")
	r.HandleFunc("/due", h.DueSets).Methods("GET")
}

// ── Exercises ───────────────────────────────────────────

func (h *Handler) ListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := h.service.ListExercises(r.Context(), r.URL.Query().Get("domain"))
	if err != nil {
		h.writeError(w, err, "Failed to list exercises")
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (h *Handler) GetExercise(w http.ResponseWriter, r *http.Request) {
	ex, err := h.service.GetExercise(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err, "Failed to get exercise")
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (h *Handler) CreateExercise(w http.ResponseWriter, r *http.Request) {
	var req models.CreateExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	ex, err := h.service.CreateExercise(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "Failed to create exercise")
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

func (h *Handler) ArchiveExercise(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Archive(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err, "Failed to archive exercise")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.ListReviews(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err, "Failed to list reviews")
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// ── Progress ────────────────────────────────────────────

func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	var req models.RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.Rate(r.Context(), mux.Vars(r)["id"], req.Rating)
	if err != nil {
		h.writeError(w, err, "Failed to rate exercise")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ToggleStep(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	step, err := strconv.Atoi(vars["step"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid step"})
		return
	}

	ex, err := h.service.ToggleStep(r.Context(), vars["id"], step)
	if err != nil {
		h.writeError(w, err, "Failed to toggle step")
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (h *Handler) Skip(w http.ResponseWriter, r *http.Request) {
	ex, err := h.service.Skip(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err, "Failed to skip exercise")
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	ex, err := h.service.Reset(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err, "Failed to reset exercise")
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

// ── Views ───────────────────────────────────────────────

func (h *Handler) Recommended(w http.ResponseWriter, r *http.Request) {
	limit := intQueryParam(r.URL.Query(), "limit", 0)
	exercises, err := h.service.Recommended(r.Context(), limit)
	if err != nil {
		h.writeError(w, err, "Failed to get recommendations")
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	ex, err := h.service.Next(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to get next exercise")
		return
	}
	writeJSON(w, http.StatusOK, models.NextResponse{Exercise: ex})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) Insights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.service.Insights(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to get insights")
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

func (h *Handler) DueSets(w http.ResponseWriter, r *http.Request) {
	horizon := intQueryParam(r.URL.Query(), "horizon", 0)
	sets, err := h.service.DueSets(r.Context(), horizon)
	if err != nil {
		h.writeError(w, err, "Failed to get due exercises")
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

// ── Helpers ─────────────────────────────────────────────

// writeError maps domain errors to status codes. Anything unexpected is
// logged and answered with fallback.
func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, srs.ErrInvalidRating),
		errors.Is(err, ErrInvalidStep),
		errors.Is(err, ErrInvalidExercise):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Exercise not found"})
	default:
		h.log.Error(fallback, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: fallback})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}
