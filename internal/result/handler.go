package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"cbt-portal/internal/api"
	"cbt-portal/internal/auth"

	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	studentID, ok := auth.UserID(r.Context())
	if !ok {
		api.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var sub Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if sub.Code == "" {
		api.Error(w, http.StatusBadRequest, "code is required")
		return
	}

	result, err := h.service.Submit(studentID, sub)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoAnswers):
			api.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrCodeNotFound):
			api.Error(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrCodeUnavailable):
			api.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrDuplicateSubmission):
			api.Error(w, http.StatusConflict, err.Error())
		default:
			api.Error(w, http.StatusInternalServerError, "failed to record result")
		}
		return
	}
	api.JSON(w, http.StatusCreated, result)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	role := auth.Role(r.Context())

	results, err := h.service.ListFor(userID, role)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to load results")
		return
	}
	api.JSON(w, http.StatusOK, results)
}

func filterFromQuery(r *http.Request) Filter {
	q := r.URL.Query()
	return Filter{
		Subject: q.Get("subject"),
		Class:   q.Get("class"),
		Term:    q.Get("term"),
		Session: q.Get("session"),
	}
}

// Filtered is the teacher/admin reporting query; it refuses to dump the
// whole table without at least one filter.
func (h *Handler) Filtered(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	if filter.Empty() {
		api.Error(w, http.StatusBadRequest, "at least one filter is required")
		return
	}

	rows, err := h.service.Filtered(filter)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to load results")
		return
	}
	api.JSON(w, http.StatusOK, rows)
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ForExport(filterFromQuery(r))
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=results-%s.csv", uuid.NewString()[:8]))
	if err := WriteCSV(w, rows); err != nil {
		api.Error(w, http.StatusInternalServerError, "export failed")
	}
}

func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ForExport(filterFromQuery(r))
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=results-%s.pdf", uuid.NewString()[:8]))
	if err := WritePDF(w, rows); err != nil {
		api.Error(w, http.StatusInternalServerError, "export failed")
	}
}
