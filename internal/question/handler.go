package question

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"cbt-portal/internal/api"
	"cbt-portal/internal/auth"
	"cbt-portal/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// CodeSource validates a test code and returns its configuration. Implemented
// by the testcode service.
type CodeSource interface {
	Validate(code string) (*models.CodeMetadata, error)
}

type Handler struct {
	service *Service
	codes   CodeSource
}

func NewHandler(service *Service, codes CodeSource) *Handler {
	return &Handler{service: service, codes: codes}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidFields):
		api.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotAssigned), errors.Is(err, ErrNotOwner):
		api.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		api.Error(w, http.StatusNotFound, "question not found")
	default:
		api.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	role := auth.Role(r.Context())

	var q models.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.Create(userID, role, &q); err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusCreated, q)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	role := auth.Role(r.Context())

	filter := ListFilter{
		Subject: r.URL.Query().Get("subject"),
		Class:   r.URL.Query().Get("class"),
		Term:    r.URL.Query().Get("term"),
	}

	questions, err := h.service.List(userID, role, filter)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to load questions")
		return
	}
	api.JSON(w, http.StatusOK, questions)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	q, err := h.service.Get(uint(id))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, q)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	role := auth.Role(r.Context())

	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var q models.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.service.Update(userID, role, uint(id), &q)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	role := auth.Role(r.Context())

	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.service.Delete(userID, role, uint(id)); err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// BulkImport accepts a CSV upload in the template layout.
func (h *Handler) BulkImport(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	role := auth.Role(r.Context())

	count, err := h.service.ImportCSV(userID, role, r.Body)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusCreated, map[string]int{"imported": count})
}

// Export streams the question bank as CSV. ?template=true returns just the
// header row for the import template.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	role := auth.Role(r.Context())

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=questions-%s.csv", uuid.NewString()[:8]))

	if r.URL.Query().Get("template") == "true" {
		if err := WriteTemplate(w); err != nil {
			api.Error(w, http.StatusInternalServerError, "export failed")
		}
		return
	}

	if err := h.service.ExportCSV(userID, role, w); err != nil {
		api.Error(w, http.StatusInternalServerError, "export failed")
	}
}

// ForTest serves the randomized question set for an active code. 404 for an
// unknown code and 400 for an inactive one, matching the validate endpoint.
func (h *Handler) ForTest(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		api.Error(w, http.StatusBadRequest, "code query parameter is required")
		return
	}

	meta, err := h.codes.Validate(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.Error(w, http.StatusNotFound, "test code not found")
			return
		}
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	questions, err := h.service.ForTest(meta)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to assemble test")
		return
	}
	api.JSON(w, http.StatusOK, map[string]interface{}{
		"metadata":  meta,
		"questions": questions,
	})
}
