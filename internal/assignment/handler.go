package assignment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cbt-portal/internal/api"
	"cbt-portal/internal/auth"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List returns every assignment (admin view).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.service.ListAll()
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to load assignments")
		return
	}
	api.JSON(w, http.StatusOK, assignments)
}

type saveRequest struct {
	TeacherID uint   `json:"teacher_id"`
	Pairs     []Pair `json:"pairs"`
}

// Save replaces the named teacher's assignment set.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TeacherID == 0 {
		api.Error(w, http.StatusBadRequest, "teacher_id is required")
		return
	}

	assignments, err := h.service.Save(req.TeacherID, req.Pairs)
	if err != nil {
		if errors.Is(err, ErrEmptyPair) {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		api.Error(w, http.StatusInternalServerError, "failed to save assignments")
		return
	}
	api.JSON(w, http.StatusOK, assignments)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.service.Delete(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.Error(w, http.StatusNotFound, "assignment not found")
			return
		}
		api.Error(w, http.StatusInternalServerError, "failed to delete assignment")
		return
	}
	api.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Teachers lists teacher profiles for the admin assignment UI.
func (h *Handler) Teachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.service.ListTeachers()
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to load teachers")
		return
	}
	api.JSON(w, http.StatusOK, teachers)
}

// MyAssignments returns the calling teacher's own assignments.
func (h *Handler) MyAssignments(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		api.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	assignments, err := h.service.ListByTeacher(userID)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to load assignments")
		return
	}
	api.JSON(w, http.StatusOK, assignments)
}
