package reference

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"cbt-portal/internal/api"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Handler serves one vocabulary kind; the router mounts four instances.
type Handler struct {
	repo *Repository
	kind Kind
}

func NewHandler(repo *Repository, kind Kind) *Handler {
	return &Handler{repo: repo, kind: kind}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repo.List(h.kind)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to load reference data")
		return
	}
	api.JSON(w, http.StatusOK, entries)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	entry, err := h.repo.Create(h.kind, req.Name)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "could not create entry; name may already exist")
		return
	}
	api.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.repo.Delete(h.kind, uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.Error(w, http.StatusNotFound, "entry not found")
			return
		}
		api.Error(w, http.StatusInternalServerError, "failed to delete entry")
		return
	}
	api.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
