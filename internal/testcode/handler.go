package testcode

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cbt-portal/internal/api"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var cfg BatchConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(cfg); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	batch, err := h.service.CreateBatch(cfg)
	if err != nil {
		if errors.Is(err, ErrBadConfig) {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		api.Error(w, http.StatusInternalServerError, "failed to create batch")
		return
	}
	api.JSON(w, http.StatusCreated, batch)
}

func (h *Handler) ListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.service.ListBatches()
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to load batches")
		return
	}
	api.JSON(w, http.StatusOK, batches)
}

func batchID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	return uint(id), err
}

func (h *Handler) ListBatchCodes(w http.ResponseWriter, r *http.Request) {
	id, err := batchID(r)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid batch id")
		return
	}

	if _, err := h.service.GetBatch(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.Error(w, http.StatusNotFound, "batch not found")
			return
		}
		api.Error(w, http.StatusInternalServerError, "failed to load batch")
		return
	}

	codes, err := h.service.ListCodes(id)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to load codes")
		return
	}
	api.JSON(w, http.StatusOK, codes)
}

func (h *Handler) setBatchActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := batchID(r)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid batch id")
		return
	}

	if err := h.service.SetBatchActive(id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.Error(w, http.StatusNotFound, "batch not found")
			return
		}
		api.Error(w, http.StatusInternalServerError, "failed to update batch")
		return
	}
	api.JSON(w, http.StatusOK, map[string]bool{"is_active": active})
}

func (h *Handler) ActivateBatch(w http.ResponseWriter, r *http.Request) {
	h.setBatchActive(w, r, true)
}

func (h *Handler) DeactivateBatch(w http.ResponseWriter, r *http.Request) {
	h.setBatchActive(w, r, false)
}

func (h *Handler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	id, err := batchID(r)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid batch id")
		return
	}

	if err := h.service.DeleteBatch(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.Error(w, http.StatusNotFound, "batch not found")
			return
		}
		api.Error(w, http.StatusInternalServerError, "failed to delete batch")
		return
	}
	api.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ValidateCode is the student entry point: 404 unknown, 400 inactive,
// 200 with metadata when the code is usable.
func (h *Handler) ValidateCode(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	meta, err := h.service.Validate(code)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			api.Error(w, http.StatusNotFound, ErrCodeNotFound.Error())
		case errors.Is(err, ErrCodeInactive):
			api.Error(w, http.StatusBadRequest, ErrCodeInactive.Error())
		default:
			api.Error(w, http.StatusInternalServerError, "failed to validate code")
		}
		return
	}
	api.JSON(w, http.StatusOK, meta)
}

func (h *Handler) GetCode(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	row, err := h.service.GetCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.Error(w, http.StatusNotFound, ErrCodeNotFound.Error())
			return
		}
		api.Error(w, http.StatusInternalServerError, "failed to load code")
		return
	}
	api.JSON(w, http.StatusOK, row)
}

func (h *Handler) setCodeActive(w http.ResponseWriter, r *http.Request, active bool) {
	code := mux.Vars(r)["code"]

	if err := h.service.SetCodeActive(code, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.Error(w, http.StatusNotFound, ErrCodeNotFound.Error())
			return
		}
		api.Error(w, http.StatusInternalServerError, "failed to update code")
		return
	}
	api.JSON(w, http.StatusOK, map[string]bool{"is_active": active})
}

func (h *Handler) ActivateCode(w http.ResponseWriter, r *http.Request) {
	h.setCodeActive(w, r, true)
}

func (h *Handler) DeactivateCode(w http.ResponseWriter, r *http.Request) {
	h.setCodeActive(w, r, false)
}
