package stats

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"

	"cbt-portal/internal/api"
	"cbt-portal/internal/auth"
	"cbt-portal/internal/models"

	"github.com/google/uuid"
)

// StatsCache is the short-TTL cache surface for dashboard counters.
type StatsCache interface {
	GetStats(key string, out interface{}) error
	SetStats(key string, stats interface{}) error
}

type Handler struct {
	repo  *Repository
	cache StatsCache
}

func NewHandler(repo *Repository, cache StatsCache) *Handler {
	return &Handler{repo: repo, cache: cache}
}

// AdminStats serves the portal-wide counters, cached briefly in Redis since
// the admin dashboard polls it.
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	var cached AdminStats
	if err := h.cache.GetStats("admin", &cached); err == nil {
		api.JSON(w, http.StatusOK, cached)
		return
	}

	stats, err := h.repo.AdminStats()
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	if err := h.cache.SetStats("admin", stats); err != nil {
		log.Printf("Error caching admin stats: %v", err)
	}
	api.JSON(w, http.StatusOK, stats)
}

// DashboardStats serves the role-aware counters for the signed-in user.
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	role := auth.Role(r.Context())

	switch role {
	case models.RoleAdmin:
		h.AdminStats(w, r)
	case models.RoleTeacher:
		stats, err := h.repo.TeacherDashboard(userID)
		if err != nil {
			api.Error(w, http.StatusInternalServerError, "failed to load stats")
			return
		}
		api.JSON(w, http.StatusOK, stats)
	default:
		stats, err := h.repo.StudentDashboard(userID)
		if err != nil {
			api.Error(w, http.StatusInternalServerError, "failed to load stats")
			return
		}
		api.JSON(w, http.StatusOK, stats)
	}
}

// ExportStudents streams the student roster as CSV.
func (h *Handler) ExportStudents(w http.ResponseWriter, r *http.Request) {
	rows, err := h.repo.ListStudents()
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=students-%s.csv", uuid.NewString()[:8]))

	writer := csv.NewWriter(w)
	writer.Write([]string{"full_name", "email", "registered_at"})
	for _, row := range rows {
		writer.Write([]string{row.FullName, row.Email, row.CreatedAt})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Printf("Error writing student export: %v", err)
	}
}
