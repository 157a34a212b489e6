// Package api serves a run over HTTP.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (player control plane).
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talgya/solostack/internal/catalog"
	"github.com/talgya/solostack/internal/game"
	"github.com/talgya/solostack/internal/persistence"
)

// Server serves one run over HTTP.
type Server struct {
	Game     *game.Game
	Clock    *game.Clock     // optional; enables /speed
	DB       *persistence.DB // optional; enables /history and ledger writes
	AdminKey string          // Bearer token for POST endpoints. Empty = POST disabled.

	// Limiter throttles POST endpoints per client IP. Nil uses 120/minute.
	Limiter *RateLimiter

	mux *chi.Mux
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	if s.mux == nil {
		s.routes()
	}
	return s.mux
}

func (s *Server) routes() {
	if s.Limiter == nil {
		s.Limiter = NewRateLimiter(120, time.Minute)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (GET, read-only).
		r.Get("/status", s.handleStatus)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/components", s.handleComponents)
		r.Get("/products", s.handleProducts)
		r.Get("/competitors", s.handleCompetitors)
		r.Get("/corporations", s.handleCorporations)
		r.Get("/projects", s.handleProjects)
		r.Get("/archive", s.handleArchive)
		r.Get("/notifications", s.handleNotifications)
		r.Get("/energy", s.handleEnergy)
		r.Get("/review", s.handleReview)
		r.Get("/history", s.handleHistory)
		r.Get("/history/notifications", s.handleNotificationHistory)
		r.Get("/history/archive", s.handleArchiveHistory)
		r.Get("/speed", s.handleSpeed)

		// Control endpoints (POST, require bearer token).
		r.Group(func(r chi.Router) {
			r.Use(s.adminOnly)
			r.Use(s.Limiter.Middleware)
			r.Post("/projects", s.handleStartProject)
			r.Post("/projects/validate", s.handleValidateProject)
			r.Post("/projects/{id}/publish", s.handlePublish)
			r.Post("/projects/{id}/fail", s.handleAcceptFailure)
			r.Post("/products/{id}/archive", s.handleArchiveProduct)
			r.Post("/tick", s.handleTick)
			r.Post("/slot", s.handleSlot)
			r.Post("/notifications/{id}/dismiss", s.handleDismiss)
			r.Post("/speed", s.handleSpeed)
			r.Post("/snapshot", s.handleSnapshot)
		})
	})
	s.mux = r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

// adminOnly requires the admin bearer token.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			writeError(w, http.StatusForbidden, "control endpoints disabled (no SOLOSTACK_ADMIN_KEY set)")
			return
		}
		token := bearerToken(r.Header.Get("Authorization"))
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.AdminKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Game.Status())
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Game.Engine().Catalog)
}

func (s *Server) handleComponents(w http.ResponseWriter, r *http.Request) {
	views := s.Game.Components()
	if typeID := r.URL.Query().Get("type"); typeID != "" {
		filtered := views[:0]
		for _, v := range views {
			if v.AllowedFor(typeID) {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Game.Products())
}

func (s *Server) handleCompetitors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Game.Competitors())
}

func (s *Server) handleCorporations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Game.Corporations())
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Game.Projects())
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"archive": s.Game.Archived(),
		"legacy":  s.Game.Legacy(),
	})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Game.Notifications())
}

func (s *Server) handleEnergy(w http.ResponseWriter, r *http.Request) {
	st := s.Game.Status()
	capacity := make(map[catalog.Pillar]int, len(catalog.Pillars))
	for _, p := range catalog.Pillars {
		capacity[p] = s.Game.Capacity(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"used":      st.EnergyUsed,
		"available": st.EnergyAvailable,
		"capacity":  capacity,
	})
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	p, err := s.Game.PendingReview()
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := s.historyLimit(w, r, 120)
	if !ok {
		return
	}
	months, err := s.DB.Months(limit)
	if err != nil {
		slog.Error("history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, months)
}

func (s *Server) handleNotificationHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := s.historyLimit(w, r, 50)
	if !ok {
		return
	}
	ns, err := s.DB.RecentNotifications(limit)
	if err != nil {
		slog.Error("notification history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, ns)
}

func (s *Server) handleArchiveHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := s.historyLimit(w, r, 50)
	if !ok {
		return
	}
	rows, err := s.DB.Archived(limit)
	if err != nil {
		slog.Error("archive history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// historyLimit checks the ledger is available and parses ?limit. It writes
// the error response itself when it returns false.
func (s *Server) historyLimit(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "database not available")
		return 0, false
	}
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > 1000 {
		writeError(w, http.StatusBadRequest, "limit must be 1-1000")
		return 0, false
	}
	return n, true
}

// recordNotifications copies the retained notifications into the ledger.
// Ids already stored are skipped.
func (s *Server) recordNotifications() {
	if s.DB == nil {
		return
	}
	if err := s.DB.SaveNotifications(s.Game.Notifications()); err != nil {
		slog.Error("notification save failed", "error", err)
	}
}

func (s *Server) handleStartProject(w http.ResponseWriter, r *http.Request) {
	var req game.BuildRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := s.Game.StartProject(req)
	if err != nil {
		writeGameError(w, err)
		return
	}
	s.recordNotifications()
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleValidateProject(w http.ResponseWriter, r *http.Request) {
	var req game.BuildRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	plan, err := s.Game.ValidateBuild(req)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	out, err := s.Game.Publish(chi.URLParam(r, "id"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	s.recordNotifications()
	writeJSON(w, http.StatusOK, map[string]any{
		"outcome": out,
		"status":  s.Game.Status(),
	})
}

func (s *Server) handleAcceptFailure(w http.ResponseWriter, r *http.Request) {
	if err := s.Game.AcceptFailure(chi.URLParam(r, "id")); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Game.Status())
}

func (s *Server) handleArchiveProduct(w http.ResponseWriter, r *http.Request) {
	a, err := s.Game.Archive(chi.URLParam(r, "id"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	if s.DB != nil {
		if err := s.DB.SaveArchived(a); err != nil {
			slog.Error("archive save failed", "error", err)
		}
	}
	s.recordNotifications()
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	rep, err := s.Game.AdvanceTick()
	if err != nil {
		writeGameError(w, err)
		return
	}
	if s.DB != nil && rep.Review == nil {
		if err := s.DB.RecordMonth(rep); err != nil {
			slog.Error("month record failed", "month", rep.Month, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleSlot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pillar catalog.Pillar `json:"pillar"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.Game.ChooseSlotBonus(req.Pillar); err != nil {
		writeGameError(w, err)
		return
	}
	s.recordNotifications()
	writeJSON(w, http.StatusOK, map[string]any{"pillar": req.Pillar, "capacity": s.Game.Capacity(req.Pillar)})
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	if err := s.Game.Dismiss(chi.URLParam(r, "id")); err != nil {
		writeGameError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Clock == nil {
		writeError(w, http.StatusServiceUnavailable, "clock not running")
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			writeError(w, http.StatusBadRequest, "speed must be 0-1000")
			return
		}
		s.Clock.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}
	writeJSON(w, http.StatusOK, map[string]float64{"speed": s.Clock.Speed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "database not available")
		return
	}
	snap := s.Game.Snapshot()
	if err := s.DB.SaveSnapshot(snap); err != nil {
		slog.Error("snapshot save failed", "error", err)
		writeError(w, http.StatusInternalServerError, "snapshot failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month":   snap.State.Month,
		"message": "snapshot saved",
	})
}

// writeGameError maps container errors to status codes.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrProjectNotFound),
		errors.Is(err, game.ErrProductNotFound),
		errors.Is(err, game.ErrNotificationMissing),
		errors.Is(err, game.ErrNoPendingReview):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrReviewPending):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
