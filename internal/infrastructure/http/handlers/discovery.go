// Package handlers exposes the discovery read model over HTTP
package handlers

import (
	"net/http"

	"github.com/alchemorsel/discovery/internal/application/discovery"
	"github.com/alchemorsel/discovery/internal/domain/filter"
	"github.com/alchemorsel/discovery/internal/domain/recipe"
	"github.com/alchemorsel/discovery/internal/domain/user"
	"github.com/alchemorsel/discovery/internal/ports/inbound"
	"github.com/alchemorsel/discovery/pkg/errors"
	"github.com/alchemorsel/discovery/pkg/healthcheck"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// FavoriteToggler is the caller-owned favorites set
type FavoriteToggler interface {
	filter.FavoriteSet
	Toggle(id string) bool
}

// ProfileValidator rejects profiles whose fields break their constraints
type ProfileValidator interface {
	ValidateProfile(profile user.Profile) error
}

// DiscoveryHandlers serves the discovery endpoints
type DiscoveryHandlers struct {
	service   inbound.DiscoveryService
	favorites FavoriteToggler
	profiles  ProfileValidator
	health    *healthcheck.HealthCheck
	logger    *zap.Logger
}

// NewDiscoveryHandlers creates the handlers
func NewDiscoveryHandlers(
	service inbound.DiscoveryService,
	favorites FavoriteToggler,
	profiles ProfileValidator,
	health *healthcheck.HealthCheck,
	logger *zap.Logger,
) *DiscoveryHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscoveryHandlers{
		service:   service,
		favorites: favorites,
		profiles:  profiles,
		health:    health,
		logger:    logger.Named("discovery-handlers"),
	}
}

// Routes mounts the discovery endpoints on r
func (h *DiscoveryHandlers) Routes(r chi.Router) {
	r.Route("/discovery", func(r chi.Router) {
		r.Get("/", h.HandleSnapshot)
		r.Post("/session", h.HandleStartSession)
		r.Post("/search", h.HandleSearch)
		r.Post("/criteria", h.HandleCriteria)
		r.Post("/apply", h.HandleApply)
		r.Post("/reset", h.HandleReset)
		r.Post("/more", h.HandleLoadMore)
		r.Post("/images", h.HandleResolveImages)
	})
	r.Post("/favorites/{id}/toggle", h.HandleToggleFavorite)
	r.Get("/health", h.health.Handler())
	r.Get("/health/live", h.health.LivenessHandler())
	r.Get("/health/ready", h.health.ReadinessHandler())
}

// SessionRequest starts a new discovery session
type SessionRequest struct {
	Profile user.Profile    `json:"profile"`
	Applied filter.Criteria `json:"applied"`
}

// SearchRequest carries the raw search input
type SearchRequest struct {
	Term  string `json:"term"`
	Flush bool   `json:"flush"`
}

// CriteriaRequest edits pending criteria. Absent fields are left unchanged.
type CriteriaRequest struct {
	TimeBucket    *recipe.TimeBucket    `json:"timeBucket"`
	Category      *string               `json:"category"`
	DietaryTag    *string               `json:"dietaryTag"`
	Difficulty    *string               `json:"difficulty"`
	CalorieBucket *recipe.CalorieBucket `json:"calorieBucket"`
	FavoritesOnly *bool                 `json:"favoritesOnly"`
}

func (req CriteriaRequest) apply(c *filter.Criteria) {
	if req.TimeBucket != nil {
		c.TimeBucket = *req.TimeBucket
	}
	if req.Category != nil {
		c.Category = *req.Category
	}
	if req.DietaryTag != nil {
		c.DietaryTag = *req.DietaryTag
	}
	if req.Difficulty != nil {
		c.Difficulty = *req.Difficulty
	}
	if req.CalorieBucket != nil {
		c.CalorieBucket = *req.CalorieBucket
	}
	if req.FavoritesOnly != nil {
		c.FavoritesOnly = *req.FavoritesOnly
	}
}

// FavoriteResponse reports a toggled favorite
type FavoriteResponse struct {
	ID             string `json:"id"`
	Favorite       bool   `json:"favorite"`
	SelectionValid bool   `json:"selectionValid"`
	Message        string `json:"message,omitempty"`
}

// HandleSnapshot returns the current read model
func (h *DiscoveryHandlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Snapshot(r.Context()))
}

// HandleStartSession replaces profile and applied criteria
func (h *DiscoveryHandlers) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.profiles.ValidateProfile(req.Profile); err != nil {
		h.writeError(w, r, errors.Wrap(err, "Invalid profile"))
		return
	}
	h.service.StartSession(r.Context(), req.Profile, req.Applied)
	h.writeJSON(w, http.StatusCreated, h.service.Snapshot(r.Context()))
}

// HandleSearch records search input. Without flush the term is applied
// after the debounce window, so the response may not reflect it yet.
func (h *DiscoveryHandlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.service.SetSearchInput(req.Term)
	status := http.StatusAccepted
	if req.Flush {
		h.service.FlushSearch()
		status = http.StatusOK
	}
	h.writeJSON(w, status, h.service.Snapshot(r.Context()))
}

// HandleCriteria edits pending criteria
func (h *DiscoveryHandlers) HandleCriteria(w http.ResponseWriter, r *http.Request) {
	var req CriteriaRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.service.EditPending(req.apply)
	h.writeJSON(w, http.StatusOK, h.service.Snapshot(r.Context()))
}

// HandleApply commits pending criteria
func (h *DiscoveryHandlers) HandleApply(w http.ResponseWriter, r *http.Request) {
	h.service.Apply(r.Context())
	h.writeJSON(w, http.StatusOK, h.service.Snapshot(r.Context()))
}

// HandleReset clears every criterion
func (h *DiscoveryHandlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.service.Reset(r.Context())
	h.writeJSON(w, http.StatusOK, h.service.Snapshot(r.Context()))
}

// HandleLoadMore reveals the next page
func (h *DiscoveryHandlers) HandleLoadMore(w http.ResponseWriter, r *http.Request) {
	h.service.LoadMore(r.Context())
	h.writeJSON(w, http.StatusOK, h.service.Snapshot(r.Context()))
}

// HandleResolveImages resolves images for the current filtered collection
func (h *DiscoveryHandlers) HandleResolveImages(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResolveImages(r.Context()); err != nil {
		h.writeError(w, r, errors.Wrap(err, "Image resolution interrupted"))
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.Snapshot(r.Context()))
}

// HandleToggleFavorite flips a recipe in the favorites set
func (h *DiscoveryHandlers) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.service.Lookup(id); err != nil {
		h.writeError(w, r, errors.Wrap(err, "lookup recipe"))
		return
	}

	favorite := h.favorites.Toggle(id)
	valid, message := discovery.ValidateFavoriteSelection(h.favorites)
	h.writeJSON(w, http.StatusOK, FavoriteResponse{
		ID:             id,
		Favorite:       favorite,
		SelectionValid: valid,
		Message:        message,
	})
}

func (h *DiscoveryHandlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.ContentLength == 0 {
		return true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.writeError(w, r, errors.NewBadRequestError("Invalid JSON body").WithCause(err))
		return false
	}
	return true
}

func (h *DiscoveryHandlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *DiscoveryHandlers) writeError(w http.ResponseWriter, r *http.Request, err *errors.AppError) {
	if err.StatusCode() >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	h.writeJSON(w, err.StatusCode(), errors.ToErrorResponse(err, chimiddleware.GetReqID(r.Context())))
}
