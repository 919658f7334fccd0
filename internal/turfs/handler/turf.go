package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"turfbook/internal/turfs/service"
	"turfbook/pkg/config"
	apperrors "turfbook/pkg/errors"
	httputil "turfbook/pkg/http"
	"turfbook/pkg/middleware"
	"turfbook/pkg/model"
)

type TurfHandler struct {
	service service.TurfService
	cfg     *config.Config
}

func NewTurfHandler(service service.TurfService, cfg *config.Config) *TurfHandler {
	return &TurfHandler{service: service, cfg: cfg}
}

func (h *TurfHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/turfs", middleware.RequireRole(h.cfg.JWTSecret, model.RoleOwner, h.Create))
	router.GET("/api/v1/turfs", h.List)
	router.GET("/api/v1/turfs/:id", h.GetByID)
	router.PATCH("/api/v1/turfs/:id", middleware.RequireRole(h.cfg.JWTSecret, model.RoleOwner, h.Update))
	router.DELETE("/api/v1/turfs/:id", middleware.RequireRole(h.cfg.JWTSecret, model.RoleOwner, h.Delete))

	// Static siblings of /turfs/:id would conflict in the router, so search,
	// locations, and the owner's own listing live at the top level.
	router.GET("/api/v1/search", h.Search)
	router.GET("/api/v1/locations", h.Locations)
	router.GET("/api/v1/my-turfs", middleware.RequireRole(h.cfg.JWTSecret, model.RoleOwner, h.ListMine))
}

func (h *TurfHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	var turf model.Turf
	if err := json.NewDecoder(r.Body).Decode(&turf); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}
	turf.OwnerID = principal.ID

	id, err := h.service.Create(r.Context(), &turf)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, map[string]string{"id": id})
}

func (h *TurfHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	turf, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, turf)
}

func (h *TurfHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, apperrors.InvalidInput(err.Error()))
		return
	}

	turfs, total, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, turfs, total, config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset))
}

// ListMine returns the turfs owned by the authenticated owner, the shape the
// owner dashboard lists.
func (h *TurfHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	turfs, err := h.service.ListByOwner(r.Context(), principal.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, turfs)
}

// Search filters turfs by location and price ceiling; when date and time are
// supplied it also drops turfs already booked at that moment.
func (h *TurfHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	var maxPrice int64
	if raw := query.Get("max_price"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			httputil.WriteError(w, apperrors.InvalidInput("max_price must be a non-negative integer"))
			return
		}
		maxPrice = parsed
	}

	turfs, err := h.service.Search(r.Context(), service.SearchQuery{
		Location:  query.Get("location"),
		MaxPrice:  maxPrice,
		Date:      query.Get("date"),
		TimePoint: query.Get("time"),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, turfs)
}

func (h *TurfHandler) Locations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	locations, err := h.service.Locations(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, locations)
}

func (h *TurfHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	var update model.TurfUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), principal.ID, &update); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *TurfHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	if err := h.service.Delete(r.Context(), ps.ByName("id"), principal.ID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}
