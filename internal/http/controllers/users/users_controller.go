// Package users contiene el controller HTTP de usuarios.
package users

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/hellouser/internal/http/dto/users"
	httperrors "github.com/dropDatabas3/hellouser/internal/http/errors"
	"github.com/dropDatabas3/hellouser/internal/http/helpers"
	"github.com/dropDatabas3/hellouser/internal/observability/logger"
	svc "github.com/dropDatabas3/hellouser/internal/services/users"
)

// UsersController maneja las rutas /v1/users.
type UsersController struct {
	service svc.Service
}

// NewUsersController crea el controller.
func NewUsersController(service svc.Service) *UsersController {
	return &UsersController{service: service}
}

// Register monta las rutas sobre r.
func (c *UsersController) Register(r chi.Router) {
	r.Post("/v1/users", c.Create)
	r.Get("/v1/users", c.Find)
	r.Get("/v1/users/{id}", c.Get)
	r.Patch("/v1/users/{id}", c.Update)
}

// Create maneja POST /v1/users
func (c *UsersController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("UsersController.Create"))

	var req dto.CreateUserRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		httperrors.WriteError(w, r, httperrors.ErrMissingFields.WithDetail("name and email are required"))
		return
	}

	out, err := c.service.Create(ctx, svc.CreateInput{Name: req.Name, Email: req.Email})
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	log.Debug("user created", logger.UserID(out.ID))
	w.Header().Set("Location", "/v1/users/"+out.ID)
	helpers.WriteJSON(w, http.StatusCreated, toResponse(out))
}

// Get maneja GET /v1/users/{id}
func (c *UsersController) Get(w http.ResponseWriter, r *http.Request) {
	out, err := c.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toResponse(out))
}

// Find maneja GET /v1/users?email=
func (c *UsersController) Find(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		httperrors.WriteError(w, r, httperrors.ErrInvalidParameter.WithField("email").WithDetail("email query parameter is required"))
		return
	}
	out, err := c.service.GetByEmail(r.Context(), email)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toResponse(out))
}

// Update maneja PATCH /v1/users/{id}. name y email se aplican juntos en una
// única unidad de trabajo.
func (c *UsersController) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Name == nil && req.Email == nil {
		httperrors.WriteError(w, r, httperrors.ErrMissingFields.WithDetail("name or email is required"))
		return
	}

	out, err := c.service.Update(r.Context(), chi.URLParam(r, "id"), svc.UpdateInput{Name: req.Name, Email: req.Email})
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toResponse(out))
}

func toResponse(o *svc.UserOutput) dto.UserResponse {
	return dto.UserResponse{
		ID:          o.ID,
		Name:        o.Name,
		DisplayName: o.DisplayName,
		Email:       o.Email,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}
