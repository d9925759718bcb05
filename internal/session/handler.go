package session

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medicloud-backend/internal/shared/server/respond"
)

// Handler exposes the login endpoint.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the public session routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.login)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "email and password are required", nil)
		return
	}

	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		h.respondErr(c, err)
		return
	}

	respond.OK(c, gin.H{"message": res.Message, "token": res.Token})
}

func (h *Handler) respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		// Unknown account and wrong password look identical on the wire.
		respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "email o contraseña incorrectos", nil)
	case errors.Is(err, ErrAccountBlocked):
		respond.Error(c, http.StatusForbidden, "account_blocked", "cuenta bloqueada, contacte al administrador", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "upstream_failure", "internal error", nil)
	}
}
