package accounts

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"medicloud-backend/internal/audit"
	"medicloud-backend/internal/shared/server/middleware"
	"medicloud-backend/internal/shared/server/respond"
)

// Handler wires the SysAdmin-only account administration endpoints.
type Handler struct {
	Svc      *Service
	Recorder *audit.Recorder
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, recorder *audit.Recorder) *Handler {
	return &Handler{Svc: svc, Recorder: recorder}
}

// RegisterRoutes attaches account routes to the admin group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/usuarios", h.list)
	rg.POST("/usuarios", h.create)
	rg.PUT("/usuarios/:id/estado", h.setStatus)
	rg.PUT("/usuarios/:id/reset", h.resetPassword)
	rg.DELETE("/usuarios/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	accounts, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.respondErr(c, err)
		return
	}
	if accounts == nil {
		accounts = []Account{}
	}
	h.recordAdmin(c, "Listado de usuarios")
	respond.OK(c, gin.H{"usuarios": accounts})
}

type createRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   int    `json:"roleId"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	id, err := h.Svc.Create(c.Request.Context(), req.Name, req.Email, req.Password, req.RoleID)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.recordAdmin(c, "Alta de usuario "+req.Email)
	respond.JSON(c, http.StatusCreated, gin.H{"id": id})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) setStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid user id", nil)
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if err := h.Svc.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		h.respondErr(c, err)
		return
	}
	p, _ := middleware.PrincipalFromContext(c)
	actor := p.ID
	h.Recorder.Forensic(&actor, nil, c.ClientIP(), audit.ActionStatusChange, audit.OutcomeSuccess)
	h.Recorder.Audit(p.Email, p.Role.ID(), "Cambio de estado de usuario a "+req.Status)
	respond.OK(c, gin.H{"message": "estado actualizado"})
}

type resetRequest struct {
	Password string `json:"password"`
}

func (h *Handler) resetPassword(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid user id", nil)
		return
	}
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if err := h.Svc.ResetPassword(c.Request.Context(), id, req.Password); err != nil {
		h.respondErr(c, err)
		return
	}
	h.recordAdmin(c, "Reinicio de contrasena de usuario")
	respond.OK(c, gin.H{"message": "contrasena actualizada"})
}

func (h *Handler) delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid user id", nil)
		return
	}

	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		h.respondErr(c, err)
		return
	}
	h.recordAdmin(c, "Baja de usuario")
	respond.OK(c, gin.H{"message": "usuario eliminado"})
}

func (h *Handler) recordAdmin(c *gin.Context, auditText string) {
	p, _ := middleware.PrincipalFromContext(c)
	actor := p.ID
	h.Recorder.Forensic(&actor, nil, c.ClientIP(), audit.ActionAdminPanel, audit.OutcomeSuccess)
	h.Recorder.Audit(p.Email, p.Role.ID(), auditText)
}

func (h *Handler) respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrEmailTaken):
		respond.Error(c, http.StatusConflict, "email_taken", "email already registered", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "upstream_failure", "internal error", nil)
	}
}
