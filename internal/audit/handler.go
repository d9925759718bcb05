package audit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medicloud-backend/internal/shared/server/middleware"
	"medicloud-backend/internal/shared/server/respond"
)

// Handler serves the administrative audit trail.
type Handler struct {
	Repo     Repo
	Recorder *Recorder
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo, recorder *Recorder) *Handler {
	return &Handler{Repo: repo, Recorder: recorder}
}

// RegisterRoutes attaches audit routes to the admin group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auditoria", h.list)
}

func (h *Handler) list(c *gin.Context) {
	p, _ := middleware.PrincipalFromContext(c)

	entries, err := h.Repo.LastAudit(c.Request.Context(), 100)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "upstream_failure", "failed to read audit trail", nil)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}

	id := p.ID
	h.Recorder.Forensic(&id, nil, c.ClientIP(), ActionAdminPanel, OutcomeSuccess)
	h.Recorder.Audit(p.Email, p.Role.ID(), "Consulta del registro de auditoria")

	respond.OK(c, gin.H{"auditoria": entries})
}
