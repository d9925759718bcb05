package vault

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"medicloud-backend/internal/audit"
	"medicloud-backend/internal/policy"
	"medicloud-backend/internal/shared/server/middleware"
	"medicloud-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MiB

// Handler wires HTTP handlers to the vault service.
type Handler struct {
	Svc      *Service
	Recorder *audit.Recorder
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, recorder *audit.Recorder) *Handler {
	return &Handler{Svc: svc, Recorder: recorder}
}

// RegisterRoutes attaches vault routes to the authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/mis-carpetas", h.listFolders)
	rg.POST("/carpetas", h.createFolder)
	rg.DELETE("/carpetas/:id", h.deleteFolder)
	rg.GET("/carpetas", h.listDocuments)
	rg.GET("/carpetas/buscar", h.searchDocuments)
	rg.POST("/carpetas/upload", h.upload)
	rg.GET("/documentos/:id/url", h.signedURL)
	rg.DELETE("/documentos/:id", h.deleteDocument)
}

func (h *Handler) listFolders(c *gin.Context) {
	p, _ := middleware.PrincipalFromContext(c)

	folders, err := h.Svc.ListFolders(c.Request.Context(), policy.ScopeFor(p))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	if folders == nil {
		folders = []Folder{}
	}
	respond.OK(c, gin.H{"carpetas": folders})
}

func (h *Handler) listDocuments(c *gin.Context) {
	p, _ := middleware.PrincipalFromContext(c)

	docs, err := h.Svc.ListDocuments(c.Request.Context(), policy.ScopeFor(p))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.record(p, c.ClientIP(), nil, audit.ActionVaultQuery, audit.OutcomeSuccess, "Consulta de la boveda")
	respond.OK(c, gin.H{"documentos": toViews(docs)})
}

func (h *Handler) searchDocuments(c *gin.Context) {
	p, _ := middleware.PrincipalFromContext(c)

	term := c.Query("nombre")
	if term == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "nombre is required", nil)
		return
	}

	docs, err := h.Svc.SearchDocuments(c.Request.Context(), term, policy.ScopeFor(p))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.record(p, c.ClientIP(), nil, audit.ActionSearch, audit.OutcomeSuccess, "Busqueda de expedientes")
	respond.OK(c, gin.H{"documentos": toViews(docs)})
}

type createFolderRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createFolder(c *gin.Context) {
	p, _ := middleware.PrincipalFromContext(c)

	var req createFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "name is required", nil)
		return
	}

	folderID, err := h.Svc.CreateFolder(c.Request.Context(), policy.TenantKey(p.Email), req.Name)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.record(p, c.ClientIP(), nil, audit.ActionVaultQuery, audit.OutcomeSuccess, "Creacion de carpeta "+req.Name)
	respond.JSON(c, http.StatusCreated, gin.H{"id": folderID})
}

func (h *Handler) deleteFolder(c *gin.Context) {
	p, _ := middleware.PrincipalFromContext(c)

	folderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid folder id", nil)
		return
	}

	if err := h.Svc.DeleteFolder(c.Request.Context(), folderID, policy.ScopeFor(p)); err != nil {
		h.respondErr(c, err)
		return
	}
	h.record(p, c.ClientIP(), nil, audit.ActionDelete, audit.OutcomeSuccess, "Eliminacion de carpeta")
	respond.OK(c, gin.H{"message": "carpeta eliminada"})
}

func (h *Handler) upload(c *gin.Context) {
	p, _ := middleware.PrincipalFromContext(c)

	// Reject oversized payloads before accepting them.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "file exceeds the upload size limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	folderID, err := strconv.ParseInt(c.PostForm("folderId"), 10, 64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "folderId is required", nil)
		return
	}
	criticality := c.PostForm("criticality")
	fileName := c.PostForm("name")
	if fileName == "" {
		fileName = fileHeader.Filename
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	documentID, err := h.Svc.Upload(
		c.Request.Context(),
		policy.WriteScopeFor(p),
		folderID,
		fileName,
		fileHeader.Header.Get("Content-Type"),
		criticality,
		file,
	)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.record(p, c.ClientIP(), &documentID, audit.ActionUpload, audit.OutcomeSuccess, "Subida de documento "+fileName)
	respond.JSON(c, http.StatusCreated, gin.H{"id": documentID})
}

func (h *Handler) signedURL(c *gin.Context) {
	p, _ := middleware.PrincipalFromContext(c)

	documentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid document id", nil)
		return
	}

	url, err := h.Svc.SignedURL(c.Request.Context(), documentID, 0)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.record(p, c.ClientIP(), &documentID, audit.ActionVaultQuery, audit.OutcomeSuccess, "Descarga de documento")
	respond.OK(c, gin.H{"url": url})
}

func (h *Handler) deleteDocument(c *gin.Context) {
	p, _ := middleware.PrincipalFromContext(c)

	documentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid document id", nil)
		return
	}

	if err := h.Svc.Delete(c.Request.Context(), documentID); err != nil {
		h.respondErr(c, err)
		return
	}
	// The document row is gone: the forensic entry keeps only the actor.
	h.record(p, c.ClientIP(), nil, audit.ActionDelete, audit.OutcomeSuccess, "Eliminacion de documento")
	respond.OK(c, gin.H{"message": "documento eliminado"})
}

func (h *Handler) record(p policy.Principal, sourceIP string, documentID *int64, action, outcome, auditText string) {
	id := p.ID
	h.Recorder.Forensic(&id, documentID, sourceIP, action, outcome)
	h.Recorder.Audit(p.Email, p.Role.ID(), auditText)
}

func (h *Handler) respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrTenantUnresolved):
		respond.Error(c, http.StatusBadRequest, "tenant_unresolved", "no organization matches your tenant", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resource not found", nil)
	case errors.Is(err, ErrFolderNotEmpty):
		respond.Error(c, http.StatusConflict, "folder_not_empty", "folder still contains documents", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "upstream_failure", "internal error", nil)
	}
}
