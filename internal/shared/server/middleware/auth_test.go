package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"medicloud-backend/internal/shared/auth"
)

type forensicCapture struct {
	entries []string
	userIDs []*int64
}

func (f *forensicCapture) Forensic(userID, _ *int64, _ string, action, outcome string) {
	f.entries = append(f.entries, action+"/"+outcome)
	f.userIDs = append(f.userIDs, userID)
}

func newAuthTestRouter(t *testing.T, signer *auth.Signer, rec ForensicRecorder) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authed := r.Group("", Auth(signer))
	authed.GET("/recurso", func(c *gin.Context) {
		p, _ := PrincipalFromContext(c)
		c.JSON(http.StatusOK, gin.H{"email": p.Email})
	})
	admin := authed.Group("/admin", RequireAdmin(rec, "ACCESO_ADMIN_PANEL", "DENEGADO_ROL"))
	admin.GET("/usuarios", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func newSigner(t *testing.T) *auth.Signer {
	t.Helper()
	signer, err := auth.NewSigner("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	return signer
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRejectsMissingAndMalformedTokens(t *testing.T) {
	r := newAuthTestRouter(t, newSigner(t), nil)

	if w := get(r, "/recurso", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", w.Code)
	}
	if w := get(r, "/recurso", "not-a-jwt"); w.Code != http.StatusUnauthorized {
		t.Fatalf("malformed token: expected 401, got %d", w.Code)
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	signer := newSigner(t)

	// Issue in the past, verify with the real clock.
	past := time.Now().Add(-2 * time.Hour)
	signer.WithClock(func() time.Time { return past })
	token, err := signer.Issue(7, 1, "Ana", "ana@clinicasanjose.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	signer.WithClock(time.Now)

	r := newAuthTestRouter(t, signer, nil)
	if w := get(r, "/recurso", token); w.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: expected 401, got %d", w.Code)
	}
}

func TestAuthAcceptsValidTokenAndExposesPrincipal(t *testing.T) {
	signer := newSigner(t)
	token, err := signer.Issue(7, 1, "Ana", "ana@clinicasanjose.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := newAuthTestRouter(t, signer, nil)
	w := get(r, "/recurso", token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRequireAdminDeniesManagementWithForensicTrace(t *testing.T) {
	signer := newSigner(t)
	rec := &forensicCapture{}
	r := newAuthTestRouter(t, signer, rec)

	// Management reads everything but never administers.
	token, err := signer.Issue(7, 1, "Ana", "ana@clinicasanjose.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	w := get(r, "/admin/usuarios", token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if len(rec.entries) != 1 || rec.entries[0] != "ACCESO_ADMIN_PANEL/DENEGADO_ROL" {
		t.Fatalf("expected denial forensic entry, got %v", rec.entries)
	}
	if rec.userIDs[0] == nil || *rec.userIDs[0] != 7 {
		t.Fatal("denial must reference the principal")
	}
}

func TestRequireAdminAllowsSysAdmin(t *testing.T) {
	signer := newSigner(t)
	rec := &forensicCapture{}
	r := newAuthTestRouter(t, signer, rec)

	token, err := signer.Issue(1, 3, "Root", "root@medicloud.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	w := get(r, "/admin/usuarios", token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(rec.entries) != 0 {
		t.Fatalf("no forensic entries expected, got %v", rec.entries)
	}
}
