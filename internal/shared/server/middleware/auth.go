package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medicloud-backend/internal/policy"
	"medicloud-backend/internal/shared/auth"
	"medicloud-backend/internal/shared/server/respond"
	"medicloud-backend/internal/shared/telemetry"
)

const (
	userIDKey    = "userId"
	principalKey = "principal"
)

// ForensicRecorder is the subset of the audit recorder the middleware needs.
type ForensicRecorder interface {
	Forensic(userID, documentID *int64, sourceIP, action, outcome string)
}

// Auth verifies the bearer credential and stores the principal in context.
// Expired and malformed tokens both yield 401; the distinction is logged.
func Auth(signer *auth.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthenticated", "missing or invalid credential", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthenticated", "missing or invalid credential", nil)
			return
		}

		claims, err := signer.Verify(token)
		if err != nil {
			reason := "malformed"
			if errors.Is(err, auth.ErrTokenExpired) {
				reason = "expired"
			}
			telemetry.Info("auth.rejected", map[string]any{
				"request_id": RequestIDFromContext(c),
				"reason":     reason,
				"client_ip":  c.ClientIP(),
			})
			respond.Error(c, http.StatusUnauthorized, "unauthenticated", "missing or invalid credential", nil)
			return
		}

		accountID, err := claims.AccountID()
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthenticated", "missing or invalid credential", nil)
			return
		}

		p := policy.Principal{
			ID:    accountID,
			Role:  policy.RoleFromID(claims.RoleID),
			Name:  claims.Name,
			Email: claims.Email,
		}
		c.Set(userIDKey, p.ID)
		c.Set(principalKey, p)
		c.Next()
	}
}

// RequireAdmin rejects principals without the admin capability. The denial
// leaks nothing about the requested resource and leaves a forensic trace
// recorded under the given action and outcome codes.
func RequireAdmin(recorder ForensicRecorder, action, denialOutcome string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFromContext(c)
		if !ok {
			respond.Error(c, http.StatusUnauthorized, "unauthenticated", "missing or invalid credential", nil)
			return
		}
		if !policy.Authorize(p, policy.OpAdminUsers) {
			if recorder != nil {
				id := p.ID
				recorder.Forensic(&id, nil, c.ClientIP(), action, denialOutcome)
			}
			respond.Error(c, http.StatusForbidden, "forbidden", "insufficient privileges", nil)
			return
		}
		c.Next()
	}
}

// PrincipalFromContext fetches the principal stored by Auth.
func PrincipalFromContext(c *gin.Context) (policy.Principal, bool) {
	if c == nil {
		return policy.Principal{}, false
	}
	val, ok := c.Get(principalKey)
	if !ok {
		return policy.Principal{}, false
	}
	p, ok := val.(policy.Principal)
	return p, ok
}
