package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/pos-suite/backend-go/internal/domain"
)

// sessionFrom builds the caller's session from request headers. The backend
// carries no real authentication, so absent headers fall back to the same
// all-branches admin session the dashboard always assumed; non-admin roles
// are pinned to their branch by the service layer.
func sessionFrom(c *gin.Context) domain.SessionContext {
	sess := domain.SessionContext{
		EmployeeID: c.GetHeader("X-Employee-Id"),
		BranchID:   c.GetHeader("X-Branch-Id"),
		Role:       c.GetHeader("X-Role"),
	}
	if sess.Role == "" {
		sess.Role = domain.RoleSuperAdmin
	}
	return sess
}
