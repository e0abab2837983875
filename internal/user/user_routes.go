package user

import (
	"transferdesk/internal/middleware"
	"transferdesk/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/approvers", middleware.RBACAuthorize(rbacService, "user", "read"), handler.ListApprovers)
	}
}
