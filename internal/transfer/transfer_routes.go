package transfer

import (
	"transferdesk/internal/middleware"
	"transferdesk/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
) {
	transfers := r.Group("/transfer-requests")
	transfers.Use(middleware.AuthMiddleware())
	{
		transfers.POST("",
			middleware.RBACAuthorize(rbacService, "transfer", "create"),
			middleware.Idempotency(rdb),
			handler.Create,
		)
		transfers.GET("",
			middleware.RBACAuthorize(rbacService, "transfer", "read"),
			handler.List,
		)
		transfers.GET("/stats",
			middleware.RBACAuthorize(rbacService, "transfer", "read"),
			handler.Stats,
		)
		transfers.GET("/:id",
			middleware.RBACAuthorize(rbacService, "transfer", "read"),
			handler.GetByID,
		)

		// Transitions share a per-user limiter: approvals are human-paced
		// and a runaway client gains nothing from hammering them. The
		// idempotency layer makes a double-submitted decision replay its
		// first response instead of hitting the state machine twice.
		decide := transfers.Group("")
		decide.Use(middleware.RateLimitByUser(5, 10))
		decide.Use(middleware.Idempotency(rdb))
		{
			decide.POST("/:id/approve",
				middleware.RBACAuthorize(rbacService, "transfer", "approve"),
				handler.Approve,
			)
			decide.POST("/:id/reject",
				middleware.RBACAuthorize(rbacService, "transfer", "approve"),
				handler.Reject,
			)
			decide.POST("/:id/request-changes",
				middleware.RBACAuthorize(rbacService, "transfer", "approve"),
				handler.RequestChanges,
			)
			decide.POST("/:id/resubmit",
				middleware.RBACAuthorize(rbacService, "transfer", "create"),
				handler.Resubmit,
			)
			decide.POST("/:id/assign-manager",
				middleware.RBACAuthorize(rbacService, "transfer", "assign"),
				handler.AssignManager,
			)
		}
	}
}
