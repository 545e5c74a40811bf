package overtime

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/patwikx/rgroup-lms-sub000/internal/middleware"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
) {
	overtimes := r.Group("/overtimes")
	overtimes.Use(middleware.AuthMiddleware())
	{
		overtimes.POST("",
			middleware.RBACAuthorize(rbacService, "overtime", "create"),
			middleware.Idempotency(rdb),
			handler.Create,
		)
		overtimes.GET("", middleware.RBACAuthorize(rbacService, "overtime", "read"), handler.GetAll)
		overtimes.GET("/me", middleware.RBACAuthorize(rbacService, "overtime", "read"), handler.GetMine)
		overtimes.GET("/:id", middleware.RBACAuthorize(rbacService, "overtime", "read"), handler.GetById)
		overtimes.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, "overtime", "cancel"), handler.Cancel)
	}

	approvals := r.Group("/overtime-approvals")
	approvals.Use(middleware.AuthMiddleware())
	{
		approvals.GET("/pending", middleware.RBACAuthorize(rbacService, "overtime", "approve"), handler.GetPendingApprovals)
		approvals.POST("/:id/decide", middleware.RBACAuthorize(rbacService, "overtime", "approve"), handler.Decide)
	}
}
