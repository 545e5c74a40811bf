package leaverequest

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
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.POST("",
			middleware.RBACAuthorize(rbacService, "leave", "create"),
			middleware.Idempotency(rdb),
			handler.Create,
		)
		leaves.GET("", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetAll)
		leaves.GET("/me", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetMine)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetById)
		leaves.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, "leave", "cancel"), handler.Cancel)
		leaves.POST("/:id/pmd", middleware.RBACAuthorize(rbacService, "leave", "pmd"), handler.PMDDecision)
	}

	approvals := r.Group("/leave-approvals")
	approvals.Use(middleware.AuthMiddleware())
	{
		approvals.GET("/pending", middleware.RBACAuthorize(rbacService, "leave", "approve"), handler.GetPendingApprovals)
		approvals.POST("/:id/decide", middleware.RBACAuthorize(rbacService, "leave", "approve"), handler.Decide)
	}
}
