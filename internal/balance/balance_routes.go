package balance

import (
	"github.com/gin-gonic/gin"

	"github.com/patwikx/rgroup-lms-sub000/internal/middleware"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	balances := r.Group("/balances")
	balances.Use(middleware.AuthMiddleware())
	{
		balances.GET("/me", middleware.RBACAuthorize(rbacService, "balance", "read_own"), handler.GetMine)
		balances.GET("", middleware.RBACAuthorize(rbacService, "balance", "read"), handler.GetAll)
		balances.GET("/lookup", middleware.RBACAuthorize(rbacService, "balance", "read"), handler.Get)
		balances.POST("/replenish", middleware.RBACAuthorize(rbacService, "balance", "replenish"), handler.Replenish)
	}
}
