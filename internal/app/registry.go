package app

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/patwikx/rgroup-lms-sub000/internal/auth"
	"github.com/patwikx/rgroup-lms-sub000/internal/balance"
	"github.com/patwikx/rgroup-lms-sub000/internal/employee"
	"github.com/patwikx/rgroup-lms-sub000/internal/leaverequest"
	"github.com/patwikx/rgroup-lms-sub000/internal/leavetype"
	"github.com/patwikx/rgroup-lms-sub000/internal/messaging/kafka"
	"github.com/patwikx/rgroup-lms-sub000/internal/middleware"
	"github.com/patwikx/rgroup-lms-sub000/internal/overtime"
	"github.com/patwikx/rgroup-lms-sub000/internal/rbac"
	"github.com/patwikx/rgroup-lms-sub000/internal/rbac/infra"
	"github.com/patwikx/rgroup-lms-sub000/internal/shared/clock"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	clk := clock.Real()

	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveTypeRepo := leavetype.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	leaveRepo := leaverequest.NewRepository(gormDB)
	overtimeRepo := overtime.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(enforcer)
	if err != nil {
		return err
	}

	// --- Services ---
	authService := auth.NewService(authRepo, employeeRepo, clk)
	employeeService := employee.NewServiceWithOutbox(gormDB, employeeRepo, outboxRepo)
	leaveTypeService := leavetype.NewService(leaveTypeRepo, rdb)
	balanceService := balance.NewService(gormDB, balanceRepo, employeeRepo, leaveTypeRepo, clk)
	leaveService := leaverequest.NewService(gormDB, leaveRepo, balanceRepo, employeeRepo, leaveTypeRepo, outboxRepo, clk)
	overtimeService := overtime.NewService(gormDB, overtimeRepo, employeeRepo, outboxRepo, clk)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	employeeHandler := employee.NewHandler(employeeService)
	leaveTypeHandler := leavetype.NewHandler(leaveTypeService)
	balanceHandler := balance.NewHandler(balanceService)
	leaveHandler := leaverequest.NewHandler(leaveService)
	overtimeHandler := overtime.NewHandler(overtimeService)

	// --- Routes ---
	router.Use(middleware.RequestID())

	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		employee.RegisterRoutes(api, employeeHandler, rbacService)
		leavetype.RegisterRoutes(api, leaveTypeHandler, rbacService)
		balance.RegisterRoutes(api, balanceHandler, rbacService)
		leaverequest.RegisterRoutes(api, leaveHandler, rbacService, rdb)
		overtime.RegisterRoutes(api, overtimeHandler, rbacService, rdb)
	}

	return nil
}
