package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/patwikx/rgroup-lms-sub000/internal/balance"
	"github.com/patwikx/rgroup-lms-sub000/internal/employee"
	"github.com/patwikx/rgroup-lms-sub000/internal/events"
	"github.com/patwikx/rgroup-lms-sub000/internal/leavetype"
	"github.com/patwikx/rgroup-lms-sub000/internal/shared/clock"
	"github.com/patwikx/rgroup-lms-sub000/internal/shared/connection"
)

// RunConsumer seeds leave balances for freshly onboarded employees from the
// employee lifecycle topic until interrupted.
func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	balanceRepo := balance.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveTypeRepo := leavetype.NewRepository(gormDB)
	balanceService := balance.NewService(gormDB, balanceRepo, employeeRepo, leaveTypeRepo, clock.Real())

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.EmployeeOnboardedTopic,
		GroupID:        "lms-balance-seeder",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go balance.ConsumeEmployeeOnboarded(ctx, reader, balanceService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
