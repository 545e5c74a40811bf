package balance

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/patwikx/rgroup-lms-sub000/internal/events"
)

// ConsumeEmployeeOnboarded seeds leave balance rows for new hires from the
// employee lifecycle topic. Seeding is idempotent (CreateIfAbsent), so a
// redelivered event is safe to commit.
func ConsumeEmployeeOnboarded(
	ctx context.Context,
	reader *kafkago.Reader,
	service Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_onboarded")
	log.Info("employee onboarded consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("employee onboarded consumer stopped")
				return
			}
			log.Error("fetch employee onboarded message failed", zap.Error(err))
			continue
		}

		var event events.EmployeeOnboardedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode employee onboarded event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		year := event.OccurredAt.Year()
		if err := service.SeedForEmployee(ctx, event.EmployeeID, event.Category, year); err != nil {
			log.Error("seed leave balances failed",
				zap.String("employee_id", event.EmployeeID),
				zap.Int("year", year),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit employee onboarded message failed", zap.Error(err))
			continue
		}

		log.Info("leave balances seeded from employee onboarded event",
			zap.String("employee_id", event.EmployeeID),
			zap.Int("year", year),
		)
	}
}
