package balance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	balanceerrors "github.com/patwikx/rgroup-lms-sub000/internal/balance/errors"
	"github.com/patwikx/rgroup-lms-sub000/internal/domain"
	"github.com/patwikx/rgroup-lms-sub000/internal/employee"
	"github.com/patwikx/rgroup-lms-sub000/internal/leavetype"
	leavetypeerrors "github.com/patwikx/rgroup-lms-sub000/internal/leavetype/errors"
	"github.com/patwikx/rgroup-lms-sub000/internal/shared/clock"
)

type Service interface {
	// GetBalance looks up one ledger row. A zero year means the current
	// year; a missing row is NotFound, rows are only created by onboarding
	// and replenishment.
	GetBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (BalanceResponse, error)
	GetMyBalances(ctx context.Context, actor domain.Identity, year int) ([]BalanceResponse, error)
	GetAllByYear(ctx context.Context, actor domain.Identity, year int) ([]BalanceResponse, error)
	// Replenish recomputes every active employee's balance rows for the given
	// year in one transaction. Carry-over types add the previous year's
	// remaining balance on top of the allowance; other types reset to the
	// allowance. used and pending start at zero.
	Replenish(ctx context.Context, actor domain.Identity, year int) (ReplenishResponse, error)
	// SeedForEmployee creates zero-history balance rows for a new hire, one
	// per active leave type. Existing rows are left untouched.
	SeedForEmployee(ctx context.Context, employeeID, category string, year int) error
}

type service struct {
	db           *gorm.DB
	repo         Repository
	employeeRepo employee.Repository
	typeRepo     leavetype.Repository
	clk          clock.Clock
	logger       *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	employeeRepo employee.Repository,
	typeRepo leavetype.Repository,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &service{
		db:           db,
		repo:         repo,
		employeeRepo: employeeRepo,
		typeRepo:     typeRepo,
		clk:          clk,
		logger:       l,
	}
}

func (s *service) GetBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (BalanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidEmployeeID
	}
	if _, err := uuid.Parse(leaveTypeID); err != nil {
		return BalanceResponse{}, leavetypeerrors.ErrInvalidLeaveTypeID
	}
	if year == 0 {
		year = s.clk.Now().Year()
	}
	b, err := s.repo.FindByKey(ctx, employeeID, leaveTypeID, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BalanceResponse{}, balanceerrors.ErrBalanceNotFound
		}
		return BalanceResponse{}, err
	}
	return mapToResponse(*b), nil
}

func (s *service) GetMyBalances(ctx context.Context, actor domain.Identity, year int) ([]BalanceResponse, error) {
	if year == 0 {
		year = s.clk.Now().Year()
	}
	balances, err := s.repo.FindAllByEmployee(ctx, actor.EmployeeID, year)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(balances), nil
}

func (s *service) GetAllByYear(ctx context.Context, actor domain.Identity, year int) ([]BalanceResponse, error) {
	if actor.Role != domain.RoleHR {
		return nil, balanceerrors.ErrNotAuthorized
	}
	if year == 0 {
		year = s.clk.Now().Year()
	}
	balances, err := s.repo.FindAllByYear(ctx, year)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(balances), nil
}

func (s *service) Replenish(ctx context.Context, actor domain.Identity, year int) (ReplenishResponse, error) {
	s.logger.Debug("replenish requested",
		zap.String("actor_id", actor.EmployeeID),
		zap.Int("year", year),
	)

	if actor.Role != domain.RoleHR {
		return ReplenishResponse{}, balanceerrors.ErrNotAuthorized
	}
	if year < 2000 || year > 2200 {
		return ReplenishResponse{}, balanceerrors.ErrInvalidYear
	}

	var upserted int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)
		employees, err := s.employeeRepo.WithTx(tx).FindAllActive(ctx)
		if err != nil {
			return err
		}
		types, err := s.typeRepo.WithTx(tx).FindAllActive(ctx)
		if err != nil {
			return err
		}

		for _, e := range employees {
			for _, t := range types {
				newBalance := allowanceFor(t, e.Category)

				if t.IsCarryOver() {
					prev, err := qtx.FindByKey(ctx, e.ID.String(), t.ID.String(), year-1)
					if err == nil {
						newBalance = newBalance.Add(prev.Balance)
					} else if !errors.Is(err, gorm.ErrRecordNotFound) {
						return err
					}
				}

				if err := qtx.Upsert(ctx, &LeaveBalance{
					ID:          uuid.New(),
					EmployeeID:  e.ID,
					LeaveTypeID: t.ID,
					Year:        year,
					Balance:     newBalance,
					Used:        decimal.Zero,
					Pending:     decimal.Zero,
				}); err != nil {
					return err
				}
				upserted++
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("replenish failed", zap.Int("year", year), zap.Error(err))
		return ReplenishResponse{}, err
	}

	s.logger.Info("replenish success",
		zap.Int("year", year),
		zap.Int("rows_upserted", upserted),
	)
	return ReplenishResponse{Year: year, RowsUpserted: upserted}, nil
}

func (s *service) SeedForEmployee(ctx context.Context, employeeID, category string, year int) error {
	empID, err := uuid.Parse(employeeID)
	if err != nil {
		return balanceerrors.ErrInvalidEmployeeID
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)
		types, err := s.typeRepo.WithTx(tx).FindAllActive(ctx)
		if err != nil {
			return err
		}

		for _, t := range types {
			if err := qtx.CreateIfAbsent(ctx, &LeaveBalance{
				ID:          uuid.New(),
				EmployeeID:  empID,
				LeaveTypeID: t.ID,
				Year:        year,
				Balance:     allowanceFor(t, category),
				Used:        decimal.Zero,
				Pending:     decimal.Zero,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// allowanceFor picks the reduced TWC allowance when one is configured.
func allowanceFor(t leavetype.LeaveType, category string) decimal.Decimal {
	if category == domain.CategoryTWC && t.TWCAllowance.IsPositive() {
		return t.TWCAllowance
	}
	return t.AnnualAllowance
}

func mapToResponse(b LeaveBalance) BalanceResponse {
	return BalanceResponse{
		ID:          b.ID.String(),
		EmployeeID:  b.EmployeeID.String(),
		LeaveTypeID: b.LeaveTypeID.String(),
		Year:        b.Year,
		Balance:     b.Balance.String(),
		Used:        b.Used.String(),
		Pending:     b.Pending.String(),
	}
}

func mapToListResponse(balances []LeaveBalance) []BalanceResponse {
	resp := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = mapToResponse(b)
	}
	return resp
}
