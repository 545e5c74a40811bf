package leavetype_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/patwikx/rgroup-lms-sub000/internal/leavetype"
	leavetypeerrors "github.com/patwikx/rgroup-lms-sub000/internal/leavetype/errors"
)

type fakeTypeRepo struct {
	findAllActiveFn func(ctx context.Context) ([]leavetype.LeaveType, error)
	findByIDFn      func(ctx context.Context, id string) (*leavetype.LeaveType, error)
}

func (f *fakeTypeRepo) WithTx(tx *gorm.DB) leavetype.Repository { return f }

func (f *fakeTypeRepo) FindAllActive(ctx context.Context) ([]leavetype.LeaveType, error) {
	if f.findAllActiveFn != nil {
		return f.findAllActiveFn(ctx)
	}
	return nil, nil
}

func (f *fakeTypeRepo) FindByID(ctx context.Context, id string) (*leavetype.LeaveType, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func TestLeaveTypeService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := &fakeTypeRepo{
			findAllActiveFn: func(ctx context.Context) ([]leavetype.LeaveType, error) {
				return []leavetype.LeaveType{
					{
						ID:              uuid.New(),
						Name:            "Vacation Leave",
						Code:            "VL",
						AnnualAllowance: decimal.NewFromInt(15),
						Active:          true,
					},
					{
						ID:              uuid.New(),
						Name:            "Emergency Leave",
						Code:            "EL",
						AnnualAllowance: decimal.NewFromInt(3),
						Active:          true,
					},
				}, nil
			},
		}
		svc := leavetype.NewService(repo, nil)

		resp, err := svc.List(ctx)

		assert.NoError(t, err)
		assert.Len(t, resp, 2)
		assert.Equal(t, "VL", resp[0].Code)
		assert.True(t, resp[0].CarryOver)
		assert.False(t, resp[1].CarryOver)
	})
}

func TestLeaveTypeService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("negative invalid id", func(t *testing.T) {
		svc := leavetype.NewService(&fakeTypeRepo{}, nil)

		_, err := svc.GetByID(ctx, "not-a-uuid")

		assert.ErrorIs(t, err, leavetypeerrors.ErrInvalidLeaveTypeID)
	})

	t.Run("negative not found", func(t *testing.T) {
		svc := leavetype.NewService(&fakeTypeRepo{}, nil)

		_, err := svc.GetByID(ctx, uuid.New().String())

		assert.ErrorIs(t, err, leavetypeerrors.ErrLeaveTypeNotFound)
	})
}

func TestLeaveTypeIsCarryOver(t *testing.T) {
	cases := []struct {
		name string
		lt   leavetype.LeaveType
		want bool
	}{
		{"vacation by name", leavetype.LeaveType{Name: "Vacation Leave", Code: "XX"}, true},
		{"sick by name", leavetype.LeaveType{Name: "Sick Leave", Code: "XX"}, true},
		{"vacation by code", leavetype.LeaveType{Name: "Annual", Code: "vl"}, true},
		{"sick by code", leavetype.LeaveType{Name: "Health", Code: "SL"}, true},
		{"emergency resets", leavetype.LeaveType{Name: "Emergency Leave", Code: "EL"}, false},
		{"maternity resets", leavetype.LeaveType{Name: "Maternity Leave", Code: "ML"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.lt.IsCarryOver())
		})
	}
}
