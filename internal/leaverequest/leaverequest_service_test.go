package leaverequest_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/patwikx/rgroup-lms-sub000/internal/balance"
	balanceerrors "github.com/patwikx/rgroup-lms-sub000/internal/balance/errors"
	"github.com/patwikx/rgroup-lms-sub000/internal/domain"
	"github.com/patwikx/rgroup-lms-sub000/internal/employee"
	"github.com/patwikx/rgroup-lms-sub000/internal/leaverequest"
	leaverequesterrors "github.com/patwikx/rgroup-lms-sub000/internal/leaverequest/errors"
	"github.com/patwikx/rgroup-lms-sub000/internal/leavetype"
	"github.com/patwikx/rgroup-lms-sub000/internal/messaging/kafka"
	"github.com/patwikx/rgroup-lms-sub000/internal/shared/clock"
)

// --- fakes ---

type fakeLeaveRepo struct {
	createRequestFn         func(ctx context.Context, req *leaverequest.LeaveRequest) error
	createApprovalFn        func(ctx context.Context, a *leaverequest.LeaveApproval) error
	findRequestByIDFn       func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error)
	findRequestForUpdateFn  func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error)
	findAllFn               func(ctx context.Context) ([]leaverequest.LeaveRequest, error)
	findAllByEmployeeFn     func(ctx context.Context, employeeID string) ([]leaverequest.LeaveRequest, error)
	hasActiveOverlapFn      func(ctx context.Context, employeeID string, start, end time.Time) (bool, error)
	findApprovalByIDFn      func(ctx context.Context, id string) (*leaverequest.LeaveApproval, error)
	findPendingByApproverFn func(ctx context.Context, approverID string) ([]leaverequest.LeaveApproval, error)
	markApprovalDecidedFn   func(ctx context.Context, id, status string, comment *string, decidedAt time.Time) (int64, error)
	closeOpenApprovalsFn    func(ctx context.Context, requestID, comment string, decidedAt time.Time) error
	countPendingFn          func(ctx context.Context, requestID string) (int64, error)
	updateRequestStatusFn   func(ctx context.Context, id, status string, rejectionReason *string) error
	updateRequestPMDFn      func(ctx context.Context, id, pmdStatus string, reason *string) error
}

func (f *fakeLeaveRepo) WithTx(tx *gorm.DB) leaverequest.Repository { return f }

func (f *fakeLeaveRepo) CreateRequest(ctx context.Context, req *leaverequest.LeaveRequest) error {
	if f.createRequestFn != nil {
		return f.createRequestFn(ctx, req)
	}
	return nil
}

func (f *fakeLeaveRepo) CreateApproval(ctx context.Context, a *leaverequest.LeaveApproval) error {
	if f.createApprovalFn != nil {
		return f.createApprovalFn(ctx, a)
	}
	return nil
}

func (f *fakeLeaveRepo) FindRequestByID(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
	if f.findRequestByIDFn != nil {
		return f.findRequestByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveRepo) FindRequestByIDForUpdate(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
	if f.findRequestForUpdateFn != nil {
		return f.findRequestForUpdateFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveRepo) FindAll(ctx context.Context) ([]leaverequest.LeaveRequest, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeLeaveRepo) FindAllByEmployee(ctx context.Context, employeeID string) ([]leaverequest.LeaveRequest, error) {
	if f.findAllByEmployeeFn != nil {
		return f.findAllByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeLeaveRepo) HasActiveOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	if f.hasActiveOverlapFn != nil {
		return f.hasActiveOverlapFn(ctx, employeeID, start, end)
	}
	return false, nil
}

func (f *fakeLeaveRepo) FindApprovalByID(ctx context.Context, id string) (*leaverequest.LeaveApproval, error) {
	if f.findApprovalByIDFn != nil {
		return f.findApprovalByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveRepo) FindPendingByApprover(ctx context.Context, approverID string) ([]leaverequest.LeaveApproval, error) {
	if f.findPendingByApproverFn != nil {
		return f.findPendingByApproverFn(ctx, approverID)
	}
	return nil, nil
}

func (f *fakeLeaveRepo) MarkApprovalDecided(ctx context.Context, id, status string, comment *string, decidedAt time.Time) (int64, error) {
	if f.markApprovalDecidedFn != nil {
		return f.markApprovalDecidedFn(ctx, id, status, comment, decidedAt)
	}
	return 1, nil
}

func (f *fakeLeaveRepo) CloseOpenApprovals(ctx context.Context, requestID, comment string, decidedAt time.Time) error {
	if f.closeOpenApprovalsFn != nil {
		return f.closeOpenApprovalsFn(ctx, requestID, comment, decidedAt)
	}
	return nil
}

func (f *fakeLeaveRepo) CountPendingApprovals(ctx context.Context, requestID string) (int64, error) {
	if f.countPendingFn != nil {
		return f.countPendingFn(ctx, requestID)
	}
	return 0, nil
}

func (f *fakeLeaveRepo) UpdateRequestStatus(ctx context.Context, id, status string, rejectionReason *string) error {
	if f.updateRequestStatusFn != nil {
		return f.updateRequestStatusFn(ctx, id, status, rejectionReason)
	}
	return nil
}

func (f *fakeLeaveRepo) UpdateRequestPMD(ctx context.Context, id, pmdStatus string, reason *string) error {
	if f.updateRequestPMDFn != nil {
		return f.updateRequestPMDFn(ctx, id, pmdStatus, reason)
	}
	return nil
}

type fakeBalanceRepo struct {
	findByKeyFn func(ctx context.Context, employeeID, leaveTypeID string, year int) (*balance.LeaveBalance, error)
	reserveFn   func(ctx context.Context, id string, days decimal.Decimal) error
	consumeFn   func(ctx context.Context, id string, days decimal.Decimal) error
	releaseFn   func(ctx context.Context, id string, days decimal.Decimal) error
}

func (f *fakeBalanceRepo) WithTx(tx *gorm.DB) balance.Repository { return f }

func (f *fakeBalanceRepo) FindByKey(ctx context.Context, employeeID, leaveTypeID string, year int) (*balance.LeaveBalance, error) {
	if f.findByKeyFn != nil {
		return f.findByKeyFn(ctx, employeeID, leaveTypeID, year)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBalanceRepo) FindAllByEmployee(ctx context.Context, employeeID string, year int) ([]balance.LeaveBalance, error) {
	return nil, nil
}

func (f *fakeBalanceRepo) FindAllByYear(ctx context.Context, year int) ([]balance.LeaveBalance, error) {
	return nil, nil
}

func (f *fakeBalanceRepo) Reserve(ctx context.Context, id string, days decimal.Decimal) error {
	if f.reserveFn != nil {
		return f.reserveFn(ctx, id, days)
	}
	return nil
}

func (f *fakeBalanceRepo) Consume(ctx context.Context, id string, days decimal.Decimal) error {
	if f.consumeFn != nil {
		return f.consumeFn(ctx, id, days)
	}
	return nil
}

func (f *fakeBalanceRepo) Release(ctx context.Context, id string, days decimal.Decimal) error {
	if f.releaseFn != nil {
		return f.releaseFn(ctx, id, days)
	}
	return nil
}

func (f *fakeBalanceRepo) Upsert(ctx context.Context, b *balance.LeaveBalance) error { return nil }

func (f *fakeBalanceRepo) CreateIfAbsent(ctx context.Context, b *balance.LeaveBalance) error {
	return nil
}

type fakeEmployeeRepo struct {
	findByIDFn          func(ctx context.Context, id string) (*employee.Employee, error)
	firstActiveByRoleFn func(ctx context.Context, role string) (*employee.Employee, error)
}

func (f *fakeEmployeeRepo) WithTx(tx *gorm.DB) employee.Repository { return f }

func (f *fakeEmployeeRepo) Create(ctx context.Context, e *employee.Employee) error { return nil }

func (f *fakeEmployeeRepo) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepo) FindAllActive(ctx context.Context) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepo) FirstActiveByRole(ctx context.Context, role string) (*employee.Employee, error) {
	if f.firstActiveByRoleFn != nil {
		return f.firstActiveByRoleFn(ctx, role)
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeTypeRepo struct {
	findByIDFn func(ctx context.Context, id string) (*leavetype.LeaveType, error)
}

func (f *fakeTypeRepo) WithTx(tx *gorm.DB) leavetype.Repository { return f }

func (f *fakeTypeRepo) FindAllActive(ctx context.Context) ([]leavetype.LeaveType, error) {
	return nil, nil
}

func (f *fakeTypeRepo) FindByID(ctx context.Context, id string) (*leavetype.LeaveType, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeOutboxRepo struct {
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
	created  []kafka.OutboxEvent
}

func (f *fakeOutboxRepo) WithTx(tx *gorm.DB) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepo) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	return nil
}

func (f *fakeOutboxRepo) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepo) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

// --- harness ---

type leaveServiceDeps struct {
	sqlDB        *sql.DB
	sqlMock      sqlmock.Sqlmock
	service      leaverequest.Service
	repo         *fakeLeaveRepo
	balanceRepo  *fakeBalanceRepo
	employeeRepo *fakeEmployeeRepo
	typeRepo     *fakeTypeRepo
	outbox       *fakeOutboxRepo
}

var testNow = time.Date(2026, time.February, 2, 9, 0, 0, 0, time.UTC)

func setupLeaveServiceTest(t *testing.T) *leaveServiceDeps {
	t.Helper()

	sqlDB, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	assert.NoError(t, err)

	repo := &fakeLeaveRepo{}
	balanceRepo := &fakeBalanceRepo{}
	employeeRepo := &fakeEmployeeRepo{}
	typeRepo := &fakeTypeRepo{}
	outbox := &fakeOutboxRepo{}

	svc := leaverequest.NewService(
		gormDB, repo, balanceRepo, employeeRepo, typeRepo, outbox,
		clock.Fixed(testNow),
	)

	return &leaveServiceDeps{
		sqlDB:        sqlDB,
		sqlMock:      sqlMock,
		service:      svc,
		repo:         repo,
		balanceRepo:  balanceRepo,
		employeeRepo: employeeRepo,
		typeRepo:     typeRepo,
		outbox:       outbox,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func activeLeaveType(id uuid.UUID) *leavetype.LeaveType {
	return &leavetype.LeaveType{
		ID:               id,
		Name:             "Vacation Leave",
		Code:             "VL",
		AnnualAllowance:  decimal.NewFromInt(15),
		RequiresApproval: true,
		HalfDayAllowed:   true,
		Active:           true,
	}
}

func chainEmployees(employeeID, supervisorID, hrID uuid.UUID) *fakeEmployeeRepo {
	supervisor := &employee.Employee{ID: supervisorID, Role: domain.RoleSupervisor, Active: true}
	hr := &employee.Employee{ID: hrID, Role: domain.RoleHR, Active: true}
	emp := &employee.Employee{ID: employeeID, Role: domain.RoleEmployee, Active: true, ApproverID: &supervisorID}

	return &fakeEmployeeRepo{
		findByIDFn: func(ctx context.Context, id string) (*employee.Employee, error) {
			switch id {
			case employeeID.String():
				return emp, nil
			case supervisorID.String():
				return supervisor, nil
			case hrID.String():
				return hr, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		firstActiveByRoleFn: func(ctx context.Context, role string) (*employee.Employee, error) {
			if role == domain.RoleHR {
				return hr, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
}

// --- tests ---

func TestLeaveService_Submit(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()
	supervisorID := uuid.New()
	hrID := uuid.New()
	leaveTypeID := uuid.New()
	balanceID := uuid.New()
	actor := domain.Identity{EmployeeID: employeeID.String(), Role: domain.RoleEmployee}

	t.Run("success reserves days and seeds two approval stages", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		expectTx(t, deps.sqlMock, true)
		*deps.employeeRepo = *chainEmployees(employeeID, supervisorID, hrID)
		deps.typeRepo.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			assert.Equal(t, leaveTypeID.String(), id)
			return activeLeaveType(leaveTypeID), nil
		}
		deps.balanceRepo.findByKeyFn = func(ctx context.Context, eid, tid string, year int) (*balance.LeaveBalance, error) {
			assert.Equal(t, 2026, year)
			return &balance.LeaveBalance{ID: balanceID, Balance: decimal.NewFromInt(15)}, nil
		}

		var reserved decimal.Decimal
		deps.balanceRepo.reserveFn = func(ctx context.Context, id string, days decimal.Decimal) error {
			assert.Equal(t, balanceID.String(), id)
			reserved = days
			return nil
		}

		var createdApprovals []leaverequest.LeaveApproval
		deps.repo.createApprovalFn = func(ctx context.Context, a *leaverequest.LeaveApproval) error {
			createdApprovals = append(createdApprovals, *a)
			return nil
		}

		resp, err := deps.service.Submit(ctx, actor, leaverequest.CreateLeaveRequestRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   "2026-03-02", // Monday
			EndDate:     "2026-03-04",
			Reason:      "family trip",
		})

		assert.NoError(t, err)
		assert.Equal(t, "3", reserved.String())
		assert.Equal(t, leaverequest.StatusPending, resp.Status)
		assert.Equal(t, "3", resp.DaysRequested)
		assert.Len(t, createdApprovals, 2)
		assert.Equal(t, supervisorID, createdApprovals[0].ApproverID)
		assert.Equal(t, domain.LevelSupervisor, createdApprovals[0].Level)
		assert.Equal(t, hrID, createdApprovals[1].ApproverID)
		assert.Equal(t, domain.LevelHR, createdApprovals[1].Level)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "leave.submitted", deps.outbox.created[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative weekend only range", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		deps.typeRepo.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return activeLeaveType(leaveTypeID), nil
		}

		_, err := deps.service.Submit(ctx, actor, leaverequest.CreateLeaveRequestRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   "2026-03-07", // Saturday
			EndDate:     "2026-03-08", // Sunday
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrNoWorkingDays)
	})

	t.Run("negative insufficient balance rolls back", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		expectTx(t, deps.sqlMock, false)
		*deps.employeeRepo = *chainEmployees(employeeID, supervisorID, hrID)
		deps.typeRepo.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return activeLeaveType(leaveTypeID), nil
		}
		deps.balanceRepo.findByKeyFn = func(ctx context.Context, eid, tid string, year int) (*balance.LeaveBalance, error) {
			return &balance.LeaveBalance{ID: balanceID, Balance: decimal.NewFromInt(1)}, nil
		}
		deps.balanceRepo.reserveFn = func(ctx context.Context, id string, days decimal.Decimal) error {
			return balanceerrors.ErrInsufficientBalance
		}

		created := false
		deps.repo.createRequestFn = func(ctx context.Context, req *leaverequest.LeaveRequest) error {
			created = true
			return nil
		}

		_, err := deps.service.Submit(ctx, actor, leaverequest.CreateLeaveRequestRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-06",
		})

		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
		assert.False(t, created)
		assert.Empty(t, deps.outbox.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative overlapping request", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		expectTx(t, deps.sqlMock, false)
		deps.typeRepo.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return activeLeaveType(leaveTypeID), nil
		}
		deps.repo.hasActiveOverlapFn = func(ctx context.Context, eid string, start, end time.Time) (bool, error) {
			return true, nil
		}

		_, err := deps.service.Submit(ctx, actor, leaverequest.CreateLeaveRequestRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-03",
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrOverlappingRequest)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative half day across multiple days", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		_, err := deps.service.Submit(ctx, actor, leaverequest.CreateLeaveRequestRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-03",
			DaySelector: leaverequest.SelectorFirstHalf,
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrHalfDaySingleDayOnly)
	})

	t.Run("negative minimum notice not met", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		deps.typeRepo.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			lt := activeLeaveType(leaveTypeID)
			lt.MinNoticeDays = 60
			return lt, nil
		}

		_, err := deps.service.Submit(ctx, actor, leaverequest.CreateLeaveRequestRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-03",
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrMinNoticeNotMet)
	})
}

func TestLeaveService_Decide(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	approvalID := uuid.New()
	supervisorID := uuid.New()
	balanceID := uuid.New()
	days := decimal.NewFromInt(3)
	actor := domain.Identity{EmployeeID: supervisorID.String(), Role: domain.RoleSupervisor}

	pendingRequest := func() *leaverequest.LeaveRequest {
		return &leaverequest.LeaveRequest{
			ID:            requestID,
			EmployeeID:    uuid.New(),
			BalanceID:     balanceID,
			DaysRequested: days,
			Status:        leaverequest.StatusPending,
		}
	}
	supervisorApproval := func() *leaverequest.LeaveApproval {
		return &leaverequest.LeaveApproval{
			ID:             approvalID,
			LeaveRequestID: requestID,
			ApproverID:     supervisorID,
			Level:          domain.LevelSupervisor,
			Status:         leaverequest.StatusPending,
		}
	}

	t.Run("intermediate approval keeps request pending", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findApprovalByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveApproval, error) {
			return supervisorApproval(), nil
		}
		deps.repo.findRequestForUpdateFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return pendingRequest(), nil
		}
		deps.repo.countPendingFn = func(ctx context.Context, id string) (int64, error) {
			return 1, nil // HR stage still open
		}
		deps.repo.findRequestByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return pendingRequest(), nil
		}

		consumed := false
		deps.balanceRepo.consumeFn = func(ctx context.Context, id string, d decimal.Decimal) error {
			consumed = true
			return nil
		}

		resp, err := deps.service.Decide(ctx, actor, approvalID.String(), leaverequest.DecideRequest{
			Decision: leaverequest.StatusApproved,
		})

		assert.NoError(t, err)
		assert.Equal(t, leaverequest.StatusPending, resp.Status)
		assert.False(t, consumed)
		assert.Empty(t, deps.outbox.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("final approval consumes reservation and opens pmd review", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findApprovalByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveApproval, error) {
			return supervisorApproval(), nil
		}
		deps.repo.findRequestForUpdateFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return pendingRequest(), nil
		}
		deps.repo.countPendingFn = func(ctx context.Context, id string) (int64, error) {
			return 0, nil
		}

		var pmdStatus string
		deps.repo.updateRequestPMDFn = func(ctx context.Context, id, status string, reason *string) error {
			pmdStatus = status
			assert.Nil(t, reason)
			return nil
		}

		var consumedDays decimal.Decimal
		deps.balanceRepo.consumeFn = func(ctx context.Context, id string, d decimal.Decimal) error {
			assert.Equal(t, balanceID.String(), id)
			consumedDays = d
			return nil
		}

		deps.repo.findRequestByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			req := pendingRequest()
			req.Status = leaverequest.StatusApproved
			pmd := leaverequest.PMDPending
			req.PMDStatus = &pmd
			return req, nil
		}

		resp, err := deps.service.Decide(ctx, actor, approvalID.String(), leaverequest.DecideRequest{
			Decision: leaverequest.StatusApproved,
		})

		assert.NoError(t, err)
		assert.Equal(t, leaverequest.StatusApproved, resp.Status)
		assert.Equal(t, "3", consumedDays.String())
		assert.Equal(t, leaverequest.PMDPending, pmdStatus)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "leave.approved", deps.outbox.created[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("rejection releases reservation and closes open stages", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findApprovalByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveApproval, error) {
			return supervisorApproval(), nil
		}
		deps.repo.findRequestForUpdateFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return pendingRequest(), nil
		}

		closed := false
		deps.repo.closeOpenApprovalsFn = func(ctx context.Context, rid, comment string, decidedAt time.Time) error {
			closed = true
			return nil
		}

		var releasedDays decimal.Decimal
		deps.balanceRepo.releaseFn = func(ctx context.Context, id string, d decimal.Decimal) error {
			assert.Equal(t, balanceID.String(), id)
			releasedDays = d
			return nil
		}

		deps.repo.findRequestByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			req := pendingRequest()
			req.Status = leaverequest.StatusRejected
			return req, nil
		}

		resp, err := deps.service.Decide(ctx, actor, approvalID.String(), leaverequest.DecideRequest{
			Decision: leaverequest.StatusRejected,
			Comment:  "staffing conflict",
		})

		assert.NoError(t, err)
		assert.Equal(t, leaverequest.StatusRejected, resp.Status)
		assert.True(t, closed)
		assert.Equal(t, "3", releasedDays.String())
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "leave.rejected", deps.outbox.created[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative rejection without comment", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		_, err := deps.service.Decide(ctx, actor, approvalID.String(), leaverequest.DecideRequest{
			Decision: leaverequest.StatusRejected,
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrRejectionComment)
	})

	t.Run("negative wrong approver", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findApprovalByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveApproval, error) {
			return supervisorApproval(), nil
		}

		outsider := domain.Identity{EmployeeID: uuid.New().String(), Role: domain.RoleSupervisor}
		_, err := deps.service.Decide(ctx, outsider, approvalID.String(), leaverequest.DecideRequest{
			Decision: leaverequest.StatusApproved,
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrNotAuthorized)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative stage already decided", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findApprovalByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveApproval, error) {
			return supervisorApproval(), nil
		}
		deps.repo.findRequestForUpdateFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return pendingRequest(), nil
		}
		deps.repo.markApprovalDecidedFn = func(ctx context.Context, id, status string, comment *string, decidedAt time.Time) (int64, error) {
			return 0, nil
		}

		_, err := deps.service.Decide(ctx, actor, approvalID.String(), leaverequest.DecideRequest{
			Decision: leaverequest.StatusApproved,
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrAlreadyDecided)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative request already finalized", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findApprovalByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveApproval, error) {
			return supervisorApproval(), nil
		}
		deps.repo.findRequestForUpdateFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			req := pendingRequest()
			req.Status = leaverequest.StatusRejected
			return req, nil
		}

		_, err := deps.service.Decide(ctx, actor, approvalID.String(), leaverequest.DecideRequest{
			Decision: leaverequest.StatusApproved,
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrAlreadyFinalized)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_Cancel(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	employeeID := uuid.New()
	balanceID := uuid.New()
	actor := domain.Identity{EmployeeID: employeeID.String(), Role: domain.RoleEmployee}

	t.Run("owner cancels pending request and reservation is released", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findRequestForUpdateFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return &leaverequest.LeaveRequest{
				ID:            requestID,
				EmployeeID:    employeeID,
				BalanceID:     balanceID,
				DaysRequested: decimal.NewFromInt(2),
				Status:        leaverequest.StatusPending,
			}, nil
		}

		released := false
		deps.balanceRepo.releaseFn = func(ctx context.Context, id string, d decimal.Decimal) error {
			released = true
			return nil
		}

		deps.repo.findRequestByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return &leaverequest.LeaveRequest{
				ID:         requestID,
				EmployeeID: employeeID,
				BalanceID:  balanceID,
				Status:     leaverequest.StatusCancelled,
			}, nil
		}

		resp, err := deps.service.Cancel(ctx, actor, requestID.String())

		assert.NoError(t, err)
		assert.Equal(t, leaverequest.StatusCancelled, resp.Status)
		assert.True(t, released)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "leave.cancelled", deps.outbox.created[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative cancel by non-owner", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findRequestForUpdateFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return &leaverequest.LeaveRequest{
				ID:         requestID,
				EmployeeID: uuid.New(),
				Status:     leaverequest.StatusPending,
			}, nil
		}

		_, err := deps.service.Cancel(ctx, actor, requestID.String())

		assert.ErrorIs(t, err, leaverequesterrors.ErrNotRequestOwner)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative cancel after finalization", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findRequestForUpdateFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return &leaverequest.LeaveRequest{
				ID:         requestID,
				EmployeeID: employeeID,
				Status:     leaverequest.StatusApproved,
			}, nil
		}

		_, err := deps.service.Cancel(ctx, actor, requestID.String())

		assert.ErrorIs(t, err, leaverequesterrors.ErrCancelNotPending)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_SetPMDDecision(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	hrActor := domain.Identity{EmployeeID: uuid.New().String(), Role: domain.RoleHR}

	approvedRequest := func() *leaverequest.LeaveRequest {
		pmd := leaverequest.PMDPending
		return &leaverequest.LeaveRequest{
			ID:            requestID,
			EmployeeID:    uuid.New(),
			BalanceID:     uuid.New(),
			DaysRequested: decimal.NewFromInt(3),
			Status:        leaverequest.StatusApproved,
			PMDStatus:     &pmd,
		}
	}

	t.Run("pmd rejection flips status without touching the ledger", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findRequestForUpdateFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return approvedRequest(), nil
		}

		var gotStatus string
		deps.repo.updateRequestPMDFn = func(ctx context.Context, id, status string, reason *string) error {
			gotStatus = status
			assert.NotNil(t, reason)
			assert.Equal(t, "headcount freeze", *reason)
			return nil
		}

		ledgerTouched := false
		deps.balanceRepo.releaseFn = func(ctx context.Context, id string, d decimal.Decimal) error {
			ledgerTouched = true
			return nil
		}
		deps.balanceRepo.consumeFn = func(ctx context.Context, id string, d decimal.Decimal) error {
			ledgerTouched = true
			return nil
		}

		deps.repo.findRequestByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			req := approvedRequest()
			req.Status = leaverequest.StatusRejected
			pmd := leaverequest.PMDRejected
			req.PMDStatus = &pmd
			return req, nil
		}

		resp, err := deps.service.SetPMDDecision(ctx, hrActor, requestID.String(), leaverequest.PMDDecisionRequest{
			Status: leaverequest.PMDRejected,
			Reason: "headcount freeze",
		})

		assert.NoError(t, err)
		assert.Equal(t, leaverequest.PMDRejected, gotStatus)
		assert.Equal(t, leaverequest.StatusRejected, resp.Status)
		assert.False(t, ledgerTouched)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative non-HR actor", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		actor := domain.Identity{EmployeeID: uuid.New().String(), Role: domain.RoleSupervisor}
		_, err := deps.service.SetPMDDecision(ctx, actor, requestID.String(), leaverequest.PMDDecisionRequest{
			Status: leaverequest.PMDApproved,
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrPMDNotAuthorized)
	})

	t.Run("negative rejection without reason", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		_, err := deps.service.SetPMDDecision(ctx, hrActor, requestID.String(), leaverequest.PMDDecisionRequest{
			Status: leaverequest.PMDRejected,
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrPMDReasonRequired)
	})

	t.Run("negative request not approved", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findRequestForUpdateFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			req := approvedRequest()
			req.Status = leaverequest.StatusPending
			req.PMDStatus = nil
			return req, nil
		}

		_, err := deps.service.SetPMDDecision(ctx, hrActor, requestID.String(), leaverequest.PMDDecisionRequest{
			Status: leaverequest.PMDApproved,
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrPMDNotApplicable)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative pmd already decided", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.sqlDB.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findRequestForUpdateFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			req := approvedRequest()
			pmd := leaverequest.PMDApproved
			req.PMDStatus = &pmd
			return req, nil
		}

		_, err := deps.service.SetPMDDecision(ctx, hrActor, requestID.String(), leaverequest.PMDDecisionRequest{
			Status: leaverequest.PMDApproved,
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrPMDAlreadyDecided)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
