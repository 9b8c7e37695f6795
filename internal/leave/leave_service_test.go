package leave_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"agency-hr/internal/domain"
	"agency-hr/internal/leave"
	leaveerrors "agency-hr/internal/leave/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeLeaveRepository struct {
	withTxFn             func(tx *sql.Tx) leave.Repository
	createFn             func(ctx context.Context, l *leave.Leave) error
	findAllFn            func(ctx context.Context) ([]leave.Leave, error)
	findByEmployeeFn     func(ctx context.Context, employeeID string) ([]leave.Leave, error)
	findByIDFn           func(ctx context.Context, id string) (*leave.Leave, error)
	updateFn             func(ctx context.Context, l *leave.Leave) error
	findApprovedInYearFn func(ctx context.Context, employeeID string, year int) ([]leave.Leave, error)
	findActiveOnFn       func(ctx context.Context, day time.Time) ([]leave.Leave, error)
	employeeExistsFn     func(ctx context.Context, employeeID string) (bool, error)
	employeeAllotmentFn  func(ctx context.Context, employeeID string) (int, error)
}

func (f *fakeLeaveRepository) WithTx(tx *sql.Tx) leave.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeLeaveRepository) Create(ctx context.Context, l *leave.Leave) error {
	if f.createFn != nil {
		return f.createFn(ctx, l)
	}
	return nil
}

func (f *fakeLeaveRepository) FindAll(ctx context.Context) ([]leave.Leave, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindByEmployee(ctx context.Context, employeeID string) ([]leave.Leave, error) {
	if f.findByEmployeeFn != nil {
		return f.findByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindByID(ctx context.Context, id string) (*leave.Leave, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) Update(ctx context.Context, l *leave.Leave) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, l)
	}
	return nil
}

func (f *fakeLeaveRepository) FindApprovedInYear(ctx context.Context, employeeID string, year int) ([]leave.Leave, error) {
	if f.findApprovedInYearFn != nil {
		return f.findApprovedInYearFn(ctx, employeeID, year)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindActiveOn(ctx context.Context, day time.Time) ([]leave.Leave, error) {
	if f.findActiveOnFn != nil {
		return f.findActiveOnFn(ctx, day)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	if f.employeeExistsFn != nil {
		return f.employeeExistsFn(ctx, employeeID)
	}
	return true, nil
}

func (f *fakeLeaveRepository) EmployeeAllotment(ctx context.Context, employeeID string) (int, error) {
	if f.employeeAllotmentFn != nil {
		return f.employeeAllotmentFn(ctx, employeeID)
	}
	return 22, nil
}

type leaveServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service leave.Service
	repo    *fakeLeaveRepository
}

func setupLeaveServiceTest(t *testing.T) *leaveServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeLeaveRepository{}
	svc := leave.NewService(db, repo)

	return &leaveServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
	}
}

func employeeActor(employeeID string) domain.Actor {
	return domain.Actor{
		UserID:     uuid.NewString(),
		EmployeeID: employeeID,
		Role:       domain.RoleEmployee,
	}
}

func managerActor(employeeID string) domain.Actor {
	return domain.Actor{
		UserID:     uuid.NewString(),
		EmployeeID: employeeID,
		Role:       domain.RoleManager,
	}
}

func TestLeaveService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success opens pending request", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		var created *leave.Leave
		deps.repo.createFn = func(ctx context.Context, l *leave.Leave) error {
			created = l
			return nil
		}

		actorID := uuid.NewString()
		resp, err := deps.service.Create(ctx, employeeActor(actorID), leave.CreateLeaveRequest{
			LeaveType: leave.TypeVacation,
			StartDate: "2026-03-02",
			EndDate:   "2026-03-06",
			Reason:    "family trip",
		})

		assert.NoError(t, err)
		assert.NotNil(t, created)
		assert.Equal(t, leave.StatusPending, created.Status)
		assert.Equal(t, actorID, resp.EmployeeID)
		assert.Equal(t, leave.StatusPending, resp.Status)
		assert.Equal(t, 5, resp.TotalDays)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, employeeActor(uuid.NewString()), leave.CreateLeaveRequest{
			LeaveType: leave.TypeSick,
			StartDate: "2026-03-06",
			EndDate:   "2026-03-02",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
	})

	t.Run("malformed date is rejected", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, employeeActor(uuid.NewString()), leave.CreateLeaveRequest{
			LeaveType: leave.TypeVacation,
			StartDate: "02/03/2026",
			EndDate:   "2026-03-06",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)
	})

	t.Run("unknown employee rolls back", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.employeeExistsFn = func(ctx context.Context, employeeID string) (bool, error) {
			return false, nil
		}

		_, err := deps.service.Create(ctx, employeeActor(uuid.NewString()), leave.CreateLeaveRequest{
			LeaveType: leave.TypeVacation,
			StartDate: "2026-03-02",
			EndDate:   "2026-03-06",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrEmployeeNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("persist failure rolls back", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.createFn = func(ctx context.Context, l *leave.Leave) error {
			return errors.New("insert failed")
		}

		_, err := deps.service.Create(ctx, employeeActor(uuid.NewString()), leave.CreateLeaveRequest{
			LeaveType: leave.TypeVacation,
			StartDate: "2026-03-02",
			EndDate:   "2026-03-06",
		})

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("moderator sees every request", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.findAllFn = func(ctx context.Context) ([]leave.Leave, error) {
			return []leave.Leave{
				{ID: uuid.New(), EmployeeID: uuid.New(), Status: leave.StatusPending,
					StartDate: time.Now(), EndDate: time.Now()},
				{ID: uuid.New(), EmployeeID: uuid.New(), Status: leave.StatusApproved,
					StartDate: time.Now(), EndDate: time.Now()},
			}, nil
		}

		resp, err := deps.service.GetAll(ctx, managerActor(uuid.NewString()))

		assert.NoError(t, err)
		assert.Len(t, resp, 2)
	})

	t.Run("employee only sees own requests", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		actorID := uuid.NewString()
		var queried string
		deps.repo.findByEmployeeFn = func(ctx context.Context, employeeID string) ([]leave.Leave, error) {
			queried = employeeID
			return nil, nil
		}

		_, err := deps.service.GetAll(ctx, employeeActor(actorID))

		assert.NoError(t, err)
		assert.Equal(t, actorID, queried)
	})
}

func TestLeaveService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("owner can read own request", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		actorID := uuid.New()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leave.Leave, error) {
			return &leave.Leave{ID: uuid.New(), EmployeeID: actorID, Status: leave.StatusPending,
				StartDate: time.Now(), EndDate: time.Now()}, nil
		}

		resp, err := deps.service.GetByID(ctx, employeeActor(actorID.String()), uuid.NewString())

		assert.NoError(t, err)
		assert.Equal(t, actorID.String(), resp.EmployeeID)
	})

	t.Run("employee cannot read someone else's request", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leave.Leave, error) {
			return &leave.Leave{ID: uuid.New(), EmployeeID: uuid.New(), Status: leave.StatusPending,
				StartDate: time.Now(), EndDate: time.Now()}, nil
		}

		_, err := deps.service.GetByID(ctx, employeeActor(uuid.NewString()), uuid.NewString())

		assert.ErrorIs(t, err, leaveerrors.ErrNotRequestOwner)
	})
}

func TestLeaveService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("manager approves pending request", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leave.Leave, error) {
			return &leave.Leave{ID: uuid.New(), EmployeeID: uuid.New(), Status: leave.StatusPending,
				StartDate: time.Now(), EndDate: time.Now()}, nil
		}

		var updated *leave.Leave
		deps.repo.updateFn = func(ctx context.Context, l *leave.Leave) error {
			updated = l
			return nil
		}

		moderatorID := uuid.NewString()
		resp, err := deps.service.Approve(ctx, managerActor(moderatorID), uuid.NewString())

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)
		assert.NotNil(t, updated.ApprovedBy)
		assert.Equal(t, moderatorID, updated.ApprovedBy.String())
		assert.NotNil(t, updated.ApprovedAt)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("employee may not decide", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Approve(ctx, employeeActor(uuid.NewString()), uuid.NewString())

		assert.ErrorIs(t, err, leaveerrors.ErrApprovalNotAllowed)
	})

	t.Run("approving an already decided request fails", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leave.Leave, error) {
			return &leave.Leave{ID: uuid.New(), EmployeeID: uuid.New(), Status: leave.StatusApproved,
				StartDate: time.Now(), EndDate: time.Now()}, nil
		}

		_, err := deps.service.Approve(ctx, managerActor(uuid.NewString()), uuid.NewString())

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("manager rejects pending request without approval marks", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leave.Leave, error) {
			return &leave.Leave{ID: uuid.New(), EmployeeID: uuid.New(), Status: leave.StatusPending,
				StartDate: time.Now(), EndDate: time.Now()}, nil
		}

		var updated *leave.Leave
		deps.repo.updateFn = func(ctx context.Context, l *leave.Leave) error {
			updated = l
			return nil
		}

		resp, err := deps.service.Reject(ctx, managerActor(uuid.NewString()), uuid.NewString())

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, resp.Status)
		assert.Nil(t, updated.ApprovedBy)
		assert.Nil(t, updated.ApprovedAt)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("rejecting an approved request fails", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leave.Leave, error) {
			return &leave.Leave{ID: uuid.New(), EmployeeID: uuid.New(), Status: leave.StatusApproved,
				StartDate: time.Now(), EndDate: time.Now()}, nil
		}

		_, err := deps.service.Reject(ctx, managerActor(uuid.NewString()), uuid.NewString())

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_EstimateDays(t *testing.T) {
	deps := setupLeaveServiceTest(t)
	defer deps.db.Close()

	t.Run("counts business days only", func(t *testing.T) {
		resp, err := deps.service.EstimateDays(leave.EstimateDaysRequest{
			StartDate: "2026-03-02",
			EndDate:   "2026-03-08",
		})

		assert.NoError(t, err)
		assert.Equal(t, 5, resp.Days)
	})

	t.Run("invalid range is rejected", func(t *testing.T) {
		_, err := deps.service.EstimateDays(leave.EstimateDaysRequest{
			StartDate: "2026-03-08",
			EndDate:   "2026-03-02",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
	})
}

func TestLeaveService_BalanceFor(t *testing.T) {
	ctx := context.Background()

	t.Run("computes position from approved requests", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		employeeID := uuid.NewString()
		deps.repo.findApprovedInYearFn = func(ctx context.Context, id string, year int) ([]leave.Leave, error) {
			return []leave.Leave{
				{Status: leave.StatusApproved,
					StartDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
					EndDate:   time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)},
			}, nil
		}

		resp, err := deps.service.BalanceFor(ctx, employeeID, 2026)

		assert.NoError(t, err)
		assert.Equal(t, 2026, resp.Year)
		assert.Equal(t, 22, resp.Annual)
		assert.Equal(t, 5, resp.Taken)
		assert.Equal(t, 17, resp.Balance)
	})

	t.Run("unknown employee fails", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.employeeExistsFn = func(ctx context.Context, employeeID string) (bool, error) {
			return false, nil
		}

		_, err := deps.service.BalanceFor(ctx, uuid.NewString(), 2026)

		assert.ErrorIs(t, err, leaveerrors.ErrEmployeeNotFound)
	})

	t.Run("malformed employee id fails", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.BalanceFor(ctx, "not-a-uuid", 2026)

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidEmployeeID)
	})
}
