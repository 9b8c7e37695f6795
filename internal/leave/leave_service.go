package leave

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"agency-hr/internal/domain"
	leaveerrors "agency-hr/internal/leave/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	TypeVacation = "vacation"
	TypeSick     = "sick"
	TypePersonal = "personal"
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor domain.Actor, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, actor domain.Actor) ([]LeaveResponse, error)
	GetMine(ctx context.Context, actor domain.Actor) ([]LeaveResponse, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	Approve(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	Reject(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	EstimateDays(req EstimateDaysRequest) (EstimateDaysResponse, error)
	CurrentlyOnLeave(ctx context.Context, today time.Time) ([]LeaveResponse, error)
	BalanceFor(ctx context.Context, employeeID string, year int) (BalanceResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

// Create opens a pending request for the actor's own employee record.
// Requests are always filed for oneself, whatever the actor's role.
func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("create leave requested",
		zap.String("actor_employee_id", actor.EmployeeID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	employeeUUID, err := uuid.Parse(actor.EmployeeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	if startDate.After(endDate) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.EmployeeExists(ctx, actor.EmployeeID)
	if err != nil {
		s.logger.Error("create leave employee check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !exists {
		return LeaveResponse{}, leaveerrors.ErrEmployeeNotFound
	}

	l := &Leave{
		ID:         uuid.New(),
		EmployeeID: employeeUUID,
		LeaveType:  req.LeaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		Reason:     req.Reason,
		Status:     StatusPending,
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", actor.EmployeeID),
	)

	return mapToResponse(*l), nil
}

// GetAll returns every request for moderators and only the actor's own
// requests otherwise.
func (s *service) GetAll(ctx context.Context, actor domain.Actor) ([]LeaveResponse, error) {
	if actor.CanModerate() {
		leaves, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return mapToListResponse(leaves), nil
	}

	return s.GetMine(ctx, actor)
}

func (s *service) GetMine(ctx context.Context, actor domain.Actor) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindByEmployee(ctx, actor.EmployeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	if !actor.CanModerate() && l.EmployeeID.String() != actor.EmployeeID {
		return LeaveResponse{}, leaveerrors.ErrNotRequestOwner
	}

	return mapToResponse(*l), nil
}

func (s *service) Approve(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	return s.transitionStatus(ctx, actor, id, StatusApproved)
}

func (s *service) Reject(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	return s.transitionStatus(ctx, actor, id, StatusRejected)
}

// transitionStatus moves a pending request to approved or rejected.
// Approved and rejected are terminal: a request that has left pending
// cannot be decided again. Approval does not re-check the remaining
// balance; over-allocation only shows up in the balance report.
func (s *service) transitionStatus(ctx context.Context, actor domain.Actor, id, targetStatus string) (LeaveResponse, error) {
	s.logger.Debug("transition leave status requested",
		zap.String("leave_id", id),
		zap.String("actor_employee_id", actor.EmployeeID),
		zap.String("target_status", targetStatus),
	)

	if !actor.CanModerate() {
		return LeaveResponse{}, leaveerrors.ErrApprovalNotAllowed
	}

	actorUUID, err := uuid.Parse(actor.EmployeeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("transition leave status begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	if l.Status != StatusPending {
		s.logger.Warn("transition leave status invalid",
			zap.String("leave_id", id),
			zap.String("from_status", l.Status),
			zap.String("to_status", targetStatus),
		)
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	l.Status = targetStatus
	if targetStatus == StatusApproved {
		now := time.Now().UTC()
		l.ApprovedBy = &actorUUID
		l.ApprovedAt = &now
	}

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("transition leave status persist failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("transition leave status commit failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	s.logger.Info("transition leave status success",
		zap.String("leave_id", id),
		zap.String("status", targetStatus),
	)

	return mapToResponse(*l), nil
}

// EstimateDays returns the Mon-Fri count for a requested range. This is
// informational only; see CalculateBalance for what is actually debited.
func (s *service) EstimateDays(req EstimateDaysRequest) (EstimateDaysResponse, error) {
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return EstimateDaysResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return EstimateDaysResponse{}, err
	}
	if startDate.After(endDate) {
		return EstimateDaysResponse{}, leaveerrors.ErrInvalidDateRange
	}

	return EstimateDaysResponse{Days: CountBusinessDays(startDate, endDate)}, nil
}

func (s *service) CurrentlyOnLeave(ctx context.Context, today time.Time) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindActiveOn(ctx, today)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

// BalanceFor recomputes the balance from stored data on every call;
// nothing is cached because requests can change between calls.
func (s *service) BalanceFor(ctx context.Context, employeeID string, year int) (BalanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return BalanceResponse{}, leaveerrors.ErrInvalidEmployeeID
	}

	exists, err := s.repo.EmployeeExists(ctx, employeeID)
	if err != nil {
		return BalanceResponse{}, err
	}
	if !exists {
		return BalanceResponse{}, leaveerrors.ErrEmployeeNotFound
	}

	allotment, err := s.repo.EmployeeAllotment(ctx, employeeID)
	if err != nil {
		return BalanceResponse{}, err
	}

	leaves, err := s.repo.FindApprovedInYear(ctx, employeeID, year)
	if err != nil {
		return BalanceResponse{}, err
	}

	b := CalculateBalance(allotment, leaves, year)
	return BalanceResponse{
		EmployeeID: employeeID,
		Year:       year,
		Annual:     b.Annual,
		Taken:      b.Taken,
		Balance:    b.Balance,
	}, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:         l.ID.String(),
		EmployeeID: l.EmployeeID.String(),
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		TotalDays:  InclusiveDays(l.StartDate, l.EndDate),
		Reason:     l.Reason,
		Status:     l.Status,
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
