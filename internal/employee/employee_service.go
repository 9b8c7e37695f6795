package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"agency-hr/internal/auth"
	"agency-hr/internal/domain"
	employeeerrors "agency-hr/internal/employee/errors"
	"agency-hr/internal/events"
	"agency-hr/internal/messaging/kafka"
	"agency-hr/internal/shared/contextutil"
	"agency-hr/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const EmployeeOptionsKey = "employees:options"

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetOptions(ctx context.Context) ([]EmployeeOptionResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	GetByDepartment(ctx context.Context, departmentID string) ([]EmployeeResponse, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

type service struct {
	db      *sql.DB
	repo    Repository
	users   auth.Repository
	counter counter.Repository
	outbox  kafka.OutboxRepository
	rdb     *redis.Client
	sf      *singleflight.Group
	logger  *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	users auth.Repository,
	counter counter.Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		users:   users,
		counter: counter,
		outbox:  outboxRepo,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		logger:  l,
	}
}

// Create inserts the employee record and provisions its login credential
// in the same transaction, so a directory entry never exists without an
// account or the other way round.
func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("email", req.Email),
	)

	// Hire date defaults to the day of onboarding.
	hireDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.HireDate != "" {
		parsed, err := time.Parse("2006-01-02", req.HireDate)
		if err != nil {
			s.logger.Warn("create employee invalid hire_date",
				zap.String("hire_date", req.HireDate),
				zap.Error(err),
			)
			return EmployeeResponse{}, employeeerrors.ErrInvalidHireDate
		}
		hireDate = parsed
	}

	var birthDate *time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return EmployeeResponse{}, employeeerrors.ErrInvalidBirthDate
		}
		birthDate = &parsed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create employee begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qusers := s.users.WithTx(tx)

	var departmentID *uuid.UUID
	if req.DepartmentID != "" {
		exists, err := qtx.DepartmentExists(ctx, req.DepartmentID)
		if err != nil {
			s.logger.Error("create employee department check failed", zap.Error(err))
			return EmployeeResponse{}, err
		}
		if !exists {
			return EmployeeResponse{}, employeeerrors.ErrDepartmentNotFound
		}
		departmentID = uuidPtr(req.DepartmentID)
	}

	taken, err := qusers.EmailTaken(ctx, req.Email, nil)
	if err != nil {
		s.logger.Error("create employee email check failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	if taken {
		return EmployeeResponse{}, employeeerrors.ErrEmployeeAlreadyExists
	}

	if req.EmployeeNumber == "" {
		nextVal, err := s.counter.GetNextValue(ctx, "employee_number")
		if err != nil {
			s.logger.Error("create employee generate number failed", zap.Error(err))
			return EmployeeResponse{}, err
		}
		req.EmployeeNumber = fmt.Sprintf("EMP-%06d", nextVal)
	}

	allotment := 22
	if req.AnnualLeaveDays != nil {
		allotment = *req.AnnualLeaveDays
	}

	empl := &Employee{
		ID:              uuid.New(),
		EmployeeNumber:  req.EmployeeNumber,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		DateOfBirth:     birthDate,
		Gender:          req.Gender,
		Address:         req.Address,
		Phone:           req.Phone,
		HireDate:        hireDate,
		DepartmentID:    departmentID,
		Position:        req.Position,
		IsManager:       req.IsManager,
		AnnualLeaveDays: allotment,
	}

	if err := qtx.Create(ctx, empl); err != nil {
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	role := req.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("create employee hash password failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	user := &auth.User{
		ID:         uuid.New(),
		EmployeeID: &empl.ID,
		Email:      req.Email,
		Username:   usernameFromEmail(req.Email),
		Password:   string(hashed),
		Role:       role,
		IsActive:   true,
	}
	if err := qusers.Create(ctx, user); err != nil {
		s.logger.Error("create employee credential persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if s.outbox != nil {
		event := events.EmployeeCreatedEvent{
			EventType:      "employee_created",
			RequestID:      rid,
			EmployeeID:     empl.ID.String(),
			EmployeeNumber: empl.EmployeeNumber,
			DepartmentID:   uuidToString(empl.DepartmentID),
			OccurredAt:     time.Now().UTC(),
		}
		if err := s.queueOutboxEvent(ctx, tx, rid, empl.ID.String(), event.EventType, event); err != nil {
			return EmployeeResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create employee commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptionsCache(ctx)

	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
		zap.String("employee_number", empl.EmployeeNumber),
	)

	return mapToResponse(*empl, time.Now().UTC()), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	empls, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(empls, time.Now().UTC()), nil
}

// GetOptions serves the dropdown list from Redis when possible and
// collapses concurrent cache misses through singleflight.
func (s *service) GetOptions(ctx context.Context) ([]EmployeeOptionResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, EmployeeOptionsKey).Result(); err == nil {
			var resp []EmployeeOptionResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(EmployeeOptionsKey, func() (interface{}, error) {
		empls, err := s.repo.FindOptions(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := make([]EmployeeOptionResponse, len(empls))
		for i, e := range empls {
			resp[i] = EmployeeOptionResponse{
				ID:       e.ID.String(),
				FullName: e.FirstName + " " + e.LastName,
			}
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, EmployeeOptionsKey, jsonData, 1*time.Hour)
			}
		}

		return resp, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]EmployeeOptionResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*empl, time.Now().UTC()), nil
}

func (s *service) GetByDepartment(ctx context.Context, departmentID string) ([]EmployeeResponse, error) {
	if _, err := uuid.Parse(departmentID); err != nil {
		return nil, employeeerrors.ErrInvalidDepartmentID
	}

	empls, err := s.repo.FindByDepartment(ctx, departmentID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(empls, time.Now().UTC()), nil
}

// Update rewrites the employee record and keeps its credential in step:
// email changes propagate, a non-empty password is re-hashed, and a role
// change takes effect on the next login.
func (s *service) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	s.logger.Debug("update employee requested", zap.String("employee_id", id))

	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	hireDate, err := time.Parse("2006-01-02", req.HireDate)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidHireDate
	}

	var birthDate *time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return EmployeeResponse{}, employeeerrors.ErrInvalidBirthDate
		}
		birthDate = &parsed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qusers := s.users.WithTx(tx)

	empl, err := qtx.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	var departmentID *uuid.UUID
	if req.DepartmentID != "" {
		exists, err := qtx.DepartmentExists(ctx, req.DepartmentID)
		if err != nil {
			return EmployeeResponse{}, err
		}
		if !exists {
			return EmployeeResponse{}, employeeerrors.ErrDepartmentNotFound
		}
		departmentID = uuidPtr(req.DepartmentID)
	}

	user, err := qusers.GetByEmployeeID(ctx, id)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("update employee fetch credential failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	if user != nil && req.Email != user.Email {
		taken, err := qusers.EmailTaken(ctx, req.Email, &user.ID)
		if err != nil {
			return EmployeeResponse{}, err
		}
		if taken {
			return EmployeeResponse{}, employeeerrors.ErrEmployeeAlreadyExists
		}
	}

	empl.FirstName = req.FirstName
	empl.LastName = req.LastName
	empl.Email = req.Email
	empl.DateOfBirth = birthDate
	empl.Gender = req.Gender
	empl.Address = req.Address
	empl.Phone = req.Phone
	empl.HireDate = hireDate
	empl.DepartmentID = departmentID
	empl.Position = req.Position
	empl.IsManager = req.IsManager
	if req.AnnualLeaveDays != nil {
		empl.AnnualLeaveDays = *req.AnnualLeaveDays
	}

	if err := qtx.Update(ctx, empl); err != nil {
		s.logger.Error("update employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if user != nil {
		user.Email = req.Email
		user.Username = usernameFromEmail(req.Email)
		if req.Role != "" {
			user.Role = req.Role
		}
		if req.Password != "" {
			hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				return EmployeeResponse{}, err
			}
			user.Password = string(hashed)
		}
		if err := qusers.Update(ctx, user); err != nil {
			s.logger.Error("update employee credential persist failed", zap.Error(err))
			return EmployeeResponse{}, mapRepositoryError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptionsCache(ctx)

	s.logger.Info("update employee success", zap.String("employee_id", id))

	return mapToResponse(*empl, time.Now().UTC()), nil
}

// Delete removes an employee together with every dependent row: leave
// requests first, then department manager assignments, the employee
// record, and finally the credential, all in one transaction.
//
// Two records resist deletion. A protected credential can never be
// removed, and an employee who manages a department may only be removed
// by an administrator or manager.
func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("delete employee requested",
		zap.String("request_id", rid),
		zap.String("employee_id", id),
		zap.String("actor_role", actor.Role),
	)

	if _, err := uuid.Parse(id); err != nil {
		return employeeerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete employee begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qusers := s.users.WithTx(tx)

	empl, err := qtx.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	user, err := qusers.GetByEmployeeID(ctx, id)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("delete employee fetch credential failed", zap.Error(err))
		return err
	}

	if user != nil && user.IsProtected {
		s.logger.Warn("delete employee blocked, protected account",
			zap.String("employee_id", id),
		)
		return employeeerrors.ErrProtectedAccount
	}

	assignments, err := qtx.CountManagerAssignments(ctx, id)
	if err != nil {
		return err
	}
	// Restricted only when the flag and a live assignment coincide; a
	// stale flag or a stray assignment row alone does not block.
	if empl.IsManager && assignments > 0 && !actor.CanModerate() {
		s.logger.Warn("delete employee blocked, manager record",
			zap.String("employee_id", id),
			zap.String("actor_role", actor.Role),
		)
		return employeeerrors.ErrManagerDeletionRestricted
	}

	if err := qtx.DeleteLeavesByEmployee(ctx, id); err != nil {
		s.logger.Error("delete employee leaves failed", zap.Error(err))
		return err
	}
	if err := qtx.DeleteManagerAssignments(ctx, id); err != nil {
		s.logger.Error("delete employee assignments failed", zap.Error(err))
		return err
	}
	if err := qtx.Delete(ctx, id); err != nil {
		s.logger.Error("delete employee record failed", zap.Error(err))
		return mapRepositoryError(err)
	}
	if user != nil {
		if err := qusers.DeleteByEmployeeID(ctx, id); err != nil {
			s.logger.Error("delete employee credential failed", zap.Error(err))
			return err
		}
	}

	if s.outbox != nil {
		event := events.EmployeeDeletedEvent{
			EventType:  "employee_deleted",
			RequestID:  rid,
			EmployeeID: id,
			OccurredAt: time.Now().UTC(),
		}
		if err := s.queueOutboxEvent(ctx, tx, rid, id, event.EventType, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("delete employee commit failed", zap.Error(err))
		return err
	}

	s.invalidateOptionsCache(ctx)

	s.logger.Info("delete employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", id),
	)
	return nil
}

func (s *service) queueOutboxEvent(ctx context.Context, tx *sql.Tx, rid, employeeID, eventType string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	outboxRepo := s.outbox.WithTx(tx)
	if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "employee",
		AggregateID:   employeeID,
		EventType:     eventType,
		Topic:         events.EmployeeLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("outbox persist failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) invalidateOptionsCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, EmployeeOptionsKey).Err(); err != nil {
		s.logger.Error("failed to invalidate employee options cache",
			zap.Error(err),
			zap.String("key", EmployeeOptionsKey),
		)
	}
}

func mapToResponse(empl Employee, now time.Time) EmployeeResponse {
	resp := EmployeeResponse{
		ID:              empl.ID.String(),
		EmployeeNumber:  empl.EmployeeNumber,
		FirstName:       empl.FirstName,
		LastName:        empl.LastName,
		Email:           empl.Email,
		Gender:          empl.Gender,
		Address:         empl.Address,
		Phone:           empl.Phone,
		HireDate:        empl.HireDate.Format("2006-01-02"),
		DepartmentID:    uuidToString(empl.DepartmentID),
		Position:        empl.Position,
		IsManager:       empl.IsManager,
		AnnualLeaveDays: empl.AnnualLeaveDays,
		SeniorityYears:  SeniorityYears(empl.HireDate, now),
	}
	if empl.DateOfBirth != nil {
		resp.DateOfBirth = empl.DateOfBirth.Format("2006-01-02")
	}
	return resp
}

func mapToListResponse(empls []Employee, now time.Time) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e, now)
	}
	return res
}

func usernameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

func uuidPtr(v string) *uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}

func uuidToString(v *uuid.UUID) string {
	if v == nil {
		return ""
	}
	return v.String()
}
