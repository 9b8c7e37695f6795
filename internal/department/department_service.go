package department

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	departmenterrors "agency-hr/internal/department/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=department_service.go -destination=mock/department_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateDepartmentRequest) (DepartmentResponse, error)
	GetAll(ctx context.Context) ([]DepartmentResponse, error)
	GetByID(ctx context.Context, id string) (DepartmentResponse, error)
	Update(ctx context.Context, id string, req UpdateDepartmentRequest) (DepartmentResponse, error)
	Delete(ctx context.Context, id string) error
	AssignManager(ctx context.Context, departmentID string, req AssignManagerRequest) error
	UnassignManager(ctx context.Context, departmentID, employeeID string) error
	ListManagers(ctx context.Context, departmentID string) ([]ManagerResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("department.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("department.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateDepartmentRequest) (DepartmentResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DepartmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	dept := &Department{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
	}

	if err := qtx.Create(ctx, dept); err != nil {
		s.logger.Error("create department persist failed", zap.Error(err))
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return DepartmentResponse{}, err
	}

	s.logger.Info("create department success", zap.String("department_id", dept.ID.String()))

	return mapToResponse(*dept), nil
}

func (s *service) GetAll(ctx context.Context) ([]DepartmentResponse, error) {
	depts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(depts), nil
}

func (s *service) GetByID(ctx context.Context, id string) (DepartmentResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return DepartmentResponse{}, departmenterrors.ErrInvalidDepartmentID
	}

	dept, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*dept), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateDepartmentRequest) (DepartmentResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return DepartmentResponse{}, departmenterrors.ErrInvalidDepartmentID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DepartmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	dept, err := qtx.FindByID(ctx, id)
	if err != nil {
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	dept.Name = req.Name
	dept.Description = req.Description

	if err := qtx.Update(ctx, dept); err != nil {
		s.logger.Error("update department persist failed", zap.Error(err))
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return DepartmentResponse{}, err
	}

	s.logger.Info("update department success", zap.String("department_id", id))

	return mapToResponse(*dept), nil
}

// Delete refuses to remove a department that still has employees; they
// must be moved or removed first.
func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return departmenterrors.ErrInvalidDepartmentID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindByID(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	count, err := qtx.CountEmployees(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Warn("delete department blocked, employees assigned",
			zap.String("department_id", id),
			zap.Int64("employee_count", count),
		)
		return departmenterrors.ErrDepartmentNotEmpty
	}

	if err := qtx.Delete(ctx, id); err != nil {
		s.logger.Error("delete department failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("delete department success", zap.String("department_id", id))
	return nil
}

func (s *service) AssignManager(ctx context.Context, departmentID string, req AssignManagerRequest) error {
	if _, err := uuid.Parse(departmentID); err != nil {
		return departmenterrors.ErrInvalidDepartmentID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindByID(ctx, departmentID); err != nil {
		return mapRepositoryError(err)
	}

	exists, err := qtx.EmployeeExists(ctx, req.EmployeeID)
	if err != nil {
		return err
	}
	if !exists {
		return departmenterrors.ErrEmployeeNotFound
	}

	assigned, err := qtx.AssignmentExists(ctx, departmentID, req.EmployeeID)
	if err != nil {
		return err
	}
	if assigned {
		return departmenterrors.ErrManagerAlreadyAssigned
	}

	assignment := &DepartmentManager{
		ID:           uuid.New(),
		DepartmentID: uuid.MustParse(departmentID),
		EmployeeID:   uuid.MustParse(req.EmployeeID),
		AssignedAt:   time.Now().UTC(),
	}
	if err := qtx.CreateAssignment(ctx, assignment); err != nil {
		s.logger.Error("assign manager persist failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("assign manager success",
		zap.String("department_id", departmentID),
		zap.String("employee_id", req.EmployeeID),
	)
	return nil
}

func (s *service) UnassignManager(ctx context.Context, departmentID, employeeID string) error {
	if _, err := uuid.Parse(departmentID); err != nil {
		return departmenterrors.ErrInvalidDepartmentID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	affected, err := qtx.DeleteAssignment(ctx, departmentID, employeeID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return departmenterrors.ErrManagerAssignmentNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("unassign manager success",
		zap.String("department_id", departmentID),
		zap.String("employee_id", employeeID),
	)
	return nil
}

func (s *service) ListManagers(ctx context.Context, departmentID string) ([]ManagerResponse, error) {
	if _, err := uuid.Parse(departmentID); err != nil {
		return nil, departmenterrors.ErrInvalidDepartmentID
	}

	if _, err := s.repo.FindByID(ctx, departmentID); err != nil {
		return nil, mapRepositoryError(err)
	}

	rows, err := s.repo.ListManagers(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	resp := make([]ManagerResponse, len(rows))
	for i, row := range rows {
		resp[i] = ManagerResponse{
			EmployeeID: row.EmployeeID.String(),
			FullName:   row.FirstName + " " + row.LastName,
			AssignedAt: row.AssignedAt.Format(time.RFC3339),
		}
	}
	return resp, nil
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return departmenterrors.ErrDepartmentNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "uq_department_name":
			return departmenterrors.ErrDepartmentNameTaken
		case "uq_department_manager":
			return departmenterrors.ErrManagerAlreadyAssigned
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_department_name") {
		return departmenterrors.ErrDepartmentNameTaken
	}

	return err
}

func mapToResponse(dept Department) DepartmentResponse {
	return DepartmentResponse{
		ID:          dept.ID.String(),
		Name:        dept.Name,
		Description: dept.Description,
	}
}

func mapToListResponse(depts []Department) []DepartmentResponse {
	res := make([]DepartmentResponse, len(depts))
	for i, d := range depts {
		res[i] = mapToResponse(d)
	}
	return res
}
