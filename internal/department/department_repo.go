package department

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ManagerRow is the join projection used when listing a department's
// managers with their names.
type ManagerRow struct {
	EmployeeID uuid.UUID
	FirstName  string
	LastName   string
	AssignedAt time.Time
}

//go:generate mockgen -source=department_repo.go -destination=mock/department_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, dept *Department) error
	FindAll(ctx context.Context) ([]Department, error)
	FindByID(ctx context.Context, id string) (*Department, error)
	Update(ctx context.Context, dept *Department) error
	Delete(ctx context.Context, id string) error
	CountEmployees(ctx context.Context, departmentID string) (int64, error)
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	AssignmentExists(ctx context.Context, departmentID, employeeID string) (bool, error)
	CreateAssignment(ctx context.Context, assignment *DepartmentManager) error
	DeleteAssignment(ctx context.Context, departmentID, employeeID string) (int64, error)
	ListManagers(ctx context.Context, departmentID string) ([]ManagerRow, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn binds the statement to the service transaction when one is set.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, dept *Department) error {
	return r.conn(ctx).Create(dept).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Department, error) {
	var depts []Department
	err := r.conn(ctx).
		Order("name ASC").
		Find(&depts).Error
	return depts, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Department, error) {
	var dept Department
	err := r.conn(ctx).First(&dept, "id = ?", id).Error
	return &dept, err
}

func (r *repository) Update(ctx context.Context, dept *Department) error {
	return r.conn(ctx).Save(dept).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.conn(ctx).Delete(&Department{}, "id = ?", id).Error
}

func (r *repository) CountEmployees(ctx context.Context, departmentID string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Table("employees").
		Where("department_id = ?", departmentID).
		Count(&count).Error
	return count, err
}

func (r *repository) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) AssignmentExists(ctx context.Context, departmentID, employeeID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&DepartmentManager{}).
		Where("department_id = ?", departmentID).
		Where("employee_id = ?", employeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CreateAssignment(ctx context.Context, assignment *DepartmentManager) error {
	return r.conn(ctx).Create(assignment).Error
}

func (r *repository) DeleteAssignment(ctx context.Context, departmentID, employeeID string) (int64, error) {
	res := r.conn(ctx).
		Where("department_id = ?", departmentID).
		Where("employee_id = ?", employeeID).
		Delete(&DepartmentManager{})
	return res.RowsAffected, res.Error
}

func (r *repository) ListManagers(ctx context.Context, departmentID string) ([]ManagerRow, error) {
	var rows []ManagerRow
	err := r.conn(ctx).
		Table("department_managers dm").
		Select("dm.employee_id, e.first_name, e.last_name, dm.assigned_at").
		Joins("JOIN employees e ON e.id = dm.employee_id").
		Where("dm.department_id = ?", departmentID).
		Order("e.last_name ASC").
		Scan(&rows).Error
	return rows, err
}
