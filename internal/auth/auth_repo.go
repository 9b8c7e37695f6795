package auth

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_repo.go -destination=mock/auth_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*User, error)
	Update(ctx context.Context, u *User) error
	DeleteByEmployeeID(ctx context.Context, employeeID string) error
	EmailTaken(ctx context.Context, email string, excludeUserID *uuid.UUID) (bool, error)
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

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.conn(ctx).Create(u).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.conn(ctx).First(&u, "id = ?", id).Error
	return &u, err
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.conn(ctx).First(&u, "email = ?", email).Error
	return &u, err
}

func (r *repository) GetByEmployeeID(ctx context.Context, employeeID string) (*User, error) {
	var u User
	err := r.conn(ctx).First(&u, "employee_id = ?", employeeID).Error
	return &u, err
}

func (r *repository) Update(ctx context.Context, u *User) error {
	return r.conn(ctx).Save(u).Error
}

func (r *repository) DeleteByEmployeeID(ctx context.Context, employeeID string) error {
	return r.conn(ctx).Delete(&User{}, "employee_id = ?", employeeID).Error
}

func (r *repository) EmailTaken(ctx context.Context, email string, excludeUserID *uuid.UUID) (bool, error) {
	db := r.conn(ctx).
		Model(&User{}).
		Where("email = ?", email)

	if excludeUserID != nil {
		db = db.Where("id <> ?", *excludeUserID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}
