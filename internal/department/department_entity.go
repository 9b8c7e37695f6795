package department

import (
	"time"

	"github.com/google/uuid"
)

type Department struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"size:255;not null;uniqueIndex:uq_department_name"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// DepartmentManager links an employee to a department they manage. An
// employee may manage several departments and a department may have
// several managers.
type DepartmentManager struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	DepartmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_department_manager"`
	EmployeeID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_department_manager"`
	AssignedAt   time.Time `gorm:"autoCreateTime"`
}
