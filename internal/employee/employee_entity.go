package employee

import (
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeNumber  string    `gorm:"uniqueIndex:uq_employee_number"`
	FirstName       string
	LastName        string
	Email           string `gorm:"uniqueIndex:uq_employee_email"`
	DateOfBirth     *time.Time
	Gender          string
	Address         string
	Phone           string
	HireDate        time.Time
	DepartmentID    *uuid.UUID `gorm:"type:uuid;index"`
	Position        string
	IsManager       bool
	AnnualLeaveDays int `gorm:"default:22"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
