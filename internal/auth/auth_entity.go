package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is the account credential linked 1:1 to an employee record.
// IsProtected marks accounts that can never be deleted (the root
// administrator, set at provisioning time).
type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EmployeeID  *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Email       string     `gorm:"type:varchar(120);not null;uniqueIndex:uq_user_email"`
	Username    string     `gorm:"type:varchar(64);not null"`
	Password    string     `gorm:"type:varchar(200);not null"`
	Role        string     `gorm:"type:varchar(20);not null;default:'employee'"`
	IsProtected bool       `gorm:"not null;default:false"`
	IsActive    bool       `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
