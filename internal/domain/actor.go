package domain

// Roles are fixed at provisioning time; there is no role management UI.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Actor is the authenticated identity every mutating operation is
// authorized against.
type Actor struct {
	UserID     string
	EmployeeID string
	Role       string
}

// CanModerate reports whether the actor may act on records that are not
// their own (approvals, rejections, deletion of managers).
func (a Actor) CanModerate() bool {
	return a.Role == RoleAdmin || a.Role == RoleManager
}

type EnforceRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}
