package employee

type CreateEmployeeRequest struct {
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	Role            string `json:"role" binding:"omitempty,oneof=admin manager employee"`
	DateOfBirth     string `json:"date_of_birth" binding:"omitempty"`
	Gender          string `json:"gender"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	HireDate        string `json:"hire_date" binding:"omitempty"`
	DepartmentID    string `json:"department_id" binding:"omitempty,uuid"`
	Position        string `json:"position"`
	IsManager       bool   `json:"is_manager"`
	AnnualLeaveDays *int   `json:"annual_leave_days" binding:"omitempty,gte=0"`
	EmployeeNumber  string `json:"employee_number"`
}

type UpdateEmployeeRequest struct {
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"omitempty,min=8"`
	Role            string `json:"role" binding:"omitempty,oneof=admin manager employee"`
	DateOfBirth     string `json:"date_of_birth" binding:"omitempty"`
	Gender          string `json:"gender"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	HireDate        string `json:"hire_date" binding:"required"`
	DepartmentID    string `json:"department_id" binding:"omitempty,uuid"`
	Position        string `json:"position"`
	IsManager       bool   `json:"is_manager"`
	AnnualLeaveDays *int   `json:"annual_leave_days" binding:"omitempty,gte=0"`
}

type EmployeeResponse struct {
	ID              string `json:"id"`
	EmployeeNumber  string `json:"employee_number"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	DateOfBirth     string `json:"date_of_birth,omitempty"`
	Gender          string `json:"gender,omitempty"`
	Address         string `json:"address,omitempty"`
	Phone           string `json:"phone,omitempty"`
	HireDate        string `json:"hire_date"`
	DepartmentID    string `json:"department_id,omitempty"`
	Position        string `json:"position,omitempty"`
	IsManager       bool   `json:"is_manager"`
	AnnualLeaveDays int    `json:"annual_leave_days"`
	SeniorityYears  int    `json:"seniority_years"`
}

// EmployeeOptionResponse is the trimmed shape used to fill dropdowns.
type EmployeeOptionResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}
