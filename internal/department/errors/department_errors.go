package departmenterrors

import (
	"net/http"

	"agency-hr/internal/shared/apperror"
)

var (
	ErrDepartmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Department not found",
		http.StatusNotFound,
	)
	ErrDepartmentNameTaken = apperror.New(
		apperror.CodeConflict,
		"A department with this name already exists",
		http.StatusConflict,
	)
	ErrInvalidDepartmentID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid department ID",
		http.StatusBadRequest,
	)
	ErrDepartmentNotEmpty = apperror.New(
		apperror.CodeConflict,
		"Department still has employees assigned",
		http.StatusConflict,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrManagerAlreadyAssigned = apperror.New(
		apperror.CodeConflict,
		"Employee already manages this department",
		http.StatusConflict,
	)
	ErrManagerAssignmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Manager assignment not found",
		http.StatusNotFound,
	)
)
