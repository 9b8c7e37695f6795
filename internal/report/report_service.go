package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"agency-hr/internal/department"
	"agency-hr/internal/employee"
	employeeerrors "agency-hr/internal/employee/errors"
	"agency-hr/internal/leave"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=report_service.go -destination=mock/report_service_mock.go -package=mock
type Service interface {
	EmployeePDF(ctx context.Context, employeeID string, ref time.Time) ([]byte, string, error)
	RosterPDF(ctx context.Context, ref time.Time) ([]byte, string, error)
	RosterXLSX(ctx context.Context, ref time.Time) (*bytes.Buffer, string, error)
}

type service struct {
	employees   employee.Repository
	leaves      leave.Repository
	departments department.Repository
	logger      *zap.Logger
}

func NewService(
	employees employee.Repository,
	leaves leave.Repository,
	departments department.Repository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("report.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.service")
	}
	return &service{
		employees:   employees,
		leaves:      leaves,
		departments: departments,
		logger:      l,
	}
}

// EmployeePDF renders the printable file for one employee: identity,
// assignment, seniority, the leave position for ref's year and the full
// request history.
func (s *service) EmployeePDF(ctx context.Context, employeeID string, ref time.Time) ([]byte, string, error) {
	empl, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", employeeerrors.ErrEmployeeNotFound
		}
		return nil, "", err
	}

	deptName := s.departmentName(ctx, empl)

	year := ref.Year()
	approved, err := s.leaves.FindApprovedInYear(ctx, employeeID, year)
	if err != nil {
		return nil, "", err
	}
	balance := leave.CalculateBalance(empl.AnnualLeaveDays, approved, year)

	history, err := s.leaves.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, "", err
	}

	fullName := empl.FirstName + " " + empl.LastName
	lines := []string{
		"",
		fmt.Sprintf("Number: %s", empl.EmployeeNumber),
		fmt.Sprintf("Email: %s", empl.Email),
		fmt.Sprintf("Department: %s", orDash(deptName)),
		fmt.Sprintf("Position: %s", orDash(empl.Position)),
		fmt.Sprintf("Hire date: %s", empl.HireDate.Format("2006-01-02")),
		fmt.Sprintf("Seniority: %d years", employee.SeniorityYears(empl.HireDate, ref)),
		"",
		fmt.Sprintf("Leave position %d: %d annual, %d taken, %d remaining",
			year, balance.Annual, balance.Taken, balance.Balance),
		"",
		"Leave history:",
	}
	if len(history) == 0 {
		lines = append(lines, "  (no requests)")
	}
	for _, l := range history {
		lines = append(lines, fmt.Sprintf("  %s  %s to %s  %d day(s)  %s",
			l.LeaveType,
			l.StartDate.Format("2006-01-02"),
			l.EndDate.Format("2006-01-02"),
			leave.InclusiveDays(l.StartDate, l.EndDate),
			l.Status,
		))
	}

	pdf, err := buildSimpleReportPDF("Employee Report - "+fullName, lines)
	if err != nil {
		s.logger.Error("build employee pdf failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return nil, "", err
	}

	filename := fmt.Sprintf("employee_%s.pdf", empl.EmployeeNumber)
	s.logger.Info("employee pdf generated",
		zap.String("employee_id", employeeID),
		zap.Int("bytes", len(pdf)),
	)
	return pdf, filename, nil
}

// RosterPDF renders the whole staff list, one line per employee.
func (s *service) RosterPDF(ctx context.Context, ref time.Time) ([]byte, string, error) {
	rows, err := s.rosterRows(ctx, ref)
	if err != nil {
		return nil, "", err
	}

	lines := []string{
		"",
		fmt.Sprintf("Generated: %s", ref.Format("2006-01-02")),
		fmt.Sprintf("Headcount: %d", len(rows)),
		"",
	}
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s  %s  %s  %s  hired %s  %dy  balance %d/%d",
			row.EmployeeNumber,
			row.FullName,
			orDash(row.Department),
			orDash(row.Position),
			row.HireDate,
			row.SeniorityYears,
			row.BalanceDays,
			row.AnnualDays,
		))
	}

	pdf, err := buildSimpleReportPDF("Staff Roster", lines)
	if err != nil {
		s.logger.Error("build roster pdf failed", zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("roster_%s.pdf", ref.Format("2006-01-02"))
	s.logger.Info("roster pdf generated", zap.Int("rows", len(rows)))
	return pdf, filename, nil
}

func (s *service) RosterXLSX(ctx context.Context, ref time.Time) (*bytes.Buffer, string, error) {
	rows, err := s.rosterRows(ctx, ref)
	if err != nil {
		return nil, "", err
	}

	buf, err := buildRosterWorkbook(rows, ref.Year())
	if err != nil {
		s.logger.Error("build roster workbook failed", zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("roster_%s.xlsx", ref.Format("2006-01-02"))
	s.logger.Info("roster workbook generated", zap.Int("rows", len(rows)))
	return buf, filename, nil
}

func (s *service) rosterRows(ctx context.Context, ref time.Time) ([]RosterRow, error) {
	empls, err := s.employees.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	year := ref.Year()
	rows := make([]RosterRow, 0, len(empls))
	for _, empl := range empls {
		approved, err := s.leaves.FindApprovedInYear(ctx, empl.ID.String(), year)
		if err != nil {
			return nil, err
		}
		balance := leave.CalculateBalance(empl.AnnualLeaveDays, approved, year)

		rows = append(rows, RosterRow{
			EmployeeNumber: empl.EmployeeNumber,
			FullName:       empl.FirstName + " " + empl.LastName,
			Department:     s.departmentName(ctx, &empl),
			Position:       empl.Position,
			HireDate:       empl.HireDate.Format("2006-01-02"),
			SeniorityYears: employee.SeniorityYears(empl.HireDate, ref),
			AnnualDays:     balance.Annual,
			TakenDays:      balance.Taken,
			BalanceDays:    balance.Balance,
		})
	}
	return rows, nil
}

func (s *service) departmentName(ctx context.Context, empl *employee.Employee) string {
	if empl.DepartmentID == nil {
		return ""
	}
	dept, err := s.departments.FindByID(ctx, empl.DepartmentID.String())
	if err != nil {
		s.logger.Warn("resolve department name failed",
			zap.String("department_id", empl.DepartmentID.String()),
			zap.Error(err),
		)
		return ""
	}
	return dept.Name
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
