package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// RosterRow is one line of the staff roster export.
type RosterRow struct {
	EmployeeNumber string
	FullName       string
	Department     string
	Position       string
	HireDate       string
	SeniorityYears int
	AnnualDays     int
	TakenDays      int
	BalanceDays    int
}

func buildRosterWorkbook(rows []RosterRow, year int) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Roster"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 28)
	f.SetColWidth(sheetName, "C", "D", 22)
	f.SetColWidth(sheetName, "E", "I", 14)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	headers := []string{
		"Number", "Name", "Department", "Position", "Hire Date",
		"Seniority", fmt.Sprintf("Annual %d", year), "Taken", "Balance",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for r, row := range rows {
		values := []any{
			row.EmployeeNumber,
			row.FullName,
			row.Department,
			row.Position,
			row.HireDate,
			row.SeniorityYears,
			row.AnnualDays,
			row.TakenDays,
			row.BalanceDays,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}
