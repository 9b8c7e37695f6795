package leave

import "time"

// Balance is the computed leave position for one employee and one year.
type Balance struct {
	Annual  int `json:"annual"`
	Taken   int `json:"taken"`
	Balance int `json:"balance"`
}

// InclusiveDays counts every calendar day between start and end,
// both endpoints included. A single-day request counts as 1.
func InclusiveDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

// CalculateBalance computes the position from the stored requests.
// Only approved requests whose start date falls in year are debited,
// each at its inclusive calendar-day count. The displayed balance is
// clamped at zero; the true balance may be negative since approval
// never re-validates against the remaining allotment.
//
// Note: the ledger debits inclusive calendar days, not the Mon-Fri
// count that CountBusinessDays gives requesters as an estimate. The
// two figures are kept deliberately separate.
func CalculateBalance(annualDays int, leaves []Leave, year int) Balance {
	taken := 0
	for _, l := range leaves {
		if l.Status != StatusApproved {
			continue
		}
		if l.StartDate.Year() != year {
			continue
		}
		taken += InclusiveDays(l.StartDate, l.EndDate)
	}

	balance := annualDays - taken
	if balance < 0 {
		balance = 0
	}

	return Balance{
		Annual:  annualDays,
		Taken:   taken,
		Balance: balance,
	}
}

// CountBusinessDays walks every date from start to end inclusive and
// counts Monday through Friday. Surfaced to requesters as an estimate
// only; it is never what the ledger debits.
func CountBusinessDays(start, end time.Time) int {
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			days++
		}
	}
	return days
}
