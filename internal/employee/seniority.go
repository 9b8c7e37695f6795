package employee

import "time"

// SeniorityYears counts whole years of service between hireDate and ref.
// The year only increments once the anniversary day has passed, so an
// employee hired 2020-06-15 has 5 years on 2026-06-14 and 6 on 06-15.
func SeniorityYears(hireDate, ref time.Time) int {
	years := ref.Year() - hireDate.Year()

	refM, refD := ref.Month(), ref.Day()
	hireM, hireD := hireDate.Month(), hireDate.Day()
	if refM < hireM || (refM == hireM && refD < hireD) {
		years--
	}

	if years < 0 {
		return 0
	}
	return years
}
