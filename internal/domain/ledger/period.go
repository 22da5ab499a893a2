package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

type PeriodKind string

const (
	PeriodDay   PeriodKind = "DAILY"
	PeriodMonth PeriodKind = "MONTHLY"
	PeriodYear  PeriodKind = "ANNUAL"
)

// Period selects sessions by calendar day, month or year.
type Period struct {
	Kind  PeriodKind
	Date  string // YYYY-MM-DD, for PeriodDay
	Month int    // 1-12, for PeriodMonth
	Year  int    // for PeriodMonth and PeriodYear
}

func Day(date string) Period       { return Period{Kind: PeriodDay, Date: date} }
func Month(year, month int) Period { return Period{Kind: PeriodMonth, Year: year, Month: month} }
func Year(year int) Period         { return Period{Kind: PeriodYear, Year: year} }

// Contains matches a session date (YYYY-MM-DD) against the period.
func (p Period) Contains(date string) bool {
	switch p.Kind {
	case PeriodDay:
		return date == p.Date
	case PeriodMonth:
		y, m := splitDate(date)
		return y == p.Year && m == p.Month
	case PeriodYear:
		y, _ := splitDate(date)
		return y == p.Year
	}
	return false
}

// Label renders the period the way payout statements reference it.
func (p Period) Label() string {
	switch p.Kind {
	case PeriodDay:
		parts := strings.Split(p.Date, "-")
		if len(parts) == 3 {
			return parts[2] + "/" + parts[1] + "/" + parts[0]
		}
		return p.Date
	case PeriodMonth:
		return fmt.Sprintf("%02d/%d", p.Month, p.Year)
	default:
		return strconv.Itoa(p.Year)
	}
}

func splitDate(date string) (year, month int) {
	parts := strings.Split(date, "-")
	if len(parts) < 2 {
		return 0, 0
	}
	year, _ = strconv.Atoi(parts[0])
	month, _ = strconv.Atoi(parts[1])
	return year, month
}
