package member

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// buddhistEraOffset converts Thai calendar years (e.g. 2540) to Gregorian.
const buddhistEraOffset = 543

var birthdayLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02012006",
	"01-02-06",
	"1/2/06",
}

// ParseBirthday accepts ISO dates, day-first Thai layouts, Excel serial
// numbers and Buddhist-era years.
func ParseBirthday(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && len(raw) != 8 {
		if serial < 1 || serial > 100000 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return dateOnly(t), true
	}
	for _, layout := range birthdayLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if t.Year() > 2400 {
			t = t.AddDate(-buddhistEraOffset, 0, 0)
		}
		return dateOnly(t), true
	}
	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
