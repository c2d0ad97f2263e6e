package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDateRe     = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:[T ].*)?$`)
	numericDateRe = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})[./-](\d{4}|\d{2})$`)
	dayMonthRe    = regexp.MustCompile(`^(\d{1,2})\s+([\p{L}.]+)\s+(\d{4}|\d{2})$`)
	monthDayRe    = regexp.MustCompile(`^([\p{L}.]+)\s+(\d{1,2}),?\s+(\d{4})$`)
	yearSuffixRe  = regexp.MustCompile(`\s*(?:года|г\.?)$`)
)

// twoDigitYearPivot: years up to and including it map to 20xx, later ones to 19xx.
const twoDigitYearPivot = 68

var monthNames = map[string]time.Month{
	// ru
	"январь": time.January, "января": time.January, "янв": time.January,
	"февраль": time.February, "февраля": time.February, "фев": time.February,
	"март": time.March, "марта": time.March,
	"апрель": time.April, "апреля": time.April,
	"май": time.May, "мая": time.May,
	"июнь": time.June, "июня": time.June, "июн": time.June,
	"июль": time.July, "июля": time.July, "июл": time.July,
	"август": time.August, "августа": time.August, "авг": time.August,
	"сентябрь": time.September, "сентября": time.September, "сен": time.September, "сент": time.September,
	"октябрь": time.October, "октября": time.October, "окт": time.October,
	"ноябрь": time.November, "ноября": time.November, "ноя": time.November, "нояб": time.November,
	"декабрь": time.December, "декабря": time.December, "дек": time.December,
	// en
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
	// fr
	"janvier": time.January, "janv": time.January,
	"février": time.February, "fevrier": time.February, "févr": time.February, "fevr": time.February,
	"mars": time.March,
	"avril": time.April, "avr": time.April,
	"mai": time.May,
	"juin": time.June,
	"juillet": time.July, "juil": time.July,
	"août": time.August, "aout": time.August,
	"septembre": time.September,
	"octobre": time.October,
	"novembre": time.November,
	"décembre": time.December, "decembre": time.December, "déc": time.December,
}

// ParseDate parses an invoice date written by a human or an OCR engine.
// ISO YYYY-MM-DD is tried first, then day-first numeric forms (DD.MM.YYYY,
// DD/MM/YYYY, DD-MM-YY) and spelled-out Russian, English or French month
// names. The result is midnight UTC.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		return buildDate(m[1], m[2], m[3])
	}
	if m := numericDateRe.FindStringSubmatch(s); m != nil {
		return buildDate(m[3], m[2], m[1])
	}

	s = yearSuffixRe.ReplaceAllString(strings.ToLower(s), "")
	if m := dayMonthRe.FindStringSubmatch(s); m != nil {
		month, ok := lookupMonth(m[2])
		if !ok {
			return time.Time{}, false
		}
		return buildDate(m[3], strconv.Itoa(int(month)), m[1])
	}
	if m := monthDayRe.FindStringSubmatch(s); m != nil {
		month, ok := lookupMonth(m[1])
		if !ok {
			return time.Time{}, false
		}
		return buildDate(m[3], strconv.Itoa(int(month)), m[2])
	}

	return time.Time{}, false
}

func lookupMonth(word string) (time.Month, bool) {
	m, ok := monthNames[strings.TrimSuffix(word, ".")]
	return m, ok
}

func buildDate(yearStr, monthStr, dayStr string) (time.Time, bool) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, false
	}
	if len(yearStr) == 2 {
		if year <= twoDigitYearPivot {
			year += 2000
		} else {
			year += 1900
		}
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow such as 31.02 into March.
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}
