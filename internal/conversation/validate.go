package conversation

import (
	"strings"
	"time"
)

// BirthdayLayout is the expected calendar-date input format (DD.MM.YYYY).
const BirthdayLayout = "02.01.2006"

const maxGroupDescriptionLen = 500

// ParseBirthday validates and parses a birthday in DD.MM.YYYY form.
func ParseBirthday(value string) (time.Time, bool) {
	parsed, err := time.Parse(BirthdayLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, false
	}

	return parsed, true
}

// ValidEmail reports whether the value looks like an email address: it must
// contain an @ with a dot somewhere after it.
func ValidEmail(value string) bool {
	at := strings.Index(value, "@")
	if at < 0 {
		return false
	}

	return strings.Contains(value[at+1:], ".")
}

// ValidPhone reports whether the value is a + followed only by digits.
func ValidPhone(value string) bool {
	if !strings.HasPrefix(value, "+") || len(value) < 2 {
		return false
	}

	for _, c := range value[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

// ValidGroupDescription reports whether the description fits the stored
// column.
func ValidGroupDescription(value string) bool {
	return len(value) <= maxGroupDescriptionLen
}
