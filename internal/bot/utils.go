package bot

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gratefultolord/hr_requests_bot/internal/model"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func cleanInput(text string) string {
	return strings.TrimSpace(text)
}

// IsValidFullName trims name and reports whether it is long enough.
func IsValidFullName(name string) (string, bool) {
	name = cleanInput(name)

	return name, utf8.RuneCountInString(name) >= model.MinFullNameLength
}

// IsValidDate parses a YYYY-MM-DD calendar date.
func IsValidDate(date string) (time.Time, bool) {
	if !datePattern.MatchString(date) {
		return time.Time{}, false
	}

	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, false
	}

	return parsed, true
}
