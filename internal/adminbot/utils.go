package adminbot

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gratefultolord/hr_requests_bot/internal/model"
)

var digitsOnly = regexp.MustCompile(`^\d+$`)

func IsDigits(s string) bool {
	return digitsOnly.MatchString(s)
}

// IsValidFullName trims name and reports whether it is long enough.
func IsValidFullName(name string) (string, bool) {
	name = strings.TrimSpace(name)

	return name, utf8.RuneCountInString(name) >= model.MinFullNameLength
}
