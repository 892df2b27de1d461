package state

import (
	"strconv"
	"strings"
)

var cancelTokens = []string{"إلغاء", "الغاء", "cancel"}

// IsCancel reports whether input asks to abort the conversation.
func IsCancel(input string) bool {
	input = strings.TrimSpace(input)
	for _, tok := range cancelTokens {
		if strings.EqualFold(input, tok) {
			return true
		}
	}
	return false
}

// IsConfirm reports whether input is the literal delete confirmation.
func IsConfirm(input string) bool {
	input = strings.TrimSpace(input)
	return input == "تأكيد" || strings.EqualFold(input, "confirm")
}

// IsYes reports whether input accepts a yes/no question.
func IsYes(input string) bool {
	input = strings.TrimSpace(input)
	return input == "نعم" || strings.EqualFold(input, "yes")
}

// ParseChoice parses a 1-based menu number in [1, n]. Arabic-Indic and
// Eastern Arabic-Indic digits are accepted alongside ASCII ones.
func ParseChoice(input string, n int) (int, bool) {
	input = normalizeDigits(strings.TrimSpace(input))
	if input == "" {
		return 0, false
	}
	v, err := strconv.Atoi(input)
	if err != nil || v < 1 || v > n {
		return 0, false
	}
	return v, true
}

func normalizeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		}
		return r
	}, s)
}
