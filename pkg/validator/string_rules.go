package validator

import (
	"strings"
	"unicode/utf8"
)

// Required fails on empty or whitespace-only values.
func Required(field, value, message string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: message},
	}
}

// MinLenTrimmed fails when value has fewer than min characters after
// surrounding whitespace is removed.
func MinLenTrimmed(field, value string, min int, message string) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(strings.TrimSpace(value)) >= min },
		Error: ValidationError{Field: field, Message: message},
	}
}

// MaxBytes fails when value is longer than max bytes.
func MaxBytes(field, value string, max int, message string) Rule {
	return Rule{
		Check: func() bool { return len(value) <= max },
		Error: ValidationError{Field: field, Message: message},
	}
}

// EmailShape accepts any value of the form local@domain with both parts
// non-empty and no whitespace. Deliverability is not checked.
func EmailShape(field, value, message string) Rule {
	return Rule{
		Check: func() bool {
			if strings.ContainsFunc(value, isSpace) {
				return false
			}
			at := strings.LastIndexByte(value, '@')
			return at > 0 && at < len(value)-1
		},
		Error: ValidationError{Field: field, Message: message},
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
