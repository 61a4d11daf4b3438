package validator

import "fmt"

// Source text bounds for AI generation. Short texts produce degenerate
// proposals; very long ones blow the model context.
const (
	SourceTextMinLength = 1000
	SourceTextMaxLength = 10000
)

func ValidateSourceText(text string) string {
	n := len([]rune(text))
	if n < SourceTextMinLength {
		return fmt.Sprintf("source_text: must be at least %d characters, got %d", SourceTextMinLength, n)
	}
	if n > SourceTextMaxLength {
		return fmt.Sprintf("source_text: must be at most %d characters, got %d", SourceTextMaxLength, n)
	}
	return ""
}

// NormalizePagination clamps page and limit into valid ranges,
// applying defaults for missing values.
func NormalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
