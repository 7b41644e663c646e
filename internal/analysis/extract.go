package analysis

import (
	"fmt"
	"strings"

	"review_dashboard/internal/domain"
)

// ParseTextField maps a request value to a free-text field.
func ParseTextField(s string) (domain.TextField, error) {
	switch f := domain.TextField(strings.ToLower(s)); f {
	case domain.FieldHeadline, domain.FieldComments:
		return f, nil
	}
	return "", fmt.Errorf("%w: text field %q", domain.ErrUnknownField, s)
}

// ExtractTexts returns the present, non-blank values of field for reviews
// rated exactly rating.
func ExtractTexts(reviews []domain.Review, rating int, field domain.TextField) ([]string, error) {
	var get func(domain.Review) *string
	switch field {
	case domain.FieldHeadline:
		get = func(r domain.Review) *string { return r.Headline }
	case domain.FieldComments:
		get = func(r domain.Review) *string { return r.Comments }
	default:
		return nil, fmt.Errorf("%w: text field %q", domain.ErrUnknownField, field)
	}

	out := []string{}
	for _, r := range reviews {
		if r.Rating != rating {
			continue
		}
		if s := get(r); s != nil && strings.TrimSpace(*s) != "" {
			out = append(out, *s)
		}
	}
	return out, nil
}
