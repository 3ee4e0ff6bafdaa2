package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"canvas-lab/errors"
)

var validate = validator.New()

// NormalizeColor accepts a 6 hex digit color with or without a leading '#'
// and returns the canonical "#RRGGBB" form.
func NormalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if !strings.HasPrefix(color, "#") {
		color = "#" + color
	}
	// hexcolor also accepts the short #RGB form, which the canvas does not.
	if len(color) != 7 || validate.Var(color, "hexcolor") != nil {
		return "", errors.ErrInvalidColor
	}
	return strings.ToUpper(color), nil
}

// ValidateContent checks a chat message after moderation ran.
func ValidateContent(content string, maxLength int) error {
	if strings.TrimSpace(content) == "" {
		return errors.ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > maxLength {
		return errors.ErrContentTooLong
	}
	return nil
}
