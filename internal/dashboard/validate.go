package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var rowValidator = validator.New()

// ValidateRows checks every row against its struct tags. The first failing row is reported
// as ErrMalformedRow with the offending fields.
func ValidateRows[T any](view string, rows []T) error {
	for i := range rows {
		if err := rowValidator.Struct(rows[i]); err != nil {
			return malformed(view, i, err)
		}
	}
	return nil
}

// ValidateValue validates a single aggregate such as Overview or IngestionDetail.
func ValidateValue(view string, value any) error {
	if err := rowValidator.Struct(value); err != nil {
		return malformed(view, -1, err)
	}
	return nil
}

func malformed(view string, index int, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %s: %v", ErrMalformedRow, view, err)
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s(%s)", fieldErr.Field(), fieldErr.Tag()))
	}
	if index < 0 {
		return fmt.Errorf("%w: %s: %s", ErrMalformedRow, view, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %s row %d: %s", ErrMalformedRow, view, index, strings.Join(fields, ", "))
}
