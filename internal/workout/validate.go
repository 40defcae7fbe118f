package workout

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// ErrValidation matches every *ValidationError through errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports one invalid card field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidateCard checks the fields a card editor must refuse to save.
// All problems are reported at once; multierr.Errors splits them again.
func ValidateCard(card Card) error {
	var errs []error
	if strings.TrimSpace(card.Title) == "" {
		errs = append(errs, &ValidationError{Field: "title", Message: "is required"})
	}

	switch body := card.Body.(type) {
	case TimeBody:
		if body.Timing.WorkSec <= 0 {
			errs = append(errs, &ValidationError{Field: "work_sec", Message: "must be greater than zero"})
		}
		optional := []struct {
			field string
			value int
		}{
			{"warmup_sec", body.Timing.WarmupSec},
			{"rest_between_reps_sec", body.Timing.RestBetweenRepsSec},
			{"rest_between_sets_sec", body.Timing.RestBetweenSetsSec},
			{"cooldown_sec", body.Timing.CooldownSec},
		}
		for _, o := range optional {
			if o.value < 0 {
				errs = append(errs, &ValidationError{Field: o.field, Message: "must not be negative"})
			}
		}
	case RepBody:
		if len(body.Sets) == 0 {
			errs = append(errs, &ValidationError{Field: "sets", Message: "at least one set is required"})
		}
		for i, set := range body.Sets {
			if strings.TrimSpace(set.Exercise) == "" {
				errs = append(errs, &ValidationError{Field: fmt.Sprintf("sets[%d].exercise", i), Message: "is required"})
			}
			if set.Reps < 0 {
				errs = append(errs, &ValidationError{Field: fmt.Sprintf("sets[%d].reps", i), Message: "must not be negative"})
			}
			if set.WeightKg < 0 {
				errs = append(errs, &ValidationError{Field: fmt.Sprintf("sets[%d].weight_kg", i), Message: "must not be negative"})
			}
		}
	case nil:
		errs = append(errs, &ValidationError{Field: "kind", Message: "is required"})
	default:
		errs = append(errs, &ValidationError{Field: "kind", Message: fmt.Sprintf("unsupported body %T", body)})
	}

	return multierr.Combine(errs...)
}
