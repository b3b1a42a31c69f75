package validation

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/taskly/dashboard/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

const (
	// TagTaskStatus validates a models.TaskStatus value
	TagTaskStatus = "task_status"
	// TagChartLabel validates the category label of a chart record
	TagChartLabel = "chart_label"
	// TagChartCount validates a per-series count of a chart record
	TagChartCount = "chart_count"
)

func init() {
	Validate = validator.New()

	for tag, fn := range map[string]validator.Func{
		TagTaskStatus: validateTaskStatus,
		TagChartLabel: validateChartLabel,
		TagChartCount: validateChartCount,
	} {
		if err := Validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register %s validator: %v", tag, err))
		}
	}
}

// validateTaskStatus validates that a string is a valid TaskStatus enum value
func validateTaskStatus(fl validator.FieldLevel) bool {
	return ValidateTaskStatus(fl.Field().String()) == nil
}

// validateChartLabel accepts any string
func validateChartLabel(fl validator.FieldLevel) bool {
	return fl.Field().Kind() == reflect.String
}

// validateChartCount accepts non-negative whole numbers of any numeric kind
// that fit in an int. JSON decoding yields float64, so integral floats are
// allowed.
func validateChartCount(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return field.Int() >= 0 && field.Int() <= math.MaxInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return field.Uint() <= math.MaxInt
	case reflect.Float32, reflect.Float64:
		f := field.Float()
		// float64(math.MaxInt) rounds up to 2^63, itself out of range
		return f >= 0 && f < float64(math.MaxInt) && f == math.Trunc(f)
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateTaskStatus validates a TaskStatus string value
func ValidateTaskStatus(value string) error {
	switch models.TaskStatus(value) {
	case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'pending', 'in-progress', or 'completed')", value)
	}
}
