package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	v1 "github.com/audit-lab/audit-service/internal/api/v1"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidJSON marks a body that is not a JSON document of the expected shape.
var ErrInvalidJSON = errors.New("invalid JSON body")

// DecodeRecord turns one JSON body into a validated record of category c.
// It is shared by the HTTP handlers and the queue consumer so both paths
// accept exactly the same documents.
//
// Missing required fields and wrongly typed values wrap v1.ErrInvalidField,
// malformed JSON wraps ErrInvalidJSON. Domain rule violations (action,
// timestamp, additional_data) are returned as produced by the record model.
func DecodeRecord(c v1.Category, body []byte, acceptedAt time.Time) (v1.Record, error) {
	useJSONFieldNames()

	input, err := v1.NewInput(c)
	if err != nil {
		return nil, err
	}

	if err := binding.JSON.BindBody(body, input); err != nil {
		var (
			validationErrs validator.ValidationErrors
			typeErr        *json.UnmarshalTypeError
		)
		switch {
		case errors.As(err, &validationErrs), errors.As(err, &typeErr):
			return nil, fmt.Errorf("%w: %w", v1.ErrInvalidField, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}
	}

	return input.Record(acceptedAt)
}

// fieldErrors lists the offending fields of a validation failure for the
// error response details.
func fieldErrors(err error) map[string]string {
	out := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fe := range validationErrs {
			out[fe.Field()] = fe.Tag()
		}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		out[typeErr.Field] = "expected " + typeErr.Type.String()
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

var tagNamesOnce sync.Once

// useJSONFieldNames makes validation errors report JSON keys instead of Go
// field names.
func useJSONFieldNames() {
	tagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}
