package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"exam-grading-service/internal/auth"
	"exam-grading-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid(name, "want a positive integer, got %q", raw)
	}
	return id, nil
}

func identity(r *http.Request) (domain.Identity, error) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}

// decodeJSON reads exactly one JSON document into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.Invalid("body", "larger than %d bytes", tooLarge.Limit)
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return domain.Invalid(typeErr.Field, "want %s", typeErr.Type)
		}
		return domain.Invalid("body", "malformed JSON: %v", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.Invalid("body", "trailing data after JSON document")
	}
	return nil
}

// parseOption decodes a raw JSON option, reporting field on failure.
func parseOption(raw json.RawMessage, field string) (domain.Option, error) {
	if len(raw) == 0 {
		return 0, domain.Invalid(field, "is required")
	}
	var o domain.Option
	if err := o.UnmarshalJSON(raw); err != nil {
		return 0, domain.Invalid(field, "%v", err)
	}
	return o, nil
}

func indexed(list string, i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", list, i, field)
}
