// Package http provides HTTP server and handler implementations.
//
// This file parses and validates request data: JSON bodies through
// go-playground/validator and the query parameters shared by the list
// endpoints.
package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"dompet/internal/core"
	"dompet/internal/ledger"
)

const maxBodyBytes = 64 << 10

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError names one rejected field of a request body.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// requestError is a malformed or invalid request. It maps to 422.
type requestError struct {
	msg    string
	fields []FieldError
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// decodeJSON reads a bounded JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is empty")
		}
		return badRequest("invalid JSON body: %v", err)
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]FieldError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
			}
			return &requestError{msg: "validation failed", fields: fields}
		}
		return badRequest("validation failed: %v", err)
	}
	return nil
}

// parseTypeParam returns nil for an absent type.
func parseTypeParam(q url.Values) (*core.TransactionType, error) {
	v := strings.TrimSpace(q.Get("type"))
	if v == "" {
		return nil, nil
	}
	t, err := core.ParseTransactionType(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseKindParam returns nil for an absent kind.
func parseKindParam(q url.Values) (*core.DebtKind, error) {
	v := strings.TrimSpace(q.Get("kind"))
	if v == "" {
		return nil, nil
	}
	k, err := core.ParseDebtKind(v)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// parseRange reads optional from/to bounds in YYYY-MM-DD form.
func parseRange(q url.Values) (ledger.Range, error) {
	var from, to core.Date
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		d, err := core.ParseDay(v)
		if err != nil {
			return ledger.Range{}, err
		}
		from = d
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		d, err := core.ParseDay(v)
		if err != nil {
			return ledger.Range{}, err
		}
		to = d
	}
	return ledger.NewRange(from, to), nil
}

// parseIntParam returns def when the parameter is absent.
func parseIntParam(q url.Values, name string, def int) (int, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest("%s must be a number", name)
	}
	return n, nil
}

// parseYearMonth defaults to the month containing now.
func parseYearMonth(q url.Values, now time.Time) (year, month int, err error) {
	if year, err = parseIntParam(q, "year", now.Year()); err != nil {
		return 0, 0, err
	}
	if month, err = parseIntParam(q, "month", int(now.Month())); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

// parseAmount accepts id-ID formatted rupiah text.
func parseAmount(s string) (core.Money, error) {
	sen, err := core.ParseDecimalToSen(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Sen: sen}, nil
}

// parseOptionalDay returns the zero Date for an empty string.
func parseOptionalDay(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Date{}, nil
	}
	return core.ParseDay(s)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
