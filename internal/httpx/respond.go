package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Code    string       `json:"code,omitempty"`
	Data    any          `json:"data,omitempty"`
	Errors  []fieldError `json:"errors,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, code int, msg string, data any) {
	writeJSON(w, code, envelope{Success: true, Message: msg, Data: data})
}

func fail(w http.ResponseWriter, code int, errCode, msg string) {
	writeJSON(w, code, envelope{Success: false, Message: msg, Code: errCode})
}

var (
	bkashRe      = regexp.MustCompile(`^\+8801[3-9]\d{8}$`)
	personNameRe = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	letterRe     = regexp.MustCompile(`[a-zA-Z]`)
	digitRe      = regexp.MustCompile(`\d`)
)

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
	_ = v.RegisterValidation("bkash", func(fl validator.FieldLevel) bool {
		return bkashRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("letterdigit", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return letterRe.MatchString(s) && digitRe.MatchString(s)
	})
	return v
}

// decode reads a JSON body into dst and validates it. On failure it has
// already written the 400 response.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		fail(w, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return false
	}
	if n, can := dst.(interface{ normalize() }); can {
		n.normalize()
	}
	return check(w, dst)
}

func check(w http.ResponseWriter, v any) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		fail(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return false
	}
	out := make([]fieldError, 0, len(ves))
	for _, fe := range ves {
		out = append(out, fieldError{Field: trimRoot(fe.Namespace()), Message: describe(fe)})
	}
	writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Validation failed", Code: "VALIDATION_FAILED", Errors: out})
	return false
}

func trimRoot(ns string) string {
	if _, rest, found := strings.Cut(ns, "."); found {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "numeric":
		return "must contain digits only"
	case "bkash":
		return "invalid bKash number format"
	case "personname":
		return "can only contain letters and spaces"
	case "letterdigit":
		return "must contain at least one letter and one number"
	default:
		return "is invalid"
	}
}

// pageParams reads page and limit, defaulting to 1 and 50. limit is capped at 100.
func pageParams(r *http.Request) (page, limit int, err error) {
	page, limit = 1, 50
	if s := r.URL.Query().Get("page"); s != "" {
		if page, err = strconv.Atoi(s); err != nil || page < 1 {
			return 0, 0, errors.New("page must be a positive integer")
		}
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil || limit < 1 || limit > 100 {
			return 0, 0, errors.New("limit must be between 1 and 100")
		}
	}
	return page, limit, nil
}

func idParam(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id >= 1
}
