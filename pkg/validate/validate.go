package validate

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// FieldErrors maps a form field to its ordered list of messages.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// String renders "field: msg, msg; field: msg" ordered by field name.
func (fe FieldErrors) String() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(fe[f], ", "))
	}
	return strings.Join(parts, "; ")
}

type CustomValidator struct {
	validator *validator.Validate
	now       func() time.Time
}

func NewCustomValidator() *CustomValidator {
	cv := &CustomValidator{
		validator: validator.New(),
		now:       time.Now,
	}
	cv.validator.RegisterTagNameFunc(fieldName)
	// registration only fails on empty tags or nil funcs
	_ = cv.validator.RegisterValidation("ean13", isEAN13)
	_ = cv.validator.RegisterValidation("notfuture", cv.notFutureYear)
	return cv
}

// Validate makes CustomValidator an echo.Validator.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

var defaultValidator = NewCustomValidator()

// Parse fills dst from raw form fields using the default validator.
func Parse(raw map[string]string, dst any) FieldErrors {
	return defaultValidator.Parse(raw, dst)
}

// Parse coerces raw form values into the tagged fields of dst (a pointer to
// struct), then runs the validate rules. An empty result means success.
//
// Supported field types: string, *string, int, *int, int64, *int64. The
// form tag option "year" accepts a plain year or an ISO date. Values are
// trimmed unless the option is "notrim".
func (cv *CustomValidator) Parse(raw map[string]string, dst any) FieldErrors {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("validate.Parse: want pointer to struct, got %T", dst))
	}
	rv = rv.Elem()
	rt := rv.Type()

	fieldErrs := make(FieldErrors)
	messages := make(map[string]map[string]string, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name, opts := parseFormTag(sf)
		if name == "" {
			continue
		}
		messages[sf.Name] = parseMessages(sf.Tag.Get("msg"))

		value := raw[name]
		if opts != "notrim" {
			value = strings.TrimSpace(value)
		}
		if err := setField(rv.Field(i), value, opts); err != nil {
			fieldErrs.Add(name, message(messages[sf.Name], "number", name, ""))
		}
	}

	err := cv.validator.Struct(dst)
	if err == nil {
		return fieldErrs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		panic(fmt.Sprintf("validate.Parse: %v", err))
	}
	for _, fe := range verrs {
		if fieldErrs.Has(fe.Field()) {
			continue
		}
		fieldErrs.Add(fe.Field(), message(messages[fe.StructField()], fe.Tag(), fe.Field(), fe.Param()))
	}
	return fieldErrs
}

func setField(field reflect.Value, value string, opts string) error {
	if value == "" {
		// absent and empty optional fields both stay zero/nil
		return nil
	}
	target := field
	if field.Kind() == reflect.Pointer {
		target = reflect.New(field.Type().Elem()).Elem()
	}
	switch target.Kind() {
	case reflect.String:
		target.SetString(value)
	case reflect.Int, reflect.Int64:
		n, err := parseInt(value, opts)
		if err != nil {
			return err
		}
		target.SetInt(n)
	default:
		panic(fmt.Sprintf("validate.Parse: unsupported field type %s", field.Type()))
	}
	if field.Kind() == reflect.Pointer {
		field.Set(target.Addr())
	}
	return nil
}

func parseInt(value, opts string) (int64, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err == nil || opts != "year" {
		return n, err
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339, "2006-01"} {
		if t, perr := time.Parse(layout, value); perr == nil {
			return int64(t.Year()), nil
		}
	}
	return 0, err
}

func parseFormTag(sf reflect.StructField) (name, opts string) {
	tag := sf.Tag.Get("form")
	if tag == "" || tag == "-" {
		return "", ""
	}
	name, opts, _ = strings.Cut(tag, ",")
	return name, opts
}

func fieldName(sf reflect.StructField) string {
	if name, _ := parseFormTag(sf); name != "" {
		return name
	}
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// parseMessages reads `msg:"required=Title is required;min=Too short"`.
func parseMessages(tag string) map[string]string {
	if tag == "" {
		return nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(tag, ";") {
		rule, msg, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(rule)] = strings.TrimSpace(msg)
	}
	return out
}

func message(custom map[string]string, rule, field, param string) string {
	if msg, ok := custom[rule]; ok {
		return msg
	}
	switch rule {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "number":
		return fmt.Sprintf("%s must be a number", field)
	case "email":
		return "Invalid email address"
	case "url":
		return "Invalid URL format"
	case "uuid", "uuid4":
		return "Invalid identifier"
	case "ean13":
		return "EAN13 must be exactly 13 digits"
	case "notfuture":
		return "Year cannot be in the future"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func isEAN13(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int64:
		n := fl.Field().Int()
		return n > 0 && len(strconv.FormatInt(n, 10)) == 13
	case reflect.String:
		s := fl.Field().String()
		if len(s) != 13 {
			return false
		}
		_, err := strconv.ParseUint(s, 10, 64)
		return err == nil
	default:
		return false
	}
}

func (cv *CustomValidator) notFutureYear(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int64:
		return fl.Field().Int() <= int64(cv.now().Year())
	default:
		return false
	}
}
