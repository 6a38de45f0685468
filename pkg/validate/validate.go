// Package validate checks request structs against `validate` struct tags.
//
// Rules are comma separated:
//
//	required         field must not be zero or blank
//	nullable         skip the remaining rules when the field is empty
//	email            valid email address
//	url              absolute http(s) URL
//	min=N / max=N    string length, slice length or numeric value bounds
//	gt=N / gte=N     numeric lower bound (exclusive / inclusive)
//	lte=N            numeric upper bound
//	oneof=a b c      value must be one of the space separated options
//
// Nested structs are validated recursively; their errors are keyed
// "parent.child". Numeric rules also accept values exposing
// InexactFloat64() (decimal.Decimal). Non-nil pointers are checked through
// their target.
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type floater interface{ InexactFloat64() float64 }

// Struct validates v and returns field → message. An empty map means valid.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return errs
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		walk(rv, "", errs)
	}
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func walk(rv reflect.Value, prefix string, errs map[string]string) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		value := rv.Field(i)
		name := prefix + jsonName(field)

		if tag := field.Tag.Get("validate"); tag != "" {
			rules := strings.Split(tag, ",")
			if contains(rules, "nullable") && isEmpty(value) {
				continue
			}
			target := value
			if target.Kind() == reflect.Ptr && !target.IsNil() {
				target = target.Elem()
			}
			for _, rule := range rules {
				if msg := check(strings.TrimSpace(rule), name, target); msg != "" {
					errs[name] = msg
					break
				}
			}
		}

		if value.Kind() == reflect.Struct && !isNumberLike(value) {
			walk(value, name+".", errs)
		}
	}
}

func check(rule, field string, v reflect.Value) string {
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "", "nullable":
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}
	case "email":
		if !emailRE.MatchString(str(v)) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
	case "url":
		u, err := url.ParseRequestURI(str(v))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Sprintf("The %s must be a valid URL.", field)
		}
	case "min":
		n := number(param)
		if isNumberLike(v) {
			if toFloat(v) < n {
				return fmt.Sprintf("The %s must be at least %s.", field, param)
			}
		} else if float64(length(v)) < n {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
	case "max":
		n := number(param)
		if isNumberLike(v) {
			if toFloat(v) > n {
				return fmt.Sprintf("The %s may not be greater than %s.", field, param)
			}
		} else if float64(length(v)) > n {
			return fmt.Sprintf("The %s may not be greater than %s characters.", field, param)
		}
	case "gt":
		if toFloat(v) <= number(param) {
			return fmt.Sprintf("The %s must be greater than %s.", field, param)
		}
	case "gte":
		if toFloat(v) < number(param) {
			return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
		}
	case "lte":
		if toFloat(v) > number(param) {
			return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
		}
	case "oneof":
		options := strings.Fields(param)
		if !contains(options, str(v)) {
			return fmt.Sprintf("The %s must be one of: %s.", field, strings.Join(options, ", "))
		}
	default:
		return fmt.Sprintf("Unknown validation rule %q on %s.", key, field)
	}
	return ""
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	}
	return v.IsZero()
}

func isNumberLike(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	_, ok := v.Interface().(floater)
	return ok
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	if f, ok := v.Interface().(floater); ok {
		return f.InexactFloat64()
	}
	return number(str(v))
}

func length(v reflect.Value) int {
	switch v.Kind() {
	case reflect.String:
		return utf8.RuneCountInString(v.String())
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len()
	}
	return 0
}

func str(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

func number(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

func contains(list []string, target string) bool {
	for _, s := range list {
		if strings.TrimSpace(s) == target {
			return true
		}
	}
	return false
}
