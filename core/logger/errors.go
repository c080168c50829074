package logger

import (
	"errors"
	"reflect"
	"strings"
)

type coder interface{ Code() string }

// ErrorCode returns a stable upper-case code for err suitable for the
// err_code field. Errors anywhere in the chain exposing Code() win; otherwise
// the concrete type name is used.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var c coder
	if errors.As(err, &c) {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil && t.Name() != "" {
		return strings.ToUpper(t.Name())
	}
	return "UNKNOWN_ERROR"
}
