// Package validation checks raw JSON request bodies against declarative
// schemas. Validation stops at the first violated constraint and reports it
// with the offending field's path, e.g. `"items[0].quantity" must be greater
// than or equal to 1`.
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

var ErrInvalidJSON = errors.New("invalid JSON body")

// Error is a single constraint violation.
type Error struct {
	Path    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%q %s", e.Path, e.Message)
}

func fail(path, format string, args ...any) error {
	return &Error{Path: path, Message: fmt.Sprintf(format, args...)}
}

// Schema validates one JSON value found at path.
type Schema func(path string, v gjson.Result) error

// Validate checks body against s. The top level is reported as "value".
func Validate(s Schema, body []byte) error {
	if !gjson.ValidBytes(body) {
		return ErrInvalidJSON
	}
	return s("value", gjson.ParseBytes(body))
}

type Key struct {
	name     string
	required bool
	schema   Schema
}

func Required(name string, s Schema) Key { return Key{name: name, required: true, schema: s} }
func Optional(name string, s Schema) Key { return Key{name: name, schema: s} }

func join(parent, name string) string {
	if parent == "value" {
		return name
	}
	return parent + "." + name
}

// Object accepts a JSON object holding only the declared keys.
func Object(keys ...Key) Schema {
	known := lo.SliceToMap(keys, func(k Key) (string, struct{}) { return k.name, struct{}{} })
	return func(path string, v gjson.Result) error {
		if !v.IsObject() {
			return fail(path, "must be of type object")
		}
		fields := v.Map()
		for _, k := range keys {
			fv, ok := fields[k.name]
			if !ok {
				if k.required {
					return fail(join(path, k.name), "is required")
				}
				continue
			}
			if err := k.schema(join(path, k.name), fv); err != nil {
				return err
			}
		}
		var unknown []string
		v.ForEach(func(k, _ gjson.Result) bool {
			if _, ok := known[k.String()]; !ok {
				unknown = append(unknown, k.String())
			}
			return true
		})
		if len(unknown) > 0 {
			return fail(join(path, unknown[0]), "is not allowed")
		}
		return nil
	}
}

// Array accepts a JSON array of at least min elements, each matching item.
func Array(min int, item Schema) Schema {
	return func(path string, v gjson.Result) error {
		if !v.IsArray() {
			return fail(path, "must be an array")
		}
		elems := v.Array()
		if len(elems) < min {
			return fail(path, "must contain at least %d items", min)
		}
		for i, e := range elems {
			if err := item(fmt.Sprintf("%s[%d]", path, i), e); err != nil {
				return err
			}
		}
		return nil
	}
}

type StringRule func(path, s string) error

// String accepts a non-empty JSON string satisfying every rule.
func String(rules ...StringRule) Schema {
	return func(path string, v gjson.Result) error {
		if v.Type != gjson.String {
			return fail(path, "must be a string")
		}
		s := v.String()
		if s == "" {
			return fail(path, "is not allowed to be empty")
		}
		for _, r := range rules {
			if err := r(path, s); err != nil {
				return err
			}
		}
		return nil
	}
}

func MinLength(n int) StringRule {
	return func(path, s string) error {
		if utf8.RuneCountInString(s) < n {
			return fail(path, "length must be at least %d characters long", n)
		}
		return nil
	}
}

func MaxLength(n int) StringRule {
	return func(path, s string) error {
		if utf8.RuneCountInString(s) > n {
			return fail(path, "length must be less than or equal to %d characters long", n)
		}
		return nil
	}
}

// MaxBytes bounds the UTF-8 encoded size rather than the character count.
func MaxBytes(n int) StringRule {
	return func(path, s string) error {
		if len(s) > n {
			return fail(path, "length must be less than or equal to %d bytes long", n)
		}
		return nil
	}
}

func UUID() StringRule {
	return func(path, s string) error {
		if _, err := uuid.Parse(s); err != nil || len(s) != 36 {
			return fail(path, "must be a valid GUID")
		}
		return nil
	}
}

func Email() StringRule {
	return func(path, s string) error {
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Address != s || !strings.Contains(s[strings.LastIndex(s, "@"):], ".") {
			return fail(path, "must be a valid email")
		}
		return nil
	}
}

// OneOf restricts a string to a fixed set of values.
func OneOf[T ~string](values ...T) StringRule {
	return func(path, s string) error {
		if !lo.Contains(values, T(s)) {
			names := lo.Map(values, func(v T, _ int) string { return string(v) })
			return fail(path, "must be one of [%s]", strings.Join(names, ", "))
		}
		return nil
	}
}

type NumberRule func(path string, d decimal.Decimal) error

// Number accepts a JSON number; the raw literal is kept exact as a decimal.
func Number(rules ...NumberRule) Schema {
	return func(path string, v gjson.Result) error {
		if v.Type != gjson.Number {
			return fail(path, "must be a number")
		}
		d, err := decimal.NewFromString(v.Raw)
		if err != nil {
			return fail(path, "must be a number")
		}
		for _, r := range rules {
			if err := r(path, d); err != nil {
				return err
			}
		}
		return nil
	}
}

func Integer() NumberRule {
	return func(path string, d decimal.Decimal) error {
		if !d.IsInteger() {
			return fail(path, "must be an integer")
		}
		return nil
	}
}

func Min(n int64) NumberRule {
	return func(path string, d decimal.Decimal) error {
		if d.LessThan(decimal.NewFromInt(n)) {
			return fail(path, "must be greater than or equal to %d", n)
		}
		return nil
	}
}

// Precision limits the number of decimal places.
func Precision(places int32) NumberRule {
	return func(path string, d decimal.Decimal) error {
		if !d.Equal(d.Round(places)) {
			return fail(path, "must have no more than %d decimal places", places)
		}
		return nil
	}
}

func Bool() Schema {
	return func(path string, v gjson.Result) error {
		if !v.IsBool() {
			return fail(path, "must be a boolean")
		}
		return nil
	}
}
