package middleware

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

// BindAndValidate binds path params, query, body and headers into req, then
// validates it. Binding and validation failures answer 400.
func BindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}

	if err := bindHeader(c.Request().Header, req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return nil
}

// bindHeader decodes http headers into struct fields tagged `header:"<name>"`.
// Missing headers leave the field untouched. dst must be a pointer to a struct.
func bindHeader(header http.Header, dst any) error {
	return bindStruct(dst, "header", func(name string) (string, bool) {
		values := header.Values(name)
		if len(values) == 0 {
			return "", false
		}
		return strings.Join(values, ","), true
	})
}

func bindStruct(dst any, tagName string, lookup func(tagValue string) (string, bool)) error {
	ptr := reflect.ValueOf(dst)
	if ptr.Kind() != reflect.Pointer || ptr.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind %s: destination must be a pointer to a struct, got %T", tagName, dst)
	}

	indirect := ptr.Elem()
	structType := indirect.Type()
	for i := range structType.NumField() {
		structField := structType.Field(i)
		tagValue := structField.Tag.Get(tagName)
		if tagValue == "-" || tagValue == "" || !structField.IsExported() {
			continue
		}

		raw, ok := lookup(tagValue)
		if !ok {
			continue
		}
		if err := setField(indirect.Field(i), raw); err != nil {
			return fmt.Errorf("cannot parse %s.%s as %s from %q: %w",
				structType.Name(), structField.Name, structField.Type, raw, err)
		}
	}

	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

func setField(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := cast.ToDurationE(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		v, err := cast.ToBoolE(raw)
		if err != nil {
			return err
		}
		field.SetBool(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := cast.ToInt64E(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		field.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := cast.ToUint64E(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		field.SetUint(v)
	case reflect.Float32, reflect.Float64:
		v, err := cast.ToFloat64E(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		field.SetFloat(v)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		var values []string
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		field.Set(reflect.ValueOf(values).Convert(field.Type()))
	case reflect.Pointer:
		elem := reflect.New(field.Type().Elem())
		if err := setField(elem.Elem(), raw); err != nil {
			return err
		}
		field.Set(elem)
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}
