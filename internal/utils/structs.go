package utils

import (
	"fmt"
	"reflect"
)

var ColumnTag = "db"

// StructTagValues returns the column names of a row struct. Untagged embedded
// structs (such as types.Timestamps) are flattened into the parent.
func StructTagValues(input any) []string {

	targetValue := reflect.ValueOf(input)
	if targetValue.Kind() == reflect.Ptr {
		targetValue = targetValue.Elem()
	}

	if targetValue.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	result := make([]string, 0, targetValue.NumField())
	walkColumns(targetValue, func(column string, _ reflect.Value) {
		result = append(result, column)
	})

	return result

}

func StructToMap(input any) map[string]any {

	result := make(map[string]any)

	itemValue := reflect.ValueOf(input)
	if itemValue.Kind() == reflect.Ptr {
		itemValue = itemValue.Elem()
	}

	if itemValue.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	walkColumns(itemValue, func(column string, value reflect.Value) {
		result[column] = value.Interface()
	})

	return result

}

func walkColumns(v reflect.Value, fn func(column string, value reflect.Value)) {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)

		tagValue := field.Tag.Get(ColumnTag)
		if field.Anonymous && tagValue == "" && field.Type.Kind() == reflect.Struct {
			walkColumns(v.Field(i), fn)
			continue
		}

		if field.PkgPath != "" {
			continue
		}

		if tagValue == "" || tagValue == "-" {
			continue
		}

		fn(tagValue, v.Field(i))
	}
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)

}

// AssignColumns sets the fields of dst, a pointer to a row struct, from
// column values. Pointer values are dereferenced and nil clears the field.
func AssignColumns(dst any, values map[string]any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("dst must be a pointer to a struct")
	}

	var (
		seen = make(map[string]bool, len(values))
		err  error
	)
	walkColumns(v.Elem(), func(column string, field reflect.Value) {
		value, ok := values[column]
		if !ok || err != nil {
			return
		}
		seen[column] = true
		if aerr := assignValue(field, value); aerr != nil {
			err = fmt.Errorf("column %s: %w", column, aerr)
		}
	})
	if err != nil {
		return err
	}

	for column := range values {
		if !seen[column] {
			return fmt.Errorf("unknown column %s", column)
		}
	}

	return nil
}

func assignValue(field reflect.Value, value any) error {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	src := reflect.ValueOf(value)
	if src.Kind() == reflect.Ptr && !src.Type().AssignableTo(field.Type()) {
		if src.IsNil() {
			field.Set(reflect.Zero(field.Type()))
			return nil
		}
		src = src.Elem()
	}

	target := field.Type()
	switch {
	case src.Type().AssignableTo(target):
		field.Set(src)
	case src.Kind() == target.Kind() && src.Type().ConvertibleTo(target):
		field.Set(src.Convert(target))
	case target.Kind() == reflect.Ptr && src.Kind() == target.Elem().Kind() && src.Type().ConvertibleTo(target.Elem()):
		ptr := reflect.New(target.Elem())
		ptr.Elem().Set(src.Convert(target.Elem()))
		field.Set(ptr)
	default:
		return fmt.Errorf("cannot assign %s to %s", src.Type(), target)
	}

	return nil
}
