package schema

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Validate checks a decoded JSON value against a schema definition and
// returns a descriptive error for the first violation found at each level,
// joined across levels. A nil definition accepts anything.
//
// The validator deliberately covers only the subset the catalog uses:
// required properties, primitive types, numeric ranges, string lengths,
// enum membership, array item bounds, and nested object/array validation.
// It sits behind this single function so it can be swapped for a full JSON
// Schema implementation without touching callers.
func Validate(value any, def *Definition) error {
	if def == nil {
		return nil
	}
	return validate(value, def, "$")
}

func validate(value any, def *Definition, path string) error {
	switch def.Type {
	case TypeObject:
		return validateObject(value, def, path)
	case TypeArray:
		return validateArray(value, def, path)
	case TypeString:
		return validateString(value, def, path)
	case TypeNumber, TypeInteger:
		return validateNumber(value, def, path)
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%s: expected boolean, got %T", path, value)
		}
		return nil
	default:
		return fmt.Errorf("%s: unsupported schema type %q", path, def.Type)
	}
}

func validateObject(value any, def *Definition, path string) error {
	obj, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("%s: expected object, got %T", path, value)
	}

	var errs []error
	for _, name := range def.Required {
		if _, present := obj[name]; !present {
			errs = append(errs, fmt.Errorf("%s: missing required property %q", path, name))
		}
	}

	if def.AdditionalProperties != nil && !*def.AdditionalProperties {
		for name := range obj {
			if _, known := def.Properties[name]; !known {
				errs = append(errs, fmt.Errorf("%s: unexpected property %q", path, name))
			}
		}
	}

	for name, propDef := range def.Properties {
		propValue, present := obj[name]
		if !present {
			continue
		}
		if err := validate(propValue, propDef, path+"."+name); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func validateArray(value any, def *Definition, path string) error {
	arr, ok := value.([]any)
	if !ok {
		return fmt.Errorf("%s: expected array, got %T", path, value)
	}

	var errs []error
	if def.MinItems != nil && len(arr) < *def.MinItems {
		errs = append(errs, fmt.Errorf("%s: expected at least %d items, got %d", path, *def.MinItems, len(arr)))
	}
	if def.MaxItems != nil && len(arr) > *def.MaxItems {
		errs = append(errs, fmt.Errorf("%s: expected at most %d items, got %d", path, *def.MaxItems, len(arr)))
	}

	if def.Items != nil {
		for i, item := range arr {
			if err := validate(item, def.Items, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

func validateString(value any, def *Definition, path string) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("%s: expected string, got %T", path, value)
	}

	n := utf8.RuneCountInString(s)
	if def.MinLength != nil && n < *def.MinLength {
		return fmt.Errorf("%s: string shorter than %d characters", path, *def.MinLength)
	}
	if def.MaxLength != nil && n > *def.MaxLength {
		return fmt.Errorf("%s: string longer than %d characters", path, *def.MaxLength)
	}

	if len(def.Enum) > 0 {
		for _, allowed := range def.Enum {
			if s == allowed {
				return nil
			}
		}
		return fmt.Errorf("%s: value %q not in enum", path, s)
	}

	return nil
}

func validateNumber(value any, def *Definition, path string) error {
	// encoding/json decodes every JSON number into float64.
	f, ok := value.(float64)
	if !ok {
		return fmt.Errorf("%s: expected number, got %T", path, value)
	}

	if def.Type == TypeInteger && f != float64(int64(f)) {
		return fmt.Errorf("%s: expected integer, got %v", path, f)
	}
	if def.Minimum != nil && f < *def.Minimum {
		return fmt.Errorf("%s: value %v below minimum %v", path, f, *def.Minimum)
	}
	if def.Maximum != nil && f > *def.Maximum {
		return fmt.Errorf("%s: value %v above maximum %v", path, f, *def.Maximum)
	}

	return nil
}
