// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package properties

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"pagecraft/internal/blocks"
)

// Coerce converts a raw form or JSON value to the type stored for field f.
// Numbers are clamped to the field's bounds; select values must be one of
// its options.
func Coerce(f blocks.Field, v any) (any, error) {
	switch f.Kind {
	case blocks.KindText, blocks.KindTextarea, blocks.KindImage:
		return toString(v), nil

	case blocks.KindSelect:
		s := toString(v)
		if !f.HasOption(s) {
			return nil, fmt.Errorf("%q is not an option: %w", s, ErrInvalidValue)
		}
		return s, nil

	case blocks.KindNumber:
		n, err := toInt(v)
		if err != nil {
			return nil, err
		}
		if f.Min != nil && n < *f.Min {
			n = *f.Min
		}
		if f.Max != nil && n > *f.Max {
			n = *f.Max
		}
		return n, nil

	case blocks.KindBoolean:
		return toBool(v)

	case blocks.KindList:
		raw, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("expected a list: %w", ErrInvalidValue)
		}
		out := make([]any, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("item %d is not an object: %w", i, ErrInvalidValue)
			}
			item := make(map[string]any, len(m))
			for k, val := range m {
				sub, known := f.ItemField(k)
				if !known {
					item[k] = val
					continue
				}
				cv, err := Coerce(sub, val)
				if err != nil {
					return nil, fmt.Errorf("item %d field %q: %w", i, k, err)
				}
				item[k] = cv
			}
			out[i] = item
		}
		return out, nil
	}
	return v, nil
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func toInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, fmt.Errorf("not a number: %w", ErrInvalidValue)
		}
		return int(math.Round(t)), nil
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%q is not a number: %w", t, ErrInvalidValue)
		}
		return int(math.Round(f)), nil
	}
	return 0, fmt.Errorf("%T is not a number: %w", v, ErrInvalidValue)
}

func toBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "on", "yes":
			return true, nil
		case "", "off", "no":
			return false, nil
		}
		b, err := strconv.ParseBool(t)
		if err != nil {
			return false, fmt.Errorf("%q is not a boolean: %w", t, ErrInvalidValue)
		}
		return b, nil
	}
	return false, fmt.Errorf("%T is not a boolean: %w", v, ErrInvalidValue)
}
