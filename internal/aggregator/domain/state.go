package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

const (
	VariantCounter  Variant = "counter"
	VariantKeyValue Variant = "key-value"
)

var (
	ErrDecode         = errors.New("decode message")
	ErrUnknownVariant = errors.New("unknown aggregate variant")
)

// Variant is the aggregate shape chosen once per process
type Variant string

func ParseVariant(str string) (Variant, error) {
	variant := Variant(str)
	if err := variant.Validate(); err != nil {
		return "", err
	}

	return variant, nil
}

func (v Variant) Validate() error {
	switch v {
	case VariantCounter, VariantKeyValue:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownVariant, string(v))
	}
}

// StateView is a point-in-time copy of the aggregate, it never changes after being returned
type StateView struct {
	Variant Variant           `json:"variant"`
	Count   uint64            `json:"count"`
	Values  map[string]string `json:"values,omitempty"`
}

func (v StateView) Value(key string) (string, bool) {
	value, ok := v.Values[key]
	return value, ok
}

func (v StateView) Keys() []string {
	return slices.Sorted(maps.Keys(v.Values))
}

// Size is the folded messages count for a counter and the keys count for a key-value aggregate
func (v StateView) Size() int {
	if v.Variant == VariantCounter {
		return int(v.Count) //nolint:gosec
	}

	return len(v.Values)
}
