package env

import (
	"fmt"
	"os"

	pkgstrings "github.com/klwxsrx/state-aggregator/pkg/strings"
)

func Must[T any](val T, err error) T {
	if err != nil {
		panic(fmt.Errorf("parse environment: %w", err))
	}
	return val
}

func Parse[T any](key string) (T, error) {
	str, ok := os.LookupEnv(key)
	if !ok {
		var blank T
		return blank, notFoundError[T](key)
	}

	return parse[T](key, str)
}

// ParseOptional returns nil for both a missing and an empty variable.
func ParseOptional[T any](key string) (*T, error) {
	str, ok := os.LookupEnv(key)
	if !ok || str == "" {
		return nil, nil
	}

	v, err := parse[T](key, str)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func ParseDefault[T any](key string, defaultValue T) (T, error) {
	v, err := ParseOptional[T](key)
	if err != nil {
		return defaultValue, err
	}
	if v == nil {
		return defaultValue, nil
	}

	return *v, nil
}

func parse[T any](key, str string) (T, error) {
	v, err := pkgstrings.ParseTypedValue[T](str)
	if err != nil {
		return v, fmt.Errorf("env %s with type %T has invalid value: %w", key, v, err)
	}

	return v, nil
}

func notFoundError[T any](key string) error {
	var blank T
	return fmt.Errorf("env %s with type %T not found", key, blank)
}
