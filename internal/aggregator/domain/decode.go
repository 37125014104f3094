package domain

import (
	"fmt"
	"unicode/utf8"
)

// Entry is a decoded message ready to be folded
type Entry struct {
	Key   string
	Value string
}

func DecodeEntry(payload []byte, key string) (Entry, error) {
	if !utf8.Valid(payload) {
		return Entry{}, fmt.Errorf("%w: payload is not valid utf-8", ErrDecode)
	}
	if key == "" {
		return Entry{}, fmt.Errorf("%w: empty key", ErrDecode)
	}
	if !utf8.ValidString(key) {
		return Entry{}, fmt.Errorf("%w: key is not valid utf-8", ErrDecode)
	}

	return Entry{
		Key:   key,
		Value: string(payload),
	}, nil
}
