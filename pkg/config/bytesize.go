package config

import (
	"fmt"
	"reflect"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/mapstructure"
)

// ByteSize is a size in bytes that config files may write as "1MiB",
// "256KB", "4096" and so on.
type ByteSize uint64

// ParseByteSize parses a human-readable size. SI suffixes (KB, MB) are
// powers of 1000, IEC suffixes (KiB, MiB) powers of 1024.
func ParseByteSize(s string) (ByteSize, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	return ByteSize(n), nil
}

// String renders b with IEC units, e.g. "1.0 MiB".
func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

// Int returns b as an int for buffer allocation.
func (b ByteSize) Int() int {
	return int(b)
}

// MarshalYAML writes b in its human-readable form.
func (b ByteSize) MarshalYAML() (any, error) {
	return b.String(), nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
	)
}

// byteSizeDecodeHook returns a mapstructure decode hook that converts strings
// and numbers to ByteSize.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return ParseByteSize(v)
		case int:
			if v < 0 {
				return nil, fmt.Errorf("invalid byte size %d: negative", v)
			}
			return ByteSize(v), nil
		case int64:
			if v < 0 {
				return nil, fmt.Errorf("invalid byte size %d: negative", v)
			}
			return ByteSize(v), nil
		case uint64:
			return ByteSize(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			if v < 0 {
				return nil, fmt.Errorf("invalid byte size %v: negative", v)
			}
			return ByteSize(v), nil
		default:
			return data, nil
		}
	}
}
