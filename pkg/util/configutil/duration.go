package configutil

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Duration is a configuration duration.
// It is a wrapper around time.Duration that renders as "5s" in every
// config format and accepts the following when decoding:
//
//   - string is parsed using time.ParseDuration.
//   - a number is interpreted as milliseconds.
type Duration time.Duration

// D returns the time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// DurationHookFunc returns a mapstructure hook decoding plain numbers
// into a Duration as milliseconds. Strings are left to UnmarshalText.
func DurationHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(Duration(0)) {
			return data, nil
		}
		switch f.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return Duration(time.Duration(reflect.ValueOf(data).Int()) * time.Millisecond), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return Duration(time.Duration(reflect.ValueOf(data).Uint()) * time.Millisecond), nil
		case reflect.Float32, reflect.Float64:
			return Duration(reflect.ValueOf(data).Float() * float64(time.Millisecond)), nil
		}
		return data, nil
	}
}
