package config

import (
	"fmt"
	"math"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	koanf "github.com/knadh/koanf/v2"
)

// unmarshalConf keeps koanf's defaults (koanf tags, weak typing, duration
// and TextUnmarshaler hooks) and adds integer range checks.  mapstructure
// converts a YAML int into a narrower or unsigned field by plain casting,
// so without rangeCheckHook `port: 70000` would bind as 4464.
func unmarshalConf() koanf.UnmarshalConf {
	return koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				rangeCheckHook,
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			WeaklyTypedInput: true,
		},
	}
}

// rangeCheckHook rejects numeric input that does not fit the integer field
// it is decoded into.  Strings are left to mapstructure, whose strconv
// parsing already checks the bit size.
func rangeCheckHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	in := reflect.ValueOf(data)
	target := reflect.New(to).Elem()

	switch to.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch in.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if n := in.Int(); n < 0 || target.OverflowUint(uint64(n)) {
				return nil, outOfRange(data, to)
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if target.OverflowUint(in.Uint()) {
				return nil, outOfRange(data, to)
			}
		case reflect.Float32, reflect.Float64:
			f := in.Float()
			if f < 0 || f != math.Trunc(f) || f > math.MaxUint64 || target.OverflowUint(uint64(f)) {
				return nil, outOfRange(data, to)
			}
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch in.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if target.OverflowInt(in.Int()) {
				return nil, outOfRange(data, to)
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if u := in.Uint(); u > math.MaxInt64 || target.OverflowInt(int64(u)) {
				return nil, outOfRange(data, to)
			}
		case reflect.Float32, reflect.Float64:
			f := in.Float()
			if f != math.Trunc(f) || f < math.MinInt64 || f > math.MaxInt64 || target.OverflowInt(int64(f)) {
				return nil, outOfRange(data, to)
			}
		}
	}
	return data, nil
}

func outOfRange(data any, to reflect.Type) error {
	return fmt.Errorf("value %v is out of range for %s", data, to)
}
