package config

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeCheckHook(t *testing.T) {
	u16 := reflect.TypeOf(uint16(0))
	i8 := reflect.TypeOf(int8(0))
	str := reflect.TypeOf("")

	for _, tc := range []struct {
		to   reflect.Type
		in   any
		fail bool
	}{
		{u16, 0, false},
		{u16, 65535, false},
		{u16, 65536, true},
		{u16, -1, true},
		{u16, uint64(1 << 20), true},
		{u16, 8000.0, false},
		{u16, 80.5, true},
		{u16, "70000", false}, // left to strconv in mapstructure
		{i8, 127, false},
		{i8, -129, true},
		{i8, uint(200), true},
		{str, 70000, false},
		{u16, nil, false},
	} {
		out, err := rangeCheckHook(nil, tc.to, tc.in)
		if tc.fail {
			assert.Error(t, err, "%v into %s", tc.in, tc.to)
			continue
		}
		assert.NoError(t, err, "%v into %s", tc.in, tc.to)
		assert.Equal(t, tc.in, out)
	}
}
