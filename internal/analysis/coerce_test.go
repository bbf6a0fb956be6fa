package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type rawScalar json.RawMessage

func (r rawScalar) RawJSON() json.RawMessage { return json.RawMessage(r) }

func TestCoerceDecimal(t *testing.T) {
	zero := decimal.Zero
	seven := decimal.NewFromInt(7)

	tests := []struct {
		name  string
		value interface{}
		def   decimal.Decimal
		want  string
	}{
		{"nil", nil, zero, "0"},
		{"nan string", "NaN", zero, "0"},
		{"plain string", "3.14", zero, "3.14"},
		{"padded string", " 42.5 ", zero, "42.5"},
		{"empty string", "", seven, "7"},
		{"null word", "NULL", seven, "7"},
		{"none word", "None", seven, "7"},
		{"infinity", "Infinity", seven, "7"},
		{"negative infinity", "-inf", seven, "7"},
		{"overflow", "1e400", seven, "7"},
		{"garbage", "12abc", seven, "7"},
		{"hex float", "0x1p4", seven, "7"},
		{"signed hex float", "-0X1P4", seven, "7"},
		{"raw quoted hex", json.RawMessage(`"0x10p0"`), seven, "7"},
		{"float", 1.5, zero, "1.5"},
		{"float nan", math.NaN(), seven, "7"},
		{"float inf", math.Inf(1), seven, "7"},
		{"int", 12, zero, "12"},
		{"int64", int64(-3), zero, "-3"},
		{"json number", json.Number("0.0001"), zero, "0.0001"},
		{"raw number", json.RawMessage(`123.25`), zero, "123.25"},
		{"raw quoted", json.RawMessage(`"0.5"`), zero, "0.5"},
		{"raw null", json.RawMessage(`null`), seven, "7"},
		{"raw object", json.RawMessage(`{"a":1}`), seven, "7"},
		{"raw bool", json.RawMessage(`true`), seven, "7"},
		{"raw jsoner", rawScalar(`"-2.75"`), zero, "-2.75"},
		{"bool", true, seven, "7"},
		{"slice", []int{1}, seven, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceDecimal(tt.value, tt.def)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestCoerceInt64(t *testing.T) {
	assert.Equal(t, int64(1234), CoerceInt64("1234.99", 0))
	assert.Equal(t, int64(-5), CoerceInt64(-5.7, 0))
	assert.Equal(t, int64(9), CoerceInt64(nil, 9))
	assert.Equal(t, int64(9), CoerceInt64("1e30", 9))
}

func TestCoerceOptional(t *testing.T) {
	assert.Nil(t, CoerceOptionalDecimal(nil))
	assert.Nil(t, CoerceOptionalDecimal("nan"))
	if d := CoerceOptionalDecimal("0.25"); assert.NotNil(t, d) {
		assert.Equal(t, "0.25", d.String())
	}

	assert.Nil(t, CoerceOptionalInt64(json.RawMessage(`null`)))
	if i := CoerceOptionalInt64(json.RawMessage(`17`)); assert.NotNil(t, i) {
		assert.Equal(t, int64(17), *i)
	}
}

func TestIsMissing(t *testing.T) {
	assert.True(t, IsMissing(nil))
	assert.True(t, IsMissing(" nan "))
	assert.True(t, IsMissing(json.RawMessage(`null`)))
	assert.False(t, IsMissing("0"))
	assert.False(t, IsMissing(0))
}
