package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_CheckboxAsInt(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	tissues, _ := reg.Get("tissues")

	in := map[string]any{"tissue_barcode": "TB-1", "is_in_jacq": true}
	out := Encoder{}.Encode(tissues, in)

	assert.Equal(t, 1, out["is_in_jacq"])
	assert.Equal(t, "TB-1", out["tissue_barcode"])
	assert.Equal(t, true, in["is_in_jacq"], "input must not be mutated")

	body, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"is_in_jacq":1`)
}

func TestEncoder_MissingCheckboxIsZero(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	requests, _ := reg.Get("requests")

	out := Encoder{}.Encode(requests, map[string]any{})
	assert.Equal(t, 0, out["has_manifest_file"])
}

func TestEncoder_CheckboxAsBool(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	shipments, _ := reg.Get("shipments")

	out := Encoder{Booleans: ParseBoolEncoding("bool")}.Encode(shipments, map[string]any{"is_collection_b_labeled": 1})
	assert.Equal(t, true, out["is_collection_b_labeled"])
}

func TestTruthy(t *testing.T) {
	truthy := []any{true, 1, int64(2), 0.5, json.Number("1"), "yes", "true", "1", struct{}{}}
	falsy := []any{nil, false, 0, int64(0), 0.0, json.Number("0"), "", "0", "false", "No", " off "}

	for _, v := range truthy {
		assert.True(t, Truthy(v), "%#v", v)
	}
	for _, v := range falsy {
		assert.False(t, Truthy(v), "%#v", v)
	}
}

func TestParseBoolEncoding(t *testing.T) {
	assert.Equal(t, BoolAsInt, ParseBoolEncoding("int"))
	assert.Equal(t, BoolAsInt, ParseBoolEncoding(""))
	assert.Equal(t, BoolAsBool, ParseBoolEncoding("BOOL"))
}
