package model

import (
	"encoding/json"
	"math"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_JSONNonFinite(t *testing.T) {
	codecs := map[string]struct {
		marshal   func(any) ([]byte, error)
		unmarshal func([]byte, any) error
	}{
		"encoding/json": {json.Marshal, json.Unmarshal},
		"go-json":       {gojson.Marshal, gojson.Unmarshal},
	}

	for name, c := range codecs {
		t.Run(name, func(t *testing.T) {
			in := []Result{
				{Pos: []float64{0.1, 0.2}, Value: 1e-9, Success: true},
				{Pos: []float64{0.3, 0.4}, Value: math.Inf(1)},
				{Pos: []float64{0.5, 0.6}, Value: math.Inf(-1)},
				{Pos: []float64{0.7, 0.8}, Value: math.NaN()},
			}
			data, err := c.marshal(in)
			require.NoError(t, err)
			assert.Contains(t, string(data), `"value":"inf"`)
			assert.Contains(t, string(data), `"value":"nan"`)

			var out []Result
			require.NoError(t, c.unmarshal(data, &out))
			require.Len(t, out, 4)
			assert.Equal(t, in[0], out[0])
			assert.True(t, math.IsInf(out[1].Value, 1))
			assert.True(t, math.IsInf(out[2].Value, -1))
			assert.True(t, math.IsNaN(out[3].Value))
			assert.Equal(t, in[3].Pos, out[3].Pos)
		})
	}
}

func TestFloat_UnmarshalJSON(t *testing.T) {
	var f Float
	require.NoError(t, json.Unmarshal([]byte(`2.5`), &f))
	assert.Equal(t, Float(2.5), f)

	require.NoError(t, json.Unmarshal([]byte(`"-inf"`), &f))
	assert.True(t, math.IsInf(float64(f), -1))

	assert.Error(t, json.Unmarshal([]byte(`"big"`), &f))
}
