package tournament

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrixSetIsMirroredAndMonotone(t *testing.T) {
	t.Parallel()

	m := NewMatrix(3)
	assert.True(t, m.Set(0, 2))
	assert.Equal(t, Preferred, m.Get(0, 2))
	assert.Equal(t, NotPreferred, m.Get(2, 0))

	assert.False(t, m.Set(2, 0), "known cells never change")
	assert.Equal(t, Preferred, m.Get(0, 2))
	assert.False(t, m.Set(1, 1))
	assert.Equal(t, 1, m.Count())
}

func TestMatrixJSON(t *testing.T) {
	t.Parallel()

	m := NewMatrix(3)
	m.Set(0, 1)
	m.Set(2, 1)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `[".+.", "-.-", ".+."]`, string(data))

	var back Matrix
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m, &back)
}

func TestMatrixJSON_Rejects(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		`["..", "."]`,
		`["+.", ".."]`,
		`[".+", ".."]`,
		`[".x", ".."]`,
		`{"rows": 1}`,
	} {
		var m Matrix
		assert.Error(t, json.Unmarshal([]byte(raw), &m), raw)
	}
}

func TestPreferenceString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "not_preferred", NotPreferred.String())
	assert.Equal(t, "Preference(9)", Preference(9).String())
}
