package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID     string    `json:"id"`
	Vector []float32 `json:"vector"`
}

func TestCodecs(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			var r record
			require.NoError(t, c.Unmarshal([]byte(`{"id":"doc-1","vector":[0.5,-1,2]}`), &r))
			assert.Equal(t, record{ID: "doc-1", Vector: []float32{0.5, -1, 2}}, r)

			b, err := c.Marshal(r)
			require.NoError(t, err)
			assert.JSONEq(t, `{"id":"doc-1","vector":[0.5,-1,2]}`, string(b))

			assert.Error(t, c.Unmarshal([]byte(`{"id":`), &r))
		})
	}
}

func TestByName(t *testing.T) {
	c, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, "go-json", c.Name())

	c, err = ByName("json")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	_, err = ByName("msgpack")
	assert.Error(t, err)
}
