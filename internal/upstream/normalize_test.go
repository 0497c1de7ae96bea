package upstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeList(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare array", `[{"id":1}]`, `[{"id":1}]`},
		{"data envelope", `{"data":[{"id":1}]}`, `[{"id":1}]`},
		{"single keyed array", `{"classes":[{"id":2}]}`, `[{"id":2}]`},
		{"data preferred over other keys", `{"data":[1],"extra":[2]}`, `[1]`},
		{"ambiguous envelope", `{"a":[1],"b":[2]}`, `[]`},
		{"object without arrays", `{"message":"ok"}`, `[]`},
		{"empty body", ``, `[]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeList([]byte(tc.in))
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(got))
		})
	}
}

func TestNormalizeListRejectsNonJSON(t *testing.T) {
	_, err := NormalizeList([]byte("<html>gateway timeout</html>"))
	require.Error(t, err)
}

func TestNormalizeObject(t *testing.T) {
	got, err := NormalizeObject([]byte(`{"data":{"id":1}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1}`, string(got))

	got, err = NormalizeObject([]byte(`{"id":2}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":2}`, string(got))
}
