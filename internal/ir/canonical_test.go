package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortedKeys(t *testing.T) {
	b, err := MarshalCanonical(map[string]any{
		"zeta":  int64(1),
		"alpha": int64(2),
		"mid":   int64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mid":3,"zeta":1}`, string(b))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	b, err := MarshalCanonical(map[string]any{"op": "<="})
	require.NoError(t, err)
	assert.Equal(t, `{"op":"<="}`, string(b))
}

func TestMarshalCanonical_FloatsForbidden(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"x": 1.5})
	assert.Error(t, err)
}

func TestMarshalCanonical_NullForbidden(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"x": nil})
	assert.Error(t, err)
}

func TestMarshalCanonical_NestedDeterministic(t *testing.T) {
	v := map[string]any{
		"root": map[string]any{
			"node": "comp",
			"kind": "list",
			"generators": []any{
				map[string]any{"var": "i", "source": map[string]any{"node": "iterable", "ident": "xs"}},
			},
		},
	}

	first, err := MarshalCanonical(v)
	require.NoError(t, err)
	second, err := MarshalCanonical(v)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
