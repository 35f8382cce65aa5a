package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	d := &Differ{}
	before := map[string]any{"subtotal": "200", "grandTotal": "205", "lines": []string{"a"}}
	after := map[string]any{"subtotal": "200", "grandTotal": "180", "lines": []string{"a"}}

	assert.Equal(t, map[string]any{"grandTotal": "180"}, d.Diff(before, after))
	assert.Empty(t, d.Diff(after, after))
	assert.Equal(t, map[string]any{"x": 1}, d.Diff(nil, map[string]any{"x": 1}))
}

func TestMergePatch(t *testing.T) {
	d := &Differ{}
	patch, err := d.MergePatch(
		map[string]any{"subtotal": "200", "grandTotal": "205"},
		map[string]any{"subtotal": "200", "grandTotal": "180"},
	)
	require.NoError(t, err)
	assert.JSONEq(t, `{"grandTotal":"180"}`, string(patch))
}
