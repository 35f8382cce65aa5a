package jsonlogic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
)

func cartData(subtotal float64, items, lines int) map[string]interface{} {
	return map[string]interface{}{
		"cart": map[string]interface{}{"subtotal": subtotal, "itemCount": items, "lineCount": lines},
	}
}

func TestEvaluate_StandardOperators(t *testing.T) {
	e := NewEvaluator()
	minSubtotal := map[string]interface{}{
		">=": []interface{}{map[string]interface{}{"var": "cart.subtotal"}, 100},
	}

	ok, err := e.Evaluate(minSubtotal, cartData(150, 2, 1))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Evaluate(minSubtotal, cartData(99.5, 2, 1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluate_CombinedConditions(t *testing.T) {
	e := NewEvaluator()
	rule := map[string]interface{}{
		"and": []interface{}{
			map[string]interface{}{">=": []interface{}{map[string]interface{}{"var": "cart.itemCount"}, 3}},
			map[string]interface{}{"<": []interface{}{map[string]interface{}{"var": "cart.subtotal"}, 500}},
		},
	}
	ok, err := e.Evaluate(rule, cartData(120, 3, 2))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Evaluate(rule, cartData(120, 2, 2))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluate_CustomOperators(t *testing.T) {
	e := NewEvaluator()
	// average line value of at least 50
	rule := map[string]interface{}{
		">=": []interface{}{
			map[string]interface{}{"allocate": []interface{}{
				map[string]interface{}{"var": "cart.subtotal"},
				map[string]interface{}{"var": "cart.lineCount"},
			}},
			50,
		},
	}
	ok, err := e.Evaluate(rule, cartData(120, 4, 2))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Evaluate(rule, cartData(120, 4, 3))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	e := NewEvaluator()
	assert.NoError(t, e.Validate(nil))
	assert.NoError(t, e.Validate(map[string]interface{}{
		"==": []interface{}{map[string]interface{}{"round": []interface{}{1.4}}, 1},
	}))

	err := e.Validate(map[string]interface{}{"nonsense": []interface{}{1, 2}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConditionFailed)
}

func TestOperators(t *testing.T) {
	assert.Equal(t, 3.0, Round(2.6))
	assert.Equal(t, 2.57, Round(2.5678, 2))
	assert.Equal(t, 0.0, Allocate(10, 0))
	assert.Equal(t, 2.5, Allocate(10.0, 4))
	assert.True(t, truthy(1.0))
	assert.False(t, truthy(0.0))
	assert.False(t, truthy(nil))
	assert.True(t, truthy("x"))
}
