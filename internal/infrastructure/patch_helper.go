package infrastructure

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
)

// ErrInvalidPatch wraps every failure to decode or apply a cart patch.
var ErrInvalidPatch = fmt.Errorf("invalid cart patch")

type cartDocument struct {
	Items []domain.LineItem `json:"items"`
}

// ApplyCartPatch applies an RFC 6902 patch to the document {"items": [...]}
// and returns the patched lines. The original slice is left untouched.
func ApplyCartPatch(items []domain.LineItem, patchData []byte) ([]domain.LineItem, error) {
	if items == nil {
		items = []domain.LineItem{}
	}
	originalJSON, err := json.Marshal(cartDocument{Items: items})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}

	patch, err := jsonpatch.DecodePatch(patchData)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidPatch, err)
	}

	modifiedJSON, err := patch.Apply(originalJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: apply: %v", ErrInvalidPatch, err)
	}

	var updated cartDocument
	if err := json.Unmarshal(modifiedJSON, &updated); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return updated.Items, nil
}
