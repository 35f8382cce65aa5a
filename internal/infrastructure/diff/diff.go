// Package diff compares the totals a client claims against the ones the
// server computed.
package diff

import (
	"encoding/json"
	"fmt"
	"reflect"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

type Differ struct{}

// Diff returns the keys of after whose values differ from before. Keys
// missing from after are ignored.
func (d *Differ) Diff(before, after map[string]any) map[string]any {
	delta := map[string]any{}
	for k, v := range after {
		if !reflect.DeepEqual(before[k], v) {
			delta[k] = v
		}
	}
	return delta
}

// MergePatch builds the RFC 7386 merge patch turning before into after.
func (d *Differ) MergePatch(before, after any) ([]byte, error) {
	beforeJSON, err := json.Marshal(before)
	if err != nil {
		return nil, fmt.Errorf("marshal before: %w", err)
	}
	afterJSON, err := json.Marshal(after)
	if err != nil {
		return nil, fmt.Errorf("marshal after: %w", err)
	}
	return jsonpatch.CreateMergePatch(beforeJSON, afterJSON)
}
