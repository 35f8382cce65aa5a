// Package jsonlogic evaluates offer conditions written as JsonLogic.
package jsonlogic

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/diegoholiveira/jsonlogic/v3"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
)

type Evaluator struct {
	customOps map[string]func(args ...interface{}) interface{}
}

func NewEvaluator() *Evaluator {
	e := &Evaluator{
		customOps: make(map[string]func(args ...interface{}) interface{}),
	}
	e.RegisterCustomOperator("round", Round)
	e.RegisterCustomOperator("allocate", Allocate)
	return e
}

func (e *Evaluator) RegisterCustomOperator(name string, logic func(args ...interface{}) interface{}) {
	e.customOps[name] = logic
}

// Evaluate reports whether conditions hold for data.
func (e *Evaluator) Evaluate(conditions map[string]interface{}, data map[string]interface{}) (bool, error) {
	res, err := e.apply(conditions, data)
	if err != nil {
		return false, err
	}
	return truthy(res), nil
}

// Validate rejects expressions the JsonLogic engine cannot parse.
func (e *Evaluator) Validate(conditions map[string]interface{}) error {
	if len(conditions) == 0 {
		return nil
	}
	ruleJSON, err := json.Marshal(e.stripCustom(conditions))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConditionFailed, err)
	}
	if !jsonlogic.IsValid(bytes.NewReader(ruleJSON)) {
		return fmt.Errorf("%w: invalid JsonLogic expression %s", domain.ErrConditionFailed, ruleJSON)
	}
	return nil
}

func (e *Evaluator) apply(rule interface{}, data map[string]interface{}) (interface{}, error) {
	expanded, err := e.expandCustom(rule, data)
	if err != nil {
		return nil, err
	}
	if _, isRule := expanded.(map[string]interface{}); !isRule {
		return expanded, nil
	}

	ruleJSON, err := json.Marshal(expanded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConditionFailed, err)
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConditionFailed, err)
	}

	var resultBuffer bytes.Buffer
	if err := jsonlogic.Apply(bytes.NewReader(ruleJSON), bytes.NewReader(dataJSON), &resultBuffer); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConditionFailed, err)
	}

	if resultBuffer.Len() == 0 || resultBuffer.String() == "null" {
		return nil, nil
	}
	var res interface{}
	decoder := json.NewDecoder(&resultBuffer)
	decoder.UseNumber()
	if err := decoder.Decode(&res); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConditionFailed, err)
	}
	return finalizeValue(res), nil
}

// expandCustom replaces custom operator nodes with their computed value so
// the remaining tree is plain JsonLogic.
func (e *Evaluator) expandCustom(node interface{}, data map[string]interface{}) (interface{}, error) {
	switch v := node.(type) {
	case map[string]interface{}:
		if len(v) == 1 {
			for op, raw := range v {
				if fn, ok := e.customOps[op]; ok {
					params, err := e.resolveArgs(raw, data)
					if err != nil {
						return nil, err
					}
					return fn(params...), nil
				}
			}
		}
		out := make(map[string]interface{}, len(v))
		for k, child := range v {
			expanded, err := e.expandCustom(child, data)
			if err != nil {
				return nil, err
			}
			out[k] = expanded
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, child := range v {
			expanded, err := e.expandCustom(child, data)
			if err != nil {
				return nil, err
			}
			out[i] = expanded
		}
		return out, nil
	}
	return node, nil
}

func (e *Evaluator) resolveArgs(raw interface{}, data map[string]interface{}) ([]interface{}, error) {
	list, ok := raw.([]interface{})
	if !ok {
		list = []interface{}{raw}
	}
	params := make([]interface{}, 0, len(list))
	for _, arg := range list {
		if _, isRule := arg.(map[string]interface{}); isRule {
			res, err := e.apply(arg, data)
			if err != nil {
				return nil, err
			}
			params = append(params, res)
			continue
		}
		params = append(params, arg)
	}
	return params, nil
}

// stripCustom swaps custom operators for a neutral literal so IsValid only
// judges the standard part of the tree.
func (e *Evaluator) stripCustom(node interface{}) interface{} {
	switch v := node.(type) {
	case map[string]interface{}:
		if len(v) == 1 {
			for op := range v {
				if _, ok := e.customOps[op]; ok {
					return 0
				}
			}
		}
		out := make(map[string]interface{}, len(v))
		for k, child := range v {
			out[k] = e.stripCustom(child)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, child := range v {
			out[i] = e.stripCustom(child)
		}
		return out
	}
	return node
}

func finalizeValue(val interface{}) interface{} {
	if n, ok := val.(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return val
}
