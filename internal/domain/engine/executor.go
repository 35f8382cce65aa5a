package engine

// ConditionEvaluator decides whether an offer's optional conditions hold for
// the cart being priced.
type ConditionEvaluator interface {
	Evaluate(conditions map[string]interface{}, data map[string]interface{}) (bool, error)
}
