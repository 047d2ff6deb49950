//go:build !js_eval

package rules

// NewJSEvaluator is unavailable without the js_eval build tag and returns nil.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = applyJSEvaluatorOptions(opts)
	return nil
}

// JSAvailable reports whether the binary was built with the js_eval tag.
func JSAvailable() bool {
	return false
}
