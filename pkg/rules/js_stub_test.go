//go:build !js_eval

package rules

import "testing"

func TestJSEvaluatorUnavailableWithoutTag(t *testing.T) {
	if JSAvailable() {
		t.Fatalf("expected js evaluator to be unavailable")
	}
	if NewJSEvaluator() != nil {
		t.Fatalf("expected nil evaluator")
	}
}
