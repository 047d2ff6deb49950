//go:build js_eval

package rules

import "testing"

func TestJSEvaluatorBindings(t *testing.T) {
	evaluator := NewJSEvaluator(JSWithFunctionRegistry(testRegistry(t)), JSWithProgramCache(NewMemoryCache()))
	if !JSAvailable() || Engine(evaluator) != "js" {
		t.Fatalf("expected js evaluator")
	}
	ctx := RuleContext{ID: 4, Change: "modified", Value: map[string]any{"hp": 0}}
	for _, expr := range []string{
		`id === 4 && change === "modified"`,
		`value.hp <= 0`,
		`double(id) === 8`,
	} {
		got, err := evaluator.Evaluate(ctx, expr)
		if err != nil {
			t.Fatalf("%s: %v", expr, err)
		}
		if got != true {
			t.Fatalf("%s: expected true, got %v", expr, got)
		}
	}
}
