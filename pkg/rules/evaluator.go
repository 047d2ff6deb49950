// Package rules evaluates expressions against slot changes. Compiled rules
// become predicates for Clean and filters over event sequences.
package rules

import (
	"time"
)

// RuleContext carries the inputs bound to an expression.
//
// Bindings: id (int), change (string), epoch (int), value (the slot value,
// nil when unknown), args, metadata and now.
type RuleContext struct {
	ID       uint32
	Change   string
	Epoch    uint64
	Value    any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) subject() string {
	if ctx.Change == "" {
		return "slot " + itoa(ctx.ID)
	}
	return "slot " + itoa(ctx.ID) + " " + ctx.Change
}

func (ctx RuleContext) bindings() map[string]any {
	return map[string]any{
		"id":       int64(ctx.ID),
		"change":   ctx.Change,
		"epoch":    int64(ctx.Epoch),
		"value":    ctx.Value,
		"now":      ctx.timestamp(),
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
	}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// Engine names the expression language behind an evaluator.
func Engine(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if name, ok := e.(interface{ engine() string }); ok {
			return name.engine()
		}
		return "custom"
	}
}
