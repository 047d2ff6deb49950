//go:build js_eval

package rules

import (
	"fmt"

	"github.com/dop251/goja"
)

// jsEvaluator runs rules with github.com/dop251/goja. Each evaluation gets a
// fresh runtime.
type jsEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewJSEvaluator constructs an Evaluator backed by goja.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	cfg := applyJSEvaluatorOptions(opts)
	return &jsEvaluator{
		cache:    cfg.cache,
		registry: cfg.registry,
	}
}

// JSAvailable reports whether the binary was built with the js_eval tag.
func JSAvailable() bool {
	return true
}

func (e *jsEvaluator) engine() string {
	return "js"
}

func (e *jsEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *jsEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", ErrEmptyExpression)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &jsCompiledRule{
		evaluator:  e,
		expression: expression,
		program:    program,
	}, nil
}

func (e *jsEvaluator) loadOrCompile(expression string) (*goja.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("rule", wrapExpression(expression), true)
	if err != nil {
		return nil, wrapEvaluationError("js", expression, "", err)
	}
	if e.cache != nil {
		e.cache.Set(expression, program)
	}
	return program, nil
}

func (e *jsEvaluator) run(ctx RuleContext, program *goja.Program) (any, error) {
	vm := goja.New()
	for name, value := range ctx.bindings() {
		if err := vm.Set(name, value); err != nil {
			return nil, err
		}
	}
	if e.registry != nil {
		registry := e.registry
		if err := vm.Set("call", func(name string, arguments ...any) (any, error) {
			return registry.Call(name, arguments...)
		}); err != nil {
			return nil, err
		}
		for _, name := range registry.Names() {
			fn := name
			if err := vm.Set(fn, func(arguments ...any) (any, error) {
				return registry.Call(fn, arguments...)
			}); err != nil {
				return nil, err
			}
		}
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, err
	}
	return value.Export(), nil
}

func wrapExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

type jsCompiledRule struct {
	evaluator  *jsEvaluator
	expression string
	program    *goja.Program
}

func (r *jsCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	result, err := r.evaluator.run(ctx, r.program)
	if err != nil {
		return nil, wrapEvaluationError("js", r.expression, ctx.subject(), err)
	}
	return result, nil
}
