package rules

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry exposes the registry through call(name, [args]).
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// celEvaluator runs rules with github.com/google/cel-go. Rules are type
// checked: id and epoch are ints, change is a string, now is a timestamp and
// value is dynamic. Slot values must be maps or scalars to be inspected.
type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry

	envOnce sync.Once
	env     *cel.Env
	envErr  error
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", ErrEmptyExpression)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &celCompiledRule{program: program, expression: expression}, nil
}

func (e *celEvaluator) loadOrCompile(expression string) (cel.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(cel.Program); ok {
				return program, nil
			}
		}
	}
	env, err := e.environment()
	if err != nil {
		return nil, wrapEvaluatorError("cel", err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError("cel", expression, "", issues.Err())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, "", err)
	}
	if e.cache != nil {
		e.cache.Set(expression, program)
	}
	return program, nil
}

func (e *celEvaluator) environment() (*cel.Env, error) {
	e.envOnce.Do(func() {
		opts := []cel.EnvOption{
			cel.Variable("id", cel.IntType),
			cel.Variable("change", cel.StringType),
			cel.Variable("epoch", cel.IntType),
			cel.Variable("value", cel.DynType),
			cel.Variable("now", cel.TimestampType),
			cel.Variable("args", cel.MapType(cel.StringType, cel.DynType)),
			cel.Variable("metadata", cel.MapType(cel.StringType, cel.DynType)),
		}
		if e.registry != nil {
			opts = append(opts, cel.Function("call",
				cel.Overload("call_string_list",
					[]*cel.Type{cel.StringType, cel.ListType(cel.DynType)},
					cel.DynType,
					cel.BinaryBinding(e.callBinding),
				),
			))
		}
		e.env, e.envErr = cel.NewEnv(opts...)
	})
	return e.env, e.envErr
}

var anySliceType = reflect.TypeOf([]any{})

func (e *celEvaluator) callBinding(name, list ref.Val) ref.Val {
	fn, ok := name.Value().(string)
	if !ok {
		return types.NewErr("rules: call name must be a string")
	}
	native, err := list.ConvertToNative(anySliceType)
	if err != nil {
		return types.NewErr("rules: call arguments: %v", err)
	}
	args, _ := native.([]any)
	result, err := e.registry.Call(fn, args...)
	if err != nil {
		return types.NewErr("%v", err)
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

type celCompiledRule struct {
	program    cel.Program
	expression string
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	out, _, err := r.program.Eval(ctx.bindings())
	if err != nil {
		return nil, wrapEvaluationError("cel", r.expression, ctx.subject(), err)
	}
	if out == nil {
		return nil, wrapEvaluationError("cel", r.expression, ctx.subject(), fmt.Errorf("no result"))
	}
	return out.Value(), nil
}
