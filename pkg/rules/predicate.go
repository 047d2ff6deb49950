package rules

import (
	"fmt"
	"iter"
	"maps"
	"strings"
	"time"

	"github.com/goliatone/go-tracked"
)

// Predicate is a compiled rule that must evaluate to a boolean. It is safe
// for concurrent use when its evaluator is.
type Predicate struct {
	engine     string
	expression string
	rule       CompiledRule
	args       map[string]any
	metadata   map[string]any
	logger     EvaluatorLogger
	now        func() time.Time
}

// PredicateOption configures a Predicate.
type PredicateOption func(*Predicate)

// WithArgs binds args for every evaluation.
func WithArgs(args map[string]any) PredicateOption {
	return func(p *Predicate) {
		p.args = maps.Clone(args)
	}
}

// WithMetadata binds metadata for every evaluation.
func WithMetadata(metadata map[string]any) PredicateOption {
	return func(p *Predicate) {
		p.metadata = maps.Clone(metadata)
	}
}

// WithLogger records every evaluation.
func WithLogger(logger EvaluatorLogger) PredicateOption {
	return func(p *Predicate) {
		if logger == nil {
			p.logger = noopEvaluatorLogger{}
			return
		}
		p.logger = logger
	}
}

// WithClock overrides the value bound to now.
func WithClock(now func() time.Time) PredicateOption {
	return func(p *Predicate) {
		p.now = now
	}
}

// NewPredicate compiles expression with evaluator, or with the expr engine
// when evaluator is nil.
func NewPredicate(evaluator Evaluator, expression string, opts ...PredicateOption) (*Predicate, error) {
	expression = strings.TrimSpace(expression)
	if evaluator == nil {
		evaluator = NewExprEvaluator()
	}
	rule, err := evaluator.Compile(expression)
	if err != nil {
		return nil, err
	}
	p := &Predicate{
		engine:     Engine(evaluator),
		expression: expression,
		rule:       rule,
		logger:     noopEvaluatorLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Expression returns the source of the rule.
func (p *Predicate) Expression() string {
	return p.expression
}

// Match evaluates the rule against ctx. Args, metadata and now default to the
// predicate's own when ctx leaves them unset.
func (p *Predicate) Match(ctx RuleContext) (bool, error) {
	if ctx.Args == nil {
		ctx.Args = p.args
	}
	if ctx.Metadata == nil {
		ctx.Metadata = p.metadata
	}
	if ctx.Now == nil && p.now != nil {
		now := p.now()
		ctx.Now = &now
	}
	ctx = ctx.withDefaults()

	start := time.Now()
	result, err := p.rule.Evaluate(ctx)
	matched := false
	if err == nil {
		var ok bool
		if matched, ok = result.(bool); !ok {
			err = wrapEvaluationError(p.engine, p.expression, ctx.subject(), fmt.Errorf("%w: got %T", ErrNotBoolean, result))
		}
	}
	p.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   p.engine,
		Expr:     p.expression,
		Subject:  ctx.subject(),
		Result:   result,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return false, err
	}
	return matched, nil
}

// EventFilter returns a filter over (id, change) pairs for the given epoch.
// Pairs whose evaluation fails are dropped; failures reach the logger.
func (p *Predicate) EventFilter(epoch uint64) func(tracked.Index, tracked.Change) bool {
	return func(id tracked.Index, change tracked.Change) bool {
		matched, err := p.Match(RuleContext{ID: id, Change: change.String(), Epoch: epoch})
		return err == nil && matched
	}
}

// Events filters seq down to the pairs the rule accepts.
func (p *Predicate) Events(seq iter.Seq2[tracked.Index, tracked.Change], epoch uint64) iter.Seq2[tracked.Index, tracked.Change] {
	return tracked.FilterEvents(seq, p.EventFilter(epoch))
}

// SlotFilter adapts p for Tracked.CleanFunc and Masked.CleanFunc: a slot is
// reclaimed when the rule holds for its id, change and value. Slots whose
// evaluation fails are kept.
func SlotFilter[T any](p *Predicate, epoch uint64) func(tracked.Index, tracked.Change, T) bool {
	return func(id tracked.Index, change tracked.Change, value T) bool {
		matched, err := p.Match(RuleContext{
			ID:     id,
			Change: change.String(),
			Epoch:  epoch,
			Value:  value,
		})
		return err == nil && matched
	}
}
