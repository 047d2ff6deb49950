package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrEmptyExpression is returned when an expression is blank.
	ErrEmptyExpression = errors.New("rules: expression must not be empty")
	// ErrNotBoolean is returned when a predicate yields a non boolean result.
	ErrNotBoolean = errors.New("rules: expression did not yield a boolean")
	// ErrNoEvaluator is returned when no evaluator is available.
	ErrNoEvaluator = errors.New("rules: evaluator not configured")
)

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine  string
	Expr    string
	Subject string
	Err     error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Subject == "" {
		return fmt.Sprintf("rules: %s evaluator %s: %v", e.Engine, describeExpression(e.Expr), e.Err)
	}
	return fmt.Sprintf("rules: %s evaluator %s subject=%q: %v", e.Engine, describeExpression(e.Expr), e.Subject, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}
	if strings.HasPrefix(err.Error(), "rules:") {
		return err
	}
	return fmt.Errorf("rules: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, subject string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Subject == "" {
			evalErr.Subject = subject
		}
		return evalErr
	}

	return &EvaluationError{
		Engine:  engine,
		Expr:    expr,
		Subject: subject,
		Err:     err,
	}
}

func itoa(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}
