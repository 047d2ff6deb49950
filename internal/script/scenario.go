package script

import (
	"fmt"
	"strings"
)

// Op names a step of a scenario.
type Op string

const (
	OpInsert   Op = "insert"
	OpRemove   Op = "remove"
	OpSet      Op = "set"
	OpMaintain Op = "maintain"
	OpReset    Op = "reset"
	OpClean    Op = "clean"
)

var opAliases = map[string]Op{
	"insert":   OpInsert,
	"add":      OpInsert,
	"remove":   OpRemove,
	"delete":   OpRemove,
	"set":      OpSet,
	"modify":   OpSet,
	"mutate":   OpSet,
	"maintain": OpMaintain,
	"reset":    OpReset,
	"clean":    OpClean,
}

// Event is an expected (id, change) pair. Change uses the tracker's text form.
type Event struct {
	ID     uint32 `json:"id"`
	Change string `json:"change"`
}

// Expect lists what must hold after a step or at the end of a scenario. Nil
// fields are not checked.
type Expect struct {
	Events  []Event  `json:"events,omitempty"`
	Dirty   []uint32 `json:"dirty,omitempty"`
	Live    []uint32 `json:"live,omitempty"`
	Changed *int     `json:"changed,omitempty"`
}

// Step is one operation. Value is used by insert and set, IDs by clean.
// Panics holds a substring of the error the step must panic with.
type Step[V any] struct {
	Op     Op       `json:"op"`
	ID     uint32   `json:"id,omitempty"`
	IDs    []uint32 `json:"ids,omitempty"`
	Value  V        `json:"value,omitempty"`
	Panics string   `json:"panics,omitempty"`
	Expect *Expect  `json:"expect,omitempty"`
}

// Scenario is a named list of steps with a final expectation.
type Scenario[V any] struct {
	Name   string    `json:"name"`
	Steps  []Step[V] `json:"steps"`
	Expect *Expect   `json:"expect,omitempty"`
}

// NormalizeOps is a PreHook that lower-cases step ops and resolves aliases
// such as "add" and "modify".
func NormalizeOps(_ Context, document map[string]any) (map[string]any, error) {
	steps, _ := document["steps"].([]any)
	for i, raw := range steps {
		step, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("step %d is not an object", i)
		}
		name, _ := step["op"].(string)
		op, ok := opAliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("step %d: unknown op %q", i, name)
		}
		step["op"] = string(op)
	}
	return document, nil
}

// ValidateScenario is a PostHook that checks every step carries what its op
// needs.
func ValidateScenario[V any](_ Context, scenario *Scenario[V]) error {
	if strings.TrimSpace(scenario.Name) == "" {
		return fmt.Errorf("scenario name is required")
	}
	if len(scenario.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	for i, step := range scenario.Steps {
		switch step.Op {
		case OpInsert, OpRemove, OpSet, OpMaintain, OpReset:
		case OpClean:
			if len(step.IDs) == 0 {
				return fmt.Errorf("scenario %q step %d: clean needs ids", scenario.Name, i)
			}
		default:
			return fmt.Errorf("scenario %q step %d: unknown op %q", scenario.Name, i, step.Op)
		}
	}
	return nil
}

// NewScenarioDecoder returns a strict decoder for Scenario[V] documents.
func NewScenarioDecoder[V any]() *Decoder[Scenario[V]] {
	return NewDecoder(
		WithPreHook[Scenario[V]](NormalizeOps),
		WithDisallowUnknownFields[Scenario[V]](),
		WithPostHook[Scenario[V]](ValidateScenario[V]),
	)
}
