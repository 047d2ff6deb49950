package tracked_test

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	tracked "github.com/goliatone/go-tracked"
	"github.com/goliatone/go-tracked/internal/script"
	"github.com/goliatone/go-tracked/pkg/slots"
)

func TestScenarios(t *testing.T) {
	scenarios, err := script.NewScenarioDecoder[int]().DecodeFile("testdata/scenarios.json")
	if err != nil {
		t.Fatalf("load scenarios: %v", err)
	}
	if len(scenarios) == 0 {
		t.Fatalf("expected scenarios")
	}
	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			runScenario(t, scenario)
		})
	}
}

type scenarioRun struct {
	tracker *tracked.Tracked[int]
	live    *tracked.Set
	changed int
}

func runScenario(t *testing.T, scenario script.Scenario[int]) {
	t.Helper()
	run := &scenarioRun{
		tracker: tracked.NewComparable[int](slots.NewVecStore[int](), tracked.WithName[int](scenario.Name)),
		live:    tracked.NewSet(),
	}
	for i, step := range scenario.Steps {
		recovered := catch(func() { run.apply(step) })
		if step.Panics != "" {
			if recovered == nil || !strings.Contains(fmt.Sprint(recovered), step.Panics) {
				t.Fatalf("step %d (%s): expected panic containing %q, got %v", i, step.Op, step.Panics, recovered)
			}
			return
		}
		if recovered != nil {
			t.Fatalf("step %d (%s): unexpected panic %v", i, step.Op, recovered)
		}
		if step.Expect != nil {
			run.check(t, fmt.Sprintf("step %d (%s)", i, step.Op), step.Expect)
		}
	}
	if scenario.Expect != nil {
		run.check(t, "final", scenario.Expect)
	}
}

func (r *scenarioRun) apply(step script.Step[int]) {
	switch step.Op {
	case script.OpInsert:
		r.tracker.Insert(step.ID, step.Value)
		r.live.Add(step.ID)
	case script.OpRemove:
		r.tracker.Remove(step.ID)
		r.live.Remove(step.ID)
	case script.OpSet:
		*r.tracker.GetMut(step.ID) = step.Value
	case script.OpMaintain:
		changed, err := r.tracker.Maintain(r.live.All())
		if err != nil {
			panic(err)
		}
		r.changed = changed
	case script.OpReset:
		r.tracker.Reset()
	case script.OpClean:
		for _, id := range r.tracker.Clean(func(id tracked.Index) bool {
			return slices.Contains(step.IDs, id)
		}) {
			r.live.Remove(id)
		}
	}
}

func (r *scenarioRun) check(t *testing.T, label string, expect *script.Expect) {
	t.Helper()
	if expect.Events != nil {
		var got []script.Event
		for id, change := range r.tracker.Events() {
			got = append(got, script.Event{ID: id, Change: change.String()})
		}
		if !slices.Equal(got, expect.Events) && (len(got) != 0 || len(expect.Events) != 0) {
			t.Fatalf("%s: expected events %v, got %v", label, expect.Events, got)
		}
	}
	if expect.Dirty != nil {
		var got []uint32
		for id := range r.tracker.Dirty().All() {
			got = append(got, id)
		}
		if !slices.Equal(got, expect.Dirty) && (len(got) != 0 || len(expect.Dirty) != 0) {
			t.Fatalf("%s: expected dirty %v, got %v", label, expect.Dirty, got)
		}
	}
	if expect.Live != nil {
		got := r.live.Slice()
		if !slices.Equal(got, expect.Live) && (len(got) != 0 || len(expect.Live) != 0) {
			t.Fatalf("%s: expected live %v, got %v", label, expect.Live, got)
		}
		for _, id := range expect.Live {
			if !r.tracker.Has(id) {
				t.Fatalf("%s: expected slot %d live in the tracker", label, id)
			}
		}
		if r.tracker.Len() != len(expect.Live) {
			t.Fatalf("%s: expected %d live values, got %d", label, len(expect.Live), r.tracker.Len())
		}
	}
	if expect.Changed != nil && *expect.Changed != r.changed {
		t.Fatalf("%s: expected maintain to report %d, got %d", label, *expect.Changed, r.changed)
	}
}

func catch(fn func()) (recovered any) {
	defer func() {
		recovered = recover()
	}()
	fn()
	return nil
}
