// Package flow models the external physical-design toolchain as an ordered
// sequence of named steps over an accumulating set of design views. The
// steps themselves are opaque: the default sequence carries no behavior and
// callers attach the real tool invocations per step.
package flow

import (
	"fmt"
	"strings"
)

// State maps view names to their current values (file paths, tool status).
// Steps receive a copy and return the updated map; the flow never hands out
// its internal state.
type State map[string]string

// Clone returns an independent copy of the state.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}

	return out
}

// Step is one named stage of the flow. A nil Apply passes the state through
// unchanged.
type Step struct {
	Name  string
	Apply func(State) (State, error)
}

// UnknownStepError reports a step name the flow does not contain.
type UnknownStepError struct {
	Name  string
	Known []string
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("flow: unknown step %q (known: %s)", e.Name, strings.Join(e.Known, ", "))
}

// StepError wraps a failure inside a step's Apply function.
type StepError struct {
	Name string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("flow: step %s: %v", e.Name, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// DefaultSteps returns the reference implementation sequence from synthesis
// through GDS export. Every Apply is nil; callers override the stages they
// drive.
func DefaultSteps() []Step {
	names := []string{
		"synthesis",
		"floorplan",
		"tap_endcap",
		"io_placement",
		"pdn",
		"global_placement",
		"detailed_placement",
		"cts",
		"global_routing",
		"detailed_routing",
		"gds_export",
	}

	steps := make([]Step, len(names))
	for i, name := range names {
		steps[i] = Step{Name: name}
	}

	return steps
}

// Flow executes an ordered step sequence, threading the state through each
// Apply in turn.
type Flow struct {
	steps []Step
	state State
}

// New builds a flow over the given steps, or over DefaultSteps when none are
// given. Duplicate step names are rejected.
func New(steps ...Step) (*Flow, error) {
	if len(steps) == 0 {
		steps = DefaultSteps()
	}

	seen := make(map[string]struct{}, len(steps))

	for _, s := range steps {
		if s.Name == "" {
			return nil, fmt.Errorf("flow: step with empty name")
		}

		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("flow: duplicate step %q", s.Name)
		}

		seen[s.Name] = struct{}{}
	}

	return &Flow{
		steps: append([]Step(nil), steps...),
		state: State{},
	}, nil
}

// Steps returns the step names in execution order.
func (f *Flow) Steps() []string {
	names := make([]string, len(f.steps))
	for i, s := range f.steps {
		names[i] = s.Name
	}

	return names
}

// State returns a copy of the current accumulated state.
func (f *Flow) State() State {
	return f.state.Clone()
}

// Override replaces the Apply function of the named step.
func (f *Flow) Override(name string, apply func(State) (State, error)) error {
	for i := range f.steps {
		if f.steps[i].Name == name {
			f.steps[i].Apply = apply
			return nil
		}
	}

	return &UnknownStepError{Name: name, Known: f.Steps()}
}

// Run executes every step in order and returns the final state.
func (f *Flow) Run() (State, error) {
	return f.runThrough(len(f.steps) - 1)
}

// RunUntil executes the steps from the start through the named step
// inclusive.
func (f *Flow) RunUntil(name string) (State, error) {
	idx, err := f.index(name)
	if err != nil {
		return nil, err
	}

	return f.runThrough(idx)
}

// RunStep executes only the named step against the current state.
func (f *Flow) RunStep(name string) (State, error) {
	idx, err := f.index(name)
	if err != nil {
		return nil, err
	}

	if err := f.apply(f.steps[idx]); err != nil {
		return nil, err
	}

	return f.State(), nil
}

func (f *Flow) index(name string) (int, error) {
	for i, s := range f.steps {
		if s.Name == name {
			return i, nil
		}
	}

	return 0, &UnknownStepError{Name: name, Known: f.Steps()}
}

func (f *Flow) runThrough(last int) (State, error) {
	for i := 0; i <= last; i++ {
		if err := f.apply(f.steps[i]); err != nil {
			return nil, err
		}
	}

	return f.State(), nil
}

func (f *Flow) apply(step Step) error {
	if step.Apply == nil {
		return nil
	}

	next, err := step.Apply(f.state.Clone())
	if err != nil {
		return &StepError{Name: step.Name, Err: err}
	}

	if next != nil {
		f.state = next
	}

	return nil
}
