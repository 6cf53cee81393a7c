// Package arbiter implements the source-arbitration fold: given the stack
// of value sources bound to a fixture channel (the manual programmer, any
// number of executors), it produces the single deterministic value the DMX
// generator resolves to bytes.
package arbiter

import (
	"github.com/demexconsole/console/internal/errs"
	"github.com/demexconsole/console/internal/valuetree"
)

// Priority is a value source's arbitration class. Sort keys are
// SuperLtp=1, Ltp=0, Htp=0 —
// HTP and LTP sort equally and are distinguished by the IsHTP fold rule,
// not by sort order.
type Priority int

const (
	PriorityLtp Priority = iota
	PrioritySuperLtp
	PriorityHtp
)

// Value returns the sort key used to order sources before folding.
func (p Priority) Value() int {
	if p == PrioritySuperLtp {
		return 1
	}
	return 0
}

// IsHTP reports whether p accumulates (true) or replaces (false) during the
// fold.
func (p Priority) IsHTP() bool { return p == PriorityHtp }

// SourceKind discriminates a programmer entry from an executor binding.
type SourceKind int

const (
	SourceProgrammer SourceKind = iota
	SourceExecutor
)

// Source identifies one value source bound to a fixture channel.
type Source struct {
	Kind       SourceKind
	ExecutorID uint32
}

// Programmer is the well-known programmer source.
func Programmer() Source { return Source{Kind: SourceProgrammer} }

// ExecutorSource identifies an executor source by id.
func ExecutorSource(id uint32) Source { return Source{Kind: SourceExecutor, ExecutorID: id} }

// StompSource records which source last claimed a stomp (the programmer
// making a manual edit, or a specific executor starting).
type StompSource struct {
	IsExecutor bool
	ExecutorID uint32
}

// FadeValue pairs a resolved value with its fade alpha and priority class,
// the shape the arbitration boundary passes between a source and the fold.
type FadeValue struct {
	Value    valuetree.Value
	Alpha    float32
	Priority Priority
}

// Executor is the minimal view of an executor the arbiter needs.
type Executor interface {
	StompProtected() bool
	ChannelValue(env *valuetree.Env, channelName string) (FadeValue, bool)
}

// Query resolves sources to their current values and exposes the last
// stomp source, backed by internal/fixture and internal/executor.
type Query interface {
	ProgrammerValue(channelName string) (valuetree.Value, bool)
	Executor(id uint32) (Executor, bool)
	LastStompSource() *StompSource
}

// isStompedBy reports whether src should be substituted with Home because
// a different, non-stomp-protected claim has taken over the channel.
// Programmer entries are unconditionally stomp-protected.
func isStompedBy(src Source, query Query, last *StompSource) bool {
	switch src.Kind {
	case SourceProgrammer:
		return false
	case SourceExecutor:
		executor, ok := query.Executor(src.ExecutorID)
		if !ok {
			return false
		}
		if executor.StompProtected() {
			return false
		}
		if last == nil {
			return false
		}
		return !(last.IsExecutor && last.ExecutorID == src.ExecutorID)
	}
	return false
}

// Resolve folds sources into the single deterministic value for channelName:
//  1. Evaluate each source, substituting (Home, alpha=1, LTP) if stomped.
//  2. Flatten each value; drop sources whose value is Home.
//  3. Sort the remainder stable by priority value ascending.
//  4. Fold left into acc, initialised to Home: non-HTP replaces
//     (acc <- Mix{Home,v,alpha}, short-circuited at alpha 0/1); HTP
//     accumulates (acc <- Mix{acc,v,alpha}, same short-circuits).
func Resolve(sources []Source, query Query, env *valuetree.Env, channelName string) (valuetree.Value, error) {
	last := query.LastStompSource()

	values := make([]FadeValue, 0, len(sources))

	for _, src := range sources {
		var fv FadeValue

		if isStompedBy(src, query, last) {
			fv = FadeValue{Value: valuetree.Home(), Alpha: 1.0, Priority: PriorityLtp}
		} else {
			switch src.Kind {
			case SourceProgrammer:
				v, ok := query.ProgrammerValue(channelName)
				if !ok {
					continue
				}
				fv = FadeValue{Value: v, Alpha: 1.0, Priority: PriorityLtp}
			case SourceExecutor:
				executor, ok := query.Executor(src.ExecutorID)
				if !ok {
					continue
				}
				resolved, ok := executor.ChannelValue(env, channelName)
				if !ok {
					continue
				}
				fv = resolved
			}
		}

		fv.Value = fv.Value.Flatten()
		values = append(values, fv)
	}

	if len(values) == 0 {
		return valuetree.Value{}, errs.ChannelValue("no value source for channel %q", channelName)
	}

	stableSortByPriority(values)

	acc := valuetree.Home()

	for _, v := range values {
		if v.Value.IsHome() {
			continue
		}

		if !v.Priority.IsHTP() {
			switch v.Alpha {
			case 0:
				acc = valuetree.Home()
			case 1:
				acc = v.Value
			default:
				acc = valuetree.MixOf(valuetree.Home(), v.Value, v.Alpha)
			}
			continue
		}

		// HTP: accumulate.
		if v.Alpha == 0 {
			continue
		}
		if v.Alpha == 1 {
			acc = v.Value
			continue
		}
		acc = valuetree.MixOf(acc, v.Value, v.Alpha)
	}

	return acc, nil
}

func stableSortByPriority(values []FadeValue) {
	// insertion sort: the source lists arbitrated per tick are small
	// (one programmer + a handful of executors per channel), and stability
	// must be preserved — equal-priority sources keep their arbitration order.
	for i := 1; i < len(values); i++ {
		j := i
		for j > 0 && values[j-1].Priority.Value() > values[j].Priority.Value() {
			values[j-1], values[j] = values[j], values[j-1]
			j--
		}
	}
}
