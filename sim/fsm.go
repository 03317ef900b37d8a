package sim

import (
	"fmt"
	"strconv"
)

// ActionList is one event handler's flattened instruction list. Labels
// are resolved to indexes at build time.
type ActionList struct {
	Calls  []*ActionCall
	labels map[string]int
}

// MobState is one named state with its per-event handlers.
type MobState struct {
	Name     string
	Index    int
	handlers [eventCount]*ActionList
}

// Handler returns the state's list for an event, nil when unhandled.
func (s *MobState) Handler(ev EventType) *ActionList {
	return s.handlers[ev]
}

// HandlesEvent reports whether the state (not globals) handles an event.
func (s *MobState) HandlesEvent(ev EventType) bool {
	return s.handlers[ev] != nil
}

// runFrame carries the mutable execution state of one handler run. A
// set_state action records the request here; the last one wins and the
// transition happens only after the list finishes.
type runFrame struct {
	nextState string
	hasNext   bool
}

// FsmBuilder assembles a MobType's state machine from validated action
// calls and checks cross-references once everything is declared.
type FsmBuilder struct {
	typ      *MobType
	cur      *MobState
	curEvent EventType
	curList  *ActionList
	global   bool
}

func NewFsmBuilder(t *MobType) *FsmBuilder {
	t.stateIndexes = map[string]int{}
	t.FirstStateIdx = -1
	t.DeathStateIdx = -1
	return &FsmBuilder{typ: t}
}

// NewState opens a state. Duplicate names are a script error.
func (b *FsmBuilder) NewState(name string) error {
	if _, dup := b.typ.stateIndexes[name]; dup {
		return fmt.Errorf("duplicate state %q", name)
	}
	st := &MobState{Name: name, Index: len(b.typ.States)}
	b.typ.stateIndexes[name] = st.Index
	b.typ.States = append(b.typ.States, st)
	b.cur = st
	b.curList = nil
	b.global = false
	return nil
}

// NewEvent opens an event handler list in the current state.
func (b *FsmBuilder) NewEvent(ev EventType) error {
	if b.cur == nil {
		return fmt.Errorf("event %s declared outside a state", ev)
	}
	if b.cur.handlers[ev] != nil {
		return fmt.Errorf("state %q: duplicate handler for %s", b.cur.Name, ev)
	}
	b.curEvent = ev
	b.curList = &ActionList{}
	b.cur.handlers[ev] = b.curList
	b.global = false
	return nil
}

// NewGlobalEvent opens a type-wide fallback handler for an event.
func (b *FsmBuilder) NewGlobalEvent(ev EventType) error {
	if b.typ.Globals[ev] != nil {
		return fmt.Errorf("duplicate global handler for %s", ev)
	}
	b.curEvent = ev
	b.curList = &ActionList{}
	b.typ.Globals[ev] = b.curList
	b.global = true
	return nil
}

// Add appends a raw action to the open handler.
func (b *FsmBuilder) Add(name string, args []string) error {
	if b.curList == nil {
		return fmt.Errorf("action %s outside an event handler", name)
	}
	call, err := NewActionCall(b.typ, b.curEvent, name, args)
	if err != nil {
		return err
	}
	b.curList.Calls = append(b.curList.Calls, call)
	return nil
}

// Finish resolves first/death states, label targets, conditional
// nesting, set_state targets and reach references. The type is unusable
// on error.
func (b *FsmBuilder) Finish(firstState, deathState string) error {
	t := b.typ
	if len(t.States) == 0 {
		return fmt.Errorf("no states declared")
	}
	t.FirstStateIdx = t.StateIndex(firstState)
	if t.FirstStateIdx < 0 {
		return fmt.Errorf("first state %q not declared", firstState)
	}
	if deathState != "" {
		t.DeathStateIdx = t.StateIndex(deathState)
		if t.DeathStateIdx < 0 {
			return fmt.Errorf("death state %q not declared", deathState)
		}
	}

	check := func(where string, list *ActionList) error {
		if list == nil {
			return nil
		}
		list.labels = map[string]int{}
		depth := 0
		sawElse := make([]bool, 0, 4)
		for i, call := range list.Calls {
			switch call.Def.Kind {
			case ActionLabel:
				name := call.Args[0]
				if _, dup := list.labels[name]; dup {
					return fmt.Errorf("%s: duplicate label %q", where, name)
				}
				list.labels[name] = i
			case ActionIf:
				depth++
				sawElse = append(sawElse, false)
			case ActionElse:
				if depth == 0 || sawElse[depth-1] {
					return fmt.Errorf("%s: else without matching if", where)
				}
				sawElse[depth-1] = true
			case ActionEndIf:
				if depth == 0 {
					return fmt.Errorf("%s: end_if without matching if", where)
				}
				depth--
				sawElse = sawElse[:depth]
			}
		}
		if depth != 0 {
			return fmt.Errorf("%s: if without matching end_if", where)
		}
		for _, call := range list.Calls {
			switch call.Def.Kind {
			case ActionGoto:
				if _, ok := list.labels[call.Args[0]]; !ok {
					return fmt.Errorf("%s: goto to unknown label %q", where, call.Args[0])
				}
			case ActionSetState:
				if t.StateIndex(call.Args[0]) < 0 {
					return fmt.Errorf("%s: set_state to unknown state %q", where, call.Args[0])
				}
			}
		}
		return nil
	}

	for _, st := range t.States {
		for ev := EventType(0); ev < eventCount; ev++ {
			where := fmt.Sprintf("state %q, event %s", st.Name, ev)
			if err := check(where, st.handlers[ev]); err != nil {
				return err
			}
		}
	}
	for ev := EventType(0); ev < eventCount; ev++ {
		if err := check(fmt.Sprintf("global event %s", ev), t.Globals[ev]); err != nil {
			return err
		}
	}

	for _, call := range t.pendingReachRefs {
		if t.ReachIndex(call.Args[0]) < 0 {
			return fmt.Errorf("action %s: unknown reach %q", call.Def.Name, call.Args[0])
		}
	}
	t.pendingReachRefs = nil

	t.recomputeSpans()
	return nil
}

// Event dispatch may recurse through set_var chains and messages; past
// this depth the innermost call is dropped.
const maxEventDepth = 32

// RunEvent dispatches an event to a mob: the current state's handler if
// it has one, else the type's global handler, else nothing. p1/p2 are
// the event payloads surfaced through get_event_info and the focus
// trigger target.
func (s *Sim) RunEvent(m *Mob, ev EventType, p1, p2 any) {
	if m == nil || m.ToDelete() {
		return
	}
	var list *ActionList
	if m.StateIdx >= 0 {
		if m.StateIdx >= len(m.Type.States) {
			s.log.Error().Str("type", m.Type.Name).Int("state", m.StateIdx).
				Msg("mob state index out of range")
			return
		}
		list = m.Type.States[m.StateIdx].Handler(ev)
	}
	if list == nil {
		list = m.Type.Globals[ev]
	}
	if list == nil {
		return
	}
	s.runList(m, ev, list, p1, p2)
}

func (s *Sim) runList(m *Mob, ev EventType, list *ActionList, p1, p2 any) {
	if s.eventDepth >= maxEventDepth {
		if !s.depthWarned {
			s.depthWarned = true
			s.log.Warn().Str("type", m.Type.Name).Str("state", m.StateName()).
				Str("event", ev.String()).Msg("event recursion cap hit, dropping innermost dispatch")
		}
		return
	}
	s.eventDepth++
	defer func() { s.eventDepth-- }()

	frame := runFrame{}
	data := RunData{Sim: s, Mob: m, Custom1: p1, Custom2: p2, Frame: &frame}

	ip := 0
	for ip < len(list.Calls) {
		call := list.Calls[ip]
		switch call.Def.Kind {
		case ActionIf:
			if !evalIf(m, call) {
				ip = skipBranch(list, ip, true)
				continue
			}
		case ActionElse:
			// The taken branch ran; jump past the else block.
			ip = skipBranch(list, ip, false)
			continue
		case ActionEndIf, ActionLabel:
			// Markers only.
		case ActionGoto:
			ip = list.labels[call.Args[0]]
			continue
		default:
			data.Call = call
			data.Args = resolveArgs(m, call)
			call.Def.Run(&data)
			if m.ToDelete() {
				return
			}
		}
		ip++
	}

	if frame.hasNext {
		s.SetState(m, m.Type.StateIndex(frame.nextState))
	}
}

// skipBranch advances past a conditional branch. From an if (fromIf),
// it lands on the matching else body or just past the matching end_if;
// from an else it lands just past the matching end_if. Nested
// conditionals are skipped whole.
func skipBranch(list *ActionList, ip int, fromIf bool) int {
	depth := 0
	for i := ip + 1; i < len(list.Calls); i++ {
		switch list.Calls[i].Def.Kind {
		case ActionIf:
			depth++
		case ActionElse:
			if depth == 0 && fromIf {
				return i + 1
			}
		case ActionEndIf:
			if depth == 0 {
				return i + 1
			}
			depth--
		}
	}
	return len(list.Calls)
}

// evalIf compares numerically when both sides parse as numbers, else
// lexicographically.
func evalIf(m *Mob, call *ActionCall) bool {
	args := resolveArgs(m, call)
	lhs, rhs := args[0], args[2]
	op := enumArg(args, 1)

	lf, lerr := strconv.ParseFloat(lhs, 64)
	rf, rerr := strconv.ParseFloat(rhs, 64)
	if lerr == nil && rerr == nil {
		switch op {
		case ifOpEqual:
			return lf == rf
		case ifOpNot:
			return lf != rf
		case ifOpLess:
			return lf < rf
		case ifOpMore:
			return lf > rf
		case ifOpLessE:
			return lf <= rf
		case ifOpMoreE:
			return lf >= rf
		}
		return false
	}
	switch op {
	case ifOpEqual:
		return lhs == rhs
	case ifOpNot:
		return lhs != rhs
	case ifOpLess:
		return lhs < rhs
	case ifOpMore:
		return lhs > rhs
	case ifOpLessE:
		return lhs <= rhs
	case ifOpMoreE:
		return lhs >= rhs
	}
	return false
}

// resolveArgs substitutes variable references from the mob's var map.
func resolveArgs(m *Mob, call *ActionCall) []string {
	needsSub := false
	for _, isVar := range call.ArgIsVar {
		if isVar {
			needsSub = true
			break
		}
	}
	if !needsSub {
		return call.Args
	}
	out := make([]string, len(call.Args))
	for i, a := range call.Args {
		if call.ArgIsVar[i] {
			out[i] = m.Var(a)
		} else {
			out[i] = a
		}
	}
	return out
}

// SetState performs the transition sequence: on_leave for the old state,
// record it, swap, reset the script timer, then on_enter for the new
// state. Out-of-range indexes are ignored.
func (s *Sim) SetState(m *Mob, idx int) {
	if m == nil || m.ToDelete() || idx < 0 || idx >= len(m.Type.States) {
		return
	}
	if m.StateIdx >= 0 {
		s.RunEvent(m, EventOnLeave, nil, nil)
		m.pushPrevState(m.StateName())
	}
	m.StateIdx = idx
	m.SetTimer(0)
	s.RunEvent(m, EventOnEnter, nil, nil)
}
