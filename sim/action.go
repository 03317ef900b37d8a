package sim

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// ActionKind identifies a primitive script instruction.
type ActionKind uint8

const (
	ActionUnknown ActionKind = iota

	// Control flow markers, interpreted by the FSM runtime itself.
	ActionIf
	ActionElse
	ActionEndIf
	ActionLabel
	ActionGoto
	ActionSetState

	// Everything else runs through its ActionDef.Run function.
	ActionAddHealth
	ActionCalculate
	ActionDelete
	ActionEval
	ActionFinishDying
	ActionFocus
	ActionFollowPathRandomly
	ActionFollowPathToAbsolute
	ActionGetAngle
	ActionGetAreaInfo
	ActionGetChomped
	ActionGetCoordinatesFromAngle
	ActionGetDistance
	ActionGetEventInfo
	ActionGetFloorZ
	ActionGetFocusVar
	ActionGetMobInfo
	ActionGetRandomFloat
	ActionGetRandomInt
	ActionHoldFocus
	ActionLinkWithFocus
	ActionLoadFocusMemory
	ActionMoveToAbsolute
	ActionMoveToRelative
	ActionMoveToTarget
	ActionOrderRelease
	ActionPlaySound
	ActionPrint
	ActionReceiveStatus
	ActionRelease
	ActionReleaseStoredMobs
	ActionRemoveStatus
	ActionSaveFocusMemory
	ActionSendMessageToFocus
	ActionSendMessageToLinks
	ActionSendMessageToNearby
	ActionSetAnimation
	ActionSetFarReach
	ActionSetFlying
	ActionSetHealth
	ActionSetHeight
	ActionSetHiding
	ActionSetHoldable
	ActionSetHuntable
	ActionSetNearReach
	ActionSetRadius
	ActionSetTangible
	ActionSetTeam
	ActionSetTimer
	ActionSetVar
	ActionSpawn
	ActionStartChomping
	ActionStartDying
	ActionStop
	ActionStopChomping
	ActionStopSound
	ActionStoreFocusInside
	ActionSwallowAll
	ActionTeleportToAbsolute
	ActionTeleportToRelative
	ActionTurnToAbsolute
	ActionTurnToRelative
	ActionTurnToTarget
)

// ParamType is the declared type of an action parameter.
type ParamType uint8

const (
	ParamInt ParamType = iota
	ParamFloat
	ParamBool
	ParamString
	ParamEnum
)

// ParamDef describes one slot of an action's parameter schema.
type ParamDef struct {
	Name string
	Type ParamType
	// ForceConst parameters reject variable references.
	ForceConst bool
	// Variadic marks the tail parameter as repeatable (zero or more).
	Variadic bool
}

// RunData is everything an action runner may touch while executing.
type RunData struct {
	Sim  *Sim
	Mob  *Mob
	Call *ActionCall
	// Args are the call's arguments with variable references already
	// substituted.
	Args []string
	// Custom1/Custom2 are the opaque event payloads from dispatch.
	Custom1 any
	Custom2 any
	// Frame is the state of the surrounding action-list execution.
	Frame *runFrame
}

// ActionDef is one registered action: schema plus behavior.
type ActionDef struct {
	Kind   ActionKind
	Name   string
	Params []ParamDef
	Run    func(*RunData)
	// Load runs extra validation after the generic arity/type pass.
	// It may canonicalize enum arguments in place.
	Load func(*ActionCall) error
}

// ActionCall is one validated invocation of an action inside a state's
// action list.
type ActionCall struct {
	Def      *ActionDef
	Args     []string
	ArgIsVar []bool
	Event    EventType
	Owner    *MobType

	// Compiled tengo program, eval action only.
	evalProg *tengo.Compiled
}

var actionsByName = map[string]*ActionDef{}

func registerAction(def *ActionDef) *ActionDef {
	if _, dup := actionsByName[def.Name]; dup {
		panic("duplicate action " + def.Name)
	}
	actionsByName[def.Name] = def
	return def
}

// LookupAction resolves an action name, or nil.
func LookupAction(name string) *ActionDef {
	return actionsByName[name]
}

// IsVarRef reports whether a raw script argument is a variable reference.
func IsVarRef(arg string) bool {
	return strings.HasPrefix(arg, "$") && len(arg) > 1
}

// NewActionCall validates raw arguments against the named action's
// schema and produces a call ready for the FSM builder. All failures
// here are load-time script errors.
func NewActionCall(owner *MobType, event EventType, name string, rawArgs []string) (*ActionCall, error) {
	def := actionsByName[name]
	if def == nil {
		return nil, fmt.Errorf("unknown action %q", name)
	}

	minArgs := len(def.Params)
	variadic := minArgs > 0 && def.Params[minArgs-1].Variadic
	if variadic {
		minArgs--
	}
	if len(rawArgs) < minArgs {
		return nil, fmt.Errorf("action %s: got %d argument(s), want at least %d", name, len(rawArgs), minArgs)
	}
	if !variadic && len(rawArgs) > len(def.Params) {
		return nil, fmt.Errorf("action %s: got %d argument(s), want %d", name, len(rawArgs), len(def.Params))
	}

	call := &ActionCall{
		Def:      def,
		Args:     append([]string(nil), rawArgs...),
		ArgIsVar: make([]bool, len(rawArgs)),
		Event:    event,
		Owner:    owner,
	}

	for i, arg := range call.Args {
		p := def.Params[min(i, len(def.Params)-1)]
		if IsVarRef(arg) {
			if p.ForceConst {
				return nil, fmt.Errorf("action %s: parameter %q must be a constant, got variable %s", name, p.Name, arg)
			}
			call.ArgIsVar[i] = true
			call.Args[i] = arg[1:]
			continue
		}
		if err := checkLiteral(p.Type, arg); err != nil {
			return nil, fmt.Errorf("action %s: parameter %q: %w", name, p.Name, err)
		}
	}

	if def.Load != nil {
		if err := def.Load(call); err != nil {
			return nil, fmt.Errorf("action %s: %w", name, err)
		}
	}
	return call, nil
}

func checkLiteral(t ParamType, arg string) error {
	switch t {
	case ParamInt:
		if _, err := strconv.Atoi(arg); err != nil {
			return fmt.Errorf("%q is not an integer", arg)
		}
	case ParamFloat:
		if _, err := strconv.ParseFloat(arg, 64); err != nil {
			return fmt.Errorf("%q is not a number", arg)
		}
	case ParamBool:
		if arg != "true" && arg != "false" {
			return fmt.Errorf("%q is not a boolean", arg)
		}
	case ParamEnum, ParamString:
		// Enum strings are resolved by the action's Load hook.
	}
	return nil
}

// resolveEnumArg maps an enum argument through its per-action table and
// rewrites it to the canonical integer form.
func resolveEnumArg(call *ActionCall, idx int, table map[string]int) error {
	if idx >= len(call.Args) {
		return nil
	}
	if call.ArgIsVar[idx] {
		// Variable enums resolve at run time; nothing to do here.
		return nil
	}
	v, ok := table[call.Args[idx]]
	if !ok {
		return fmt.Errorf("unknown option %q for parameter %q", call.Args[idx], call.Def.Params[idx].Name)
	}
	call.Args[idx] = strconv.Itoa(v)
	return nil
}

// Comparison operators for the if action.
const (
	ifOpEqual = iota
	ifOpNot
	ifOpLess
	ifOpMore
	ifOpLessE
	ifOpMoreE
)

var ifOpTable = map[string]int{
	"=": ifOpEqual, "!=": ifOpNot,
	"<": ifOpLess, ">": ifOpMore,
	"<=": ifOpLessE, ">=": ifOpMoreE,
}

// Arithmetic operations for the calculate action.
const (
	calcOpSum = iota
	calcOpSubtract
	calcOpMultiply
	calcOpDivide
	calcOpModulo
)

var calcOpTable = map[string]int{
	"sum": calcOpSum, "subtract": calcOpSubtract,
	"multiply": calcOpMultiply, "divide": calcOpDivide,
	"modulo": calcOpModulo,
}

// Mob target selectors for focus/move/turn actions.
const (
	targetSelf = iota
	targetFocus
	targetTrigger
	targetLink
	targetParent
)

var mobTargetTable = map[string]int{
	"self": targetSelf, "focus": targetFocus, "trigger": targetTrigger,
	"link": targetLink, "parent": targetParent,
}

// Info selectors for the getter actions.
const (
	mobInfoX = iota
	mobInfoY
	mobInfoZ
	mobInfoAngle
	mobInfoHealth
	mobInfoHealthRatio
	mobInfoID
	mobInfoState
	mobInfoWeight
	mobInfoChomped
	mobInfoLatched
	mobInfoFocusDistance
	mobInfoGroupTaskPower
	mobInfoCategory
	mobInfoType
)

var mobInfoTable = map[string]int{
	"x": mobInfoX, "y": mobInfoY, "z": mobInfoZ, "angle": mobInfoAngle,
	"health": mobInfoHealth, "health_ratio": mobInfoHealthRatio,
	"id": mobInfoID, "state": mobInfoState, "weight": mobInfoWeight,
	"chomped_minions": mobInfoChomped, "latched_minions": mobInfoLatched,
	"focus_distance": mobInfoFocusDistance,
	"group_task_power": mobInfoGroupTaskPower,
	"mob_category": mobInfoCategory, "mob_type": mobInfoType,
}

const (
	eventInfoMessage = iota
	eventInfoBodyPart
	eventInfoOtherBodyPart
	eventInfoHazard
	eventInfoFrameSignal
)

var eventInfoTable = map[string]int{
	"message": eventInfoMessage, "body_part": eventInfoBodyPart,
	"other_body_part": eventInfoOtherBodyPart, "hazard": eventInfoHazard,
	"frame_signal": eventInfoFrameSignal,
}

const (
	areaInfoDayMinutes = iota
	areaInfoFieldMinions
)

var areaInfoTable = map[string]int{
	"day_minutes": areaInfoDayMinutes, "field_minions": areaInfoFieldMinions,
}

const (
	moveTargetFocus = iota
	moveTargetFocusPos
	moveTargetAwayFromFocus
	moveTargetHome
	moveTargetLinkedAverage
)

var moveTargetTable = map[string]int{
	"focus": moveTargetFocus, "focus_pos": moveTargetFocusPos,
	"away_from_focus": moveTargetAwayFromFocus, "home": moveTargetHome,
	"linked_mob_average": moveTargetLinkedAverage,
}

const (
	turnTargetFocus = iota
	turnTargetHome
)

var turnTargetTable = map[string]int{
	"focused_mob": turnTargetFocus, "home": turnTargetHome,
}

func loadEnum(idx int, table map[string]int) func(*ActionCall) error {
	return func(call *ActionCall) error {
		return resolveEnumArg(call, idx, table)
	}
}

func loadEval(call *ActionCall) error {
	src := call.Args[1]
	script := tengo.NewScript([]byte("__result := " + src))
	script.SetImports(stdlib.GetModuleMap("math", "text"))
	if err := script.Add("vars", map[string]any{}); err != nil {
		return err
	}
	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("expression %q: %w", src, err)
	}
	call.evalProg = compiled
	return nil
}

func loadSetTeam(call *ActionCall) error {
	return resolveEnumArg(call, 0, teamsByName)
}

// enumArg reads a canonicalized enum argument back out of resolved args.
// Out-of-range or unparsable values fall back to -1, which every runner
// treats as "selector unknown, do nothing".
func enumArg(args []string, idx int) int {
	if idx >= len(args) {
		return -1
	}
	v, err := strconv.Atoi(args[idx])
	if err != nil {
		return -1
	}
	return v
}

func floatArg(args []string, idx int) float64 {
	if idx >= len(args) {
		return 0
	}
	v, _ := strconv.ParseFloat(args[idx], 64)
	return v
}

func intArg(args []string, idx int) int {
	if idx >= len(args) {
		return 0
	}
	v, err := strconv.Atoi(args[idx])
	if err != nil {
		f, _ := strconv.ParseFloat(args[idx], 64)
		return int(f)
	}
	return v
}

func boolArg(args []string, idx int) bool {
	return idx < len(args) && args[idx] == "true"
}

func stringArg(args []string, idx int) string {
	if idx >= len(args) {
		return ""
	}
	return args[idx]
}
