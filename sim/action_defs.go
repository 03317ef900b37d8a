package sim

func init() {
	p := func(name string, t ParamType) ParamDef { return ParamDef{Name: name, Type: t} }
	c := func(name string, t ParamType) ParamDef { return ParamDef{Name: name, Type: t, ForceConst: true} }
	tail := func(name string, t ParamType) ParamDef { return ParamDef{Name: name, Type: t, Variadic: true} }

	// Control flow. Run is nil: the FSM runtime interprets these.
	registerAction(&ActionDef{Kind: ActionIf, Name: "if",
		Params: []ParamDef{p("comparand", ParamString), c("operation", ParamEnum), p("value", ParamString)},
		Load:   loadEnum(1, ifOpTable)})
	registerAction(&ActionDef{Kind: ActionElse, Name: "else"})
	registerAction(&ActionDef{Kind: ActionEndIf, Name: "end_if"})
	registerAction(&ActionDef{Kind: ActionLabel, Name: "label",
		Params: []ParamDef{c("name", ParamString)}})
	registerAction(&ActionDef{Kind: ActionGoto, Name: "goto",
		Params: []ParamDef{c("label", ParamString)}})
	registerAction(&ActionDef{Kind: ActionSetState, Name: "set_state",
		Params: []ParamDef{c("state", ParamString)}, Run: runSetState})

	// Variables and math.
	registerAction(&ActionDef{Kind: ActionSetVar, Name: "set_var",
		Params: []ParamDef{c("name", ParamString), p("value", ParamString)}, Run: runSetVar})
	registerAction(&ActionDef{Kind: ActionGetFocusVar, Name: "get_focus_var",
		Params: []ParamDef{c("destination", ParamString), c("variable", ParamString)}, Run: runGetFocusVar})
	registerAction(&ActionDef{Kind: ActionCalculate, Name: "calculate",
		Params: []ParamDef{c("destination", ParamString), p("operand", ParamFloat), c("operation", ParamEnum), p("operand", ParamFloat)},
		Run:    runCalculate, Load: loadEnum(2, calcOpTable)})
	registerAction(&ActionDef{Kind: ActionEval, Name: "eval",
		Params: []ParamDef{c("destination", ParamString), c("expression", ParamString)},
		Run:    runEval, Load: loadEval})
	registerAction(&ActionDef{Kind: ActionGetRandomFloat, Name: "get_random_float",
		Params: []ParamDef{c("destination", ParamString), p("minimum", ParamFloat), p("maximum", ParamFloat)}, Run: runGetRandomFloat})
	registerAction(&ActionDef{Kind: ActionGetRandomInt, Name: "get_random_int",
		Params: []ParamDef{c("destination", ParamString), p("minimum", ParamInt), p("maximum", ParamInt)}, Run: runGetRandomInt})
	registerAction(&ActionDef{Kind: ActionGetAngle, Name: "get_angle",
		Params: []ParamDef{c("destination", ParamString), p("center x", ParamFloat), p("center y", ParamFloat), p("focus x", ParamFloat), p("focus y", ParamFloat)}, Run: runGetAngle})
	registerAction(&ActionDef{Kind: ActionGetDistance, Name: "get_distance",
		Params: []ParamDef{c("destination", ParamString), p("center x", ParamFloat), p("center y", ParamFloat), p("focus x", ParamFloat), p("focus y", ParamFloat)}, Run: runGetDistance})
	registerAction(&ActionDef{Kind: ActionGetCoordinatesFromAngle, Name: "get_coordinates_from_angle",
		Params: []ParamDef{c("destination x", ParamString), c("destination y", ParamString), p("angle", ParamFloat), p("magnitude", ParamFloat)}, Run: runGetCoordinatesFromAngle})

	// Info getters.
	registerAction(&ActionDef{Kind: ActionGetMobInfo, Name: "get_mob_info",
		Params: []ParamDef{c("destination", ParamString), c("target", ParamEnum), c("info", ParamEnum)},
		Run:    runGetMobInfo,
		Load: func(call *ActionCall) error {
			if err := resolveEnumArg(call, 1, mobTargetTable); err != nil {
				return err
			}
			return resolveEnumArg(call, 2, mobInfoTable)
		}})
	registerAction(&ActionDef{Kind: ActionGetEventInfo, Name: "get_event_info",
		Params: []ParamDef{c("destination", ParamString), c("info", ParamEnum)},
		Run:    runGetEventInfo, Load: loadEnum(1, eventInfoTable)})
	registerAction(&ActionDef{Kind: ActionGetAreaInfo, Name: "get_area_info",
		Params: []ParamDef{c("destination", ParamString), c("info", ParamEnum)},
		Run:    runGetAreaInfo, Load: loadEnum(1, areaInfoTable)})
	registerAction(&ActionDef{Kind: ActionGetFloorZ, Name: "get_floor_z",
		Params: []ParamDef{c("destination", ParamString), p("x", ParamFloat), p("y", ParamFloat)}, Run: runGetFloorZ})

	// Movement.
	registerAction(&ActionDef{Kind: ActionMoveToAbsolute, Name: "move_to_absolute",
		Params: []ParamDef{p("x", ParamFloat), p("y", ParamFloat)}, Run: runMoveToAbsolute})
	registerAction(&ActionDef{Kind: ActionMoveToRelative, Name: "move_to_relative",
		Params: []ParamDef{p("x", ParamFloat), p("y", ParamFloat)}, Run: runMoveToRelative})
	registerAction(&ActionDef{Kind: ActionMoveToTarget, Name: "move_to_target",
		Params: []ParamDef{c("target", ParamEnum)}, Run: runMoveToTarget, Load: loadEnum(0, moveTargetTable)})
	registerAction(&ActionDef{Kind: ActionStop, Name: "stop", Run: runStop})
	registerAction(&ActionDef{Kind: ActionTeleportToAbsolute, Name: "teleport_to_absolute",
		Params: []ParamDef{p("x", ParamFloat), p("y", ParamFloat), p("z", ParamFloat)}, Run: runTeleportToAbsolute})
	registerAction(&ActionDef{Kind: ActionTeleportToRelative, Name: "teleport_to_relative",
		Params: []ParamDef{p("x", ParamFloat), p("y", ParamFloat), p("z", ParamFloat)}, Run: runTeleportToRelative})
	registerAction(&ActionDef{Kind: ActionTurnToAbsolute, Name: "turn_to_absolute",
		Params: []ParamDef{p("angle", ParamFloat)}, Run: runTurnToAbsolute})
	registerAction(&ActionDef{Kind: ActionTurnToRelative, Name: "turn_to_relative",
		Params: []ParamDef{p("angle", ParamFloat)}, Run: runTurnToRelative})
	registerAction(&ActionDef{Kind: ActionTurnToTarget, Name: "turn_to_target",
		Params: []ParamDef{c("target", ParamEnum)}, Run: runTurnToTarget, Load: loadEnum(0, turnTargetTable)})
	registerAction(&ActionDef{Kind: ActionFollowPathToAbsolute, Name: "follow_path_to_absolute",
		Params: []ParamDef{p("x", ParamFloat), p("y", ParamFloat)}, Run: runFollowPathToAbsolute})
	registerAction(&ActionDef{Kind: ActionFollowPathRandomly, Name: "follow_path_randomly",
		Params: []ParamDef{p("distance", ParamFloat)}, Run: runFollowPathRandomly})

	// Body and lifecycle.
	registerAction(&ActionDef{Kind: ActionAddHealth, Name: "add_health",
		Params: []ParamDef{p("amount", ParamFloat)}, Run: runAddHealth})
	registerAction(&ActionDef{Kind: ActionSetHealth, Name: "set_health",
		Params: []ParamDef{p("amount", ParamFloat)}, Run: runSetHealth})
	registerAction(&ActionDef{Kind: ActionStartDying, Name: "start_dying", Run: runStartDying})
	registerAction(&ActionDef{Kind: ActionFinishDying, Name: "finish_dying", Run: runFinishDying})
	registerAction(&ActionDef{Kind: ActionDelete, Name: "delete", Run: runDelete})
	registerAction(&ActionDef{Kind: ActionSetTimer, Name: "set_timer",
		Params: []ParamDef{p("time", ParamFloat)}, Run: runSetTimer})
	registerAction(&ActionDef{Kind: ActionSetAnimation, Name: "set_animation",
		Params: []ParamDef{c("name", ParamString), tail("options", ParamString)}, Run: runSetAnimation})
	registerAction(&ActionDef{Kind: ActionSetRadius, Name: "set_radius",
		Params: []ParamDef{p("radius", ParamFloat)}, Run: runSetRadius})
	registerAction(&ActionDef{Kind: ActionSetHeight, Name: "set_height",
		Params: []ParamDef{p("height", ParamFloat)}, Run: runSetHeight})
	registerAction(&ActionDef{Kind: ActionSetNearReach, Name: "set_near_reach",
		Params: []ParamDef{c("reach", ParamString)}, Run: runSetNearReach, Load: loadReachName})
	registerAction(&ActionDef{Kind: ActionSetFarReach, Name: "set_far_reach",
		Params: []ParamDef{c("reach", ParamString)}, Run: runSetFarReach, Load: loadReachName})
	registerAction(&ActionDef{Kind: ActionSetTeam, Name: "set_team",
		Params: []ParamDef{c("team", ParamEnum)}, Run: runSetTeam, Load: loadSetTeam})
	registerAction(&ActionDef{Kind: ActionSetTangible, Name: "set_tangible",
		Params: []ParamDef{p("tangible", ParamBool)}, Run: runSetTangible})
	registerAction(&ActionDef{Kind: ActionSetHuntable, Name: "set_huntable",
		Params: []ParamDef{p("huntable", ParamBool)}, Run: runSetHuntable})
	registerAction(&ActionDef{Kind: ActionSetHoldable, Name: "set_holdable",
		Params: []ParamDef{p("holdable", ParamBool)}, Run: runSetHoldable})
	registerAction(&ActionDef{Kind: ActionSetHiding, Name: "set_hiding",
		Params: []ParamDef{p("hiding", ParamBool)}, Run: runSetHiding})
	registerAction(&ActionDef{Kind: ActionSetFlying, Name: "set_flying",
		Params: []ParamDef{p("flying", ParamBool)}, Run: runSetFlying})

	// Social.
	registerAction(&ActionDef{Kind: ActionFocus, Name: "focus",
		Params: []ParamDef{c("target", ParamEnum)}, Run: runFocus, Load: loadEnum(0, mobTargetTable)})
	registerAction(&ActionDef{Kind: ActionSpawn, Name: "spawn",
		Params: []ParamDef{c("type", ParamString)}, Run: runSpawn,
		Load: func(call *ActionCall) error {
			if call.Owner != nil {
				call.Owner.pendingSpawnRefs = append(call.Owner.pendingSpawnRefs, call)
			}
			return nil
		}})
	registerAction(&ActionDef{Kind: ActionSendMessageToFocus, Name: "send_message_to_focus",
		Params: []ParamDef{p("message", ParamString)}, Run: runSendMessageToFocus})
	registerAction(&ActionDef{Kind: ActionSendMessageToLinks, Name: "send_message_to_links",
		Params: []ParamDef{p("message", ParamString)}, Run: runSendMessageToLinks})
	registerAction(&ActionDef{Kind: ActionSendMessageToNearby, Name: "send_message_to_nearby",
		Params: []ParamDef{p("distance", ParamFloat), p("message", ParamString)}, Run: runSendMessageToNearby})
	registerAction(&ActionDef{Kind: ActionLinkWithFocus, Name: "link_with_focus", Run: runLinkWithFocus})
	registerAction(&ActionDef{Kind: ActionSaveFocusMemory, Name: "save_focus_memory", Run: runSaveFocusMemory})
	registerAction(&ActionDef{Kind: ActionLoadFocusMemory, Name: "load_focus_memory", Run: runLoadFocusMemory})
	registerAction(&ActionDef{Kind: ActionHoldFocus, Name: "hold_focus",
		Params: []ParamDef{c("hitbox", ParamString)}, Run: runHoldFocus})
	registerAction(&ActionDef{Kind: ActionRelease, Name: "release", Run: runRelease})
	registerAction(&ActionDef{Kind: ActionOrderRelease, Name: "order_release", Run: runOrderRelease})
	registerAction(&ActionDef{Kind: ActionStoreFocusInside, Name: "store_focus_inside", Run: runStoreFocusInside})
	registerAction(&ActionDef{Kind: ActionReleaseStoredMobs, Name: "release_stored_mobs", Run: runReleaseStoredMobs})
	registerAction(&ActionDef{Kind: ActionGetChomped, Name: "get_chomped", Run: runGetChomped})
	registerAction(&ActionDef{Kind: ActionStartChomping, Name: "start_chomping",
		Params: []ParamDef{p("victim max", ParamInt), tail("body parts", ParamString)}, Run: runStartChomping})
	registerAction(&ActionDef{Kind: ActionStopChomping, Name: "stop_chomping", Run: runStopChomping})
	registerAction(&ActionDef{Kind: ActionSwallowAll, Name: "swallow_all", Run: runSwallowAll})
	registerAction(&ActionDef{Kind: ActionReceiveStatus, Name: "receive_status",
		Params: []ParamDef{c("status", ParamString)}, Run: runReceiveStatus})
	registerAction(&ActionDef{Kind: ActionRemoveStatus, Name: "remove_status",
		Params: []ParamDef{c("status", ParamString)}, Run: runRemoveStatus})
	registerAction(&ActionDef{Kind: ActionPlaySound, Name: "play_sound",
		Params: []ParamDef{c("sound", ParamString), {Name: "destination", Type: ParamString, ForceConst: true, Variadic: true}},
		Run:    runPlaySound})
	registerAction(&ActionDef{Kind: ActionStopSound, Name: "stop_sound",
		Params: []ParamDef{p("sound", ParamString)}, Run: runStopSound})
	registerAction(&ActionDef{Kind: ActionPrint, Name: "print",
		Params: []ParamDef{tail("text", ParamString)}, Run: runPrint})
}

// loadReachName only records the name; the FSM builder checks it against
// the type's declared reaches once those are known.
func loadReachName(call *ActionCall) error {
	if call.Owner != nil {
		call.Owner.pendingReachRefs = append(call.Owner.pendingReachRefs, call)
	}
	return nil
}
