package sim

import (
	"math"
	"strconv"

	"github.com/jakecoffman/cp"

	"github.com/thicket-engine/thicket/common"
)

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// triggerMob extracts the mob that caused the running event, if any.
func triggerMob(data *RunData) *Mob {
	switch p := data.Custom1.(type) {
	case *Mob:
		return p
	case *HitboxInteraction:
		return p.Other
	case string:
		// Hazard events carry the interaction in the second payload.
		if hi, ok := data.Custom2.(*HitboxInteraction); ok {
			return hi.Other
		}
	}
	return nil
}

func targetMob(data *RunData, sel int) *Mob {
	m := data.Mob
	switch sel {
	case targetSelf:
		return m
	case targetFocus:
		return m.FocusedMob()
	case targetTrigger:
		return triggerMob(data)
	case targetLink:
		if len(m.LinkIDs) > 0 {
			return data.Sim.MobByID(m.LinkIDs[0])
		}
	case targetParent:
		return data.Sim.MobByID(m.ParentID)
	}
	return nil
}

func runSetState(data *RunData) {
	data.Frame.nextState = data.Args[0]
	data.Frame.hasNext = true
}

func runSetVar(data *RunData) {
	data.Mob.SetVar(data.Args[0], data.Args[1])
}

func runGetFocusVar(data *RunData) {
	f := data.Mob.FocusedMob()
	if f == nil {
		return
	}
	data.Mob.SetVar(data.Args[0], f.Var(data.Args[1]))
}

func runCalculate(data *RunData) {
	lhs := floatArg(data.Args, 1)
	rhs := floatArg(data.Args, 3)
	var out float64
	switch enumArg(data.Args, 2) {
	case calcOpSum:
		out = lhs + rhs
	case calcOpSubtract:
		out = lhs - rhs
	case calcOpMultiply:
		out = lhs * rhs
	case calcOpDivide:
		if rhs == 0 {
			out = 0
		} else {
			out = lhs / rhs
		}
	case calcOpModulo:
		if rhs == 0 {
			out = 0
		} else {
			out = math.Mod(lhs, rhs)
		}
	default:
		return
	}
	data.Mob.SetVar(data.Args[0], fmtFloat(out))
}

func runEval(data *RunData) {
	prog := data.Call.evalProg
	if prog == nil {
		return
	}
	clone := prog.Clone()
	vars := make(map[string]any, len(data.Mob.Vars))
	for k, v := range data.Mob.Vars {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			vars[k] = f
		} else {
			vars[k] = v
		}
	}
	if err := clone.Set("vars", vars); err != nil {
		return
	}
	if err := clone.Run(); err != nil {
		data.Sim.log.Debug().Str("type", data.Mob.Type.Name).Err(err).
			Msg("eval action failed")
		return
	}
	data.Mob.SetVar(data.Args[0], clone.Get("__result").String())
}

func runGetRandomFloat(data *RunData) {
	lo, hi := floatArg(data.Args, 1), floatArg(data.Args, 2)
	if hi < lo {
		lo, hi = hi, lo
	}
	data.Mob.SetVar(data.Args[0], fmtFloat(lo+data.Sim.rng.Float64()*(hi-lo)))
}

func runGetRandomInt(data *RunData) {
	lo, hi := intArg(data.Args, 1), intArg(data.Args, 2)
	if hi < lo {
		lo, hi = hi, lo
	}
	data.Mob.SetVar(data.Args[0], strconv.Itoa(lo+data.Sim.rng.IntN(hi-lo+1)))
}

func runGetAngle(data *RunData) {
	from := cp.Vector{X: floatArg(data.Args, 1), Y: floatArg(data.Args, 2)}
	to := cp.Vector{X: floatArg(data.Args, 3), Y: floatArg(data.Args, 4)}
	data.Mob.SetVar(data.Args[0], fmtFloat(common.Angle(from, to)))
}

func runGetDistance(data *RunData) {
	from := cp.Vector{X: floatArg(data.Args, 1), Y: floatArg(data.Args, 2)}
	to := cp.Vector{X: floatArg(data.Args, 3), Y: floatArg(data.Args, 4)}
	d := common.DistBetween(from, to)
	data.Mob.SetVar(data.Args[0], fmtFloat(d.Float()))
}

func runGetCoordinatesFromAngle(data *RunData) {
	v := common.AngleToCoordinates(floatArg(data.Args, 2), floatArg(data.Args, 3))
	data.Mob.SetVar(data.Args[0], fmtFloat(v.X))
	data.Mob.SetVar(data.Args[1], fmtFloat(v.Y))
}

func runGetMobInfo(data *RunData) {
	t := targetMob(data, enumArg(data.Args, 1))
	if t == nil {
		return
	}
	var out string
	switch enumArg(data.Args, 2) {
	case mobInfoX:
		out = fmtFloat(t.Pos.X)
	case mobInfoY:
		out = fmtFloat(t.Pos.Y)
	case mobInfoZ:
		out = fmtFloat(t.Z)
	case mobInfoAngle:
		out = fmtFloat(t.Angle)
	case mobInfoHealth:
		out = fmtFloat(t.Health)
	case mobInfoHealthRatio:
		if t.Type.MaxHealth > 0 {
			out = fmtFloat(t.Health / t.Type.MaxHealth)
		} else {
			out = "0"
		}
	case mobInfoID:
		out = strconv.FormatUint(uint64(t.ID), 10)
	case mobInfoState:
		out = t.StateName()
	case mobInfoWeight:
		out = fmtFloat(t.Type.Weight)
	case mobInfoChomped:
		out = strconv.Itoa(t.ChompedCount())
	case mobInfoLatched:
		out = strconv.Itoa(t.LatchedCount())
	case mobInfoFocusDistance:
		f := t.FocusedMob()
		if f == nil {
			return
		}
		d := common.DistBetween(t.Pos, f.Pos)
		out = fmtFloat(d.Float())
	case mobInfoGroupTaskPower:
		if t.GroupTask == nil {
			return
		}
		out = fmtFloat(t.GroupTask.Power)
	case mobInfoCategory:
		out = t.Type.Category.String()
	case mobInfoType:
		out = t.Type.Name
	default:
		return
	}
	data.Mob.SetVar(data.Args[0], out)
}

func runGetEventInfo(data *RunData) {
	var out string
	switch enumArg(data.Args, 1) {
	case eventInfoMessage:
		if msg, ok := data.Custom2.(string); ok {
			out = msg
		}
	case eventInfoBodyPart:
		if hi, ok := hitboxPayload(data); ok && hi.H1 != nil {
			out = hi.H1.Name
		}
	case eventInfoOtherBodyPart:
		if hi, ok := hitboxPayload(data); ok && hi.H2 != nil {
			out = hi.H2.Name
		}
	case eventInfoHazard:
		if hz, ok := data.Custom1.(string); ok {
			out = hz
		}
	case eventInfoFrameSignal:
		if sig, ok := data.Custom2.(int); ok {
			out = strconv.Itoa(sig)
		}
	default:
		return
	}
	data.Mob.SetVar(data.Args[0], out)
}

func hitboxPayload(data *RunData) (*HitboxInteraction, bool) {
	if hi, ok := data.Custom1.(*HitboxInteraction); ok {
		return hi, true
	}
	hi, ok := data.Custom2.(*HitboxInteraction)
	return hi, ok
}

func runGetAreaInfo(data *RunData) {
	switch enumArg(data.Args, 1) {
	case areaInfoDayMinutes:
		data.Mob.SetVar(data.Args[0], fmtFloat(data.Sim.DayMinutes))
	case areaInfoFieldMinions:
		data.Mob.SetVar(data.Args[0], strconv.Itoa(data.Sim.FieldMinionCount()))
	}
}

func runGetFloorZ(data *RunData) {
	z := 0.0
	if data.Sim.Floor != nil {
		z = data.Sim.Floor.FloorZ(floatArg(data.Args, 1), floatArg(data.Args, 2))
	}
	data.Mob.SetVar(data.Args[0], fmtFloat(z))
}

func runMoveToAbsolute(data *RunData) {
	data.Mob.ChaseTo(cp.Vector{X: floatArg(data.Args, 0), Y: floatArg(data.Args, 1)})
}

func runMoveToRelative(data *RunData) {
	off := cp.Vector{X: floatArg(data.Args, 0), Y: floatArg(data.Args, 1)}
	m := data.Mob
	m.ChaseTo(m.Pos.Add(off.Rotate(cp.ForAngle(m.Angle))))
}

func runMoveToTarget(data *RunData) {
	m := data.Mob
	switch enumArg(data.Args, 0) {
	case moveTargetFocus:
		if m.FocusID != 0 {
			m.ChaseMob(m.FocusID, false)
		}
	case moveTargetFocusPos:
		if f := m.FocusedMob(); f != nil {
			m.ChaseTo(f.Pos)
		}
	case moveTargetAwayFromFocus:
		if m.FocusID != 0 {
			m.ChaseMob(m.FocusID, true)
		}
	case moveTargetHome:
		m.ChaseTo(m.Home)
	case moveTargetLinkedAverage:
		if len(m.LinkIDs) == 0 {
			return
		}
		sum := cp.Vector{}
		n := 0
		for _, id := range m.LinkIDs {
			if l := data.Sim.MobByID(id); l != nil {
				sum = sum.Add(l.Pos)
				n++
			}
		}
		if n > 0 {
			m.ChaseTo(sum.Mult(1 / float64(n)))
		}
	}
}

func runStop(data *RunData) {
	data.Mob.StopChase()
}

func runTeleportToAbsolute(data *RunData) {
	data.Mob.Teleport(
		cp.Vector{X: floatArg(data.Args, 0), Y: floatArg(data.Args, 1)},
		floatArg(data.Args, 2))
}

func runTeleportToRelative(data *RunData) {
	m := data.Mob
	off := cp.Vector{X: floatArg(data.Args, 0), Y: floatArg(data.Args, 1)}
	m.Teleport(m.Pos.Add(off.Rotate(cp.ForAngle(m.Angle))), m.Z+floatArg(data.Args, 2))
}

func runTurnToAbsolute(data *RunData) {
	data.Mob.Face(floatArg(data.Args, 0))
}

func runTurnToRelative(data *RunData) {
	data.Mob.Face(data.Mob.Angle + floatArg(data.Args, 0))
}

func runTurnToTarget(data *RunData) {
	m := data.Mob
	switch enumArg(data.Args, 0) {
	case turnTargetFocus:
		if f := m.FocusedMob(); f != nil {
			m.Face(common.Angle(m.Pos, f.Pos))
		}
	case turnTargetHome:
		m.Face(common.Angle(m.Pos, m.Home))
	}
}

func runFollowPathToAbsolute(data *RunData) {
	data.Sim.startPath(data.Mob,
		cp.Vector{X: floatArg(data.Args, 0), Y: floatArg(data.Args, 1)})
}

func runFollowPathRandomly(data *RunData) {
	m := data.Mob
	dist := floatArg(data.Args, 0)
	angle := data.Sim.rng.Float64() * common.Tau
	goal := m.Pos.Add(common.AngleToCoordinates(angle, dist))
	if tr := m.Type.TerritoryRadius; tr > 0 {
		if common.DistBetween(m.Home, goal).MoreThan(tr) {
			goal = m.Home.Add(common.AngleToCoordinates(common.Angle(m.Home, goal), tr))
		}
	}
	data.Sim.startPath(m, goal)
}

func runAddHealth(data *RunData) {
	data.Mob.AddHealth(floatArg(data.Args, 0))
}

func runSetHealth(data *RunData) {
	data.Mob.SetHealth(floatArg(data.Args, 0))
}

func runStartDying(data *RunData) {
	data.Mob.StartDying()
}

func runFinishDying(data *RunData) {
	data.Mob.FinishDying()
}

func runDelete(data *RunData) {
	data.Mob.Delete()
}

func runSetTimer(data *RunData) {
	data.Mob.SetTimer(floatArg(data.Args, 0))
}

func runSetAnimation(data *RunData) {
	m := data.Mob
	idx := m.Type.AnimationIndex(data.Args[0])
	if idx < 0 {
		data.Sim.log.Debug().Str("type", m.Type.Name).Str("animation", data.Args[0]).
			Msg("set_animation to unknown animation")
		return
	}
	noRestart := false
	for _, opt := range data.Args[1:] {
		if opt == "no_restart" {
			noRestart = true
		}
	}
	m.SetAnimation(idx, noRestart)
}

func runSetRadius(data *RunData) {
	data.Mob.Radius = floatArg(data.Args, 0)
}

func runSetHeight(data *RunData) {
	data.Mob.Height = floatArg(data.Args, 0)
}

func runSetNearReach(data *RunData) {
	data.Mob.NearReachIdx = data.Mob.Type.ReachIndex(data.Args[0])
}

func runSetFarReach(data *RunData) {
	data.Mob.FarReachIdx = data.Mob.Type.ReachIndex(data.Args[0])
}

func runSetTeam(data *RunData) {
	if t := enumArg(data.Args, 0); t >= 0 && t < int(teamCount) {
		data.Mob.Team = Team(t)
	}
}

func runSetTangible(data *RunData) {
	data.Mob.set(flagTangible, boolArg(data.Args, 0))
}

func runSetHuntable(data *RunData) {
	data.Mob.set(flagHuntable, boolArg(data.Args, 0))
}

func runSetHoldable(data *RunData) {
	data.Mob.set(flagHoldable, boolArg(data.Args, 0))
}

func runSetHiding(data *RunData) {
	data.Mob.set(flagHiding, boolArg(data.Args, 0))
}

func runSetFlying(data *RunData) {
	data.Mob.set(flagFlying, boolArg(data.Args, 0))
}

func runFocus(data *RunData) {
	if t := targetMob(data, enumArg(data.Args, 0)); t != nil {
		data.Mob.Focus(t.ID)
	}
}

func runSpawn(data *RunData) {
	data.Sim.SpawnChild(data.Mob, data.Args[0])
}

func runSendMessageToFocus(data *RunData) {
	if f := data.Mob.FocusedMob(); f != nil {
		data.Sim.SendMessage(data.Mob, f, data.Args[0])
	}
}

func runSendMessageToLinks(data *RunData) {
	for _, id := range data.Mob.LinkIDs {
		if l := data.Sim.MobByID(id); l != nil {
			data.Sim.SendMessage(data.Mob, l, data.Args[0])
		}
	}
}

func runSendMessageToNearby(data *RunData) {
	m := data.Mob
	dist := floatArg(data.Args, 0)
	msg := data.Args[1]
	for _, other := range data.Sim.Mobs() {
		if other == m || other.ToDelete() {
			continue
		}
		if common.DistBetween(m.Pos, other.Pos).LessOrEqual(dist) {
			data.Sim.SendMessage(m, other, msg)
		}
	}
}

func runLinkWithFocus(data *RunData) {
	if data.Mob.FocusID != 0 {
		data.Mob.Link(data.Mob.FocusID)
	}
}

func runSaveFocusMemory(data *RunData) {
	data.Mob.SaveFocusMemory()
}

func runLoadFocusMemory(data *RunData) {
	data.Mob.LoadFocusMemory()
}

func runHoldFocus(data *RunData) {
	data.Mob.Hold(data.Mob.FocusedMob(), data.Args[0])
}

func runRelease(data *RunData) {
	data.Mob.ReleaseAll()
}

func runOrderRelease(data *RunData) {
	data.Mob.OrderRelease()
}

func runStoreFocusInside(data *RunData) {
	data.Mob.StoreInside(data.Mob.FocusedMob())
}

func runReleaseStoredMobs(data *RunData) {
	data.Mob.ReleaseStoredMobs()
}

func runGetChomped(data *RunData) {
	data.Mob.GetChomped(triggerMob(data))
}

func runStartChomping(data *RunData) {
	data.Mob.StartChomping(intArg(data.Args, 0), data.Args[1:])
}

func runStopChomping(data *RunData) {
	data.Mob.StopChomping()
}

func runSwallowAll(data *RunData) {
	data.Mob.SwallowAll()
}

func runReceiveStatus(data *RunData) {
	data.Mob.ApplyStatus(data.Sim.StatusType(data.Args[0]))
}

func runRemoveStatus(data *RunData) {
	data.Mob.RemoveStatus(data.Args[0])
}

func runPlaySound(data *RunData) {
	if data.Sim.Sound == nil {
		return
	}
	handle := data.Sim.Sound.Play(data.Args[0])
	if len(data.Args) > 1 {
		data.Mob.SetVar(data.Args[1], strconv.Itoa(handle))
	}
}

func runStopSound(data *RunData) {
	if data.Sim.Sound == nil {
		return
	}
	data.Sim.Sound.Stop(intArg(data.Args, 0))
}

func runPrint(data *RunData) {
	m := data.Mob
	line := ""
	for i, a := range data.Args {
		if i > 0 {
			line += " "
		}
		line += a
	}
	data.Sim.log.Info().Str("type", m.Type.Name).Uint64("id", uint64(m.ID)).
		Str("state", m.StateName()).Msg(line)
}
