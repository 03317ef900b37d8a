package sim

import "fmt"

// EventType names an occurrence that can trigger action-list execution.
// The set is closed: scripts may only handle events listed here.
type EventType uint8

const (
	EventUnknown EventType = iota

	// Lifecycle.
	EventOnEnter
	EventOnLeave
	EventOnTick
	EventOnTimer
	EventOnAnimationEnd
	EventOnDeath

	// Contact.
	EventOnTouchObject
	EventOnTouchOpponent
	EventOnHitboxTouchAN
	EventOnHitboxTouchNA
	EventOnHitboxTouchNN
	EventOnHitboxTouchEat
	EventOnTouchedHazard
	EventOnDamage

	// Noticing.
	EventOnObjectInReach
	EventOnOpponentInReach
	EventOnFocusOffReach
	EventOnNearCarriable
	EventOnNearTool
	EventOnNearGroupTask
	EventOnTouchedActiveLeader

	// Messaging and holding.
	EventOnReceiveMessage
	EventOnHeld
	EventOnReleased

	// Path following.
	EventOnReachedDestination
	EventOnPathBlocked

	eventCount
)

var eventNames = map[EventType]string{
	EventOnEnter:               "on_enter",
	EventOnLeave:               "on_leave",
	EventOnTick:                "on_tick",
	EventOnTimer:               "on_timer",
	EventOnAnimationEnd:        "on_animation_end",
	EventOnDeath:               "on_death",
	EventOnTouchObject:         "on_touch_object",
	EventOnTouchOpponent:       "on_touch_opponent",
	EventOnHitboxTouchAN:       "on_hitbox_touch_a_n",
	EventOnHitboxTouchNA:       "on_hitbox_touch_n_a",
	EventOnHitboxTouchNN:       "on_hitbox_touch_n_n",
	EventOnHitboxTouchEat:      "on_hitbox_touch_eat",
	EventOnTouchedHazard:       "on_touched_hazard",
	EventOnDamage:              "on_damage",
	EventOnObjectInReach:       "on_object_in_reach",
	EventOnOpponentInReach:     "on_opponent_in_reach",
	EventOnFocusOffReach:       "on_focus_off_reach",
	EventOnNearCarriable:       "on_near_carriable",
	EventOnNearTool:            "on_near_tool",
	EventOnNearGroupTask:       "on_near_group_task",
	EventOnTouchedActiveLeader: "on_touched_active_leader",
	EventOnReceiveMessage:      "on_receive_message",
	EventOnHeld:                "on_held",
	EventOnReleased:            "on_released",
	EventOnReachedDestination:  "on_reached_destination",
	EventOnPathBlocked:         "on_path_blocked",
}

var eventsByName = func() map[string]EventType {
	m := make(map[string]EventType, len(eventNames))
	for ev, name := range eventNames {
		m[name] = ev
	}
	return m
}()

func (e EventType) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", uint8(e))
}

// ParseEventType resolves a script event name. Unknown names are a
// load-time error for the caller.
func ParseEventType(name string) (EventType, error) {
	if ev, ok := eventsByName[name]; ok {
		return ev, nil
	}
	return EventUnknown, fmt.Errorf("unknown event %q", name)
}

// AllEventTypes returns every valid event, in declaration order.
func AllEventTypes() []EventType {
	out := make([]EventType, 0, int(eventCount)-1)
	for ev := EventOnEnter; ev < eventCount; ev++ {
		out = append(out, ev)
	}
	return out
}
