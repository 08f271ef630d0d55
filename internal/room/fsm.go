// internal/room/fsm.go
package room

import "fmt"

// State is the lifecycle phase of a room.
type State string

const (
	Waiting  State = "waiting"
	Playing  State = "playing"
	Finished State = "finished"
)

// Trigger is an event that moves a room between states.
type Trigger string

const (
	// TriggerStart fires when every player is ready and quorum is met.
	TriggerStart Trigger = "start"
	// TriggerFinish fires on a terminal move, the last competition report, or
	// a player leaving mid-game.
	TriggerFinish Trigger = "finish"
)

// transitions is the complete edge set. Anything absent is illegal.
var transitions = map[State]map[Trigger]State{
	Waiting: {TriggerStart: Playing},
	Playing: {TriggerFinish: Finished},
}

// Transition returns the state reached from s by t, or ErrIllegalTransition.
func Transition(s State, t Trigger) (State, error) {
	if next, ok := transitions[s][t]; ok {
		return next, nil
	}
	return s, fmt.Errorf("%w: %s from %s", ErrIllegalTransition, t, s)
}
