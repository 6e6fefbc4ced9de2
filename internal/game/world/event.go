package world

import (
	"strings"
	"time"
)

// Act names a kind of event raised in a room.
type Act string

const (
	ActLook                  Act = "look"
	ActGet                   Act = "get"
	ActDrop                  Act = "drop"
	ActPut                   Act = "put"
	ActTake                  Act = "take"
	ActWear                  Act = "wear"
	ActUnwear                Act = "unwear"
	ActUse                   Act = "use"
	ActLeave                 Act = "leave"
	ActArrive                Act = "arrive"
	ActSay                   Act = "say"
	ActShout                 Act = "shout"
	ActEmote                 Act = "emote"
	ActQuit                  Act = "quit"
	ActFollow                Act = "follow"
	ActLock                  Act = "lock"
	ActDig                   Act = "dig"
	ActTeleport              Act = "teleport"
	ActTeleportCharacterAway Act = "teleport_character_away"
	ActTeleportCharacterIn   Act = "teleport_character_in"
	ActTeleportItemAway      Act = "teleport_item_away"
	ActTeleportItemIn        Act = "teleport_item_in"
	ActSleep                 Act = "sleep"
	ActAwake                 Act = "awake"
	ActCloneItem             Act = "clone_item"
	ActCloneMob              Act = "clone_mob"
	ActDestroyItem           Act = "destroy_item"
	ActDestroyMob            Act = "destroy_mob"
	ActAppear                Act = "appear"
	ActDisappear             Act = "disappear"
)

// Lock outcomes carried in Event.Outcome.
const (
	OutcomeLock   = "lock"
	OutcomeUnlock = "unlock"
	OutcomeFail   = "fail"
)

// Event describes something that happened in a room. Object fields hold ids
// so a deferred event never keeps a destroyed object alive; handlers resolve
// them through the world when they run.
type Event struct {
	Act   Act
	Actor ID

	Item      ID
	Target    ID
	Container ID
	Character ID
	Exit      ID
	Key       ID

	// Verb is say, ask or exclaim for speech.
	Verb string
	// Text carries spoken or emoted words.
	Text string
	// Custom replaces the default observer message. "{actor}" and
	// "{target}" are substituted.
	Custom string
	// Outcome is one of the Outcome constants for lock events.
	Outcome string

	// Delay overrides the world's default action delay when positive.
	Delay time.Duration
	// Spread is the number of further rooms the event travels through.
	Spread int
	// FromRoom is the room a spread event arrived from.
	FromRoom ID
	// FromExit is the exit in the receiving room that leads back toward
	// where a spread event came from.
	FromExit ID
}

// Reactions maps an act to the handler an object runs when that act happens
// nearby.
type Reactions map[Act]func(ev *Event)

// With returns a copy of r with every handler in other added, replacing
// handlers for the same act.
func (r Reactions) With(other Reactions) Reactions {
	out := make(Reactions, len(r)+len(other))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// ActionFilter is implemented by rooms that veto events before they
// propagate. AllowAction returns false to suppress the event.
type ActionFilter interface {
	AllowAction(ev *Event) bool
}

// SpeechVerb picks the speech verb for text from its final punctuation.
func SpeechVerb(text string) string {
	switch {
	case strings.HasSuffix(text, "?"):
		return "ask"
	case strings.HasSuffix(text, "!"):
		return "exclaim"
	}
	return "say"
}
