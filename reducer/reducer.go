package reducer

// Reserved action types. These are the only action type strings a user
// reducer must never see and must never be allowed to submit itself — the
// protocol glue layer rejects any inbound ACTION whose type matches one of
// these before it is ever dispatched.
const (
	Hydrate           = "__HYDRATE__"
	PlayerJoined      = "__PLAYER_JOINED__"
	PlayerLeft        = "__PLAYER_LEFT__"
	PlayerReconnected = "__PLAYER_RECONNECTED__"
	PlayerRemoved     = "__PLAYER_REMOVED__"
)

// Action is one unit of state mutation. PlayerID is populated by the
// engine for user actions (resolved from the submitting connection's
// session, or empty if the client acted before joining); it is never set
// by the wire message itself.
type Action struct {
	Type     string
	Payload  any
	PlayerID string
}

// JoinedPayload is the Payload of a PlayerJoined action.
type JoinedPayload struct {
	ID     string
	Name   string
	Avatar string
}

// PlayerIDPayload is the Payload of PlayerLeft, PlayerReconnected, and
// PlayerRemoved actions — all three only need to name which player.
type PlayerIDPayload struct {
	ID string
}

// Func is a user reduction function: given the current state and an
// action, it returns the next state. It must be pure and total — see
// IsReserved for how the core keeps its own action types out of a user
// reducer's switch statement.
type Func func(state State, action Action) State

// IsReserved reports whether actionType is one of the lifecycle types this
// package handles internally. Protocol glue uses this to reject any
// inbound ACTION attempting to spoof a lifecycle event.
func IsReserved(actionType string) bool {
	switch actionType {
	case Hydrate, PlayerJoined, PlayerLeft, PlayerReconnected, PlayerRemoved:
		return true
	default:
		return false
	}
}

// Wrap composes a user reducer with the built-in lifecycle handling
// described in the package doc. The returned function is pure, exactly
// like the Func it wraps.
func Wrap(user Func) Func {
	return func(state State, action Action) State {
		switch action.Type {
		case Hydrate:
			if next, ok := action.Payload.(State); ok {
				return next
			}
			return state

		case PlayerJoined:
			p, ok := action.Payload.(JoinedPayload)
			if !ok {
				return state
			}
			players := state.clonePlayers()
			players[p.ID] = Player{ID: p.ID, Name: p.Name, Avatar: p.Avatar, IsHost: false, Connected: true}
			return state.with(players)

		case PlayerLeft:
			p, ok := action.Payload.(PlayerIDPayload)
			if !ok {
				return state
			}
			existing, found := state.Players[p.ID]
			if !found {
				return state
			}
			players := state.clonePlayers()
			existing.Connected = false
			players[p.ID] = existing
			return state.with(players)

		case PlayerReconnected:
			p, ok := action.Payload.(PlayerIDPayload)
			if !ok {
				return state
			}
			existing, found := state.Players[p.ID]
			if !found {
				return state
			}
			players := state.clonePlayers()
			existing.Connected = true
			players[p.ID] = existing
			return state.with(players)

		case PlayerRemoved:
			p, ok := action.Payload.(PlayerIDPayload)
			if !ok {
				return state
			}
			if _, found := state.Players[p.ID]; !found {
				return state
			}
			players := state.clonePlayers()
			delete(players, p.ID)
			return state.with(players)

		default:
			return user(state, action)
		}
	}
}
