package reducer

import "testing"

func passthrough(state State, action Action) State { return state }

func TestWrapHydrateReplacesWholesale(t *testing.T) {
	wrapped := Wrap(passthrough)
	next := wrapped(New("lobby"), Action{Type: Hydrate, Payload: New("playing")})

	if next.Status != "playing" {
		t.Fatalf("Status = %q, want playing", next.Status)
	}
}

func TestWrapHydrateIgnoresWrongPayloadType(t *testing.T) {
	wrapped := Wrap(passthrough)
	before := New("lobby")
	next := wrapped(before, Action{Type: Hydrate, Payload: "not a state"})

	if next.Status != before.Status {
		t.Fatalf("Status changed on malformed hydrate payload")
	}
}

func TestWrapPlayerJoinedInserts(t *testing.T) {
	wrapped := Wrap(passthrough)
	next := wrapped(New("lobby"), Action{
		Type:    PlayerJoined,
		Payload: JoinedPayload{ID: "pid1", Name: "Ann", Avatar: "cat"},
	})

	p, ok := next.Players["pid1"]
	if !ok {
		t.Fatalf("player not inserted")
	}
	if p.ID != "pid1" || p.Name != "Ann" || p.Avatar != "cat" || p.IsHost || !p.Connected {
		t.Fatalf("player record = %+v", p)
	}
}

func TestWrapPlayerLeftMarksDisconnectedPreservesFields(t *testing.T) {
	state := New("lobby")
	state.Players["pid1"] = Player{ID: "pid1", Name: "Ann", Avatar: "cat", Connected: true}
	wrapped := Wrap(passthrough)

	next := wrapped(state, Action{Type: PlayerLeft, Payload: PlayerIDPayload{ID: "pid1"}})

	p := next.Players["pid1"]
	if p.Connected {
		t.Fatalf("player still connected after PlayerLeft")
	}
	if p.Name != "Ann" || p.Avatar != "cat" {
		t.Fatalf("other fields changed: %+v", p)
	}
}

func TestWrapPlayerLeftNoopWhenAbsent(t *testing.T) {
	state := New("lobby")
	wrapped := Wrap(passthrough)
	next := wrapped(state, Action{Type: PlayerLeft, Payload: PlayerIDPayload{ID: "ghost"}})

	if len(next.Players) != 0 {
		t.Fatalf("players changed on no-op left: %+v", next.Players)
	}
}

func TestWrapPlayerReconnectedPreservesFields(t *testing.T) {
	state := New("lobby")
	state.Players["pid1"] = Player{ID: "pid1", Name: "Ann", Avatar: "cat", Connected: false}
	wrapped := Wrap(passthrough)

	next := wrapped(state, Action{Type: PlayerReconnected, Payload: PlayerIDPayload{ID: "pid1"}})

	p := next.Players["pid1"]
	if !p.Connected {
		t.Fatalf("player not marked connected")
	}
	if p.Name != "Ann" || p.Avatar != "cat" {
		t.Fatalf("other fields changed: %+v", p)
	}
}

func TestWrapPlayerRemovedDeletes(t *testing.T) {
	state := New("lobby")
	state.Players["pid1"] = Player{ID: "pid1"}
	wrapped := Wrap(passthrough)

	next := wrapped(state, Action{Type: PlayerRemoved, Payload: PlayerIDPayload{ID: "pid1"}})

	if _, ok := next.Players["pid1"]; ok {
		t.Fatalf("player still present after removal")
	}
}

func TestWrapDelegatesUnknownActionsToUserReducer(t *testing.T) {
	var seen Action
	user := func(state State, action Action) State {
		seen = action
		state.Status = "buzzed"
		return state
	}
	wrapped := Wrap(user)
	next := wrapped(New("lobby"), Action{Type: "BUZZ"})

	if seen.Type != "BUZZ" {
		t.Fatalf("user reducer did not see action: %+v", seen)
	}
	if next.Status != "buzzed" {
		t.Fatalf("Status = %q", next.Status)
	}
}

func TestWrapDoesNotMutateOriginalState(t *testing.T) {
	state := New("lobby")
	state.Players["pid1"] = Player{ID: "pid1", Connected: true}
	wrapped := Wrap(passthrough)

	_ = wrapped(state, Action{Type: PlayerLeft, Payload: PlayerIDPayload{ID: "pid1"}})

	if !state.Players["pid1"].Connected {
		t.Fatalf("original state mutated in place, reducer must be pure")
	}
}

func TestIsReserved(t *testing.T) {
	for _, typ := range []string{Hydrate, PlayerJoined, PlayerLeft, PlayerReconnected, PlayerRemoved} {
		if !IsReserved(typ) {
			t.Errorf("IsReserved(%q) = false, want true", typ)
		}
	}
	if IsReserved("BUZZ") {
		t.Errorf("IsReserved(BUZZ) = true, want false")
	}
}
