package engine

import "github.com/couchparty/core/reducer"

// Observers are optional hooks an embedder can set to watch engine
// activity without altering it. Every callback runs on the engine's
// single goroutine (see engine.go) and must not block or call back into
// the engine synchronously.
//
// A nil callback is simply skipped.
type Observers struct {
	OnListening    func(port int)
	OnPlayerJoined func(playerID, name string)
	OnPlayerLeft   func(playerID string)
	OnAssetsLoaded func(connID string)
	OnStateChange  func(old, new reducer.State)
	OnError        func(err error)
}

func (o Observers) listening(port int) {
	if o.OnListening != nil {
		o.OnListening(port)
	}
}

func (o Observers) playerJoined(playerID, name string) {
	if o.OnPlayerJoined != nil {
		o.OnPlayerJoined(playerID, name)
	}
}

func (o Observers) playerLeft(playerID string) {
	if o.OnPlayerLeft != nil {
		o.OnPlayerLeft(playerID)
	}
}

func (o Observers) assetsLoaded(connID string) {
	if o.OnAssetsLoaded != nil {
		o.OnAssetsLoaded(connID)
	}
}

func (o Observers) stateChange(old, next reducer.State) {
	if o.OnStateChange != nil {
		o.OnStateChange(old, next)
	}
}

func (o Observers) error(err error) {
	if o.OnError != nil {
		o.OnError(err)
	}
}
