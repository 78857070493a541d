// Command buzzer-demo is a minimal embedding example: a lock-out buzzer
// game. The first BUZZ locks the board and records the buzzing player's
// ID; later BUZZes are ignored until a RESET action reopens it. The
// reducer does not check who sends either action.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchparty/core/engine"
	"github.com/couchparty/core/party"
	"github.com/couchparty/core/reducer"
)

func buzzerReducer(state reducer.State, action reducer.Action) reducer.State {
	switch action.Type {
	case "BUZZ":
		if state.Extra["lockedBy"] != nil {
			return state // board already locked, ignore
		}
		extra := cloneExtra(state.Extra)
		extra["lockedBy"] = action.PlayerID
		return reducer.State{Status: "locked", Players: state.Players, Extra: extra}

	case "RESET":
		extra := cloneExtra(state.Extra)
		delete(extra, "lockedBy")
		return reducer.State{Status: "open", Players: state.Players, Extra: extra}

	default:
		return state
	}
}

func cloneExtra(extra map[string]any) map[string]any {
	out := make(map[string]any, len(extra)+1)
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg := party.DefaultConfig()
	observers := engine.Observers{
		OnListening: func(port int) {
			logger.Info("buzzer party listening", "port", port)
		},
		OnPlayerJoined: func(playerID, name string) {
			logger.Info("player joined", "playerId", playerID, "name", name)
		},
		OnPlayerLeft: func(playerID string) {
			logger.Info("player left", "playerId", playerID)
		},
		OnStateChange: func(old, next reducer.State) {
			logger.Debug("state changed", "status", next.Status)
		},
		OnError: func(err error) {
			logger.Error("party error", "err", err)
		},
	}

	initial := reducer.State{Status: "open", Players: map[string]reducer.Player{}, Extra: map[string]any{}}
	p := party.New(cfg, buzzerReducer, initial, observers)

	if err := p.Start(); err != nil {
		logger.Error("failed to start party", "err", err)
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	p.Stop()
}
