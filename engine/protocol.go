package engine

import (
	"encoding/json"

	"github.com/couchparty/core/reducer"
)

// messageKind distinguishes the four inbound message shapes this layer
// accepts, once parseMessage has confirmed one of them matches.
type messageKind int

const (
	kindJoin messageKind = iota
	kindAction
	kindPing
	kindAssetsLoaded
)

// inbound is a structurally validated client message, carrying only the
// payload relevant to its kind.
type inbound struct {
	kind   messageKind
	join   joinPayload
	action actionPayload
	ping   pingPayload
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Secret string `json:"secret"`
}

type actionPayload struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type pingPayload struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
}

// parseOutcome distinguishes why parseMessage could not produce an
// inbound message, since the protocol treats the two failure modes
// differently: a frame that isn't JSON at all is a transport-transient
// failure (discard the frame, connection survives, no reply), while
// JSON that doesn't match one of the four known shapes is a protocol
// violation (INVALID_MESSAGE).
type parseOutcome int

const (
	parseOK parseOutcome = iota
	// parseMalformedJSON means raw wasn't valid JSON at the envelope
	// level: the bytes themselves are garbled, not merely the wrong
	// shape.
	parseMalformedJSON
	// parseInvalidShape means raw parsed as JSON but didn't match any
	// of the four known message shapes (unknown type, missing or
	// mistyped required field).
	parseInvalidShape
)

// parseMessage validates raw bytes against the four known wire shapes.
// A non-JSON frame and a well-formed-but-wrong-shape frame are reported
// as distinct outcomes; see parseOutcome.
func parseMessage(raw []byte) (inbound, parseOutcome) {
	if !json.Valid(raw) {
		return inbound{}, parseMalformedJSON
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return inbound{}, parseInvalidShape
	}

	switch env.Type {
	case "JOIN":
		var p joinPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.Secret == "" {
			return inbound{}, parseInvalidShape
		}
		return inbound{kind: kindJoin, join: p}, parseOK

	case "ACTION":
		var p actionPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.Type == "" {
			return inbound{}, parseInvalidShape
		}
		return inbound{kind: kindAction, action: p}, parseOK

	case "PING":
		var p pingPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.ID == "" {
			return inbound{}, parseInvalidShape
		}
		return inbound{kind: kindPing, ping: p}, parseOK

	case "ASSETS_LOADED":
		var loaded bool
		if err := json.Unmarshal(env.Payload, &loaded); err != nil || !loaded {
			return inbound{}, parseInvalidShape
		}
		return inbound{kind: kindAssetsLoaded}, parseOK

	default:
		return inbound{}, parseInvalidShape
	}
}

// outboundEnvelope is the Host -> Client counterpart of envelope. Its
// Payload is a plain any (not json.RawMessage) since outbound payloads are
// always one of this package's own concrete structs, marshaled directly.
type outboundEnvelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Payload shapes named in the wire format, one per Host -> Client message.
type welcomePayload struct {
	PlayerID   string        `json:"playerId"`
	State      reducer.State `json:"state"`
	ServerTime int64         `json:"serverTime"`
}

type stateUpdatePayload struct {
	NewState  reducer.State `json:"newState"`
	Timestamp int64         `json:"timestamp"`
}

type pongPayload struct {
	ID            string `json:"id"`
	OrigTimestamp int64  `json:"origTimestamp"`
	ServerTime    int64  `json:"serverTime"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
