package engine

import "testing"

func TestParseMessageJoin(t *testing.T) {
	msg, outcome := parseMessage([]byte(`{"type":"JOIN","payload":{"name":"Ann","secret":"aaaa"}}`))
	if outcome != parseOK || msg.kind != kindJoin {
		t.Fatalf("outcome=%v kind=%v", outcome, msg.kind)
	}
	if msg.join.Name != "Ann" || msg.join.Secret != "aaaa" {
		t.Fatalf("join = %+v", msg.join)
	}
}

func TestParseMessageJoinRequiresSecret(t *testing.T) {
	_, outcome := parseMessage([]byte(`{"type":"JOIN","payload":{"name":"Ann"}}`))
	if outcome != parseInvalidShape {
		t.Fatalf("expected JOIN with no secret to be an invalid shape, got %v", outcome)
	}
}

func TestParseMessageActionRequiresType(t *testing.T) {
	_, outcome := parseMessage([]byte(`{"type":"ACTION","payload":{}}`))
	if outcome != parseInvalidShape {
		t.Fatalf("expected ACTION with no inner type to be an invalid shape, got %v", outcome)
	}
}

func TestParseMessagePing(t *testing.T) {
	msg, outcome := parseMessage([]byte(`{"type":"PING","payload":{"id":"p1","timestamp":42}}`))
	if outcome != parseOK || msg.kind != kindPing || msg.ping.ID != "p1" || msg.ping.Timestamp != 42 {
		t.Fatalf("outcome=%v msg=%+v", outcome, msg)
	}
}

func TestParseMessageAssetsLoadedMustBeTrue(t *testing.T) {
	if _, outcome := parseMessage([]byte(`{"type":"ASSETS_LOADED","payload":false}`)); outcome != parseInvalidShape {
		t.Fatalf("expected ASSETS_LOADED:false to be an invalid shape, got %v", outcome)
	}
	msg, outcome := parseMessage([]byte(`{"type":"ASSETS_LOADED","payload":true}`))
	if outcome != parseOK || msg.kind != kindAssetsLoaded {
		t.Fatalf("outcome=%v msg=%+v", outcome, msg)
	}
}

func TestParseMessageUnknownTypeInvalid(t *testing.T) {
	if _, outcome := parseMessage([]byte(`{"type":"SOMETHING_ELSE","payload":{}}`)); outcome != parseInvalidShape {
		t.Fatalf("expected unknown type to be an invalid shape, got %v", outcome)
	}
}

// A frame that isn't JSON at all is a distinct, quieter failure mode from
// a well-formed-but-wrong-shape message: per the wire protocol it is
// discarded silently (no ERROR reply), not reported as INVALID_MESSAGE.
func TestParseMessageNotJSONIsMalformed(t *testing.T) {
	if _, outcome := parseMessage([]byte(`not json`)); outcome != parseMalformedJSON {
		t.Fatalf("expected non-JSON to be reported as malformed, got %v", outcome)
	}
}
