// Package session owns the identity side of a game session: validating the
// client-supplied secret, deriving the stable public player ID from it, and
// tracking which connection currently owns which secret across reconnects.
//
// Every exported method here is meant to be called from a single goroutine
// (the engine thread described in the core's concurrency model) — nothing
// in this package takes a lock.
package session

import "strings"

// minSecretHexChars is the shortest secret this server accepts, after
// dashes are stripped. 32 hex characters is 128 bits of entropy, which is
// plenty for an opaque client-generated anchor that is never used
// cryptographically — it only needs to be hard to guess and cheap to
// generate in a browser.
const minSecretHexChars = 32

// playerIDHexChars is how much of the (dash-stripped) secret becomes the
// public player ID. This is deliberately not a hash: the goal is only to
// avoid broadcasting the raw secret to other players, not to produce a
// cryptographically independent identifier.
const playerIDHexChars = 16

// ValidSecret reports whether s meets the wire format required of a
// session secret: at least minSecretHexChars hex digits once dashes are
// removed, and nothing but hex digits and dashes.
func ValidSecret(s string) bool {
	stripped := strings.ReplaceAll(s, "-", "")
	if len(stripped) < minSecretHexChars {
		return false
	}
	for _, r := range stripped {
		if !isHexDigit(r) {
			return false
		}
	}
	return true
}

// DerivePlayerID returns the stable, publicly broadcast player ID for a
// secret. The same secret always derives the same player ID, which is what
// lets a device rejoin a game after a disconnect or page refresh.
//
// Callers must validate the secret with ValidSecret first; DerivePlayerID
// does not itself check length.
func DerivePlayerID(secret string) string {
	stripped := strings.ToLower(strings.ReplaceAll(secret, "-", ""))
	if len(stripped) > playerIDHexChars {
		stripped = stripped[:playerIDHexChars]
	}
	return stripped
}

func isHexDigit(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'f':
		return true
	case r >= 'A' && r <= 'F':
		return true
	default:
		return false
	}
}
