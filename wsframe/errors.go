package wsframe

import "errors"

// Decode errors. All of them are transport-fatal: the caller must destroy
// the connection rather than try to resynchronize on the byte stream,
// since a malformed length or reserved opcode leaves no reliable frame
// boundary to recover from.
var (
	// ErrFramePayloadTooLarge covers both a declared length above the
	// configured maximum and a 64-bit length whose high bit is set
	// (RFC 6455 Section 5.2: the MSB of the 64-bit length must be 0).
	ErrFramePayloadTooLarge = errors.New("wsframe: frame payload too large")

	ErrReservedBits      = errors.New("wsframe: reserved bits must be zero")
	ErrInvalidOpcode     = errors.New("wsframe: invalid opcode")
	ErrControlFragmented = errors.New("wsframe: control frame must not be fragmented")
	ErrControlTooLarge   = errors.New("wsframe: control frame payload exceeds 125 bytes")
)
