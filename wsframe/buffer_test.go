package wsframe

import (
	"bytes"
	"testing"
)

func TestBufferAppendGrows(t *testing.T) {
	b := &Buffer{data: make([]byte, 4)}
	b.Append([]byte("hello world"))

	if b.Len() != 11 {
		t.Fatalf("Len() = %d, want 11", b.Len())
	}
	if !bytes.Equal(b.Bytes(), []byte("hello world")) {
		t.Fatalf("Bytes() = %q", b.Bytes())
	}
}

func TestBufferAppendSteadyStateNoRealloc(t *testing.T) {
	b := NewBuffer()
	before := cap(b.data)
	b.Append([]byte("small message"))
	b.Compact(b.Len())
	b.Append([]byte("another small message"))

	if cap(b.data) != before {
		t.Fatalf("capacity changed from %d to %d in steady state", before, cap(b.data))
	}
}

func TestBufferCompactRoundTrip(t *testing.T) {
	b := NewBuffer()
	original := []byte("0123456789")
	b.Append(original)

	const k = 4
	b.Compact(k)

	want := original[k:]
	if !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("after Compact(%d): Bytes() = %q, want %q", k, b.Bytes(), want)
	}
	if b.Len() != len(original)-k {
		t.Fatalf("Len() = %d, want %d", b.Len(), len(original)-k)
	}
}

func TestBufferCompactAllClears(t *testing.T) {
	b := NewBuffer()
	b.Append([]byte("abc"))
	b.Compact(100)

	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", b.Len())
	}
}

func TestBufferCompactZeroIsNoop(t *testing.T) {
	b := NewBuffer()
	b.Append([]byte("abc"))
	b.Compact(0)

	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
}
