package party_test

import (
	"bufio"
	"fmt"
	"net"
	"net/http"

	"github.com/couchparty/core/wsframe"
)

// testClient is a minimal hand-rolled WebSocket client, grounded in the
// same RFC 6455 handshake and framing this module's own server
// implements — just from the other side of the wire, masking outbound
// frames the way a real browser must.
type testClient struct {
	conn    net.Conn
	reader  *bufio.Reader
	pending []byte
}

func dialTestClient(addr string) (*testClient, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	handshake := "GET / HTTP/1.1\r\n" +
		"Host: " + addr + "\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		"Sec-WebSocket-Version: 13\r\n\r\n"
	if _, err := conn.Write([]byte(handshake)); err != nil {
		conn.Close()
		return nil, err
	}

	reader := bufio.NewReader(conn)
	resp, err := http.ReadResponse(reader, nil)
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		conn.Close()
		return nil, fmt.Errorf("handshake status = %d, want 101", resp.StatusCode)
	}

	return &testClient{conn: conn, reader: reader}, nil
}

func (c *testClient) sendText(payload []byte) error {
	key := [4]byte{0x12, 0x34, 0x56, 0x78}
	masked := make([]byte, len(payload))
	for i, b := range payload {
		masked[i] = b ^ key[i%4]
	}

	n := len(payload)
	var header []byte
	switch {
	case n <= 125:
		header = []byte{0x81, 0x80 | byte(n)}
	case n <= 0xFFFF:
		header = []byte{0x81, 0x80 | 126, byte(n >> 8), byte(n)}
	default:
		header = []byte{0x81, 0x80 | 127, 0, 0, 0, 0, byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
	}
	buf := append(header, key[:]...)
	buf = append(buf, masked...)
	_, err := c.conn.Write(buf)
	return err
}

// readFrame blocks until a full frame has arrived, decoding straight off
// the buffered reader's connection. Server -> client frames are never
// masked.
func (c *testClient) readFrame() (wsframe.Frame, error) {
	buf := make([]byte, 4096)
	for {
		f, status, consumed, err := wsframe.Decode(c.pending, 16*1024*1024)
		if err != nil {
			return wsframe.Frame{}, err
		}
		if status == wsframe.Ready {
			c.pending = c.pending[consumed:]
			return f, nil
		}
		n, err := c.reader.Read(buf)
		if n > 0 {
			c.pending = append(c.pending, buf[:n]...)
		}
		if err != nil {
			return wsframe.Frame{}, err
		}
	}
}

func (c *testClient) close() {
	c.conn.Close()
}
