package statsd

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listenUDP(t *testing.T) (*net.UDPConn, string) {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, conn.LocalAddr().String()
}

func readLine(t *testing.T, conn *net.UDPConn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 1024)
	n, _, err := conn.ReadFromUDP(buf)
	require.NoError(t, err)
	return string(buf[:n])
}

func TestClient_CountWithPrefixAndTags(t *testing.T) {
	conn, addr := listenUDP(t)

	c, err := NewClient(Config{Enabled: true, Address: addr, Prefix: "storyapi."})
	require.NoError(t, err)
	defer c.Close()

	c.Count("auth/decision", 1, map[string]string{"outcome": "proceed"})

	line := readLine(t, conn)
	assert.Equal(t, "storyapi.auth_decision:1|c|#outcome:proceed", line)
}

func TestClient_Timing(t *testing.T) {
	conn, addr := listenUDP(t)

	c, err := NewClient(Config{Enabled: true, Address: addr})
	require.NoError(t, err)
	defer c.Close()

	c.Timing("request", 250*time.Millisecond, nil)

	line := readLine(t, conn)
	assert.True(t, strings.HasPrefix(line, "request:250"), line)
	assert.True(t, strings.HasSuffix(line, "|ms"), line)
}

func TestClient_DisabledAndNilAreSafe(t *testing.T) {
	c, err := NewClient(Config{Enabled: false})
	require.NoError(t, err)
	c.Count("x", 1, nil)
	assert.NoError(t, c.Close())

	var nilClient *Client
	nilClient.Count("x", 1, nil)
	nilClient.Timing("x", time.Second, nil)
	assert.NoError(t, nilClient.Close())
}
