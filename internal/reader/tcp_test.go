package reader

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

// fakeReader answers each READ line with reply(n) where n counts requests.
func fakeReader(t *testing.T, reply func(n int) string) (string, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				r := bufio.NewReader(c)
				for n := 1; ; n++ {
					line, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if strings.TrimSpace(line) != "READ" {
						continue
					}
					if out := reply(n); out != "" {
						if _, err := c.Write([]byte(out)); err != nil {
							return
						}
					}
				}
			}(conn)
		}
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return host, p
}

func TestTCPSource_PollParsesTags(t *testing.T) {
	t.Parallel()

	host, port := fakeReader(t, func(int) string {
		return "e2001000000a\r\nE2001000000B\r\nOK>"
	})

	src := NewTCPSource(host, port, time.Second)
	sess, err := src.Open(context.Background())
	require.NoError(t, err)
	defer sess.Close()

	read, err := sess.Poll(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"E2001000000A", "E2001000000B"}, read.Tags)
	require.Empty(t, read.Malformed)
}

func TestTCPSource_SilentReaderFailsAfterThreePolls(t *testing.T) {
	t.Parallel()

	host, port := fakeReader(t, func(int) string { return "" })

	src := NewTCPSource(host, port, 50*time.Millisecond)
	sess, err := src.Open(context.Background())
	require.NoError(t, err)
	defer sess.Close()

	for i := 0; i < maxSilentPolls-1; i++ {
		read, err := sess.Poll(context.Background())
		require.NoError(t, err)
		require.Len(t, read.Malformed, 1)
		require.ErrorIs(t, read.Malformed[0], domain.ErrProtocolDecode)
	}
	_, err = sess.Poll(context.Background())
	require.ErrorIs(t, err, domain.ErrDeviceConnection)
}

func TestTCPSource_DialFailureIsDeviceConnectionError(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()

	_, err = NewTCPSource("127.0.0.1", addr.Port, 200*time.Millisecond).Open(context.Background())
	require.ErrorIs(t, err, domain.ErrDeviceConnection)
}

func TestTCPSource_CancelUnblocksPoll(t *testing.T) {
	t.Parallel()

	host, port := fakeReader(t, func(int) string { return "" })

	ctx, cancel := context.WithCancel(context.Background())
	sess, err := NewTCPSource(host, port, 5*time.Second).Open(ctx)
	require.NoError(t, err)
	defer sess.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err = sess.Poll(ctx)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		tags      []string
		malformed int
	}{
		{name: "empty field", raw: "OK>", tags: nil},
		{name: "echo is skipped", raw: "READ\r\nE2001000ABCD\r\nOK>", tags: []string{"E2001000ABCD"}},
		{name: "error prompt", raw: "ERR> busy", malformed: 1},
		{name: "garbage line", raw: "hello world\r\nE200\r\nOK>", tags: []string{"E200"}, malformed: 1},
		{name: "too short", raw: "E20\r\nOK>", malformed: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			read := parseResponse([]byte(tt.raw))
			require.Equal(t, tt.tags, read.Tags)
			require.Len(t, read.Malformed, tt.malformed)
		})
	}
}
