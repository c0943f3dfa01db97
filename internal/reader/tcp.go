package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

const (
	DefaultDialTimeout = 2 * time.Second
	// maxSilentPolls is how many polls in a row may end without a prompt
	// before the connection is considered dead.
	maxSilentPolls = 3
	minTagLength   = 4
	maxTagLength   = 64
)

var (
	readCommand = []byte("READ\r\n")
	okPrompt    = []byte("OK>")
	errPrompt   = []byte("ERR>")
)

// TCPSource speaks the reader's line protocol: the client sends READ and the
// reader answers with one tag id per line followed by an OK> or ERR> prompt.
type TCPSource struct {
	address     string
	port        int
	dialTimeout time.Duration
	readTimeout time.Duration
}

func NewTCPSource(address string, port int, dialTimeout time.Duration) *TCPSource {
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}
	return &TCPSource{
		address:     address,
		port:        port,
		dialTimeout: dialTimeout,
		readTimeout: dialTimeout,
	}
}

func (s *TCPSource) Describe() string {
	return net.JoinHostPort(s.address, strconv.Itoa(s.port))
}

func (s *TCPSource) Open(ctx context.Context) (Session, error) {
	dialer := net.Dialer{Timeout: s.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.Describe())
	if err != nil {
		return nil, domain.DeviceConnection("dial "+s.Describe(), err)
	}
	sess := &tcpSession{
		conn:        conn,
		readTimeout: s.readTimeout,
		chunk:       make([]byte, 4096),
	}
	sess.stop = context.AfterFunc(ctx, func() { _ = conn.Close() })
	return sess, nil
}

type tcpSession struct {
	conn        net.Conn
	readTimeout time.Duration
	chunk       []byte
	buf         []byte
	silent      int
	stop        func() bool
}

func (s *tcpSession) Close() error {
	s.stop()
	err := s.conn.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *tcpSession) Poll(ctx context.Context) (Read, error) {
	if err := s.conn.SetDeadline(time.Now().Add(s.readTimeout)); err != nil {
		return Read{}, domain.DeviceConnection("set deadline", err)
	}
	if _, err := s.conn.Write(readCommand); err != nil {
		return Read{}, domain.DeviceConnection("write", s.cause(ctx, err))
	}

	s.buf = s.buf[:0]
	for !bytes.Contains(s.buf, okPrompt) && !bytes.Contains(s.buf, errPrompt) {
		n, err := s.conn.Read(s.chunk)
		s.buf = append(s.buf, s.chunk[:n]...)
		if err == nil {
			continue
		}
		var netErr net.Error
		if ctx.Err() == nil && errors.As(err, &netErr) && netErr.Timeout() {
			s.silent++
			if s.silent >= maxSilentPolls {
				return Read{}, domain.DeviceConnection("read", fmt.Errorf("no response to %d polls", s.silent))
			}
			read := parseResponse(s.buf)
			read.Malformed = append(read.Malformed, domain.ProtocolDecode("read", "response ended without a prompt"))
			return read, nil
		}
		return Read{}, domain.DeviceConnection("read", s.cause(ctx, err))
	}

	s.silent = 0
	return parseResponse(s.buf), nil
}

func (s *tcpSession) cause(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// parseResponse splits a reader answer into tag ids. Lines that are not hex
// ids are reported as malformed; an ERR> prompt is reported once.
func parseResponse(raw []byte) Read {
	var read Read
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, string(okPrompt)):
		case strings.HasPrefix(line, string(errPrompt)):
			read.Malformed = append(read.Malformed, domain.ProtocolDecode("read", "reader answered "+line))
		case strings.EqualFold(line, "READ"):
			// command echo
		case validTagID(line):
			read.Tags = append(read.Tags, strings.ToUpper(line))
		default:
			read.Malformed = append(read.Malformed, domain.ProtocolDecode("read", fmt.Sprintf("unexpected line %q", line)))
		}
	}
	return read
}

func validTagID(s string) bool {
	if len(s) < minTagLength || len(s) > maxTagLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
