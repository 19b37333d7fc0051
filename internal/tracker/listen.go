package tracker

import (
	"bufio"
	"context"
	"net"
	"strings"

	"go.uber.org/zap"
)

// Listen accepts successive short connections on ln, each expected to
// deliver the literal token "CONFIRMATION" followed by a line terminator,
// then close. Every valid confirmation is forwarded to the barrier under
// the connecting peer's name. Listen returns when ctx is done or ln is
// closed.
func Listen(ctx context.Context, ln net.Listener, barrier *Barrier, peerName func(net.Addr) string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go handleConn(conn, barrier, peerName, log)
	}
}

func handleConn(conn net.Conn, barrier *Barrier, peerName func(net.Addr) string, log *zap.Logger) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		return
	}
	line := strings.TrimSpace(scanner.Text())
	if line != "CONFIRMATION" {
		log.Warn("tracker: unexpected wire token", zap.String("line", line))
		return
	}
	name := "unknown"
	if peerName != nil {
		name = peerName(conn.RemoteAddr())
	}
	barrier.Confirm(name)
}

// SendConfirmation dials addr and writes the literal wire token, closing
// the connection immediately after — the orchestrator's client side of
// the tracker protocol.
func SendConfirmation(ctx context.Context, addr string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.Write([]byte("CONFIRMATION\n"))
	return err
}
