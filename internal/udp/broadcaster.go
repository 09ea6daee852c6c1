// Package udp publishes the altitude/terrain state as JSON datagrams so a
// topside console can watch the pipeline without polling the web API.
package udp

import (
	"context"
	"fmt"
	"net"
	"time"
)

type Broadcaster struct {
	dest     string
	interval time.Duration
	conn     *net.UDPConn
}

func NewBroadcaster(dest string, interval time.Duration) (*Broadcaster, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be > 0")
	}
	addr, err := net.ResolveUDPAddr("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("resolve dest: %w", err)
	}

	// DialUDP selects a suitable local address automatically.
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial udp: %w", err)
	}

	return &Broadcaster{
		dest:     dest,
		interval: interval,
		conn:     conn,
	}, nil
}

func (b *Broadcaster) Send(payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	_, err := b.conn.Write(payload)
	return err
}

// Run sends one datagram per interval, built by the supplied callback. A nil
// or empty payload skips that tick. Returns when ctx is done.
func (b *Broadcaster) Run(ctx context.Context, build func(seq uint64) []byte) error {
	t := time.NewTicker(b.interval)
	defer t.Stop()

	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			seq++
			if err := b.Send(build(seq)); err != nil {
				return fmt.Errorf("send: %w", err)
			}
		}
	}
}

func (b *Broadcaster) Close() error {
	if b.conn == nil {
		return nil
	}
	return b.conn.Close()
}
