package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"
)

// Each datagram starts with a send timestamp: seconds then
// microseconds, both little-endian uint64 (a timeval as written by a
// 64-bit sender, e.g. sendip's t72 payload). Anything after the
// timestamp is padding and ignored.
const timestampLen = 16

var errShortDatagram = errors.New("datagram shorter than timestamp")

func decodeTimestamp(payload []byte) (sec, usec int64, err error) {
	if len(payload) < timestampLen {
		return 0, 0, errShortDatagram
	}
	sec = int64(binary.LittleEndian.Uint64(payload[0:8]))
	usec = int64(binary.LittleEndian.Uint64(payload[8:16]))
	return sec, usec, nil
}

// delayMicros is the one-way delay between the datagram's send
// timestamp and now, in microseconds. Negative values (sender clock
// ahead of ours) are possible and wrap in the store like any other
// out-of-range delay.
func delayMicros(now time.Time, sec, usec int64) int64 {
	return 1000000*(now.Unix()-sec) + int64(now.Nanosecond()/1000) - usec
}

// server owns the UDP socket, the sample store and the report cadence.
// A single goroutine runs the whole thing: the read deadline doubles
// as the report timer, so appends and statistics never race.
type server struct {
	conn  *net.UDPConn
	store *Store
	wait  time.Duration
	pub   *reportPublisher // nil when no collector is configured

	packets      int
	lastReported int
}

// run reads datagrams until a permanent receive failure. When the
// wait interval passes with no packet, a report is emitted if anything
// new arrived since the last one.
func (srv *server) run() error {
	buf := make([]byte, 65535)
	for {
		srv.conn.SetReadDeadline(time.Now().Add(srv.wait))
		nr, _, err := srv.conn.ReadFromUDP(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				srv.reportIfNew()
				continue
			}
			return fmt.Errorf("receiving datagram packet: %w", err)
		}
		now := time.Now()

		datagramsReceivedTotal.Inc()
		srv.packets++

		sec, usec, derr := decodeTimestamp(buf[:nr])
		if derr != nil {
			datagramsInvalidTotal.Inc()
			slog.Warn("dropping datagram", "error", derr, "bytes", nr)
			continue
		}
		srv.store.Append(delayMicros(now, sec, usec))
	}
}

// reportIfNew computes and emits statistics, but only when packets
// arrived since the previous report.
func (srv *server) reportIfNew() {
	if srv.packets == srv.lastReported {
		return
	}
	srv.lastReported = srv.packets

	rep, err := computeStats(srv.store)
	if err != nil {
		slog.Info("skipping report", "reason", err, "samples", rep.N)
		return
	}

	slog.Info("latency report",
		"packets", srv.packets,
		"samples", rep.N,
		"mu_us", rep.Mu,
		"sigma_us", rep.Sigma,
		"rho", rep.Rho,
	)

	latencyMean.Set(rep.Mu)
	latencyStdDev.Set(rep.Sigma)
	latencyAutocorr.Set(rep.Rho)
	samplesStored.Set(float64(rep.N))
	samplesDropped.Set(float64(srv.store.Dropped()))
	reportsEmittedTotal.Inc()

	if srv.pub != nil {
		srv.pub.send(rep)
	}
}
