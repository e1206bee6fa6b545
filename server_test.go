package main

import (
	"encoding/binary"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func timestampPayload(sec, usec int64, extra int) []byte {
	b := make([]byte, timestampLen+extra)
	binary.LittleEndian.PutUint64(b[0:8], uint64(sec))
	binary.LittleEndian.PutUint64(b[8:16], uint64(usec))
	return b
}

func TestDecodeTimestamp(t *testing.T) {
	sec, usec, err := decodeTimestamp(timestampPayload(1700000000, 123456, 56))
	if err != nil {
		t.Fatal(err)
	}
	if sec != 1700000000 || usec != 123456 {
		t.Fatalf("decoded (%d, %d), want (1700000000, 123456)", sec, usec)
	}
}

func TestDecodeShortDatagram(t *testing.T) {
	_, _, err := decodeTimestamp(make([]byte, timestampLen-1))
	if !errors.Is(err, errShortDatagram) {
		t.Fatalf("err = %v, want errShortDatagram", err)
	}
}

func TestDelayMicros(t *testing.T) {
	now := time.Unix(1000, 250000*1000) // 1000s + 250000us
	if got := delayMicros(now, 999, 900000); got != 350000 {
		t.Fatalf("delayMicros = %d, want 350000", got)
	}
	// Sender clock ahead of ours.
	if got := delayMicros(now, 1000, 300000); got != -50000 {
		t.Fatalf("delayMicros = %d, want -50000", got)
	}
}

func TestReportGating(t *testing.T) {
	srv := &server{store: storeOf(100, 200, 300, 400), wait: time.Second, packets: 4}
	reports := testutil.ToFloat64(reportsEmittedTotal)

	srv.reportIfNew()
	if got := testutil.ToFloat64(reportsEmittedTotal); got != reports+1 {
		t.Fatalf("reports = %v, want %v", got, reports+1)
	}
	if got := testutil.ToFloat64(latencyMean); got != 250 {
		t.Fatalf("latency mean gauge = %v, want 250", got)
	}

	// New samples but no new packets counted: the quiet-interval gate
	// keys off the packet count, so no report.
	srv.store.Append(10000)
	srv.reportIfNew()
	if got := testutil.ToFloat64(reportsEmittedTotal); got != reports+1 {
		t.Fatalf("reports = %v, want unchanged %v", got, reports+1)
	}
	if got := testutil.ToFloat64(latencyMean); got != 250 {
		t.Fatalf("latency mean gauge = %v, want unchanged 250", got)
	}

	srv.packets++
	srv.reportIfNew()
	if got := testutil.ToFloat64(reportsEmittedTotal); got != reports+2 {
		t.Fatalf("reports = %v, want %v", got, reports+2)
	}
	if got := testutil.ToFloat64(latencyMean); got != 2200 {
		t.Fatalf("latency mean gauge = %v, want 2200", got)
	}
}

func TestReportSkipsInsufficientData(t *testing.T) {
	srv := &server{store: storeOf(42), wait: time.Second, packets: 1}
	reports := testutil.ToFloat64(reportsEmittedTotal)

	srv.reportIfNew()
	if got := testutil.ToFloat64(reportsEmittedTotal); got != reports {
		t.Fatalf("reports = %v, want unchanged %v", got, reports)
	}
	if srv.lastReported != 1 {
		t.Fatalf("lastReported = %d, want 1", srv.lastReported)
	}
}

func TestIngestLoop(t *testing.T) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	srv := &server{conn: conn, store: NewStore(), wait: 50 * time.Millisecond}

	received := testutil.ToFloat64(datagramsReceivedTotal)
	invalid := testutil.ToFloat64(datagramsInvalidTotal)

	done := make(chan error, 1)
	go func() { done <- srv.run() }()

	sender, err := net.Dial("udp", conn.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer sender.Close()

	now := time.Now()
	if _, err := sender.Write(timestampPayload(now.Unix(), int64(now.Nanosecond()/1000), 56)); err != nil {
		t.Fatal(err)
	}
	if _, err := sender.Write([]byte{1, 2, 3}); err != nil { // too short
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for testutil.ToFloat64(datagramsReceivedTotal) < received+2 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for datagrams to be processed")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := testutil.ToFloat64(datagramsInvalidTotal); got != invalid+1 {
		t.Fatalf("invalid datagrams = %v, want %v", got, invalid+1)
	}

	// Closing the socket is a permanent receive failure.
	conn.Close()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("run returned nil after socket close")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after socket close")
	}

	if got := srv.store.Count(); got != 1 {
		t.Fatalf("store holds %d samples, want 1 (short datagram skipped)", got)
	}
}
