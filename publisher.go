package main

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	publishBuffer  = 16
	reconnectDelay = 5 * time.Second
	writeWait      = 10 * time.Second
)

// reportMessage is what goes over the wire to the collector.
type reportMessage struct {
	Agent     string    `json:"agent"`
	Timestamp time.Time `json:"timestamp"`
	Report
}

// reportPublisher pushes statistics reports to a websocket collector.
// The ingest loop hands reports over a buffered channel and never
// blocks on the network: when the collector is down or slow, reports
// are dropped.
type reportPublisher struct {
	url     string
	agentID string
	sendCh  chan reportMessage
}

func newReportPublisher(url, agentID string) *reportPublisher {
	return &reportPublisher{
		url:     url,
		agentID: agentID,
		sendCh:  make(chan reportMessage, publishBuffer),
	}
}

// send queues a report for publishing without blocking.
func (p *reportPublisher) send(rep Report) {
	msg := reportMessage{
		Agent:     p.agentID,
		Timestamp: time.Now().UTC(),
		Report:    rep,
	}
	select {
	case p.sendCh <- msg:
	default:
		slog.Warn("report channel full, dropping report", "url", p.url)
	}
}

// run dials the collector and forwards queued reports, reconnecting
// after a delay whenever the connection drops. Runs for the life of
// the process.
func (p *reportPublisher) run() {
	for {
		conn, _, err := websocket.DefaultDialer.Dial(p.url, nil)
		if err != nil {
			slog.Warn("collector dial failed", "url", p.url, "error", err)
			time.Sleep(reconnectDelay)
			continue
		}
		slog.Info("connected to collector", "url", p.url)
		p.pump(conn)
		conn.Close()
		time.Sleep(reconnectDelay)
	}
}

// pump writes reports to one connection until a write fails.
func (p *reportPublisher) pump(conn *websocket.Conn) {
	for msg := range p.sendCh {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			slog.Warn("collector write failed", "error", err)
			return
		}
	}
}
