package main

import (
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	registerMetrics()

	cfg := loadConfig()

	slog.Info("starting udp-timer",
		"port", cfg.Port,
		"report_wait", cfg.ReportWait.String(),
		"report_url", cfg.ReportURL,
		"agent_id", cfg.AgentID,
	)

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: cfg.Port})
	if err != nil {
		slog.Error("binding datagram socket", "port", cfg.Port, "error", err)
		os.Exit(1)
	}

	var pub *reportPublisher
	if cfg.ReportURL != "" {
		pub = newReportPublisher(cfg.ReportURL, cfg.AgentID)
		go pub.run()
	}

	srv := &server{
		conn:  conn,
		store: NewStore(),
		wait:  cfg.ReportWait,
		pub:   pub,
	}

	go func() {
		if err := srv.run(); err != nil {
			slog.Error("receive loop failed", "error", err)
			os.Exit(1)
		}
	}()

	http.Handle("/metrics", promhttp.Handler())
	slog.Info("metrics server listening", "addr", cfg.MetricsAddr, "path", "/metrics")
	if err := http.ListenAndServe(cfg.MetricsAddr, nil); err != nil {
		slog.Error("metrics server failed", "error", err)
		os.Exit(1)
	}
}
