package main

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        int
	ReportWait  time.Duration
	MetricsAddr string
	ReportURL   string
	AgentID     string
}

func loadConfig() Config {
	hostname, _ := os.Hostname()
	return Config{
		Port:        envInt("UDP_PORT", 5000),
		ReportWait:  envDuration("REPORT_WAIT", 10*time.Second),
		MetricsAddr: envString("METRICS_ADDR", ":9093"),
		ReportURL:   strings.TrimSpace(os.Getenv("REPORT_URL")),
		AgentID:     envString("AGENT_ID", hostname),
	}
}

func envString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
