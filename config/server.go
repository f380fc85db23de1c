package config

import (
	"strings"
	"time"
)

type Server struct {
	Port            string
	ShutdownTimeout time.Duration

	GCPProject  string
	GCPLocation string
	GeminiModel string
	STTModel    string
	GCSBucket   string // optional transcript archive
	GCSPrefix   string

	// AllowedOrigins limits websocket handshakes; empty allows any origin.
	AllowedOrigins []string
}

func LoadServer() (Server, error) {
	var p envParser
	cfg := Server{
		Port:            getenv("PORT", "8080"),
		ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 45*time.Second),
		GCPProject:      getenv("GCP_PROJECT_ID", ""),
		GCPLocation:     getenv("GCP_LOCATION", "us-central1"),
		GeminiModel:     getenv("GEMINI_MODEL", "gemini-1.5-flash"),
		STTModel:        getenv("STT_MODEL", ""),
		GCSBucket:       getenv("GCS_BUCKET", ""),
		GCSPrefix:       getenv("GCS_PREFIX", ""),
		AllowedOrigins:  splitList(getenv("ALLOWED_ORIGINS", "")),
	}
	p.check(cfg.GCPProject != "", "GCP_PROJECT_ID is required")
	return cfg, p.err()
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" && v != "*" {
			out = append(out, v)
		}
	}
	return out
}
