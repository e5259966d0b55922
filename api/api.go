// Copyright (c) 2025 BVK Chaitanya

// Package api defines the HTTP request and response types shared by the
// server and the command-line clients.
package api

import (
	"time"
)

const (
	HealthPath   = "/health"
	MetricsPath  = "/metrics"
	AccountsPath = "/accounts"
	WatchersPath = "/watchers"
)

// Response is the envelope for all successful responses with a body.
type Response[T any] struct {
	Data T `json:"data"`
}

// ErrorResponse is the envelope for all failed responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status     string    `json:"status"`
	Uptime     float64   `json:"uptime"`
	Timestamp  time.Time `json:"timestamp"`
	RSSBytes   uint64    `json:"rssBytes,omitempty"`
	Goroutines int       `json:"goroutines"`
}
