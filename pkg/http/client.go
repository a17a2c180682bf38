package http

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// ProviderClientConfig tunes the transport shared by the PayOS and VietQR
// adapters. Both talk to a single host, so the idle pool is sized per host.
type ProviderClientConfig struct {
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration

	DialTimeout           time.Duration
	KeepAlive             time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
}

// GatewayClientConfig keeps every transport phase under the per-call gateway
// deadline so a hung provider surfaces as a timeout, not a stuck connection.
func GatewayClientConfig() ProviderClientConfig {
	return ProviderClientConfig{
		MaxIdleConnsPerHost:   20,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		DialTimeout:           5 * time.Second,
		KeepAlive:             60 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 9 * time.Second,
	}
}

// NewHTTPClient builds a client for provider calls. timeout caps the whole
// exchange; callers still attach a context deadline per request.
func NewHTTPClient(cfg ProviderClientConfig, timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: cfg.DialTimeout, KeepAlive: cfg.KeepAlive}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			MaxIdleConns:          cfg.MaxIdleConnsPerHost * 2,
			MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
			MaxConnsPerHost:       cfg.MaxConnsPerHost,
			IdleConnTimeout:       cfg.IdleConnTimeout,
			TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
			ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
			ExpectContinueTimeout: time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			ForceAttemptHTTP2:     true,
		},
	}
}
