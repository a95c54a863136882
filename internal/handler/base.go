// Package handler defines the HTTP read surface of the exchange: quoting,
// pool state and vault statistics.
package handler

import "log/slog"

// BaseHandler provides common dependencies for HTTP handlers.
type BaseHandler struct {
	logger *slog.Logger
}
