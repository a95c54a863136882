// Package service contains the read-side logic backing the HTTP handlers:
// swap quoting against live pairs, pool state and vault statistics.
package service

import "log/slog"

// BaseService provides common dependencies for service types.
type BaseService struct {
	logger *slog.Logger
}
