package services

import (
	"context"
	"log/slog"

	"github.com/lendaro/loanledger/internal/middleware"
)

// BaseService is embedded by every service to give it request-scoped
// logging. The logger carried in the context includes the request ID, so
// service log lines correlate with the HTTP access log.
type BaseService struct{}

// GetLogger returns the request logger from the context, falling back to
// the process default for callers outside a request, such as scheduler jobs.
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with the error string as the first attribute.
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs at info level with the request logger.
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs at debug level with the request logger.
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}
