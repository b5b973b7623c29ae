package service

import (
	"context"
	"database/sql"
	"log/slog"
)

// HealthStatus is the result of a database reachability probe.
type HealthStatus struct {
	Healthy  bool
	Database string
}

// HealthService probes the credential store's database.
type HealthService interface {
	Check(ctx context.Context) HealthStatus
}

type healthService struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewHealthService creates a health probe over db.
func NewHealthService(db *sql.DB, logger *slog.Logger) HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &healthService{db: db, logger: logger.With("component", "health")}
}

// Check opens a dedicated connection, pings it and closes it. Nothing is
// retried or cached.
func (s *healthService) Check(ctx context.Context) HealthStatus {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "database connection failed", "error", err)
		return HealthStatus{Database: "Database connection failed"}
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		s.logger.ErrorContext(ctx, "database ping failed", "error", err)
		return HealthStatus{Database: "Database connection failed"}
	}
	return HealthStatus{Healthy: true, Database: "connected"}
}
