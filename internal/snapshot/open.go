package snapshot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Open selects a backend from target: postgres:// and postgresql:// URLs
// use PostgreSQL, anything else is a SQLite database path.
func Open(ctx context.Context, target string, logger *zap.Logger) (Store, error) {
	if target == "" {
		return nil, fmt.Errorf("no snapshot store configured")
	}
	if strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://") {
		return OpenPostgres(ctx, target, logger)
	}
	return OpenSQLite(ctx, strings.TrimPrefix(target, "sqlite://"), logger)
}
