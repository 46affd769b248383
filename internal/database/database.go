// Package database opens the optional PostgreSQL pool behind the activity log.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"doctools/internal/config"
)

const (
	applicationName = "doctools"
	pingTimeout     = 5 * time.Second
)

var sqlOpen = sql.Open

// BuildPostgresDSN renders c as a postgres:// URL. The application name is set so the service
// can be told apart in pg_stat_activity.
func BuildPostgresDSN(c config.DatabaseConfig) (string, error) {
	var missing []string
	for _, f := range []struct{ env, val string }{
		{"DB_HOST", c.Host}, {"DB_PORT", c.Port}, {"DB_USER", c.User}, {"DB_NAME", c.Name},
	} {
		if f.val == "" {
			missing = append(missing, f.env)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("database config incomplete: missing %s", strings.Join(missing, ", "))
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.Name,
		User:   url.User(c.User),
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}

	q := url.Values{}
	q.Set("application_name", applicationName)
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// NewPostgres opens the pool through the pgx stdlib driver wrapped by otelsql, so every activity
// query is traced, and fails fast when the server does not answer a ping.
func NewPostgres(ctx context.Context, c config.DatabaseConfig) (*sql.DB, error) {
	dsn, err := BuildPostgresDSN(c)
	if err != nil {
		return nil, err
	}

	driverName, err := otelsql.Register("pgx",
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL, semconv.DBName(c.Name)),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql driver: %w", err)
	}

	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	configurePool(db, c)

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", c.Host, err)
	}

	return db, nil
}

func configurePool(db *sql.DB, c config.DatabaseConfig) {
	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetimeSec > 0 {
		db.SetConnMaxLifetime(time.Duration(c.ConnMaxLifetimeSec) * time.Second)
	}
}

// RegisterMetrics exports the pool statistics of db on reg, labelled with dbName.
func RegisterMetrics(reg prometheus.Registerer, db *sql.DB, dbName string) error {
	return reg.Register(collectors.NewDBStatsCollector(db, dbName))
}
