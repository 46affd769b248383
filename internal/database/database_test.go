package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctools/internal/config"
)

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name    string
		config  config.DatabaseConfig
		want    string
		wantErr string
	}{
		{
			name:   "password and sslmode",
			config: config.DatabaseConfig{Host: "db", Port: "5432", User: "tools", Password: "s3cret", Name: "doctools", SSLMode: "disable"},
			want:   "postgres://tools:s3cret@db:5432/doctools?application_name=doctools&sslmode=disable",
		},
		{
			name:   "no password",
			config: config.DatabaseConfig{Host: "db", Port: "5432", User: "tools", Name: "doctools", SSLMode: "require"},
			want:   "postgres://tools@db:5432/doctools?application_name=doctools&sslmode=require",
		},
		{
			name:   "ipv6 host",
			config: config.DatabaseConfig{Host: "::1", Port: "5432", User: "tools", Name: "doctools"},
			want:   "postgres://tools@[::1]:5432/doctools?application_name=doctools",
		},
		{
			name:    "missing host and name",
			config:  config.DatabaseConfig{Port: "5432", User: "tools"},
			wantErr: "missing DB_HOST, DB_NAME",
		},
		{
			name:    "missing user",
			config:  config.DatabaseConfig{Host: "db", Port: "5432", Name: "doctools"},
			wantErr: "missing DB_USER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildPostgresDSN(tt.config)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func stubOpen(t *testing.T, db *sql.DB, err error) {
	t.Helper()
	orig := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return db, err }
	t.Cleanup(func() { sqlOpen = orig })
}

func TestNewPostgres(t *testing.T) {
	conf := config.DatabaseConfig{
		Host:               "db",
		Port:               "5432",
		User:               "tools",
		Password:           "s3cret",
		Name:               "doctools",
		MaxOpenConns:       10,
		MaxIdleConns:       5,
		ConnMaxLifetimeSec: 300,
	}

	t.Run("success applies pool settings", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		stubOpen(t, db, nil)
		mock.ExpectPing()

		got, err := NewPostgres(context.Background(), conf)

		require.NoError(t, err)
		assert.Equal(t, 10, got.Stats().MaxOpenConnections)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("open error", func(t *testing.T) {
		stubOpen(t, nil, errors.New("open error"))

		got, err := NewPostgres(context.Background(), conf)

		assert.ErrorContains(t, err, "sql open: open error")
		assert.Nil(t, got)
	})

	t.Run("ping error", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		got, err := NewPostgres(context.Background(), conf)

		assert.ErrorContains(t, err, "ping db: connection refused")
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("incomplete config", func(t *testing.T) {
		got, err := NewPostgres(context.Background(), config.DatabaseConfig{})

		assert.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestRegisterMetrics(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	reg := prometheus.NewRegistry()

	require.NoError(t, RegisterMetrics(reg, db, "activity"))
	assert.Error(t, RegisterMetrics(reg, db, "activity"))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(mfs))
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "go_sql_open_connections")
}
