package database

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rotisserie/eris"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"

	"fuelapi/internal/config"
)

// sqlOpen is swapped out in tests.
var sqlOpen = sql.Open

const pingTimeout = 5 * time.Second

// BuildPostgresDSN renders c as a postgres:// URL. Settings other than
// sslmode are passed through to the server as runtime parameters by pgx.
func BuildPostgresDSN(c config.DatabaseConfig) (string, error) {
	var missing []string
	for name, v := range map[string]string{"host": c.Host, "port": c.Port, "user": c.User, "name": c.Name} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", eris.Errorf("invalid database config: missing %s", strings.Join(missing, ", "))
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   c.Name,
		User:   url.User(c.User),
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}

	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	if c.ApplicationName != "" {
		q.Set("application_name", c.ApplicationName)
	}
	if c.StatementTimeout > 0 {
		q.Set("statement_timeout", strconv.FormatInt(c.StatementTimeout.Milliseconds(), 10))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// NewPostgres opens a traced database/sql pool on the pgx stdlib driver and
// verifies it with a ping.
func NewPostgres(ctx context.Context, c config.DatabaseConfig) (*sql.DB, error) {
	dsn, err := BuildPostgresDSN(c)
	if err != nil {
		return nil, err
	}

	driverName, err := otelsql.Register("pgx",
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, eris.Wrap(err, "register otelsql")
	}

	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sql open")
	}

	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetimeSec > 0 {
		db.SetConnMaxLifetime(time.Duration(c.ConnMaxLifetimeSec) * time.Second)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "db ping")
	}

	zap.L().Info("database_connected",
		zap.String("db_host", c.Host),
		zap.String("db_name", c.Name),
		zap.Int("max_open_conns", c.MaxOpenConns),
		zap.Duration("statement_timeout", c.StatementTimeout),
	)

	return db, nil
}
