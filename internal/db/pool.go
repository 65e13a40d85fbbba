package db

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NewDBPoolParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string

	// MaxConns overrides the pool's default when positive.
	MaxConns       int32
	TracingEnabled bool
}

// ConnString renders the params as a postgres connection URL. The password
// goes through URL escaping, deployments like to put odd characters in there.
func (params NewDBPoolParams) ConnString() string {
	user := params.User
	if user == "" {
		user = "postgres"
	}

	connURL := url.URL{
		Scheme: "postgres",
		User:   url.User(user),
		Host:   net.JoinHostPort(params.Host, params.Port),
		Path:   params.DBName,
	}
	if params.Password != "" {
		connURL.User = url.UserPassword(user, params.Password)
	}

	return connURL.String()
}

func NewDBPool(ctx context.Context, params NewDBPoolParams) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(params.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	if params.MaxConns > 0 {
		poolConfig.MaxConns = params.MaxConns
	}
	if params.TracingEnabled {
		poolConfig.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	return db, nil
}
