package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Client encapsula o pool de conexões pgx, usado nos caminhos de escrita
// intensa (trilha de auditoria e contadores de limitação de taxa).
type Client struct {
	pool *pgxpool.Pool
}

// NewClient cria um pool de conexões com o PostgreSQL.
func NewClient(dsn string, maxConns, minConns int32, maxLifetime time.Duration) (*Client, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DSN do banco de dados é obrigatório")
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("falha ao interpretar o DSN: %w", err)
	}

	poolConfig.MaxConns = maxConns
	poolConfig.MinConns = minConns
	poolConfig.MaxConnLifetime = maxLifetime
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("falha ao criar o pool de conexões: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("falha ao verificar a conexão com o banco: %w", err)
	}

	return &Client{pool: pool}, nil
}

// Pool devolve o pool subjacente.
func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

// Close fecha o pool de conexões.
func (c *Client) Close() {
	c.pool.Close()
}

// Ping testa a conexão.
func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// Stats devolve as estatísticas do pool.
func (c *Client) Stats() *pgxpool.Stat {
	return c.pool.Stat()
}
