package output

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/models"
)

// PostgresOutput persists run artifacts as JSONB rows, one table per topic
// feed, so summaries can be queried across many runs.
type PostgresOutput struct {
	conn *pgx.Conn
}

const createRunsTable = `
	CREATE TABLE IF NOT EXISTS solver_runs (
		id         BIGSERIAL PRIMARY KEY,
		topic      TEXT        NOT NULL,
		payload    JSONB       NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

func NewPostgresOutput(ctx context.Context, cfg models.DatabaseConfig) (*PostgresOutput, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if _, err := conn.Exec(ctx, createRunsTable); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("error preparing solver_runs table: %w", err)
	}

	return &PostgresOutput{conn: conn}, nil
}

func (p *PostgresOutput) WriteMessage(topic string, msg []byte) error {
	_, err := p.conn.Exec(context.Background(),
		"INSERT INTO solver_runs (topic, payload) VALUES ($1, $2)", topic, msg)
	if err != nil {
		return fmt.Errorf("failed to insert %s row: %w", topic, err)
	}
	return nil
}

func (p *PostgresOutput) Close() error {
	return p.conn.Close(context.Background())
}
