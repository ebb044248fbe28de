package database

import (
	"context"
	"database/sql"
)

type PgTaskboardRepository struct {
	conn *sql.DB
}

func NewPgTaskboardRepository(dsn string) (*PgTaskboardRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PgTaskboardRepository{conn: db}, nil
}

func (db *PgTaskboardRepository) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *PgTaskboardRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
