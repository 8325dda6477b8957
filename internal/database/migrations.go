package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createEventsArchiveTable,
		createTicketsArchiveTable,
		createRoleGrantsTable,
		createEscrowMovementsTable,
		createTicketsEventIndex,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createEventsArchiveTable = `
CREATE TABLE IF NOT EXISTS events_archive (
    id BIGINT PRIMARY KEY,
    name VARCHAR(500) NOT NULL,
    metadata_ref TEXT NOT NULL,
    event_date TIMESTAMP NOT NULL,
    price BIGINT NOT NULL,
    capacity BIGINT NOT NULL,
    organizer VARCHAR(255) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createTicketsArchiveTable = `
CREATE TABLE IF NOT EXISTS tickets_archive (
    id BIGINT PRIMARY KEY,
    event_id BIGINT NOT NULL,
    owner VARCHAR(255) NOT NULL,
    resold BOOLEAN NOT NULL DEFAULT FALSE,
    minted_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createRoleGrantsTable = `
CREATE TABLE IF NOT EXISTS role_grants (
    id SERIAL PRIMARY KEY,
    account VARCHAR(255) NOT NULL,
    role VARCHAR(50) NOT NULL,
    action VARCHAR(10) NOT NULL,
    granted_by VARCHAR(255) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createEscrowMovementsTable = `
CREATE TABLE IF NOT EXISTS escrow_movements (
    id SERIAL PRIMARY KEY,
    event_id BIGINT NOT NULL,
    amount BIGINT NOT NULL,
    movement VARCHAR(10) NOT NULL,
    account VARCHAR(255) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createTicketsEventIndex = `
CREATE INDEX IF NOT EXISTS idx_tickets_archive_event_id ON tickets_archive (event_id);`
