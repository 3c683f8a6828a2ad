package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: settlements must be created BEFORE settlement_members due to foreign key constraint.
const schema = `
CREATE TABLE IF NOT EXISTS members (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    gender TEXT NOT NULL,
    status TEXT NOT NULL,
    joined_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS settlements (
    id TEXT PRIMARY KEY,
    meeting_id TEXT NOT NULL UNIQUE,
    game_fee INTEGER NOT NULL,
    food_fee INTEGER NOT NULL,
    other_fee INTEGER NOT NULL,
    per_person INTEGER NOT NULL,
    status TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS settlement_members (
    settlement_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    exclude_food INTEGER NOT NULL,
    amount INTEGER NOT NULL,
    is_paid INTEGER NOT NULL,
    paid_at INTEGER,
    PRIMARY KEY (settlement_id, member_id),
    FOREIGN KEY (settlement_id) REFERENCES settlements(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_settlement_members_settlement_id ON settlement_members(settlement_id);
CREATE INDEX IF NOT EXISTS idx_members_name ON members(name);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
