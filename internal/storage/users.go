package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// GetOrCreateUser maps a tailnet login to a local user id, creating the
// user on first sight. An empty displayName keeps the stored one.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	const q = `
		INSERT INTO users AS u (login, display_name)
		VALUES (@login, @display)
		ON CONFLICT (login) DO UPDATE SET
			last_seen    = NOW(),
			display_name = CASE WHEN @display = '' THEN u.display_name ELSE @display END
		RETURNING u.id`

	var id int
	err := db.Pool.QueryRow(ctx, q, pgx.NamedArgs{"login": login, "display": displayName}).Scan(&id)
	return id, mapError("resolving user "+login, err)
}
