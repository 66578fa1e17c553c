// internal/subscription/record.go
//
// `subscriptions` table row model.
//
// Schema reference (see internal/database/schema.sql)
//
//	CREATE TABLE subscriptions (
//	    id            uuid        NOT NULL PRIMARY KEY,
//	    email         text        NOT NULL,
//	    name          text        NOT NULL,
//	    subscribed_at timestamptz NOT NULL
//	);
//
// Notes
// -----
//   - There is no UNIQUE on email.  Two signups for the same
//     address are two rows.
//   - Rows are written once and never updated.
package subscription

import (
	"time"

	"github.com/google/uuid"
)

// Record mirrors one row in the `subscriptions` table.
type Record struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	SubscribedAt time.Time `db:"subscribed_at"`
}
