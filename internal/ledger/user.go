package ledger

import "time"

// User is a participant in the shared ledger. Created at onboarding and
// immutable thereafter except for renames.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
