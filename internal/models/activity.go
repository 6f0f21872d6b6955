package models

import "time"

// Activity action labels recorded by mutating operations.
const (
	ActivityLogin  = "Login"
	ActivityLogout = "Logout"
	ActivityUpload = "Upload"
	ActivityUpdate = "Update"
	ActivityDelete = "Delete"
	ActivityAdmin  = "Admin"
)

// MaxActivityEntries caps the activity collection. The oldest entry is
// dropped once the cap is reached; eviction follows insertion order.
const MaxActivityEntries = 100

// ActivityEntry is one immutable record of the portal's activity trail.
// User carries the actor's display name, not an identifier.
type ActivityEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details"`
}
