package models

import "time"

// ApplicationType distinguishes new- and used-vehicle financing applications.
type ApplicationType string

const (
	ApplicationTypeNew  ApplicationType = "new"
	ApplicationTypeUsed ApplicationType = "used"
)

// ApplicationStatus values for persisted records.
const (
	StatusPending = "pending"
)

// ApplicationRecord is an immutable persisted application. Fields is a
// snapshot copy taken at save time; it never aliases live session state.
type ApplicationRecord struct {
	ID        string                 `json:"id"`
	Type      ApplicationType        `json:"type"`
	Fields    map[string]interface{} `json:"fields"`
	CreatedAt time.Time              `json:"createdAt"`
	Status    string                 `json:"status"`
}
