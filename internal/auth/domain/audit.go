package domain

import "time"

// AuditAction classifies what a request did to a resource.
type AuditAction string

const (
	AuditActionAccess AuditAction = "ACCESS"
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)

// AuditMetadata captures request details alongside an audit entry.
type AuditMetadata struct {
	Method    string `json:"method"`
	Path      string `json:"path"`
	Query     string `json:"query,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// AuditLogEntry is an append-only record of a successfully completed
// security-relevant operation. Entries are created once and never mutated.
type AuditLogEntry struct {
	ID         string
	UserID     string // empty for unauthenticated operations
	Action     AuditAction
	Resource   string
	ResourceID string
	OldValues  string // JSON, empty when not supplied
	NewValues  string // JSON, empty when not supplied
	Metadata   AuditMetadata
	IPAddress  string
	CreatedAt  time.Time
}
