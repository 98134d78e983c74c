package models

// Scope partitions records between the personal and business views of the
// dashboard. It is a filter, not a tenancy boundary: both scopes live in the
// same tables and an empty filter returns everything.
type Scope string

const (
	ScopePersonal Scope = "personal"
	ScopeBusiness Scope = "business"
)
