package constants

// Session and context keys
const (
	SessionCookieName = "taskdeck_session"
	ContextKeyUserID  = "user_id"
)

// Task constraints
const (
	// MaxTaskNameLength bounds task and project names.
	MaxTaskNameLength = 100

	// MaxAncestryDepth bounds the parent-chain walk. The tree invariant is
	// not enforced at write time, so this is the cycle-safety guard.
	MaxAncestryDepth = 100

	// MaxSplitPhaseNameLength is the display limit for AI-generated phase
	// names. Longer suggestions are truncated, not rejected.
	MaxSplitPhaseNameLength = 15
)

// Pagination
const (
	// MinPage is the first page number; pages are 1-based.
	MinPage = 1

	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
