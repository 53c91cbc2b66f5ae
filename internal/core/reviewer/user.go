package reviewer

import "strings"

// ResolutionKind classifies the outcome of resolving a reviewer's user reference.
type ResolutionKind int

const (
	// ResolutionCleared means no reference was supplied (nil, empty or blank username).
	ResolutionCleared ResolutionKind = iota
	// ResolutionResolved means the reference names an existing user.
	ResolutionResolved
	// ResolutionNotFound means a reference was supplied but no such user exists.
	ResolutionNotFound
)

// UserResolution is the typed result of resolving a username or user ID.
// Validation consumes it instead of querying the directory again.
type UserResolution struct {
	Kind     ResolutionKind
	UserID   int64
	Username string
	ByID     bool // Reference was given as a numeric ID rather than a username
}

// Cleared returns a resolution with no user.
func Cleared() UserResolution {
	return UserResolution{Kind: ResolutionCleared}
}

// Resolved returns a resolution naming an existing user.
func Resolved(userID int64, username string) UserResolution {
	return UserResolution{Kind: ResolutionResolved, UserID: userID, Username: username}
}

// NotFound returns a resolution for a username that matched no user.
func NotFound(username string) UserResolution {
	return UserResolution{Kind: ResolutionNotFound, Username: username}
}

// InvalidID returns a resolution for a numeric user ID that matched no user.
func InvalidID(userID int64) UserResolution {
	return UserResolution{Kind: ResolutionNotFound, UserID: userID, ByID: true}
}

// NormalizeUsername trims surrounding whitespace from a username.
// ok is false when nothing remains, meaning the reference should be cleared.
func NormalizeUsername(name string) (normalized string, ok bool) {
	normalized = strings.TrimSpace(name)
	return normalized, normalized != ""
}
