package reviewer

import (
	"errors"
	"fmt"
	"strings"
)

// Fields that validation errors are attributed to.
const (
	FieldBase              = "base"
	FieldUser              = "user"
	FieldUserUsername      = "user_username"
	FieldReviewerAgreement = "reviewer_agreement"
	FieldPreferences       = "preferences"
)

// Validation error kinds. Callers match them with errors.Is.
var (
	ErrUserReferenceInvalid = errors.New("user does not exist")
	ErrUsernameRequired     = errors.New("username is required")
	ErrDuplicateUser        = errors.New("user is already a reviewer")
	ErrAgreementNotAccepted = errors.New("reviewer agreement must be accepted")
	ErrNoPreferenceAccepted = errors.New("at least one track must be accepted")
	ErrPreferenceIncomplete = errors.New("accepted preference needs a track and an audience level")
	ErrDuplicatePreference  = errors.New("track and audience level already chosen")
	ErrPreferenceUnknown    = errors.New("track or audience level does not exist")
)

// FieldError attaches a validation error kind to the field it concerns.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e FieldError) Unwrap() error { return e.Err }

// ValidationErrors is the set of field errors collected by a validation pass.
// A nil or empty value means the record is valid.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes every field error so errors.Is finds any kind in the set.
func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, fe := range v {
		errs[i] = fe
	}
	return errs
}

// On returns the error kinds attributed to the given field.
func (v ValidationErrors) On(field string) []error {
	var errs []error
	for _, fe := range v {
		if fe.Field == field {
			errs = append(errs, fe.Err)
		}
	}
	return errs
}

// Add appends a field error.
func (v *ValidationErrors) Add(field string, err error) {
	*v = append(*v, FieldError{Field: field, Err: err})
}

// Empty reports whether no errors were collected.
func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

// Err returns v as an error, or nil when v is empty.
func (v ValidationErrors) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}

// ValidateContext provides what record validation needs.
// Populated by the caller; the user lookup and duplicate check happen in the shell.
type ValidateContext struct {
	ReviewerID  string // Empty for records not yet persisted
	User        UserResolution
	DuplicateOf string // ID of another reviewer referencing the same user, if any
	Preferences []Preference
}

// Validate evaluates the save-time rules for a reviewer record.
// Rules:
// - A user reference must be supplied (UsernameRequired)
// - The reference must resolve to an existing user (UserReferenceInvalid)
// - No other reviewer may reference the same user (DuplicateUser)
// - Preferences must be well formed
// User-reference errors are always reported on user_username.
func Validate(ctx ValidateContext) ValidationErrors {
	var errs ValidationErrors

	switch ctx.User.Kind {
	case ResolutionCleared:
		errs.Add(FieldUserUsername, ErrUsernameRequired)
	case ResolutionNotFound:
		if ctx.User.ByID {
			errs.Add(FieldUser, ErrUserReferenceInvalid)
		}
		errs.Add(FieldUserUsername, ErrUserReferenceInvalid)
	case ResolutionResolved:
		if ctx.DuplicateOf != "" && ctx.DuplicateOf != ctx.ReviewerID {
			errs.Add(FieldUserUsername, ErrDuplicateUser)
		}
	}

	errs = append(errs, ValidatePreferences(ctx.Preferences)...)
	return errs
}
