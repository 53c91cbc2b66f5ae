package reviewer

// Preference is a reviewer's declared willingness to review a track at an audience level.
// Zero IDs mean the track or audience level was left unset.
type Preference struct {
	TrackID         int64
	AudienceLevelID int64
	Accepted        bool
}

// AcceptedPreferences returns the subset of preferences marked accepted.
func AcceptedPreferences(prefs []Preference) []Preference {
	var accepted []Preference
	for _, p := range prefs {
		if p.Accepted {
			accepted = append(accepted, p)
		}
	}
	return accepted
}

// HasAcceptedPreference reports whether at least one preference is accepted.
func HasAcceptedPreference(prefs []Preference) bool {
	for _, p := range prefs {
		if p.Accepted {
			return true
		}
	}
	return false
}

// ValidatePreferences checks the preference set on its own.
// Rules:
// - An accepted preference must name both a track and an audience level
// - A (track, audience level) pair appears at most once
func ValidatePreferences(prefs []Preference) ValidationErrors {
	var errs ValidationErrors
	type pair struct{ track, level int64 }
	seen := make(map[pair]bool)

	for _, p := range prefs {
		if p.Accepted && (p.TrackID == 0 || p.AudienceLevelID == 0) {
			errs.Add(FieldPreferences, ErrPreferenceIncomplete)
			continue
		}
		if p.TrackID == 0 || p.AudienceLevelID == 0 {
			continue
		}
		k := pair{p.TrackID, p.AudienceLevelID}
		if seen[k] {
			errs.Add(FieldPreferences, ErrDuplicatePreference)
			continue
		}
		seen[k] = true
	}

	return errs
}
