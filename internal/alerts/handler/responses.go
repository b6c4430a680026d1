package handler

import (
	"time"

	"datamover/internal/alerts"
)

// PreferenceResponse is one alert preference as served over HTTP.
type PreferenceResponse struct {
	ID               string    `json:"id"`
	PipelineID       string    `json:"pipeline_id,omitempty"`
	Channels         []string  `json:"channels"`
	NotifyOnFailure  bool      `json:"notify_on_failure"`
	NotifyOnRecovery bool      `json:"notify_on_recovery"`
	FailureThreshold int       `json:"failure_threshold"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ListResponse is the HTTP response for GET /alerts/preferences.
type ListResponse struct {
	Preferences []PreferenceResponse `json:"preferences"`
}

// FromPreference converts a domain preference to an HTTP response.
func FromPreference(pref alerts.Preference) PreferenceResponse {
	out := PreferenceResponse{
		ID:               pref.ID.String(),
		Channels:         pref.Channels,
		NotifyOnFailure:  pref.NotifyOnFailure,
		NotifyOnRecovery: pref.NotifyOnRecovery,
		FailureThreshold: pref.FailureThreshold,
		UpdatedAt:        pref.UpdatedAt,
	}
	if pref.PipelineID != nil {
		out.PipelineID = pref.PipelineID.String()
	}
	return out
}

// FromPreferences converts a slice of domain preferences.
func FromPreferences(prefs []alerts.Preference) ListResponse {
	out := ListResponse{Preferences: make([]PreferenceResponse, 0, len(prefs))}
	for _, pref := range prefs {
		out.Preferences = append(out.Preferences, FromPreference(pref))
	}
	return out
}
