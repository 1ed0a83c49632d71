package model

import "parallel-muhit-webapp/internal/domain"

// UserProfile is the subscriber's profile as returned by the backend.
type UserProfile struct {
	IsSubscribed bool `json:"is_subscribed"`
	RestOfDays   int  `json:"rest_of_days"`
}

type ProfileStatus string

const (
	ProfileIdle    ProfileStatus = "idle"
	ProfileLoading ProfileStatus = "loading"
	ProfileLoaded  ProfileStatus = "loaded"
	ProfileFailed  ProfileStatus = "failed"
)

// ProfileState is a tagged variant: Profile is set only when Status is
// ProfileLoaded and Reason only when Status is ProfileFailed.
// Build it with the constructors below.
type ProfileState struct {
	Status  ProfileStatus    `json:"status"`
	Profile *UserProfile     `json:"profile,omitempty"`
	Reason  domain.ErrorKind `json:"reason,omitempty"`
}

func ProfileStateIdle() ProfileState    { return ProfileState{Status: ProfileIdle} }
func ProfileStateLoading() ProfileState { return ProfileState{Status: ProfileLoading} }

func ProfileStateLoaded(p UserProfile) ProfileState {
	return ProfileState{Status: ProfileLoaded, Profile: &p}
}

func ProfileStateFailed(reason domain.ErrorKind) ProfileState {
	if reason == domain.KindNone {
		reason = domain.KindServiceError
	}
	return ProfileState{Status: ProfileFailed, Reason: reason}
}

// Loaded returns the profile and true when the state carries one.
func (s ProfileState) Loaded() (UserProfile, bool) {
	if s.Status != ProfileLoaded || s.Profile == nil {
		return UserProfile{}, false
	}
	return *s.Profile, true
}

// NeedsRenewal reports whether the renewal prompt applies.
func (s ProfileState) NeedsRenewal() bool {
	p, ok := s.Loaded()
	return ok && !p.IsSubscribed
}
