package model

import "time"

// Slot names a piece of session state that is filled by a backend call.
type Slot string

const (
	SlotProfile Slot = "profile"
	SlotHistory Slot = "history"
	SlotFAQ     Slot = "faq"
	SlotUpload  Slot = "upload"
)

// Session is the whole mutable state of one browser session. The page
// controller is its only writer. The API key is deliberately absent: it is
// read from the request URL every time it is needed.
type Session struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Page      PageState       `json:"page"`
	Profile   ProfileState    `json:"profile"`
	FAQs      []FAQ           `json:"faqs"`
	History   HistoryState    `json:"history"`
	Upload    UploadState     `json:"upload"`
	Seq       map[Slot]uint64 `json:"seq"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		Page:      PageDashboard,
		Profile:   ProfileStateIdle(),
		History:   HistoryState{Page: 1},
		Upload:    UploadStateIdle(),
		Seq:       map[Slot]uint64{},
	}
}

// Begin marks a new request for slot and returns its sequence number.
func (s *Session) Begin(slot Slot) uint64 {
	if s.Seq == nil {
		s.Seq = map[Slot]uint64{}
	}
	s.Seq[slot]++
	return s.Seq[slot]
}

// Current reports whether seq is still the latest request for slot.
// Responses to superseded requests must be dropped.
func (s *Session) Current(slot Slot, seq uint64) bool {
	return s.Seq[slot] == seq
}

// DashboardBranch is what the dashboard shows, in priority order.
type DashboardBranch string

const (
	BranchError   DashboardBranch = "error"
	BranchLoading DashboardBranch = "loading"
	BranchBalance DashboardBranch = "balance"
)

func (s *Session) DashboardBranch() DashboardBranch {
	switch s.Profile.Status {
	case ProfileFailed:
		return BranchError
	case ProfileLoaded:
		return BranchBalance
	default:
		return BranchLoading
	}
}
