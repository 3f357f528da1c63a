package models

import "time"

// Option is one of the fixed choices a participant can guess.
type Option string

const (
	OptionBoy  Option = "boy"
	OptionGirl Option = "girl"
)

// Options returns the fixed option set in display order.
func Options() []Option {
	return []Option{OptionBoy, OptionGirl}
}

// Valid reports whether o is a member of the fixed option set.
func (o Option) Valid() bool {
	return o == OptionBoy || o == OptionGirl
}

// VotingEvent is the single live poll: a shared PIN gates entry, the deadline
// closes admission, and CorrectOption stays nil until an admin declares it.
type VotingEvent struct {
	ID            int64      `json:"id"`
	PIN           string     `json:"-"`
	CorrectOption *Option    `json:"correct_option,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Participant is a uniquely identified person allowed exactly one ballot.
// Nickname and ContactInfo are each globally unique; that pair is the only
// identity mechanism the system has.
type Participant struct {
	ID          int64     `json:"id"`
	EventID     int64     `json:"event_id"`
	Nickname    string    `json:"nickname"`
	ContactInfo string    `json:"contact_info"`
	HasVoted    bool      `json:"has_voted"`
	CreatedAt   time.Time `json:"created_at"`
}

// Ballot is an immutable record of one participant's choice.
type Ballot struct {
	ID            int64     `json:"id"`
	EventID       int64     `json:"event_id"`
	ParticipantID int64     `json:"participant_id"`
	OptionChosen  Option    `json:"option_chosen"`
	CastAt        time.Time `json:"cast_at"`
}

// Tally holds per-option ballot counts for the event.
type Tally struct {
	Options map[Option]int `json:"options"`
	Total   int            `json:"total"`
}

// Feedback is the post-declaration correctness result for one participant.
// Decided is false until the admin declares the correct option.
type Feedback struct {
	Decided       bool   `json:"decided"`
	IsCorrect     bool   `json:"is_correct"`
	YourChoice    Option `json:"your_choice,omitempty"`
	CorrectOption Option `json:"correct_option,omitempty"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
