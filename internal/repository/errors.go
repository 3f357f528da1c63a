package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the repository.
// This abstracts away the underlying storage implementation from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateNickname is returned when a registration collides with an
// existing participant's nickname.
var ErrDuplicateNickname = errors.New("nickname already registered")

// ErrDuplicateContact is returned when a registration collides with an
// existing participant's contact info.
var ErrDuplicateContact = errors.New("contact info already registered")

// ErrAlreadyVoted is returned when a ballot insert finds the participant's
// has_voted flag already set (or an existing ballot row).
var ErrAlreadyVoted = errors.New("participant has already voted")
