package services

// Service errors
var (
	ErrVotingClosed      = &ServiceError{Message: "voting is closed"}
	ErrWrongPin          = &ServiceError{Message: "incorrect PIN"}
	ErrInvalidOption     = &ServiceError{Message: "please choose a valid option"}
	ErrAlreadyVoted      = &ServiceError{Message: "you have already voted"}
	ErrDuplicateNickname = &ServiceError{Message: "that nickname is already taken"}
	ErrDuplicateContact  = &ServiceError{Message: "that contact info is already used"}
	ErrInvalidInput      = &ServiceError{Message: "nickname and contact info are required"}
	ErrSessionExpired    = &ServiceError{Message: "session is unknown or expired"}
	ErrPinRequired       = &ServiceError{Message: "PIN verification required"}
	ErrAlreadyIdentified = &ServiceError{Message: "session is already registered"}
	ErrNotIdentified     = &ServiceError{Message: "registration required before voting"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}
