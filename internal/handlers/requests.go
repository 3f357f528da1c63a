package handlers

// PinRequest represents a PIN submission
type PinRequest struct {
	PIN string `json:"pin"`
}

// RegisterRequest represents a registration submission
type RegisterRequest struct {
	Nickname    string `json:"nickname"`
	ContactInfo string `json:"contact_info"`
}

// VoteRequest represents a ballot submission
type VoteRequest struct {
	Option string `json:"option"`
}

// AdminLoginRequest represents an admin login attempt
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// DeclareAnswerRequest represents the admin declaring the correct option
type DeclareAnswerRequest struct {
	Option string `json:"option"`
}
