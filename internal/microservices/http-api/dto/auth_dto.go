package dto

// RegisterRequest starts (or restarts) email confirmation.
type RegisterRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
}

type RegisterResponse struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// TokenRequest exchanges an email and its confirmation code for a token.
type TokenRequest struct {
	Email            string `json:"email" binding:"required,email,max=254"`
	ConfirmationCode string `json:"confirmation_code" binding:"required,max=64"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
