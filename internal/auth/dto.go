package auth

import "strings"

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

func (dto LoginDTO) Validate() error {
	if strings.TrimSpace(dto.Email) == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !strings.Contains(dto.Email, "@") {
		return ValidationError{Field: "email", Message: "email is invalid"}
	}
	if dto.Password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (dto RefreshTokenDTO) Validate() error {
	if dto.RefreshToken == "" {
		return ValidationError{Field: "refresh_token", Message: "refresh_token is required"}
	}
	return nil
}
