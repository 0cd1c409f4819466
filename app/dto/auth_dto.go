// Package dto contains Data Transfer Objects for API request and response structures
package dto

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"manager@clinic.com.br"`
	Password string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
}

// AuthUserDTO represents user information returned in authentication responses
type AuthUserDTO struct {
	ID         uint   `json:"id" example:"123"`
	UUID       string `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	ClinicID   uint   `json:"clinic_id" example:"1"`
	ClinicName string `json:"clinic_name" example:"Clinica Bella Pele"`
	FullName   string `json:"full_name" example:"Maria Souza"`
	Email      string `json:"email" example:"manager@clinic.com.br"`
	Role       string `json:"role" example:"manager"`
	IsActive   *bool  `json:"is_active" example:"true"`
	CreatedAt  string `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// UserSessionDTO represents session tokens returned on login
type UserSessionDTO struct {
	SessionToken string  `json:"access_token"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	ExpiresIn    int     `json:"expires_in" example:"86400"`
	TokenType    string  `json:"token_type" example:"Bearer"`
	CreatedAt    string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// LoginResponse represents the successful login response
type LoginResponse struct {
	User    AuthUserDTO    `json:"user"`
	Session UserSessionDTO `json:"session"`
}

// RefreshTokenRequest represents the request to refresh an access token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse represents the response with fresh tokens
type RefreshTokenResponse struct {
	Session UserSessionDTO `json:"session"`
}

// ChangePasswordRequest represents the request to change the current password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required,min=8,max=100"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=100"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// LogoutResponse represents the response after logout
type LogoutResponse struct {
	LoggedOut bool `json:"logged_out" example:"true"`
}

// Common error codes for authentication operations
const (
	ErrorUserNotFound      = "USER_NOT_FOUND"
	ErrorIncorrectPassword = "INCORRECT_PASSWORD"
	ErrorAccountInactive   = "ACCOUNT_INACTIVE"
	ErrorSessionExpired    = "SESSION_EXPIRED"
	ErrorPermissionDenied  = "PERMISSION_DENIED"
)
