// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirphl/Shirahama-Clinic/app/dto"
	"github.com/amirphl/Shirahama-Clinic/app/services"
	"github.com/amirphl/Shirahama-Clinic/models"
	"github.com/amirphl/Shirahama-Clinic/repository"
	"github.com/amirphl/Shirahama-Clinic/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthFlow handles user authentication and session management
type AuthFlow interface {
	Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	RefreshToken(ctx context.Context, request *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.RefreshTokenResponse, error)
	Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) (*dto.LogoutResponse, error)
	ChangePassword(ctx context.Context, userID uint, request *dto.ChangePasswordRequest, metadata *ClientMetadata) error
}

// AuthFlowImpl implements the authentication business flow
type AuthFlowImpl struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.UserSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewAuthFlow creates a new authentication flow instance
func NewAuthFlow(
	userRepo repository.UserRepository,
	sessionRepo repository.UserSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) AuthFlow {
	return &AuthFlowImpl{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Login authenticates a user with email and password
func (af *AuthFlowImpl) Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	if err := af.validateLoginRequest(request); err != nil {
		return nil, NewBusinessError("LOGIN_VALIDATION_FAILED", "Login validation failed", err)
	}

	var user *models.User

	resp, err := af.WithLoginTransaction(ctx, func(ctx context.Context) (*dto.LoginResponse, error) {
		var err error
		user, err = af.userRepo.ByEmail(ctx, strings.TrimSpace(strings.ToLower(request.Email)))
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}

		// Check if account is active
		if !utils.IsTrue(user.IsActive) {
			return nil, ErrAccountInactive
		}

		// Verify password
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
			return nil, ErrIncorrectPassword
		}

		// Create new session
		session, err := af.CreateSession(ctx, user.ID, metadata)
		if err != nil {
			return nil, err
		}

		if err := af.userRepo.UpdateLastLogin(ctx, user.ID, utils.UTCNow()); err != nil {
			return nil, err
		}

		return &dto.LoginResponse{
			User:    ToAuthUserDTO(*user),
			Session: ToUserSessionDTO(*session),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Login failed: %s", err.Error())
		_ = af.LogAuthAttempt(ctx, user, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	msg := fmt.Sprintf("User logged in successfully: %d", resp.User.ID)
	_ = af.LogAuthAttempt(ctx, user, models.AuditActionLoginSuccess, msg, true, nil, metadata)

	return resp, nil
}

// RefreshToken exchanges a valid refresh token for a fresh session
func (af *AuthFlowImpl) RefreshToken(ctx context.Context, request *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.RefreshTokenResponse, error) {
	if request.RefreshToken == "" {
		return nil, NewBusinessError("REFRESH_VALIDATION_FAILED", "Refresh token is required", ErrSessionNotFound)
	}

	var user *models.User

	resp, err := af.WithRefreshTransaction(ctx, func(ctx context.Context) (*dto.RefreshTokenResponse, error) {
		session, err := af.sessionRepo.ByRefreshToken(ctx, request.RefreshToken)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, ErrSessionNotFound
		}
		if !session.IsValid() {
			return nil, ErrSessionExpired
		}

		user, err = af.userRepo.ByID(ctx, session.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
		if !utils.IsTrue(user.IsActive) {
			return nil, ErrAccountInactive
		}

		// Retire the old session and issue a new one
		if err := af.sessionRepo.ExpireSession(ctx, session.ID); err != nil {
			return nil, err
		}

		newSession, err := af.CreateSession(ctx, user.ID, metadata)
		if err != nil {
			return nil, err
		}

		return &dto.RefreshTokenResponse{
			Session: ToUserSessionDTO(*newSession),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Token refresh failed: %s", err.Error())
		_ = af.LogAuthAttempt(ctx, user, models.AuditActionSessionExpired, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("REFRESH_FAILED", "Token refresh failed", err)
	}

	msg := "Session refreshed successfully"
	_ = af.LogAuthAttempt(ctx, user, models.AuditActionSessionCreated, msg, true, nil, metadata)

	return resp, nil
}

// Logout terminates the session identified by the given access token
func (af *AuthFlowImpl) Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) (*dto.LogoutResponse, error) {
	if sessionToken == "" {
		return nil, NewBusinessError("LOGOUT_VALIDATION_FAILED", "Session token is required", ErrSessionNotFound)
	}

	var user *models.User

	resp, err := af.WithLogoutTransaction(ctx, func(ctx context.Context) (*dto.LogoutResponse, error) {
		session, err := af.sessionRepo.BySessionToken(ctx, sessionToken)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, ErrSessionNotFound
		}

		user, err = af.userRepo.ByID(ctx, session.UserID)
		if err != nil {
			return nil, err
		}

		if err := af.sessionRepo.ExpireSession(ctx, session.ID); err != nil {
			return nil, err
		}

		// Best effort; token becomes unusable even if revocation store is cold
		_ = af.tokenService.RevokeToken(sessionToken)

		return &dto.LogoutResponse{LoggedOut: true}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Logout failed: %s", err.Error())
		_ = af.LogAuthAttempt(ctx, user, models.AuditActionLogout, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}

	msg := "User logged out successfully"
	_ = af.LogAuthAttempt(ctx, user, models.AuditActionLogout, msg, true, nil, metadata)

	return resp, nil
}

// ChangePassword verifies the current password and replaces it, expiring all sessions
func (af *AuthFlowImpl) ChangePassword(ctx context.Context, userID uint, request *dto.ChangePasswordRequest, metadata *ClientMetadata) error {
	if request.NewPassword != request.ConfirmPassword {
		return NewBusinessError("CHANGE_PASSWORD_VALIDATION_FAILED", "Password confirmation does not match", ErrIncorrectPassword)
	}

	var user *models.User

	err := repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		var err error
		user, err = af.userRepo.ByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		if !utils.IsTrue(user.IsActive) {
			return ErrAccountInactive
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.CurrentPassword)); err != nil {
			return ErrIncorrectPassword
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(request.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		if err := af.userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
			return err
		}

		// All existing sessions become invalid after a password change
		return af.sessionRepo.ExpireAllUserSessions(ctx, user.ID)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Password change failed: %s", err.Error())
		_ = af.LogAuthAttempt(ctx, user, models.AuditActionSessionExpired, errMsg, false, &errMsg, metadata)

		return NewBusinessError("CHANGE_PASSWORD_FAILED", "Password change failed", err)
	}

	msg := fmt.Sprintf("Password changed successfully: %d", userID)
	_ = af.LogAuthAttempt(ctx, user, models.AuditActionSessionExpired, msg, true, nil, metadata)

	return nil
}

// Private helper methods

func (af *AuthFlowImpl) CreateSession(ctx context.Context, userID uint, metadata *ClientMetadata) (*models.UserSession, error) {
	// Generate tokens
	accessToken, refreshToken, err := af.tokenService.GenerateTokens(userID)
	if err != nil {
		return nil, err
	}

	// Calculate expiry time using constant
	expiresAt := utils.UTCNowAdd(utils.SessionTimeout)

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	// Create session record
	session := &models.UserSession{
		UserID:        userID,
		CorrelationID: uuid.New(),
		SessionToken:  accessToken,
		RefreshToken:  &refreshToken,
		ExpiresAt:     expiresAt,
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	err = af.sessionRepo.Save(ctx, session)
	if err != nil {
		return nil, err
	}

	return session, nil
}

func (af *AuthFlowImpl) LogAuthAttempt(ctx context.Context, user *models.User, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	var userID *uint
	var clinicID *uint
	if user != nil {
		userID = &user.ID
		clinicID = &user.ClinicID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:       userID,
		ClinicID:     clinicID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	requestID := ctx.Value(utils.RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return af.auditRepo.Save(ctx, audit)
}

func (af *AuthFlowImpl) WithLoginTransaction(ctx context.Context, fn func(context.Context) (*dto.LoginResponse, error)) (*dto.LoginResponse, error) {
	var result *dto.LoginResponse
	var fnErr error

	err := repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func (af *AuthFlowImpl) WithRefreshTransaction(ctx context.Context, fn func(context.Context) (*dto.RefreshTokenResponse, error)) (*dto.RefreshTokenResponse, error) {
	var result *dto.RefreshTokenResponse
	var fnErr error

	err := repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func (af *AuthFlowImpl) WithLogoutTransaction(ctx context.Context, fn func(context.Context) (*dto.LogoutResponse, error)) (*dto.LogoutResponse, error) {
	var result *dto.LogoutResponse
	var fnErr error

	err := repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func (af *AuthFlowImpl) validateLoginRequest(request *dto.LoginRequest) error {
	if request.Email == "" {
		return ErrUserNotFound
	}

	if request.Password == "" {
		return ErrIncorrectPassword
	}

	return nil
}
