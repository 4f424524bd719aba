package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/models"
	"storefront/internal/repositories/interfaces"
	"storefront/internal/utils"
	"storefront/pkg/logger"
	"storefront/pkg/oauth"
)

type AuthService interface {
	// Authentication
	Register(ctx context.Context, request *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, request *LoginRequest) (*AuthResponse, error)

	// Social authentication
	GoogleAuth(ctx context.Context, accessToken string) (*AuthResponse, error)
	GoogleLogin(ctx context.Context, code string) (*AuthResponse, error)
	GoogleAuthURL(state string) (string, error)

	// Email verification
	VerifyEmail(ctx context.Context, token string) error

	// Password management
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

type EmailService interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User      *models.User `json:"user,omitempty"`
	Token     string       `json:"token"`
	IsNewUser bool         `json:"-"`
}

type AuthConfig struct {
	JWTSecret        string
	AccessTokenTTL   time.Duration
	SocialTokenTTL   time.Duration
	VerifyTokenTTL   time.Duration
	ResetTokenTTL    time.Duration
	MaxLoginAttempts int
	LoginLockoutTime time.Duration
	BaseURL          string
}

type authService struct {
	userRepo     interfaces.UserRepository
	cache        CacheService
	google       oauth.OAuthProvider
	emailService EmailService
	config       AuthConfig
	logger       *logger.Logger
}

func NewAuthService(
	userRepo interfaces.UserRepository,
	cache CacheService,
	google oauth.OAuthProvider,
	emailService EmailService,
	config AuthConfig,
	logger *logger.Logger,
) AuthService {
	if config.AccessTokenTTL == 0 {
		config.AccessTokenTTL = utils.JWTAccessTokenTTL
	}
	if config.SocialTokenTTL == 0 {
		config.SocialTokenTTL = utils.JWTSocialTokenTTL
	}
	return &authService{
		userRepo:     userRepo,
		cache:        cache,
		google:       google,
		emailService: emailService,
		config:       config,
		logger:       logger,
	}
}

func (s *authService) Register(ctx context.Context, request *RegisterRequest) (*AuthResponse, error) {
	request.Email = utils.NormalizeEmail(request.Email)
	request.Name = strings.TrimSpace(request.Name)

	if err := utils.ValidateStruct(request); err != nil {
		return nil, newError(KindInvalidInput, utils.ValidationMessage(err))
	}

	if _, err := s.userRepo.GetByEmail(ctx, request.Email); err == nil {
		return nil, newError(KindInvalidInput, utils.ErrUserExists)
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, s.internal(ctx, err, "check existing user")
	}

	hashedPassword, err := s.hashPassword(request.Password)
	if err != nil {
		return nil, s.internal(ctx, err, "hash password")
	}

	user := &models.User{
		Name:         request.Name,
		Email:        request.Email,
		Password:     hashedPassword,
		AuthProvider: models.AuthProviderEmail,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			return nil, newError(KindInvalidInput, utils.ErrUserExists)
		}
		return nil, s.internal(ctx, err, "create user")
	}

	token, err := s.sessionToken(user, s.config.AccessTokenTTL)
	if err != nil {
		return nil, s.internal(ctx, err, "sign token")
	}

	s.sendVerificationEmail(ctx, user)

	s.logger.LogUserAction(user.ID.Hex(), utils.EventUserRegistered, map[string]interface{}{
		"email": utils.MaskEmail(user.Email),
	})

	return &AuthResponse{User: user, Token: token, IsNewUser: true}, nil
}

func (s *authService) Login(ctx context.Context, request *LoginRequest) (*AuthResponse, error) {
	request.Email = utils.NormalizeEmail(request.Email)

	if err := utils.ValidateStruct(request); err != nil {
		return nil, newError(KindInvalidInput, utils.ErrInvalidCredentials)
	}

	if s.lockedOut(ctx, request.Email) {
		s.logger.LogSecurityEvent("login_locked", "medium", map[string]interface{}{
			"email": utils.MaskEmail(request.Email),
		})
		return nil, newError(KindRateLimited, "Too many login attempts, try again later")
	}

	user, err := s.userRepo.GetByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			s.recordFailedLoginAttempt(ctx, request.Email)
			return nil, newError(KindInvalidInput, utils.ErrInvalidCredentials)
		}
		return nil, s.internal(ctx, err, "load user")
	}

	if !s.checkPassword(request.Password, user.Password) {
		s.recordFailedLoginAttempt(ctx, request.Email)
		s.logger.WithUserID(user.ID.Hex()).Warn("Login attempt with invalid credentials")
		return nil, newError(KindInvalidInput, utils.ErrInvalidCredentials)
	}

	s.resetFailedLoginAttempts(ctx, request.Email)

	token, err := s.sessionToken(user, s.config.AccessTokenTTL)
	if err != nil {
		return nil, s.internal(ctx, err, "sign token")
	}

	s.logger.LogUserAction(user.ID.Hex(), utils.EventUserLogin, nil)

	return &AuthResponse{User: user, Token: token}, nil
}

// GoogleAuth signs in with a Google access token obtained by the client.
// The token is verified against Google before any account is touched.
func (s *authService) GoogleAuth(ctx context.Context, accessToken string) (*AuthResponse, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, newError(KindInvalidInput, "accessToken is required")
	}
	if s.google == nil {
		return nil, internalError(errors.New("google sign-in is not configured"), "google auth")
	}

	info, err := s.google.GetUserInfo(ctx, accessToken)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Google token verification failed")
		return nil, newError(KindUnauthenticated, "Invalid Google token")
	}

	return s.signInWithGoogle(ctx, info)
}

// GoogleLogin completes the authorization code flow.
func (s *authService) GoogleLogin(ctx context.Context, code string) (*AuthResponse, error) {
	if strings.TrimSpace(code) == "" {
		return nil, newError(KindInvalidInput, "code is required")
	}
	if s.google == nil {
		return nil, internalError(errors.New("google sign-in is not configured"), "google login")
	}

	token, err := s.google.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Google code exchange failed")
		return nil, newError(KindUnauthenticated, "Invalid Google authorization code")
	}

	return s.GoogleAuth(ctx, token.AccessToken)
}

// GoogleAuthURL returns the consent page the client redirects to. The
// caller owns state and must compare it on return.
func (s *authService) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", internalError(errors.New("google sign-in is not configured"), "google auth url")
	}
	return s.google.GetAuthURL(state), nil
}

func (s *authService) signInWithGoogle(ctx context.Context, info *oauth.UserInfo) (*AuthResponse, error) {
	email := utils.NormalizeEmail(info.Email)
	if email == "" || !info.EmailVerified {
		return nil, newError(KindUnauthenticated, "Google account email is not verified")
	}

	isNew := false
	user, err := s.userRepo.GetByGoogleID(ctx, info.ID)
	if errors.Is(err, interfaces.ErrNotFound) {
		user, err = s.userRepo.GetByEmail(ctx, email)
		if err == nil {
			if lerr := s.userRepo.LinkGoogleAccount(ctx, user.ID.Hex(), info.ID, info.Picture); lerr != nil {
				return nil, s.internal(ctx, lerr, "link google account")
			}
			user.GoogleID = info.ID
			user.IsEmailVerified = true
		}
	}

	if errors.Is(err, interfaces.ErrNotFound) {
		hashedPassword, herr := s.hashPassword(utils.GenerateRandomPassword(32))
		if herr != nil {
			return nil, s.internal(ctx, herr, "hash password")
		}

		name := strings.TrimSpace(info.Name)
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}

		user = &models.User{
			Name:            name,
			Email:           email,
			Password:        hashedPassword,
			AuthProvider:    models.AuthProviderGoogle,
			GoogleID:        info.ID,
			ProfilePicture:  info.Picture,
			IsEmailVerified: true,
		}
		if err = s.userRepo.Create(ctx, user); err != nil {
			return nil, s.internal(ctx, err, "create google user")
		}
		isNew = true
	} else if err != nil {
		return nil, s.internal(ctx, err, "load google user")
	}

	token, err := s.sessionToken(user, s.config.SocialTokenTTL)
	if err != nil {
		return nil, s.internal(ctx, err, "sign token")
	}

	s.logger.LogUserAction(user.ID.Hex(), utils.EventGoogleLogin, map[string]interface{}{
		"new_user": isNew,
	})

	return &AuthResponse{User: user, Token: token, IsNewUser: isNew}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := utils.ValidatePurposeToken(token, s.config.JWTSecret, utils.TokenPurposeVerifyEmail)
	if err != nil {
		return newError(KindInvalidInput, "Invalid or expired verification link")
	}

	if err := s.userRepo.MarkEmailVerified(ctx, claims.UserID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return newError(KindNotFound, utils.ErrUserNotFound)
		}
		return s.internal(ctx, err, "verify email")
	}

	s.logger.LogUserAction(claims.UserID, utils.EventEmailVerified, nil)

	return nil
}

// RequestPasswordReset mails a reset link when the account exists. It
// reports success either way so callers cannot probe for accounts.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = utils.NormalizeEmail(email)
	if !utils.IsValidEmail(email) {
		return newError(KindInvalidInput, "Invalid email address")
	}

	if s.emailService == nil {
		return internalError(errors.New("email delivery is not configured"), "request password reset")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil
		}
		return s.internal(ctx, err, "load user")
	}

	token, err := utils.GenerateToken(user.ID.Hex(), false, utils.TokenPurposePasswordReset, s.config.JWTSecret, s.config.ResetTokenTTL)
	if err != nil {
		return s.internal(ctx, err, "sign reset token")
	}

	link := utils.CreatePasswordResetLink(s.config.BaseURL, token)
	body := fmt.Sprintf("Hello %s,\n\nReset your password using the link below. It expires in %s.\n\n%s\n", user.Name, s.config.ResetTokenTTL, link)
	if err := s.emailService.SendEmail(ctx, user.Email, "Reset your password", body); err != nil {
		return s.internal(ctx, err, "send reset email")
	}

	s.logger.LogUserAction(user.ID.Hex(), utils.EventPasswordReset, map[string]interface{}{"stage": "requested"})

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, password string) error {
	claims, err := utils.ValidatePurposeToken(token, s.config.JWTSecret, utils.TokenPurposePasswordReset)
	if err != nil {
		return newError(KindInvalidInput, "Invalid or expired reset link")
	}

	if len(password) < utils.PasswordMinLength || len(password) > utils.PasswordMaxLength {
		return newError(KindInvalidInput, "Password must be at least 6 characters long")
	}

	hashedPassword, err := s.hashPassword(password)
	if err != nil {
		return s.internal(ctx, err, "hash password")
	}

	if err := s.userRepo.UpdatePassword(ctx, claims.UserID, hashedPassword); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return newError(KindNotFound, utils.ErrUserNotFound)
		}
		return s.internal(ctx, err, "update password")
	}

	s.logger.LogUserAction(claims.UserID, utils.EventPasswordReset, map[string]interface{}{"stage": "completed"})

	return nil
}

// Helper methods
func (s *authService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), utils.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *authService) checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func (s *authService) sessionToken(user *models.User, ttl time.Duration) (string, error) {
	return utils.GenerateToken(user.ID.Hex(), user.IsAdmin, "", s.config.JWTSecret, ttl)
}

func (s *authService) sendVerificationEmail(ctx context.Context, user *models.User) {
	if s.emailService == nil {
		return
	}

	token, err := utils.GenerateToken(user.ID.Hex(), false, utils.TokenPurposeVerifyEmail, s.config.JWTSecret, s.config.VerifyTokenTTL)
	if err != nil {
		s.logger.WithError(err).WithUserID(user.ID.Hex()).Error("Failed to sign verification token")
		return
	}

	link := utils.CreateEmailVerificationLink(s.config.BaseURL, token)
	body := fmt.Sprintf("Hello %s,\n\nConfirm your email address using the link below.\n\n%s\n", user.Name, link)
	if err := s.emailService.SendEmail(ctx, user.Email, "Verify your email", body); err != nil {
		s.logger.WithError(err).WithUserID(user.ID.Hex()).Error("Failed to send verification email")
	}
}

func (s *authService) loginAttemptsKey(email string) string {
	return utils.CacheLoginAttempts + email
}

func (s *authService) lockedOut(ctx context.Context, email string) bool {
	if s.cache == nil || s.config.MaxLoginAttempts <= 0 {
		return false
	}

	var attempts int64
	if err := s.cache.Get(ctx, s.loginAttemptsKey(email), &attempts); err != nil {
		return false
	}
	return attempts >= int64(s.config.MaxLoginAttempts)
}

func (s *authService) recordFailedLoginAttempt(ctx context.Context, email string) {
	if s.cache == nil || s.config.MaxLoginAttempts <= 0 {
		return
	}

	if _, err := s.cache.Increment(ctx, s.loginAttemptsKey(email), s.config.LoginLockoutTime); err != nil {
		s.logger.WithError(err).Warn("Failed to record login attempt")
	}
}

func (s *authService) resetFailedLoginAttempts(ctx context.Context, email string) {
	if s.cache == nil || s.config.MaxLoginAttempts <= 0 {
		return
	}
	s.cache.Delete(ctx, s.loginAttemptsKey(email))
}

func (s *authService) internal(ctx context.Context, err error, action string) error {
	s.logger.WithContext(ctx).WithError(err).WithField("action", action).Error("Auth operation failed")
	return internalError(err, action)
}
