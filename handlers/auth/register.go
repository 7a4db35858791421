package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wahegurunursing/classes-api/model"
	"github.com/wahegurunursing/classes-api/services"
	authutil "github.com/wahegurunursing/classes-api/utils/auth"
	"github.com/wahegurunursing/classes-api/utils/middleware"
	"github.com/wahegurunursing/classes-api/utils/response"
	"github.com/wahegurunursing/classes-api/utils/validation"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	blacklist            *authutil.TokenBlacklist
	lockouts             *authutil.LockoutManager
	bruteForceProtection *middleware.BruteForceProtection
	emailService         *services.EmailService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection, emailService *services.EmailService) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		blacklist:            authutil.NewTokenBlacklist(db),
		lockouts:             authutil.NewLockoutManager(db),
		bruteForceProtection: bruteForceProtection,
		emailService:         emailService,
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=50"`
	LastName  string `json:"last_name" validate:"required,min=2,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"` // defaults to "student"
}

// AuthResponse carries the user plus a fresh token pair
type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

// UserResponse represents user data in responses. The password hash never
// leaves the model's json:"-" tag, this struct is belt and braces.
type UserResponse struct {
	ID              uint      `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Phone           string    `json:"phone,omitempty"`
	Role            string    `json:"role"`
	IsActive        bool      `json:"is_active"`
	IsEmailVerified bool      `json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewUserResponse maps a user model to its API shape
func NewUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Phone:           user.Phone,
		Role:            user.Role,
		IsActive:        user.IsActive,
		IsEmailVerified: user.IsEmailVerified,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

// Register handles user registration
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.FirstName = validation.SanitizeString(req.FirstName)
	req.LastName = validation.SanitizeString(req.LastName)
	req.Email = model.NormalizeEmail(req.Email)

	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return response.BadRequest(c, "First name, last name, email, and password are required")
	}

	if !validation.ValidateEmail(req.Email) {
		return response.BadRequest(c, "Invalid email format")
	}
	if ok, msg := validation.ValidateName(req.FirstName); !ok {
		return response.BadRequest(c, msg)
	}
	if ok, msg := validation.ValidateName(req.LastName); !ok {
		return response.BadRequest(c, msg)
	}
	if !validation.ValidatePhone(req.Phone) {
		return response.BadRequest(c, "Invalid phone number")
	}

	// Every violated password rule is reported, not just the first
	if ok, violations := validation.ValidatePasswordStrength(req.Password); !ok {
		return response.ValidationError(c, violations)
	}

	if req.Role == "" {
		req.Role = model.RoleStudent
	}
	if !model.IsValidRole(req.Role) {
		return response.BadRequest(c, "Invalid role")
	}
	// Admin accounts are seeded, never self-registered
	if req.Role == model.RoleAdmin {
		return response.Forbidden(c, "Cannot register with this role")
	}

	var existingUser model.User
	if err := h.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return response.Conflict(c, "User with this email already exists")
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	verificationToken := uuid.New().String()
	verificationExpires := time.Now().Add(24 * time.Hour)

	user := model.User{
		FirstName:                req.FirstName,
		LastName:                 req.LastName,
		Email:                    req.Email,
		PasswordHash:             hashedPassword,
		Phone:                    req.Phone,
		Role:                     req.Role,
		IsActive:                 true,
		EmailVerificationToken:   verificationToken,
		EmailVerificationExpires: &verificationExpires,
		TokenVersion:             0,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to create user")
	}

	// Verification email failure must not fail registration
	go h.emailService.SendVerificationEmail(user.Email, verificationToken, user.FullName())

	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	return response.Created(c, AuthResponse{
		User:         NewUserResponse(&user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(h.jwtManager.AccessExpiry().Seconds()),
	})
}

// VerifyEmail marks the account verified when the token matches and has
// not expired.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return response.BadRequest(c, "Verification token is required")
	}

	var user model.User
	if err := h.db.Where("email_verification_token = ?", token).First(&user).Error; err != nil {
		return response.BadRequest(c, "Invalid verification token")
	}

	if user.EmailVerificationExpires == nil || user.EmailVerificationExpires.Before(time.Now()) {
		return response.BadRequest(c, "Verification token has expired")
	}

	if err := h.db.Model(&user).Updates(map[string]interface{}{
		"is_email_verified":          true,
		"email_verification_token":   "",
		"email_verification_expires": nil,
	}).Error; err != nil {
		return response.InternalServerError(c, "Failed to verify email")
	}

	return response.SuccessWithMessage(c, "Email verified successfully", nil)
}
