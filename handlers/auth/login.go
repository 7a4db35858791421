package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wahegurunursing/classes-api/model"
	authutil "github.com/wahegurunursing/classes-api/utils/auth"
	"github.com/wahegurunursing/classes-api/utils/response"
	"github.com/wahegurunursing/classes-api/utils/seclog"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

const lockedMessage = "Account is locked due to too many failed login attempts. Try again later."

// Login handles user login with per-account lockout. Five failed attempts
// lock the account for two hours; during an unexpired lock even correct
// credentials are rejected.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	ip := c.IP()
	email := model.NormalizeEmail(req.Email)

	var user model.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}
		seclog.LoginAttempt(c, email, false, "unknown email")
		return response.Unauthorized(c, "Invalid credentials")
	}

	if user.IsLocked() {
		seclog.LoginAttempt(c, email, false, "account locked")
		return response.Unauthorized(c, lockedMessage)
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}

		nowLocked, _, lockErr := h.lockouts.RegisterFailure(&user)
		if lockErr != nil {
			return response.InternalServerError(c, "")
		}
		if nowLocked {
			seclog.AccountLocked(c, email)
			return response.Unauthorized(c, lockedMessage)
		}

		seclog.LoginAttempt(c, email, false, "wrong password")
		return response.Unauthorized(c, "Invalid credentials")
	}

	if !user.IsActive {
		seclog.LoginAttempt(c, email, false, "account deactivated")
		return response.Unauthorized(c, "Account is deactivated")
	}

	// Successful login clears both trackers
	loginAt := c.Context().Time()
	if err := h.lockouts.Reset(user.ID, loginAt); err != nil {
		return response.InternalServerError(c, "")
	}
	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccessfulAttempt(c, ip)
	}

	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	seclog.LoginAttempt(c, email, true, "")
	user.LastLogin = &loginAt

	return response.Success(c, AuthResponse{
		User:         NewUserResponse(&user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(h.jwtManager.AccessExpiry().Seconds()),
	})
}
