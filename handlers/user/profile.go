package user

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/wahegurunursing/classes-api/model"
	authutil "github.com/wahegurunursing/classes-api/utils/auth"
	"github.com/wahegurunursing/classes-api/utils/middleware"
	"github.com/wahegurunursing/classes-api/utils/response"
	"github.com/wahegurunursing/classes-api/utils/validation"
)

// UserHandler handles user profile and administration requests
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler creates a new user handler
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// GetProfile returns the authenticated user's profile
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}
	return response.Success(c, user)
}

// UpdateProfileRequest carries the whitelisted profile fields
type UpdateProfileRequest struct {
	FirstName   *string                `json:"first_name,omitempty"`
	LastName    *string                `json:"last_name,omitempty"`
	Phone       *string                `json:"phone,omitempty"`
	Profile     *model.UserProfile     `json:"profile,omitempty"`
	Preferences *model.UserPreferences `json:"preferences,omitempty"`
}

// UpdateProfile updates the whitelisted profile fields only. Role, email
// and security columns are never writable through this endpoint.
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	updates := map[string]interface{}{}

	if req.FirstName != nil {
		name := validation.SanitizeString(*req.FirstName)
		if ok, msg := validation.ValidateName(name); !ok {
			return response.BadRequest(c, msg)
		}
		updates["first_name"] = name
	}
	if req.LastName != nil {
		name := validation.SanitizeString(*req.LastName)
		if ok, msg := validation.ValidateName(name); !ok {
			return response.BadRequest(c, msg)
		}
		updates["last_name"] = name
	}
	if req.Phone != nil {
		if !validation.ValidatePhone(*req.Phone) {
			return response.BadRequest(c, "Invalid phone number")
		}
		updates["phone"] = *req.Phone
	}
	if req.Profile != nil {
		data, err := json.Marshal(req.Profile)
		if err != nil {
			return response.BadRequest(c, "Invalid profile data")
		}
		updates["profile"] = datatypes.JSON(data)
	}
	if req.Preferences != nil {
		data, err := json.Marshal(req.Preferences)
		if err != nil {
			return response.BadRequest(c, "Invalid preferences data")
		}
		updates["preferences"] = datatypes.JSON(data)
	}

	if len(updates) == 0 {
		return response.BadRequest(c, "No fields to update")
	}

	if err := h.db.Model(user).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, user)
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// ChangePassword verifies the current password, enforces the policy,
// rejects reuse against the recorded history and invalidates all issued
// tokens by bumping the token version.
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Current and new password are required")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		return response.Unauthorized(c, "Current password is incorrect")
	}

	if ok, violations := validation.ValidatePasswordStrength(req.NewPassword); !ok {
		return response.ValidationError(c, violations)
	}

	// Reuse check covers the current password and the stored history
	if authutil.VerifyPassword(user.PasswordHash, req.NewPassword) == nil {
		return response.BadRequest(c, "New password must differ from recent passwords")
	}
	var history []model.PasswordHistoryEntry
	if len(user.PasswordHistory) > 0 {
		if err := json.Unmarshal(user.PasswordHistory, &history); err != nil {
			history = nil
		}
	}
	for _, entry := range history {
		if authutil.VerifyPassword(entry.Hash, req.NewPassword) == nil {
			return response.BadRequest(c, "New password must differ from recent passwords")
		}
	}

	newHash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	now := time.Now()
	history = append([]model.PasswordHistoryEntry{{Hash: user.PasswordHash, ChangedAt: now}}, history...)
	if len(history) > model.PasswordHistoryLimit {
		history = history[:model.PasswordHistoryLimit]
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return response.InternalServerError(c, "")
	}

	if err := h.db.Model(user).Updates(map[string]interface{}{
		"password_hash":        newHash,
		"password_history":     datatypes.JSON(historyJSON),
		"last_password_change": now,
		"token_version":        gorm.Expr("token_version + 1"),
	}).Error; err != nil {
		return response.InternalServerError(c, "Failed to change password")
	}

	return response.SuccessWithMessage(c, "Password changed successfully. Please log in again.", nil)
}

// Deactivate disables the authenticated user's own account
func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	if err := h.db.Model(user).Updates(map[string]interface{}{
		"is_active":     false,
		"token_version": gorm.Expr("token_version + 1"),
	}).Error; err != nil {
		return response.InternalServerError(c, "Failed to deactivate account")
	}

	return response.SuccessWithMessage(c, "Account deactivated", nil)
}
