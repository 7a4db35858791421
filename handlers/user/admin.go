package user

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/wahegurunursing/classes-api/model"
	"github.com/wahegurunursing/classes-api/utils/response"
)

// List returns users with role and active filters (admin only via routing)
func (h *UserHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	query := h.db.Model(&model.User{})

	if role := c.Query("role"); role != "" {
		if !model.IsValidRole(role) {
			return response.BadRequest(c, "Invalid role filter")
		}
		query = query.Where("role = ?", role)
	}
	if active := c.Query("isActive"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "")
	}

	pagination := response.CalculatePagination(page, limit, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var users []model.User
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pagination.PerPage).
		Find(&users).Error; err != nil {
		return response.InternalServerError(c, "")
	}

	return response.Paginated(c, users, pagination)
}

// Get returns one user by ID
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user ID")
	}

	var user model.User
	if err := h.db.First(&user, id).Error; err != nil {
		return response.FromDBError(c, err, "User not found")
	}

	return response.Success(c, &user)
}

// AdminUpdateRequest carries the admin-writable user fields
type AdminUpdateRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Role      *string `json:"role,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// Update lets an admin change a user including role and active flag
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user ID")
	}

	var user model.User
	if err := h.db.First(&user, id).Error; err != nil {
		return response.FromDBError(c, err, "User not found")
	}

	var req AdminUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Role != nil {
		if !model.IsValidRole(*req.Role) {
			return response.BadRequest(c, "Invalid role")
		}
		updates["role"] = *req.Role
		// Role changes invalidate outstanding tokens
		updates["token_version"] = gorm.Expr("token_version + 1")
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
		if !*req.IsActive {
			updates["token_version"] = gorm.Expr("token_version + 1")
		}
	}

	if len(updates) == 0 {
		return response.BadRequest(c, "No fields to update")
	}

	if err := h.db.Model(&user).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update user")
	}

	return response.Success(c, &user)
}

// Delete soft-deletes a user and invalidates their tokens
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user ID")
	}

	var user model.User
	if err := h.db.First(&user, id).Error; err != nil {
		return response.FromDBError(c, err, "User not found")
	}

	if err := h.db.Model(&user).Updates(map[string]interface{}{
		"is_active":     false,
		"token_version": gorm.Expr("token_version + 1"),
	}).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete user")
	}
	if err := h.db.Delete(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete user")
	}

	return response.SuccessWithMessage(c, "User deleted successfully", nil)
}

// Reactivate restores a deactivated or soft-deleted account
func (h *UserHandler) Reactivate(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user ID")
	}

	var user model.User
	if err := h.db.Unscoped().First(&user, id).Error; err != nil {
		return response.FromDBError(c, err, "User not found")
	}

	if err := h.db.Unscoped().Model(&user).Updates(map[string]interface{}{
		"is_active":  true,
		"deleted_at": nil,
	}).Error; err != nil {
		return response.InternalServerError(c, "Failed to reactivate user")
	}

	return response.SuccessWithMessage(c, "User reactivated successfully", &user)
}

// UserStats aggregates user counts by role plus the most recent signups
type UserStats struct {
	Total    int64            `json:"total"`
	Active   int64            `json:"active"`
	ByRole   map[string]int64 `json:"by_role"`
	Recent   []model.User     `json:"recent"`
	Verified int64            `json:"verified"`
}

// Stats returns user statistics (admin only via routing)
func (h *UserHandler) Stats(c *fiber.Ctx) error {
	stats := UserStats{ByRole: map[string]int64{}}

	if err := h.db.Model(&model.User{}).Count(&stats.Total).Error; err != nil {
		return response.InternalServerError(c, "")
	}
	if err := h.db.Model(&model.User{}).Where("is_active = ?", true).Count(&stats.Active).Error; err != nil {
		return response.InternalServerError(c, "")
	}
	if err := h.db.Model(&model.User{}).Where("is_email_verified = ?", true).Count(&stats.Verified).Error; err != nil {
		return response.InternalServerError(c, "")
	}

	type roleCount struct {
		Role  string
		Count int64
	}
	var counts []roleCount
	if err := h.db.Model(&model.User{}).
		Select("role, COUNT(*) as count").
		Group("role").
		Scan(&counts).Error; err != nil {
		return response.InternalServerError(c, "")
	}
	for _, rc := range counts {
		stats.ByRole[rc.Role] = rc.Count
	}

	if err := h.db.Order("created_at DESC").Limit(5).Find(&stats.Recent).Error; err != nil {
		return response.InternalServerError(c, "")
	}

	return response.Success(c, stats)
}
