package enrollment

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wahegurunursing/classes-api/model"
	"github.com/wahegurunursing/classes-api/services"
	"github.com/wahegurunursing/classes-api/utils/middleware"
	"github.com/wahegurunursing/classes-api/utils/response"
)

// ProgressRequest carries a lesson-completion count
type ProgressRequest struct {
	CompletedLessons int `json:"completed_lessons" validate:"gte=0"`
}

// UpdateProgress records progress for the student's own enrollment. Counts
// above the course total are clamped; 100% completes the enrollment.
func (h *EnrollmentHandler) UpdateProgress(c *fiber.Ctx) error {
	enrollment, errResp := h.load(c, false)
	if errResp != nil {
		return errResp
	}

	userID, _ := middleware.GetUserID(c)
	if enrollment.StudentID != userID {
		return response.Forbidden(c, "Only the enrolled student can update progress")
	}

	var req ProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CompletedLessons < 0 {
		return response.BadRequest(c, "Completed lessons cannot be negative")
	}

	updated, err := h.enrollmentService.UpdateProgress(enrollment.ID, req.CompletedLessons)
	if err != nil {
		if errors.Is(err, services.ErrEnrollmentNotActive) {
			return response.BadRequest(c, "Enrollment is not active")
		}
		return response.InternalServerError(c, "Failed to update progress")
	}
	return response.Success(c, updated)
}

// PaymentRequest represents a payment record submission
type PaymentRequest struct {
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Currency      string  `json:"currency,omitempty"`
	Method        string  `json:"method" validate:"required"`
	Status        string  `json:"status,omitempty"`
	TransactionID string  `json:"transaction_id,omitempty"`
}

// AddPayment appends a payment record; only completed payments count
// toward the enrollment's paid total
func (h *EnrollmentHandler) AddPayment(c *fiber.Ctx) error {
	enrollment, errResp := h.load(c, false)
	if errResp != nil {
		return errResp
	}

	var req PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Amount <= 0 {
		return response.BadRequest(c, "Payment amount must be positive")
	}
	if !model.IsValidPaymentMethod(req.Method) {
		return response.BadRequest(c, "Invalid payment method")
	}

	status := req.Status
	if status == "" {
		status = "pending"
	}
	if !model.IsValidPaymentStatus(status) {
		return response.BadRequest(c, "Invalid payment status")
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	if !model.IsValidCurrency(currency) {
		return response.BadRequest(c, "Invalid currency")
	}

	payment, err := h.enrollmentService.RecordPayment(enrollment.ID, req.Amount, currency, req.Method, status, req.TransactionID)
	if err != nil {
		return response.InternalServerError(c, "Failed to record payment")
	}
	return response.Created(c, payment)
}

// RefundPayment refunds a completed payment (admin only via routing)
func (h *EnrollmentHandler) RefundPayment(c *fiber.Ctx) error {
	enrollment, errResp := h.load(c, false)
	if errResp != nil {
		return errResp
	}

	paymentID, err := c.ParamsInt("paymentId")
	if err != nil || paymentID < 1 {
		return response.BadRequest(c, "Invalid payment ID")
	}

	payment, err := h.enrollmentService.RefundPayment(enrollment.ID, uint(paymentID))
	if err != nil {
		if errors.Is(err, services.ErrEnrollmentNotFound) {
			return response.NotFound(c, "Payment not found")
		}
		if errors.Is(err, services.ErrPaymentNotRefundable) {
			return response.BadRequest(c, "Only completed payments can be refunded")
		}
		return response.InternalServerError(c, "Failed to refund payment")
	}
	return response.Success(c, payment)
}
