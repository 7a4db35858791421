package contact

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wahegurunursing/classes-api/model"
	"github.com/wahegurunursing/classes-api/services"
	"github.com/wahegurunursing/classes-api/utils/response"
	"github.com/wahegurunursing/classes-api/utils/validation"
)

// ContactHandler handles contact form requests
type ContactHandler struct {
	contactService *services.ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// ContactRequest represents a contact form submission
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message" validate:"required,min=10"`
}

// Submit validates and stores a contact enquiry, then forwards it by email
func (h *ContactHandler) Submit(c *fiber.Ctx) error {
	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Name = validation.SanitizeString(req.Name)
	req.Message = validation.SanitizeString(req.Message)
	req.Email = model.NormalizeEmail(req.Email)

	if req.Name == "" || req.Email == "" || req.Message == "" {
		return response.BadRequest(c, "Name, email, and message are required")
	}
	if ok, msg := validation.ValidateName(req.Name); !ok {
		return response.BadRequest(c, msg)
	}
	if !validation.ValidateEmail(req.Email) {
		return response.BadRequest(c, "Invalid email format")
	}
	if !validation.ValidatePhone(req.Phone) {
		return response.BadRequest(c, "Invalid phone number")
	}
	if len(req.Message) < 10 {
		return response.BadRequest(c, "Message must be at least 10 characters")
	}

	msg, err := h.contactService.Submit(req.Name, req.Email, req.Phone, req.Message)
	if err != nil {
		return response.InternalServerError(c, "Failed to submit message")
	}

	return response.CreatedWithMessage(c, "Thank you for reaching out. We will get back to you soon.", fiber.Map{
		"reference":  msg.Reference,
		"dispatched": msg.Dispatched,
	})
}

// Status reports liveness of the contact endpoint
func (h *ContactHandler) Status(c *fiber.Ctx) error {
	return response.Success(c, fiber.Map{
		"status": "ok",
	})
}
