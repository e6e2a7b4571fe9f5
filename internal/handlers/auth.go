package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/chlachla/chlachla-backend/internal/services"
)

// AuthHandler handles OTP issuance and verification requests
type AuthHandler struct {
	otpService *services.OTPService
	notifier   services.Notifier
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(otpService *services.OTPService, notifier services.Notifier) *AuthHandler {
	return &AuthHandler{
		otpService: otpService,
		notifier:   notifier,
	}
}

type sendOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Purpose     string `json:"purpose"`
}

// identityKey picks the challenge key from the request body: phone
// number when present, email otherwise.
func (r *sendOTPRequest) identityKey() string {
	if r.PhoneNumber != "" {
		return r.PhoneNumber
	}
	return r.Email
}

// SendOTP handles POST /api/auth/send-otp
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req sendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	key := req.identityKey()
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Phone number or email is required",
		})
	}
	if req.Purpose == "" {
		req.Purpose = "login"
	}

	challenge, err := h.otpService.Issue(c.Context(), key, req.Purpose)
	if err != nil {
		return respondError(c, err)
	}

	// Delivery happens after issuance and outside any lock. A delivery
	// failure is reported but the challenge stays valid.
	message := "OTP sent"
	if err := h.notifier.Send(key, challenge.Code, challenge.Purpose); err != nil {
		log.Printf("⚠️  OTP delivery to %s failed: %v", key, err)
		message = "OTP issued but delivery failed, please retry"
	}

	return c.JSON(fiber.Map{
		"message":    message,
		"expires_at": challenge.ExpiresAt.Format(time.RFC3339),
	})
}

type verifyOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	Purpose     string `json:"purpose"`
}

// VerifyOTP handles POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	key := req.PhoneNumber
	if key == "" {
		key = req.Email
	}
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Phone number or email is required",
		})
	}
	if req.Purpose == "" {
		req.Purpose = "login"
	}

	token, err := h.otpService.Verify(c.Context(), key, req.OTP, req.Purpose)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":    "OTP verified successfully",
		"verified":   true,
		"token":      token.Token,
		"expires_at": token.ExpiresAt.Format(time.RFC3339),
	})
}
