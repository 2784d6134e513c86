// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/villex/leads-api/app/dto"
	"github.com/villex/leads-api/app/middleware"
	businessflow "github.com/villex/leads-api/business_flow"
)

// LeadHandlerInterface defines the contract for lead handlers
type LeadHandlerInterface interface {
	SubmitLead(c fiber.Ctx) error
	ConfirmEmail(c fiber.Ctx) error
	ResendConfirm(c fiber.Ctx) error
	ThankYouPage(c fiber.Ctx) error
	Health(c fiber.Ctx) error
}

// LeadHandler handles lead-capture HTTP requests
type LeadHandler struct {
	leadFlow  businessflow.LeadFlow
	validator *validator.Validate
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadFlow businessflow.LeadFlow) *LeadHandler {
	return &LeadHandler{
		leadFlow:  leadFlow,
		validator: validator.New(),
	}
}

func (h *LeadHandler) ErrorResponse(c fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"error": message,
	})
}

// SubmitLead handles a new contact-form submission
// @Summary Submit Lead
// @Description Create a new lead from the landing-page contact form
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body dto.SubmitLeadRequest true "Contact form data"
// @Success 201 {object} dto.SubmitLeadResponse "Lead created"
// @Failure 400 {object} object{error=string} "Validation error"
// @Failure 500 {object} object{error=string} "Internal server error"
// @Router /api/leads/ [post]
func (h *LeadHandler) SubmitLead(c fiber.Ctx) error {
	var req dto.SubmitLeadRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid JSON")
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			return h.ErrorResponse(c, fiber.StatusBadRequest, getValidationErrorMessage(validationErrors[0]))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Datos inválidos")
	}

	// Get client information
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(requestID(c))

	result, err := h.leadFlow.SubmitLead(h.createRequestContext(c, "/api/leads/"), &req, metadata)
	if err != nil {
		if businessflow.IsNameRequired(err) || businessflow.IsContactRequired(err) || businessflow.IsContactInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, businessErrorMessage(err, "Datos inválidos"))
		}

		log.Println("Lead submission failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "No pudimos procesar tu solicitud")
	}

	middleware.RecordLeadSubmitted(result.RequiresEmailConfirmation)

	response := fiber.Map{
		"success":                     true,
		"lead_token":                  result.LeadToken,
		"requires_email_confirmation": result.RequiresEmailConfirmation,
	}

	if result.RequiresEmailConfirmation {
		response["email_sent"] = result.EmailSent != nil && *result.EmailSent
		response["message"] = result.Message
	} else {
		response["thank_you_url"] = result.ThankYouURL
		response["calendly_url"] = result.CalendlyURL
		response["whatsapp_url"] = result.WhatsAppURL
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

// ConfirmEmail handles confirmation-token redemption
// @Summary Confirm Email
// @Description Redeem an email-confirmation token and return the scheduling link
// @Tags Leads
// @Produce json
// @Param token query string true "Confirmation token"
// @Success 200 {object} dto.ConfirmEmailResponse "Email confirmed"
// @Failure 400 {object} object{error=string} "Missing token"
// @Failure 404 {object} object{error=string} "Unknown token"
// @Failure 410 {object} object{error=string,can_resend=bool} "Expired token"
// @Router /api/leads/confirm [get]
func (h *LeadHandler) ConfirmEmail(c fiber.Ctx) error {
	token := c.Query("token")

	result, err := h.leadFlow.ConfirmEmail(h.createRequestContext(c, "/api/leads/confirm"), token)
	if err != nil {
		if businessflow.IsConfirmTokenMissing(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, businessErrorMessage(err, "Falta el token"))
		}
		if businessflow.IsLeadNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, businessErrorMessage(err, "Token inválido"))
		}
		if businessflow.IsConfirmTokenExpired(err) {
			return c.Status(fiber.StatusGone).JSON(fiber.Map{
				"error":      businessErrorMessage(err, "El enlace venció"),
				"can_resend": true,
			})
		}

		log.Println("Email confirmation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "No pudimos confirmar tu email")
	}

	if !result.AlreadyConfirmed {
		middleware.RecordLeadConfirmed()
	}

	response := fiber.Map{
		"success":      true,
		"lead_token":   result.LeadToken,
		"calendly_url": result.CalendlyURL,
		"name":         result.Name,
		"email":        result.Email,
	}
	if result.AlreadyConfirmed {
		response["already_confirmed"] = true
	}

	return c.JSON(response)
}

// ResendConfirm handles confirmation-email resend requests
// @Summary Resend Confirmation
// @Description Re-issue a confirmation email; the response never reveals whether the email exists
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body dto.ResendConfirmRequest true "Email address"
// @Success 200 {object} dto.ResendConfirmResponse "Generic acknowledgment"
// @Failure 400 {object} object{error=string} "Missing email"
// @Failure 429 {object} object{error=string} "Cooldown active"
// @Router /api/leads/resend-confirm [post]
func (h *LeadHandler) ResendConfirm(c fiber.Ctx) error {
	var req dto.ResendConfirmRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid JSON")
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "El email es requerido")
	}

	result, err := h.leadFlow.ResendConfirmation(h.createRequestContext(c, "/api/leads/resend-confirm"), &req)
	if err != nil {
		if businessflow.IsEmailRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, businessErrorMessage(err, "El email es requerido"))
		}
		if businessflow.IsResendCooldown(err) {
			return h.ErrorResponse(c, fiber.StatusTooManyRequests, businessErrorMessage(err, "Esperá un momento"))
		}

		log.Println("Resend confirmation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "No pudimos procesar tu solicitud")
	}

	middleware.RecordConfirmResend()

	return c.JSON(fiber.Map{
		"success": true,
		"message": result.Message,
	})
}

var thankYouTemplate = template.Must(template.New("thank_you").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>¡Gracias, {{.Name}}! | VILLEX</title>
</head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 40px auto; color: #1a1a1a;">
  <h1>¡Gracias, {{.Name}}!</h1>
  <p>Recibimos tu consulta. El siguiente paso es agendar una llamada de 30 minutos.</p>
  <p style="margin: 24px 0;">
    <a href="{{.CalendlyURL}}" style="background: #111; color: #fff; padding: 12px 24px; text-decoration: none; border-radius: 6px;">Agendar llamada</a>
  </p>
  <p>¿Preferís WhatsApp? <a href="{{.WhatsAppURL}}">Escribinos directo</a>.</p>
</body>
</html>`))

// ThankYouPage renders the HTML thank-you page for a lead
// @Summary Thank You Page
// @Description Render the thank-you page with scheduling and WhatsApp links
// @Tags Leads
// @Produce html
// @Param lead_token path string true "Lead token"
// @Success 200 {string} string "HTML page"
// @Failure 404 {string} string "Unknown lead"
// @Router /gracias/{lead_token}/ [get]
func (h *LeadHandler) ThankYouPage(c fiber.Ctx) error {
	leadToken, err := uuid.Parse(c.Params("lead_token"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Lead no encontrado")
	}

	result, err := h.leadFlow.ThankYou(h.createRequestContext(c, "/gracias/:lead_token/"), leadToken)
	if err != nil {
		if businessflow.IsLeadNotFound(err) {
			return c.Status(fiber.StatusNotFound).SendString("Lead no encontrado")
		}

		log.Println("Thank-you page failed", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error interno")
	}

	var buf bytes.Buffer
	if err := thankYouTemplate.Execute(&buf, result); err != nil {
		log.Println("Thank-you render failed", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error interno")
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

// Health handles health check requests
// @Summary Health Check
// @Description Check the health status of the API
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string} "Service is healthy"
// @Router /api/health [get]
func (h *LeadHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "leads-api",
	})
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *LeadHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, businessflow.RequestIDKey, requestID(c))
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Store cancel function for cleanup

	return ctx
}

func requestID(c fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.Get("X-Request-ID")
}

func businessErrorMessage(err error, fallback string) string {
	var be *businessflow.BusinessError
	if errors.As(err, &be) {
		return be.Message
	}
	return fallback
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Field() {
	case "Name":
		if err.Tag() == "required" {
			return businessflow.MsgNameRequired
		}
		return "El nombre es demasiado largo"
	case "Contact":
		if err.Tag() == "required" {
			return businessflow.MsgContactRequired
		}
		return "El contacto es demasiado largo"
	case "Email":
		return "El email es requerido"
	default:
		if err.Tag() == "max" {
			return err.Field() + " es demasiado largo"
		}
		return err.Field() + " es inválido"
	}
}
