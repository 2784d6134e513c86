// Package businessflow contains the core business logic and use cases for lead-capture workflows
package businessflow

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/villex/leads-api/app/dto"
	"github.com/villex/leads-api/app/services"
	"github.com/villex/leads-api/models"
	"github.com/villex/leads-api/repository"
	"github.com/villex/leads-api/utils"
	"gorm.io/gorm"
)

// ConfirmTokenLength is the truncated length of the URL-safe confirmation token
const ConfirmTokenLength = 48

// Messages returned to the visitor. Resend wording is identical whether
// or not a pending lead exists for the email.
const (
	MsgConfirmationPending = "Te enviamos un email para confirmar tu dirección. Revisá tu bandeja de entrada."
	MsgResendGeneric       = "Si hay una solicitud pendiente para ese email, te enviamos un nuevo enlace de confirmación."
)

// LeadFlowSettings carries the tunables of the submission and confirmation flows
type LeadFlowSettings struct {
	SpamScoreThreshold int
	ConfirmTokenTTL    time.Duration
	IPHashSecret       string
}

// LeadFlow handles the complete lead-capture business logic
type LeadFlow interface {
	SubmitLead(ctx context.Context, req *dto.SubmitLeadRequest, metadata *ClientMetadata) (*dto.SubmitLeadResponse, error)
	ConfirmEmail(ctx context.Context, token string) (*dto.ConfirmEmailResponse, error)
	ResendConfirmation(ctx context.Context, req *dto.ResendConfirmRequest) (*dto.ResendConfirmResponse, error)
	ThankYou(ctx context.Context, leadToken uuid.UUID) (*dto.ThankYouPageData, error)
}

// LeadFlowImpl implements the lead-capture business flow
type LeadFlowImpl struct {
	leadRepo        repository.LeadRepository
	eventRepo       repository.LeadEventRepository
	rateLimiter     services.RateLimitService
	notificationSvc services.NotificationService
	links           *LinkBuilder
	settings        LeadFlowSettings
	db              *gorm.DB
}

// NewLeadFlow creates a new lead flow instance
func NewLeadFlow(
	leadRepo repository.LeadRepository,
	eventRepo repository.LeadEventRepository,
	rateLimiter services.RateLimitService,
	notificationSvc services.NotificationService,
	links *LinkBuilder,
	settings LeadFlowSettings,
	db *gorm.DB,
) LeadFlow {
	return &LeadFlowImpl{
		leadRepo:        leadRepo,
		eventRepo:       eventRepo,
		rateLimiter:     rateLimiter,
		notificationSvc: notificationSvc,
		links:           links,
		settings:        settings,
		db:              db,
	}
}

// SubmitLead handles a new contact-form submission. The lead is always
// persisted, spam or not; spam classification only changes its status.
func (s *LeadFlowImpl) SubmitLead(ctx context.Context, req *dto.SubmitLeadRequest, metadata *ClientMetadata) (*dto.SubmitLeadResponse, error) {
	name := strings.TrimSpace(req.Name)
	contact := strings.TrimSpace(req.Contact)

	if name == "" {
		return nil, NewBusinessError("LEAD_VALIDATION_FAILED", MsgNameRequired, ErrNameRequired)
	}

	if ok, errMsg := ValidateContact(contact); !ok {
		cause := ErrContactInvalid
		if errMsg == MsgContactRequired {
			cause = ErrContactRequired
		}
		return nil, NewBusinessError("LEAD_VALIDATION_FAILED", errMsg, cause)
	}

	ipHash := HashIP(metadata.IPAddress, s.settings.IPHashSecret)
	userAgent := TruncateUserAgent(metadata.UserAgent)

	// Rate limiting contributes to the spam score, it never blocks
	rateLimited, err := s.rateLimiter.RegisterSubmission(ctx, ipHash)
	if err != nil {
		log.Printf("rate limiter unavailable, submission not limited: %v", err)
		rateLimited = false
	}

	honeypotFilled := strings.TrimSpace(req.Honeypot) != "" || strings.TrimSpace(req.Company) != ""

	spamScore := CalculateSpamScore(name, contact, req.Message, honeypotFilled)
	if rateLimited {
		spamScore += 5
	}

	isSpam := spamScore >= s.settings.SpamScoreThreshold
	email := ExtractEmailFromContact(contact)

	status := models.LeadStatusNew
	switch {
	case isSpam:
		status = models.LeadStatusSpam
	case email != "":
		status = models.LeadStatusPendingEmailConfirm
	}

	lead := &models.Lead{
		UUID:             uuid.New(),
		LeadToken:        uuid.New(),
		Name:             name,
		Contact:          contact,
		ProjectType:      strings.TrimSpace(req.ProjectType),
		Message:          strings.TrimSpace(req.Message),
		Timeframe:        strings.TrimSpace(req.Timeframe),
		BudgetRange:      strings.TrimSpace(req.BudgetRange),
		ReferenceURL:     strings.TrimSpace(req.ReferenceURL),
		HasDomainHosting: parseHasDomainHosting(req.HasDomainHosting),
		Source:           models.LeadSourceForm,
		Status:           status,
		SpamScore:        spamScore,
		IPHash:           ipHash,
		UserAgent:        userAgent,
	}

	if email != "" {
		lead.ContactEmail = &email
	}

	var confirmToken string
	if status == models.LeadStatusPendingEmailConfirm {
		confirmToken, err = GenerateConfirmToken()
		if err != nil {
			return nil, NewBusinessError("LEAD_SUBMISSION_FAILED", "Lead submission failed", err)
		}
		lead.ConfirmToken = &confirmToken
		lead.ConfirmTokenExpiresAt = utils.UTCNowAddPtr(s.settings.ConfirmTokenTTL)
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.leadRepo.Save(txCtx, lead); err != nil {
			return err
		}

		return s.recordEvent(txCtx, lead.ID, models.LeadEventCreated, map[string]any{
			"source":       "api",
			"spam_score":   spamScore,
			"is_spam":      isSpam,
			"rate_limited": rateLimited,
		})
	})
	if err != nil {
		return nil, NewBusinessError("LEAD_SUBMISSION_FAILED", "Lead submission failed", err)
	}

	leadToken := lead.LeadToken.String()

	if status == models.LeadStatusPendingEmailConfirm {
		// Delivery happens outside the transaction; failure is recorded,
		// never propagated as a submission error
		emailSent := s.sendConfirmationEmail(ctx, lead, confirmToken, models.LeadEventConfirmEmailSent, models.LeadEventConfirmEmailFailed)

		return &dto.SubmitLeadResponse{
			LeadToken:                 leadToken,
			RequiresEmailConfirmation: true,
			EmailSent:                 utils.ToPtr(emailSent),
			Message:                   MsgConfirmationPending,
		}, nil
	}

	return &dto.SubmitLeadResponse{
		LeadToken:                 leadToken,
		RequiresEmailConfirmation: false,
		ThankYouURL:               s.links.BuildThankYouURL(leadToken),
		CalendlyURL:               s.links.BuildCalendlyURL(leadToken, "", ""),
		WhatsAppURL:               s.links.BuildWhatsAppURL(name, lead.ProjectType, lead.Message),
	}, nil
}

// ConfirmEmail redeems a confirmation token. Confirming an already
// confirmed lead is idempotent and records no duplicate event.
func (s *LeadFlowImpl) ConfirmEmail(ctx context.Context, token string) (*dto.ConfirmEmailResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, NewBusinessError("CONFIRM_TOKEN_MISSING", "Falta el token de confirmación", ErrConfirmTokenMissing)
	}

	lead, err := s.leadRepo.ByConfirmToken(ctx, token)
	if err != nil {
		return nil, NewBusinessError("CONFIRM_FAILED", "Email confirmation failed", err)
	}
	if lead == nil {
		return nil, NewBusinessError("CONFIRM_TOKEN_NOT_FOUND", "Token inválido", ErrLeadNotFound)
	}

	email := ""
	if lead.ContactEmail != nil {
		email = *lead.ContactEmail
	}

	response := &dto.ConfirmEmailResponse{
		LeadToken:   lead.LeadToken.String(),
		CalendlyURL: s.links.BuildCalendlyURL(lead.LeadToken.String(), email, lead.Name),
		Name:        lead.Name,
		Email:       email,
	}

	if lead.IsConfirmed() {
		response.AlreadyConfirmed = true
		return response, nil
	}

	if !lead.IsConfirmTokenValid(utils.UTCNow()) {
		return nil, NewBusinessError("CONFIRM_TOKEN_EXPIRED", "El enlace venció, pedí uno nuevo", ErrConfirmTokenExpired)
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.leadRepo.UpdateConfirmation(txCtx, lead.ID, models.LeadStatusEmailConfirmed, utils.UTCNow()); err != nil {
			return err
		}

		return s.recordEvent(txCtx, lead.ID, models.LeadEventEmailConfirmed, map[string]any{
			"email": email,
		})
	})
	if err != nil {
		return nil, NewBusinessError("CONFIRM_FAILED", "Email confirmation failed", err)
	}

	return response, nil
}

// ResendConfirmation re-issues a confirmation token. The response is
// identical whether or not a pending lead exists for the email, so the
// endpoint cannot be used to enumerate addresses.
func (s *LeadFlowImpl) ResendConfirmation(ctx context.Context, req *dto.ResendConfirmRequest) (*dto.ResendConfirmResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, NewBusinessError("RESEND_VALIDATION_FAILED", "El email es requerido", ErrEmailRequired)
	}

	inCooldown, err := s.rateLimiter.CheckEmailCooldown(ctx, email)
	if err != nil {
		log.Printf("cooldown store unavailable, resend not limited: %v", err)
		inCooldown = false
	}
	if inCooldown {
		return nil, NewBusinessError("RESEND_COOLDOWN", "Esperá un momento antes de pedir otro email", ErrResendCooldown)
	}

	lead, err := s.leadRepo.LatestPendingByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("RESEND_FAILED", "Resend confirmation failed", err)
	}
	if lead == nil {
		// Same response shape as the found case
		return &dto.ResendConfirmResponse{Message: MsgResendGeneric}, nil
	}

	confirmToken, err := GenerateConfirmToken()
	if err != nil {
		return nil, NewBusinessError("RESEND_FAILED", "Resend confirmation failed", err)
	}

	err = s.leadRepo.UpdateConfirmToken(ctx, lead.ID, confirmToken, utils.UTCNowAdd(s.settings.ConfirmTokenTTL))
	if err != nil {
		return nil, NewBusinessError("RESEND_FAILED", "Resend confirmation failed", err)
	}

	s.sendConfirmationEmail(ctx, lead, confirmToken, models.LeadEventConfirmResent, models.LeadEventConfirmResendFailed)

	return &dto.ResendConfirmResponse{Message: MsgResendGeneric}, nil
}

// ThankYou loads the data for the thank-you page of a lead
func (s *LeadFlowImpl) ThankYou(ctx context.Context, leadToken uuid.UUID) (*dto.ThankYouPageData, error) {
	lead, err := s.leadRepo.ByLeadToken(ctx, leadToken)
	if err != nil {
		return nil, NewBusinessError("THANK_YOU_FAILED", "Thank-you lookup failed", err)
	}
	if lead == nil {
		return nil, NewBusinessError("LEAD_NOT_FOUND", "Lead no encontrado", ErrLeadNotFound)
	}

	email := ""
	if lead.ContactEmail != nil {
		email = *lead.ContactEmail
	}

	return &dto.ThankYouPageData{
		Name:        lead.Name,
		ProjectType: lead.ProjectType,
		CalendlyURL: s.links.BuildCalendlyURL(lead.LeadToken.String(), email, lead.Name),
		WhatsAppURL: s.links.BuildWhatsAppURL(lead.Name, lead.ProjectType, lead.Message),
	}, nil
}

// Private helper methods

// sendConfirmationEmail attempts delivery and records the outcome as an
// audit event. Returns whether the email went out.
func (s *LeadFlowImpl) sendConfirmationEmail(ctx context.Context, lead *models.Lead, confirmToken, successEvent, failureEvent string) bool {
	if lead.ContactEmail == nil {
		return false
	}

	confirmURL := s.links.BuildConfirmURL(confirmToken)

	err := s.notificationSvc.SendConfirmationEmail(*lead.ContactEmail, lead.Name, confirmURL)
	if err != nil {
		log.Printf("failed to send confirmation email for lead %d: %v", lead.ID, err)
		_ = s.recordEvent(ctx, lead.ID, failureEvent, map[string]any{
			"error": err.Error(),
		})
		return false
	}

	if err := s.leadRepo.UpdateEmailSentAt(ctx, lead.ID, utils.UTCNow()); err != nil {
		log.Printf("failed to stamp email_sent_at for lead %d: %v", lead.ID, err)
	}

	_ = s.recordEvent(ctx, lead.ID, successEvent, map[string]any{
		"email": *lead.ContactEmail,
	})

	return true
}

func (s *LeadFlowImpl) recordEvent(ctx context.Context, leadID uint, eventType string, payload map[string]any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return s.eventRepo.Save(ctx, &models.LeadEvent{
		LeadID:    leadID,
		EventType: eventType,
		Payload:   raw,
	})
}

// GenerateConfirmToken generates a high-entropy URL-safe token truncated
// to ConfirmTokenLength characters
func GenerateConfirmToken() (string, error) {
	buf := make([]byte, 36)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate confirm token: %w", err)
	}

	token := base64.RawURLEncoding.EncodeToString(buf)
	return token[:ConfirmTokenLength], nil
}

// parseHasDomainHosting accepts the loose JSON typing of the form field:
// booleans pass through, strings accept localized yes values.
func parseHasDomainHosting(v any) *bool {
	switch value := v.(type) {
	case bool:
		return utils.ToPtr(value)
	case string:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "yes", "si", "sí", "1":
			return utils.ToPtr(true)
		case "":
			return nil
		default:
			return utils.ToPtr(false)
		}
	case float64:
		return utils.ToPtr(value != 0)
	default:
		return nil
	}
}
