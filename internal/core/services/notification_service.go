package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"replate-api/internal/adapters/mail"
	"replate-api/internal/core/domain"
	"replate-api/internal/pkg/logger"
	"replate-api/internal/pkg/metrics"
)

// Mailer delivers a rendered message
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Template names, also used as metric labels
const (
	TemplateVerification  = "verification"
	TemplatePasswordReset = "password_reset"
	TemplateApproval      = "store_approved"
	TemplateRejection     = "store_rejected"
)

const sendTimeout = 15 * time.Second

// NotificationService renders and sends transactional email
type NotificationService struct {
	mailer      Mailer
	frontendURL string
	metrics     *metrics.Metrics
	tmpl        *template.Template
}

// NewNotificationService creates a new notification service
func NewNotificationService(mailer Mailer, frontendURL string, m *metrics.Metrics) *NotificationService {
	return &NotificationService{
		mailer:      mailer,
		frontendURL: frontendURL,
		metrics:     m,
		tmpl:        template.Must(template.New("email").Parse(emailTemplates)),
	}
}

type verificationData struct {
	Name        string
	Link        string
	IsMerchant  bool
	ExpiryLabel string
}

// SendVerification mails the email verification link
func (s *NotificationService) SendVerification(ctx context.Context, to, name, token string, role domain.Role, ttl time.Duration) error {
	return s.send(ctx, TemplateVerification, to, "Verify Your Email - Replate", verificationData{
		Name:        name,
		Link:        s.link("/verify-email", token),
		IsMerchant:  role == domain.RoleMerchant,
		ExpiryLabel: humanDuration(ttl),
	})
}

type resetData struct {
	Name        string
	Link        string
	ExpiryLabel string
}

// SendPasswordReset mails the password reset link
func (s *NotificationService) SendPasswordReset(ctx context.Context, to, name, token string, ttl time.Duration) error {
	return s.send(ctx, TemplatePasswordReset, to, "Reset Your Password - Replate", resetData{
		Name:        name,
		Link:        s.link("/reset-password", token),
		ExpiryLabel: humanDuration(ttl),
	})
}

type approvalData struct {
	Name      string
	StoreName string
	LoginURL  string
}

// SendStoreApproved tells a merchant their store is live
func (s *NotificationService) SendStoreApproved(ctx context.Context, to, name, storeName string) error {
	return s.send(ctx, TemplateApproval, to, "Congratulations! Your Store is Approved - Replate", approvalData{
		Name:      name,
		StoreName: storeName,
		LoginURL:  s.frontendURL + "/login",
	})
}

type rejectionData struct {
	Name      string
	StoreName string
	Reason    string
}

// SendStoreRejected tells a merchant why their application was refused
func (s *NotificationService) SendStoreRejected(ctx context.Context, to, name, storeName, reason string) error {
	return s.send(ctx, TemplateRejection, to, "Update on Your Store Application - Replate", rejectionData{
		Name:      name,
		StoreName: storeName,
		Reason:    reason,
	})
}

func (s *NotificationService) send(ctx context.Context, name, to, subject string, data interface{}) error {
	var body bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&body, name, data); err != nil {
		return fmt.Errorf("render %s email: %w", name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	err := s.mailer.Send(ctx, mail.Message{To: to, Subject: subject, HTML: body.String()})
	s.metrics.EmailSent(name, err)
	if err != nil {
		logger.Error("email delivery failed", "template", name, "to", to, "error", err)
		return fmt.Errorf("send %s email: %w", name, err)
	}

	logger.Info("email sent", "template", name, "to", to)
	return nil
}

func (s *NotificationService) link(path, token string) string {
	return s.frontendURL + path + "?token=" + url.QueryEscape(token)
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= 24*time.Hour && d%(24*time.Hour) == 0:
		days := int(d / (24 * time.Hour))
		if days == 1 {
			return "24 hours"
		}
		return fmt.Sprintf("%d days", days)
	case d >= time.Hour && d%time.Hour == 0:
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	default:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	}
}

const emailTemplates = `
{{define "header"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
<div style="text-align: center; margin-bottom: 30px;">
<h1 style="color: #2D7A5E; margin: 0;">Replate</h1>
<p style="color: #666; margin: 5px 0;">Rescue. Reduce. Replate</p>
</div>{{end}}

{{define "footer"}}<div style="text-align: center; margin-top: 30px; color: #999; font-size: 12px;">
<p>&copy; Replate. All rights reserved.</p>
</div>
</div>{{end}}

{{define "verification"}}{{template "header"}}
<h2 style="color: #2D7A5E;">{{if .IsMerchant}}Welcome to Replate as a <strong>Bakery Owner</strong>!{{else}}Welcome to Replate!{{end}}</h2>
<p>Hello <strong>{{.Name}}</strong>,</p>
<p>Thank you for registering at Replate! To complete your registration and activate your account, please verify your email address by clicking the link below:</p>
<div style="text-align: center; margin: 30px 0;">
<a href="{{.Link}}" style="display: inline-block; padding: 14px 28px; background-color: #2D7A5E; color: white; text-decoration: none; border-radius: 8px; font-weight: bold;">Verify Email Address</a>
</div>
<p style="color: #666; font-size: 14px;">Or copy and paste this link in your browser:</p>
<p style="word-break: break-all; background-color: #f5f5f5; padding: 10px; font-size: 12px;">{{.Link}}</p>
<p style="color: #999; font-size: 12px;">This verification link will expire in <strong>{{.ExpiryLabel}}</strong>.</p>
<p style="color: #999; font-size: 12px;">If you didn't create an account with Replate, please ignore this email.</p>
{{template "footer"}}{{end}}

{{define "password_reset"}}{{template "header"}}
<h2 style="color: #2D7A5E;">Password Reset Request</h2>
<p>Hello <strong>{{.Name}}</strong>,</p>
<p>We received a request to reset your password. Click the button below to create a new password:</p>
<div style="text-align: center; margin: 30px 0;">
<a href="{{.Link}}" style="display: inline-block; padding: 14px 28px; background-color: #2D7A5E; color: white; text-decoration: none; border-radius: 8px; font-weight: bold;">Reset Password</a>
</div>
<p style="word-break: break-all; background-color: #f5f5f5; padding: 10px; font-size: 12px;">{{.Link}}</p>
<p style="color: #999; font-size: 12px;">This link will expire in <strong>{{.ExpiryLabel}}</strong>.</p>
<p style="color: #999; font-size: 12px;">If you didn't request a password reset, please ignore this email or contact support if you have concerns.</p>
{{template "footer"}}{{end}}

{{define "store_approved"}}{{template "header"}}
<h2 style="color: #2D7A5E;">Congratulations!</h2>
<p>Your store has been approved and is now live on Replate!</p>
<h3>Hello {{.Name}},</h3>
<p>Great news! Your store <strong>{{.StoreName}}</strong> has been reviewed and approved by our team. You can now start selling your products and helping reduce food waste!</p>
<ul>
<li>Login to your merchant dashboard</li>
<li>Add your products and set prices</li>
<li>Manage your store and track sales</li>
</ul>
<div style="text-align: center; margin: 30px 0;">
<a href="{{.LoginURL}}" style="display: inline-block; padding: 14px 28px; background-color: #2D7A5E; color: white; text-decoration: none; border-radius: 8px; font-weight: bold;">Go to Dashboard</a>
</div>
{{template "footer"}}{{end}}

{{define "store_rejected"}}{{template "header"}}
<h2 style="color: #2D7A5E;">Application Update</h2>
<p>Hello <strong>{{.Name}}</strong>,</p>
<p>Thank you for your interest in joining Replate. After reviewing your application for <strong>{{.StoreName}}</strong>, we are unable to approve it at this time.</p>
<div style="background-color: #fff3f3; padding: 15px; border-radius: 8px;">
<h4>Reason for Rejection:</h4>
<p>{{.Reason}}</p>
</div>
<p>Your account and store details have been removed. You are welcome to register again once the points above are addressed.</p>
<p style="color: #999; font-size: 12px;">If you have any questions or believe this was a mistake, please reach out to our support team.</p>
{{template "footer"}}{{end}}
`
