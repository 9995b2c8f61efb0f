package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/mynews/mynews-api/internal/logging"
)

type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromName     string
	fromEmail    string
	appURL       string
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword, fromName, appURL string) *Service {
	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromName:     fromName,
		fromEmail:    smtpUser,
		appURL:       appURL,
	}
}

// SendActivationEmail sends an account activation link to the user.
// Designed to be called in a goroutine; failures are reported to the
// caller for logging only.
func (s *Service) SendActivationEmail(ctx context.Context, toEmail, token, firstName string) error {
	logger := logging.GetLoggerFromContext(ctx)

	activationLink := fmt.Sprintf("%s/auth/activate/%s", s.appURL, token)

	subject := "Activate your account"
	body, err := renderTemplate(activationTemplate, linkEmailData{
		FirstName: firstName,
		Link:      activationLink,
	})
	if err != nil {
		logger.Error("failed to render activation email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, subject, body); err != nil {
		logger.Error("failed to send activation email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("activation email sent", "email", toEmail)
	return nil
}

// SendPasswordResetEmail sends a password reset link to the user.
// Designed to be called in a goroutine.
func (s *Service) SendPasswordResetEmail(ctx context.Context, toEmail, token, firstName string) error {
	logger := logging.GetLoggerFromContext(ctx)

	resetLink := fmt.Sprintf("%s/reset-password/%s", s.appURL, token)

	subject := "Reset your password"
	body, err := renderTemplate(passwordResetTemplate, linkEmailData{
		FirstName: firstName,
		Link:      resetLink,
	})
	if err != nil {
		logger.Error("failed to render password reset email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, subject, body); err != nil {
		logger.Error("failed to send password reset email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("password reset email sent", "email", toEmail)
	return nil
}

func (s *Service) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromName, s.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg)
}

type linkEmailData struct {
	FirstName string
	Link      string
}

func renderTemplate(tmpl string, data linkEmailData) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}

const activationTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        .email-container {
            font-family: Arial, sans-serif;
            background-color: #f4f4f4;
            padding: 20px;
            width: 100%;
            max-width: 600px;
            margin: auto;
        }
        .email-body {
            background-color: #fff;
            padding: 20px;
        }
        .action-button {
            display: block;
            width: 100%;
            max-width: 200px;
            margin: 20px auto;
            padding: 10px 20px;
            background-color: #4CAF50;
            color: #fff !important;
            text-align: center;
            border: none;
            text-decoration: none;
            font-weight: bold;
            border-radius: 4px;
        }
        .email-footer {
            text-align: center;
            margin-top: 20px;
            color: #888;
        }
    </style>
</head>
<body>
    <div class="email-container">
        <div class="email-body">
            <h2>Activate your account</h2>
            <p>Hello {{.FirstName}},</p>
            <p>Please click on the button or on this link to activate your account: <a href="{{.Link}}">{{.Link}}</a></p>
            <a href="{{.Link}}" class="action-button">ACTIVATE ACCOUNT</a>
        </div>
        <div class="email-footer">
            Regards,<br>
            My News
        </div>
    </div>
</body>
</html>
`

const passwordResetTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        .email-container {
            font-family: Arial, sans-serif;
            background-color: #f4f4f4;
            padding: 20px;
            width: 100%;
            max-width: 600px;
            margin: auto;
        }
        .email-body {
            background-color: #fff;
            padding: 20px;
        }
        .action-button {
            display: block;
            width: 100%;
            max-width: 200px;
            margin: 20px auto;
            padding: 10px 20px;
            background-color: #4CAF50;
            color: #fff !important;
            text-align: center;
            border: none;
            text-decoration: none;
            font-weight: bold;
            border-radius: 4px;
        }
        .email-footer {
            text-align: center;
            margin-top: 20px;
            color: #888;
        }
    </style>
</head>
<body>
    <div class="email-container">
        <div class="email-body">
            <h2>Reset your password</h2>
            <p>Hello {{.FirstName}},</p>
            <p>You recently requested to reset your password. To complete your request, please click the link below:</p>
            <a href="{{.Link}}" class="action-button">RESET PASSWORD</a>
        </div>
        <div class="email-footer">
            Regards,<br>
            My News
        </div>
    </div>
</body>
</html>
`
