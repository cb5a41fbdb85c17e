package admin

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	approvalEmailSubject = "Admin Access Approved - Set Your Password"
	resetEmailSubject    = "Reset Your Admin Password"
)

var approvalEmailTemplate = template.Must(template.New("admin_approval").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937; max-width: 560px; margin: 0 auto;">
  <h2>Your admin access has been approved</h2>
  <p>Hello {{.FullName}},</p>
  <p>Your request for admin access to the complaint portal was approved. Set a password to sign in to the admin dashboard.</p>
  <p style="margin: 32px 0;">
    <a href="{{.Link}}" style="background: #2563eb; color: #ffffff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Set Your Password</a>
  </p>
  <p>This link expires in {{.ExpiresIn}}. If it has expired, use "Forgot password" on the admin sign-in page to get a new one.</p>
  <p style="color: #6b7280; font-size: 12px;">If you did not request admin access, you can ignore this email.</p>
</body>
</html>
`))

var resetEmailTemplate = template.Must(template.New("admin_reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937; max-width: 560px; margin: 0 auto;">
  <h2>Password reset requested</h2>
  <p>Hello {{.FullName}},</p>
  <p>We received a request to reset the password of your complaint portal admin account.</p>
  <p style="margin: 32px 0;">
    <a href="{{.Link}}" style="background: #2563eb; color: #ffffff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Choose a New Password</a>
  </p>
  <p>This link expires in {{.ExpiresIn}} and works once.</p>
  <p style="color: #6b7280; font-size: 12px;">If you did not ask for this, ignore this email. Your password stays unchanged.</p>
</body>
</html>
`))

type recoveryEmailData struct {
	FullName  string
	Link      template.URL
	ExpiresIn string
}

func renderApprovalEmail(fullName, link string) (string, error) {
	return renderRecoveryEmail(approvalEmailTemplate, fullName, link)
}

func renderResetEmail(fullName, link string) (string, error) {
	return renderRecoveryEmail(resetEmailTemplate, fullName, link)
}

func renderRecoveryEmail(tmpl *template.Template, fullName, link string) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, recoveryEmailData{
		FullName:  fullName,
		Link:      template.URL(link),
		ExpiresIn: fmt.Sprintf("%d hours", int(RecoveryLinkTTL.Hours())),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
