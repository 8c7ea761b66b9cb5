package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

// MailTransport delivers one HTML message.
type MailTransport interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type smtpTransport struct {
	dialer   *gomail.Dialer
	fromAddr string
	fromName string
}

// NewSMTPTransport sends through an authenticated SMTP account. fromName is
// the display name; the address is the account user.
func NewSMTPTransport(host string, port int, user, password, fromName string) MailTransport {
	return &smtpTransport{
		dialer:   gomail.NewDialer(host, port, user, password),
		fromAddr: user,
		fromName: fromName,
	}
}

func (t *smtpTransport) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetAddressHeader("From", t.fromAddr, t.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return t.dialer.DialAndSend(m)
}

const (
	codeSubject         = "Código de verificación para tu cuenta"
	confirmationSubject = "Notificación sobre el uso de tus datos y acceso a la plataforma"
)

var mailTemplates = template.Must(template.New("mail").Parse(`
{{define "codeMFA"}}
<h2>Código de verificación</h2>
<p>Use el siguiente código para completar su inicio de sesión:</p>
<p style="font-size:28px;letter-spacing:6px"><strong>{{.Code}}</strong></p>
<p>Si usted no intentó iniciar sesión, ignore este correo.</p>
{{end}}
{{define "confirmation"}}
<h2>Bienvenido(a), {{.Usuario}}</h2>
<p>Se ha creado una cuenta para usted en la plataforma de administración.
Sus datos personales se usan únicamente para el control de acceso.</p>
<p>Usuario: <strong>{{.Usuario}}</strong><br>Contraseña: <strong>{{.Password}}</strong></p>
<p>Si no está de acuerdo con el uso de sus datos puede eliminar su cuenta
desde el siguiente enlace: <a href="{{.DeleteLink}}">eliminar mi cuenta</a>.</p>
{{end}}
`))

type EmailService interface {
	SendCode(ctx context.Context, email, code string) error
	SendConfirmation(ctx context.Context, email, usuario, password, deleteLink string) error
}

type emailService struct {
	transport MailTransport
}

func NewEmailService(transport MailTransport) EmailService {
	return &emailService{transport: transport}
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (s *emailService) SendCode(ctx context.Context, email, code string) error {
	body, err := render("codeMFA", struct{ Code string }{code})
	if err != nil {
		return err
	}
	if err := s.transport.Send(ctx, email, codeSubject, body); err != nil {
		return fmt.Errorf("%w: code email: %v", ErrSendFailure, err)
	}
	return nil
}

func (s *emailService) SendConfirmation(ctx context.Context, email, usuario, password, deleteLink string) error {
	body, err := render("confirmation", struct {
		Usuario    string
		Password   string
		DeleteLink string
	}{usuario, password, deleteLink})
	if err != nil {
		return err
	}
	if err := s.transport.Send(ctx, email, confirmationSubject, body); err != nil {
		return fmt.Errorf("%w: confirmation email: %v", ErrSendFailure, err)
	}
	return nil
}
