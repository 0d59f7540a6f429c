package email

import (
	"crypto/tls"
	"fmt"

	"gopkg.in/gomail.v2"
)

// GomailProvider реализует Provider поверх gomail/SMTP
type GomailProvider struct {
	config   *SMTPConfig
	renderer TemplateRenderer
}

// NewGomailProvider создает новый SMTP провайдер
func NewGomailProvider(config *SMTPConfig, renderer TemplateRenderer) *GomailProvider {
	return &GomailProvider{
		config:   config,
		renderer: renderer,
	}
}

// Send отправляет email сообщение
func (p *GomailProvider) Send(email *Email) error {
	if err := p.Validate(); err != nil {
		return err
	}

	m := gomail.NewMessage()

	from := email.From
	if from == "" {
		from = p.config.FromEmail
	}
	if p.config.FromName != "" {
		m.SetAddressHeader("From", from, p.config.FromName)
	} else {
		m.SetHeader("From", from)
	}

	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		m.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			m.AddAlternative("text/plain", email.Body)
		}
	} else {
		m.SetBody("text/plain", email.Body)
	}

	d := gomail.NewDialer(p.config.Host, p.config.Port, p.config.Username, p.config.Password)
	if p.config.UseTLS {
		d.TLSConfig = &tls.Config{ServerName: p.config.Host}
	}
	return d.DialAndSend(m)
}

// SendWithTemplate отправляет email используя шаблон
func (p *GomailProvider) SendWithTemplate(templateName string, data TemplateData, email *Email) error {
	if p.renderer == nil {
		return fmt.Errorf("template renderer is not configured")
	}

	htmlBody, err := p.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	email.HTMLBody = htmlBody
	return p.Send(email)
}

// SendVerification отправляет письмо с кодом подтверждения почты
func (p *GomailProvider) SendVerification(to string, code string, userName string) error {
	body := fmt.Sprintf(
		"¡Hola %s!\n\n"+
			"Tu código de verificación es: %s\n\n"+
			"El código expira en 24 horas.\n\n"+
			"Si no solicitaste este código, ignora este mensaje.\n\n"+
			"RapidMandados",
		userName, code,
	)

	return p.Send(&Email{
		To:      []string{to},
		Subject: "🚚 RapidMandados - Código de Verificación",
		Body:    body,
	})
}

// SendTemplate отправляет email по шаблону (удобный метод)
func (p *GomailProvider) SendTemplate(to []string, subject string, templateName string, data TemplateData) error {
	return p.SendWithTemplate(templateName, data, &Email{
		To:      to,
		Subject: subject,
	})
}

// Validate проверяет конфигурацию SMTP
func (p *GomailProvider) Validate() error {
	if p.config.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}

	if p.config.Port <= 0 || p.config.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", p.config.Port)
	}

	return nil
}

// Close закрывает соединение (gomail открывает его на каждую отправку)
func (p *GomailProvider) Close() error {
	return nil
}
