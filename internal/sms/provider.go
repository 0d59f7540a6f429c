package sms

import "rapidmandados_backend/internal/logger"

// Provider отправляет SMS. Результат только логируется,
// неуспешная отправка не прерывает бизнес-операцию.
type Provider interface {
	Send(phone, body string) error
}

// LogProvider пишет сообщение в лог вместо реальной отправки.
// Используется, пока не подключен внешний SMS-шлюз.
type LogProvider struct{}

func NewLogProvider() Provider {
	return &LogProvider{}
}

func (p *LogProvider) Send(phone, body string) error {
	logger.Info("📱 SMS dispatched (log provider)",
		"phone", phone,
		"body", body,
	)
	return nil
}
