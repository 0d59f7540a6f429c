package email

// Email представляет транзакционное письмо сервиса.
// Платформа шлет только уведомления и коды, без вложений.
type Email struct {
	From     string
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData представляет данные для шаблонов писем
type TemplateData map[string]interface{}
