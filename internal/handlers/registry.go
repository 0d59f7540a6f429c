package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	OrderHandler        *OrderHandler
	VerificationHandler *VerificationHandler
	PaymentHandler      *PaymentHandler
	AdminHandler        *AdminHandler
}
