package finance

import (
	"math"

	"rapidmandados_backend/internal/models"
)

// IVARate - НДС Мексики, начисляется только на сервисный сбор.
// Не конфигурируется: это налоговая константа, а не параметр площадки.
const IVARate = 0.16

// Calculate строит полный расклад по заказу.
//
// subtotal - цена заказа, назначенная клиентом;
// commissionRate - доля площадки от subtotal, [0, 1];
// serviceFee - фиксированный сбор с клиента.
//
// Клиент платит subtotal + serviceFee + iva.
// Водителю достается subtotal за вычетом комиссии.
// Владельцу - комиссия плюс сервисный сбор.
//
// Значения не округляются: хранение идет в полной точности,
// округление до сентаво делает слой представления.
func Calculate(subtotal, commissionRate, serviceFee float64) models.OrderFinancials {
	commission := subtotal * commissionRate
	iva := serviceFee * IVARate

	return models.OrderFinancials{
		Subtotal:       subtotal,
		ServiceFee:     serviceFee,
		IVA:            iva,
		Total:          subtotal + serviceFee + iva,
		CommissionRate: commissionRate,
		Commission:     commission,
		DriverEarnings: subtotal - commission,
		OwnerEarnings:  commission + serviceFee,
	}
}

// Round2 округляет до сентаво. Только для отдачи наружу.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
