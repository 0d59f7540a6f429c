package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCalculate_StandardOrder - канонический расклад:
// заказ на 1000 при комиссии 15% и сборе 15.
func TestCalculate_StandardOrder(t *testing.T) {
	t.Parallel()

	fin := Calculate(1000.0, 0.15, 15.0)

	assert.Equal(t, 1000.0, fin.Subtotal)
	assert.Equal(t, 15.0, fin.ServiceFee)
	assert.InDelta(t, 2.4, fin.IVA, 1e-9) // 16% только от сбора
	assert.InDelta(t, 1017.4, fin.Total, 1e-9)
	assert.Equal(t, 150.0, fin.Commission)
	assert.Equal(t, 850.0, fin.DriverEarnings)
	assert.Equal(t, 165.0, fin.OwnerEarnings)
	assert.Equal(t, 0.15, fin.CommissionRate)
}

// TestCalculate_SplitInvariant - деньги не теряются:
// заработок водителя + комиссия в точности равны subtotal.
func TestCalculate_SplitInvariant(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		subtotal float64
		rate     float64
		fee      float64
	}{
		{"мелкий заказ", 50.0, 0.15, 15.0},
		{"нулевая комиссия", 500.0, 0.0, 15.0},
		{"максимальная комиссия", 500.0, 1.0, 15.0},
		{"нулевой сбор", 250.0, 0.2, 0.0},
		{"дробные сентаво", 99.99, 0.15, 12.34},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fin := Calculate(tc.subtotal, tc.rate, tc.fee)

			assert.InDelta(t, tc.subtotal, fin.Commission+fin.DriverEarnings, 1e-9)
			assert.InDelta(t, fin.Subtotal+fin.ServiceFee+fin.IVA, fin.Total, 1e-9)
			assert.InDelta(t, fin.Commission+fin.ServiceFee, fin.OwnerEarnings, 1e-9)
			assert.GreaterOrEqual(t, fin.DriverEarnings, 0.0)
		})
	}
}

func TestCalculate_ZeroFee(t *testing.T) {
	t.Parallel()

	fin := Calculate(200.0, 0.15, 0)

	assert.Equal(t, 0.0, fin.IVA)
	assert.Equal(t, 200.0, fin.Total)
	assert.Equal(t, fin.Commission, fin.OwnerEarnings)
}

func TestRound2(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2.4, Round2(2.4000000000000004))
	assert.Equal(t, 1.24, Round2(1.236))
	assert.Equal(t, 100.0, Round2(99.999))
}
