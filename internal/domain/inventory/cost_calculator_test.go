package inventory_test

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/farmstock-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNewWeightedAverage_RecepcionSobreSaldoExistente(t *testing.T) {
	// 100 @ 10.00 + 50 @ 16.00 -> 150 @ 12.00
	got := inventory.NewWeightedAverage(d("100"), d("10.00"), d("50"), d("16.00"))
	assert.True(t, got.Equal(d("12.00")), "esperado 12.00, obtenido %s", got)
}

func TestNewWeightedAverage_SaldoInicialCero(t *testing.T) {
	got := inventory.NewWeightedAverage(decimal.Zero, decimal.Zero, d("20"), d("7.35"))
	assert.True(t, got.Equal(d("7.35")))
}

func TestNewWeightedAverage_SumaNoPositivaDevuelveCero(t *testing.T) {
	assert.True(t, inventory.NewWeightedAverage(d("-10"), d("5"), d("10"), d("6")).IsZero())
	assert.True(t, inventory.NewWeightedAverage(d("-30"), d("5"), d("10"), d("6")).IsZero())
}

func TestNewWeightedAverage_RedondeaADosDecimales(t *testing.T) {
	// (10*1 + 20*2) / 30 = 1.6666... -> 1.67
	got := inventory.NewWeightedAverage(d("10"), d("1"), d("20"), d("2"))
	assert.Equal(t, "1.67", got.StringFixed(2))
}

func TestNewWeightedAverage_MismoCostoConservaElCosto(t *testing.T) {
	cases := []struct {
		qty, cost, inQty string
	}{
		{"0.5", "0.01", "0.5"},
		{"0.333", "1.55", "0.333"},
		{"12.75", "3.99", "0.125"},
		{"0.0001", "250.37", "1999.9999"},
	}
	for _, c := range cases {
		got := inventory.NewWeightedAverage(d(c.qty), d(c.cost), d(c.inQty), d(c.cost))
		assert.True(t, got.Equal(d(c.cost)), "%s@%s + %s@%s: obtenido %s", c.qty, c.cost, c.inQty, c.cost, got)
	}
}

func TestNewWeightedAverage_CantidadesFraccionarias(t *testing.T) {
	// (2.5*4.10 + 1.25*5.33) / 3.75 = (10.25 + 6.6625) / 3.75 = 4.51
	got := inventory.NewWeightedAverage(d("2.5"), d("4.10"), d("1.25"), d("5.33"))
	assert.Equal(t, "4.51", got.StringFixed(2))

	// (0.333*1.555 + 0.667*2.005) / 1 = 0.517815 + 1.337335 = 1.85515 -> 1.86
	got = inventory.NewWeightedAverage(d("0.333"), d("1.555"), d("0.667"), d("2.005"))
	assert.Equal(t, "1.86", got.StringFixed(2))
}

func TestValidQuantity(t *testing.T) {
	assert.True(t, inventory.ValidQuantity(d("1")))
	assert.True(t, inventory.ValidQuantity(d("0.0001")))
	assert.True(t, inventory.ValidQuantity(d("2.50000000")))
	assert.False(t, inventory.ValidQuantity(d("0.00005")))
	assert.False(t, inventory.ValidQuantity(d("0.00001")))
	assert.False(t, inventory.ValidQuantity(d("0")))
	assert.False(t, inventory.ValidQuantity(d("-3")))
}

func TestClosingBalance(t *testing.T) {
	cases := []struct {
		opening, purchased, used, want string
	}{
		{"100", "50", "30", "120"},
		{"0.105", "0", "0", "0.11"},
		{"10.004", "0.001", "0", "10.01"},
		{"5", "0", "5", "0"},
		{"1.333", "1.333", "0.001", "2.67"},
	}
	for _, c := range cases {
		got := inventory.ClosingBalance(d(c.opening), d(c.purchased), d(c.used))
		assert.True(t, got.Equal(d(c.want)), "%s+%s-%s: esperado %s, obtenido %s", c.opening, c.purchased, c.used, c.want, got)
	}
}

func TestRoundTo2_MitadLejosDeCero(t *testing.T) {
	assert.Equal(t, "2.35", inventory.RoundTo2(d("2.345")).StringFixed(2))
	assert.Equal(t, "-2.35", inventory.RoundTo2(d("-2.345")).StringFixed(2))
	assert.Equal(t, "1.00", inventory.RoundTo2(d("0.995")).StringFixed(2))
}

func TestRoundTo2_Idempotente(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		x := decimal.New(rng.Int63n(20_000_000)-10_000_000, -int32(rng.Intn(7)))
		once := inventory.RoundTo2(x)
		assert.True(t, inventory.RoundTo2(once).Equal(once), "RoundTo2 no idempotente para %s", x)
	}
}

func TestMovementValue(t *testing.T) {
	assert.True(t, inventory.MovementValue(d("3.5"), d("12.345")).Equal(d("43.21")))
}
