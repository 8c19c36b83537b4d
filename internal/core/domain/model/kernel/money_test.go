package kernel_test

import (
	"testing"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoneyFromString(t *testing.T) {
	t.Run("should parse valid decimal string", func(t *testing.T) {
		m, err := kernel.NewMoneyFromString("115.00")

		require.NoError(t, err)
		assert.Equal(t, "115.00", m.String())
	})

	t.Run("should round to two decimals half-up", func(t *testing.T) {
		m, err := kernel.NewMoneyFromString("10.005")

		require.NoError(t, err)
		assert.Equal(t, "10.01", m.String())
	})

	t.Run("should round down below the midpoint", func(t *testing.T) {
		m, err := kernel.NewMoneyFromString("10.004")

		require.NoError(t, err)
		assert.Equal(t, "10.00", m.String())
	})

	t.Run("should fail on malformed input", func(t *testing.T) {
		_, err := kernel.NewMoneyFromString("abc")

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	t.Run("addition is exact", func(t *testing.T) {
		a := kernel.MustMoney("0.10")
		b := kernel.MustMoney("0.20")

		assert.Equal(t, "0.30", a.Add(b).String())
	})

	t.Run("subtraction is exact", func(t *testing.T) {
		a := kernel.MustMoney("230.00")
		b := kernel.MustMoney("23.00")

		assert.Equal(t, "207.00", a.Sub(b).String())
	})

	t.Run("zero value is usable as fold seed", func(t *testing.T) {
		sum := kernel.ZeroMoney()
		for range 3 {
			sum = sum.Add(kernel.MustMoney("0.10"))
		}

		assert.Equal(t, "0.30", sum.String())
	})

	t.Run("multiplication by rate rounds immediately", func(t *testing.T) {
		m := kernel.MustMoney("200.00")
		rate := kernel.MustRate("0.15")

		assert.Equal(t, "30.00", m.MulRate(rate).String())
	})

	t.Run("multiplication by quantity rounds", func(t *testing.T) {
		m := kernel.MustMoney("100.00")

		assert.Equal(t, "200.00", m.MulInt(2).String())
	})

	t.Run("comparison is numeric", func(t *testing.T) {
		a := kernel.MustMoney("2.50")
		b := kernel.MustMoney("2.5")

		assert.True(t, a.IsEqual(b))
		assert.True(t, kernel.MustMoney("1.00").LessThan(a))
		assert.True(t, a.GreaterThan(kernel.ZeroMoney()))
	})
}

func TestExtractExVat(t *testing.T) {
	t.Run("should split inclusive price into base and VAT", func(t *testing.T) {
		exVat, vat := kernel.ExtractExVat(kernel.MustMoney("115.00"), kernel.MustRate("0.15"))

		assert.Equal(t, "100.00", exVat.String())
		assert.Equal(t, "15.00", vat.String())
	})

	t.Run("delivery fee scenario", func(t *testing.T) {
		exVat, vat := kernel.ExtractExVat(kernel.MustMoney("11.50"), kernel.MustRate("0.15"))

		assert.Equal(t, "10.00", exVat.String())
		assert.Equal(t, "1.50", vat.String())
	})

	t.Run("components always sum back to the inclusive price", func(t *testing.T) {
		rate := kernel.MustRate("0.15")
		for _, price := range []string{"0.01", "0.03", "1.99", "33.33", "99.99", "115.01"} {
			inc := kernel.MustMoney(price)
			exVat, vat := kernel.ExtractExVat(inc, rate)

			assert.True(t, exVat.Add(vat).IsEqual(inc),
				"ex-VAT %s + VAT %s must equal %s", exVat, vat, inc)
		}
	})

	t.Run("residual cent lands in the VAT component", func(t *testing.T) {
		// 1.00 / 1.15 = 0.869565... -> base 0.87, VAT carries the remainder.
		exVat, vat := kernel.ExtractExVat(kernel.MustMoney("1.00"), kernel.MustRate("0.15"))

		assert.Equal(t, "0.87", exVat.String())
		assert.Equal(t, "0.13", vat.String())
	})

	t.Run("zero rate leaves the price untouched", func(t *testing.T) {
		exVat, vat := kernel.ExtractExVat(kernel.MustMoney("50.00"), kernel.MustRate("0"))

		assert.Equal(t, "50.00", exVat.String())
		assert.True(t, vat.IsZero())
	})
}

func TestNewRate(t *testing.T) {
	t.Run("should accept rates in the valid range", func(t *testing.T) {
		for _, s := range []string{"0", "0.15", "0.10", "0.999"} {
			r, err := kernel.RateFromString(s)

			require.NoError(t, err)
			require.NoError(t, r.Validate())
		}
	})

	t.Run("should reject one and above", func(t *testing.T) {
		_, err := kernel.NewRate(decimal.NewFromInt(1))

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should reject negative rates", func(t *testing.T) {
		_, err := kernel.RateFromString("-0.05")

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var r kernel.Rate

		require.Error(t, r.Validate())
	})
}
