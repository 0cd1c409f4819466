package commission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAmount_Percentage(t *testing.T) {
	rule := Rule{Type: CalculationPercentage, Value: 40}

	amount, err := ComputeAmount(rule, 120, 1)
	require.NoError(t, err)
	assert.Equal(t, 48.0, amount)
}

func TestComputeAmount_PercentageIgnoresQuantity(t *testing.T) {
	rule := Rule{Type: CalculationPercentage, Value: 10}

	amount, err := ComputeAmount(rule, 200, 5)
	require.NoError(t, err)
	assert.Equal(t, 20.0, amount)
}

func TestComputeAmount_FixedPerAppointment(t *testing.T) {
	rule := Rule{Type: CalculationFixed, Unit: UnitAppointment, Value: 50}

	amount, err := ComputeAmount(rule, 300, 4)
	require.NoError(t, err)
	assert.Equal(t, 50.0, amount)
}

func TestComputeAmount_FixedPerUnitScalesWithQuantity(t *testing.T) {
	for _, unit := range []CalculationUnit{UnitMl, UnitArch, UnitSession, UnitUnit} {
		rule := Rule{Type: CalculationFixed, Unit: unit, Value: 12.5}

		amount, err := ComputeAmount(rule, 500, 3)
		require.NoError(t, err, "unit %s", unit)
		assert.Equal(t, 37.5, amount, "unit %s", unit)
	}
}

func TestComputeAmount_RejectsBadInputs(t *testing.T) {
	rule := Rule{Type: CalculationPercentage, Value: 10}

	_, err := ComputeAmount(rule, 0, 1)
	assert.ErrorIs(t, err, ErrNonPositiveServiceValue)

	_, err = ComputeAmount(rule, -5, 1)
	assert.ErrorIs(t, err, ErrNonPositiveServiceValue)

	_, err = ComputeAmount(rule, 100, 0)
	assert.ErrorIs(t, err, ErrNonPositiveQuantity)

	_, err = ComputeAmount(rule, 100, -2)
	assert.ErrorIs(t, err, ErrNonPositiveQuantity)
}

func TestComputeAmount_RejectsUnknownTypeAndUnit(t *testing.T) {
	_, err := ComputeAmount(Rule{Type: "tiered", Value: 10}, 100, 1)
	assert.ErrorIs(t, err, ErrUnknownCalculationType)

	_, err = ComputeAmount(Rule{Type: CalculationFixed, Unit: "gram", Value: 10}, 100, 1)
	assert.ErrorIs(t, err, ErrUnknownCalculationUnit)
}

func TestComputeAmount_NoRounding(t *testing.T) {
	rule := Rule{Type: CalculationPercentage, Value: 3}

	amount, err := ComputeAmount(rule, 150, 1)
	require.NoError(t, err)
	assert.Equal(t, 4.5, amount)
}
