package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBudget(t *testing.T) {
	req := planRequest("2024-01-05", "2024-01-08", 2, subject("Math", "High", topic("Algebra", 4)))
	req.Preferences.WeekendHours = hoursPtr(5)
	req.Preferences.BreakDays = []string{"2024-01-07"}
	in, err := Normalize(req)
	require.NoError(t, err)

	days, available := BuildBudget(in)

	require.Len(t, days, 4)
	assert.Equal(t, date("2024-01-05"), days[0].Date)
	assert.Equal(t, []float64{2, 5, 0, 2}, []float64{days[0].Hours, days[1].Hours, days[2].Hours, days[3].Hours})
	assert.Equal(t, 9.0, available)
}

func TestBuildBudgetSingleDay(t *testing.T) {
	in, err := Normalize(planRequest("2024-02-29", "2024-02-29", 1.5, subject("Math", "High", topic("Algebra", 4))))
	require.NoError(t, err)

	days, available := BuildBudget(in)

	require.Len(t, days, 1)
	assert.Equal(t, 1.5, available)
}

func TestClockLabel(t *testing.T) {
	assert.Equal(t, "07:00", clockLabel(420))
	assert.Equal(t, "13:25", clockLabel(805.0000001))
	assert.Equal(t, "24:00", clockLabel(24*60))
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "mandatory", TierMandatory.String())
	assert.Equal(t, "low", TierLow.String())
	assert.Equal(t, "tier(9)", Tier(9).String())
}
