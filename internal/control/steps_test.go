package control

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/flex-control/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hour(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func docWith(class, stream string) *Document {
	return New().Merge(
		Directive{Name: KeyClass, Value: class},
		Directive{Name: KeyStream, Value: stream},
	)
}

func TestRegime_Selection(t *testing.T) {
	assert.Equal(t, RegimeReanalysis, docWith("EA", "OPER").Regime())
	assert.Equal(t, RegimeReanalysis, docWith("EA", "ENFO").Regime(), "class marker wins")
	assert.Equal(t, RegimeEnsemble, docWith("OD", "ENFO").Regime())
	assert.Equal(t, RegimeOperational, docWith("OD", "OPER").Regime())
	assert.Equal(t, RegimeOperational, New().Regime())
	assert.Equal(t, "ensemble", RegimeEnsemble.String())
}

func TestSetSteps_OperationalHalfDay(t *testing.T) {
	doc := docWith("OD", "OPER")

	plan, err := doc.SetSteps(hour(2020, 1, 1, 0), hour(2020, 1, 1, 12), 6)
	require.NoError(t, err)

	assert.Equal(t, 2, plan.Len())
	assert.Equal(t, "AN FC", doc.Get(KeyType))
	assert.Equal(t, "00 00", doc.Get(KeyTime))
	assert.Equal(t, "00 06", doc.Get(KeyStep))
	assert.Equal(t, "6", doc.Get(KeyDTime))
	assert.Equal(t, "20200101", doc.Get(KeyStartDate))
	_, hasEnd := doc.Lookup(KeyEndDate)
	assert.False(t, hasEnd)
}

func TestSetSteps_OperationalFullDay(t *testing.T) {
	doc := docWith("OD", "OPER")

	_, err := doc.SetSteps(hour(2020, 1, 1, 0), hour(2020, 1, 2, 0), 3)
	require.NoError(t, err)

	assert.Equal(t, "AN FC FC FC AN FC FC FC", doc.Get(KeyType))
	assert.Equal(t, "00 00 00 00 12 12 12 12", doc.Get(KeyTime))
	assert.Equal(t, "00 03 06 09 00 03 06 09", doc.Get(KeyStep))
	assert.Equal(t, "20200101", doc.Get(KeyStartDate))
	assert.Equal(t, "20200102", doc.Get(KeyEndDate))
	assert.Equal(t, "3", doc.Get(KeyDTime))
	assert.Equal(t,
		[]string{KeyClass, KeyStream, KeyStartDate, KeyEndDate, KeyType, KeyTime, KeyStep, KeyDTime},
		doc.Keys())
}

func TestSetSteps_Reanalysis(t *testing.T) {
	doc := docWith("EA", "OPER")

	_, err := doc.SetSteps(hour(2021, 6, 30, 18), hour(2021, 7, 1, 6), 4)
	require.NoError(t, err)

	assert.Equal(t, "AN AN AN", doc.Get(KeyType))
	assert.Equal(t, "18 22 02", doc.Get(KeyTime))
	assert.Equal(t, "00 00 00", doc.Get(KeyStep))
	assert.Equal(t, "20210630", doc.Get(KeyStartDate))
	assert.Equal(t, "20210701", doc.Get(KeyEndDate))
}

func TestSetSteps_Ensemble(t *testing.T) {
	doc := docWith("OD", "ENFO")

	// end-36h = 2020-01-01T12, already on a run boundary.
	plan, err := doc.SetSteps(hour(2020, 1, 2, 0), hour(2020, 1, 3, 0), 6)
	require.NoError(t, err)

	assert.Equal(t, "PF PF PF PF", doc.Get(KeyType))
	assert.Equal(t, "12 12 12 12", doc.Get(KeyTime))
	assert.Equal(t, "12 18 24 30", doc.Get(KeyStep))
	assert.Equal(t, "12", doc.Get(KeyAccTime))
	assert.Equal(t, "20200101", doc.Get(KeyStartDate))
	_, hasEnd := doc.Lookup(KeyEndDate)
	assert.False(t, hasEnd, "start and end both move to the base time")
	assert.Equal(t, hour(2020, 1, 1, 12), plan.Start)
	assert.Equal(t, plan.Start, plan.End)
}

func TestSetSteps_EnsembleBaseRoundsUp(t *testing.T) {
	doc := docWith("OD", "ENFO")

	// end-36h = 2020-01-01T15, rounded up to 2020-01-02T00.
	_, err := doc.SetSteps(hour(2020, 1, 2, 3), hour(2020, 1, 3, 3), 12)
	require.NoError(t, err)

	assert.Equal(t, "00 00", doc.Get(KeyTime))
	assert.Equal(t, "03 15", doc.Get(KeyStep))
	assert.Equal(t, "00", doc.Get(KeyAccTime))
	assert.Equal(t, "20200102", doc.Get(KeyStartDate))
}

func TestSetSteps_EnsembleStartBeforeBase(t *testing.T) {
	doc := docWith("OD", "ENFO")
	before := doc.String()

	_, err := doc.SetSteps(hour(2020, 1, 1, 0), hour(2020, 1, 5, 0), 6)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDomainRange))
	assert.Equal(t, before, doc.String())
}

func TestSetSteps_SingleStep(t *testing.T) {
	for _, class := range []string{"EA", "OD"} {
		doc := docWith(class, "OPER")
		plan, err := doc.SetSteps(hour(2020, 3, 1, 6), hour(2020, 3, 1, 9), 3)
		require.NoError(t, err)
		assert.Equal(t, 1, plan.Len())
		assert.NotContains(t, doc.Get(KeyType), " ")
	}
}

func TestSetSteps_SameDayRemovesStaleEndDate(t *testing.T) {
	doc := docWith("OD", "OPER")
	doc.Set(KeyEndDate, "20191231")

	_, err := doc.SetSteps(hour(2020, 1, 1, 0), hour(2020, 1, 1, 12), 6)
	require.NoError(t, err)

	_, hasEnd := doc.Lookup(KeyEndDate)
	assert.False(t, hasEnd)
}

func TestPlanSteps_CountMatchesRange(t *testing.T) {
	start := hour(2022, 2, 27, 0)
	for _, regime := range []Regime{RegimeOperational, RegimeReanalysis, RegimeEnsemble} {
		for _, ts := range []int{1, 2, 3, 6, 12} {
			end := start.Add(24 * time.Hour)
			if regime == RegimeEnsemble {
				// keep the start at or after the base time
				end = start.Add(12 * time.Hour)
			}
			plan, err := PlanSteps(regime, start, end, ts)
			require.NoError(t, err, "%s timestep %d", regime, ts)

			want := int(end.Sub(start).Hours()) / ts
			assert.Equal(t, want, plan.Len(), "%s timestep %d", regime, ts)
			assert.Len(t, plan.Times, want)
			assert.Len(t, plan.Steps, want)
		}
	}
}

func TestPlanSteps_OperationalTypeTracksLead(t *testing.T) {
	plan, err := PlanSteps(RegimeOperational, hour(2020, 1, 1, 0), hour(2020, 1, 3, 0), 1)
	require.NoError(t, err)
	for i := range plan.Types {
		assert.Equal(t, plan.Steps[i] == "00", plan.Types[i] == domain.TypeAnalysis, "step %d", i)
		assert.Contains(t, []string{"00", "12"}, plan.Times[i])
	}
}

func TestPlanSteps_Errors(t *testing.T) {
	start := hour(2020, 1, 1, 0)
	cases := []struct {
		name     string
		end      time.Time
		timestep int
	}{
		{"zero timestep", start.Add(6 * time.Hour), 0},
		{"negative timestep", start.Add(6 * time.Hour), -3},
		{"inverted range", start.Add(-6 * time.Hour), 3},
		{"empty range", start, 3},
		{"range shorter than timestep", start.Add(2 * time.Hour), 3},
		{"timestep overflows duration", start.Add(24 * time.Hour), 2562048},
		{"huge timestep", start.Add(24 * time.Hour), math.MaxInt},
		{"range not a multiple of timestep", start.Add(13 * time.Hour), 6},
		{"range with stray minutes", start.Add(12*time.Hour + 30*time.Minute), 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PlanSteps(RegimeOperational, start, tc.end, tc.timestep)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrDomainRange))
		})
	}
}

func TestSetSteps_OversizedTimestepLeavesDocument(t *testing.T) {
	doc := docWith("OD", "OPER")
	before := doc.String()

	_, err := doc.SetSteps(hour(2020, 1, 1, 0), hour(2020, 1, 2, 0), 3000000)
	require.ErrorIs(t, err, domain.ErrDomainRange)
	assert.Equal(t, before, doc.String())
}

func TestPad(t *testing.T) {
	assert.Equal(t, "00", pad(0))
	assert.Equal(t, "07", pad(7))
	assert.Equal(t, "12", pad(12))
	assert.Equal(t, "120", pad(120))
}

func TestDefaultDateRange(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.April, 27, 6, 30, 0, 0, time.UTC)))
	t.Cleanup(func() { SetClock(nil) })

	start, end := DefaultDateRange()
	assert.Equal(t, hour(2024, 4, 26, 0), start)
	assert.Equal(t, hour(2024, 4, 27, 0), end)

	doc := docWith("EA", "OPER")
	_, err := doc.SetSteps(start, end, 6)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.String(), "CLASS EA\nSTREAM OPER\nSTART_DATE 20240426\nEND_DATE 20240427\n"))
}
