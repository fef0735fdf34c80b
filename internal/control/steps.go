package control

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/flex-control/internal/domain"
)

// Regime selects how per-step TYPE/TIME/STEP values are derived.
type Regime int

const (
	// RegimeOperational splits each step into the preceding 00/12 run and a
	// forecast lead.
	RegimeOperational Regime = iota
	// RegimeReanalysis uses an analysis at every step.
	RegimeReanalysis
	// RegimeEnsemble uses perturbed forecasts from a single base time.
	RegimeEnsemble
)

func (r Regime) String() string {
	switch r {
	case RegimeReanalysis:
		return "reanalysis"
	case RegimeEnsemble:
		return "ensemble"
	default:
		return "operational"
	}
}

const (
	reanalysisMarker = "EA"
	ensembleMarker   = "ENFO"

	dateLayout = "20060102"

	// ensembleLookback is how far before the end date the ensemble base
	// time is searched for.
	ensembleLookback = 36 * time.Hour
	runInterval      = 12 * time.Hour
)

// Regime reports which step regime the document's CLASS and STREAM select.
// CLASS takes precedence over STREAM.
func (d *Document) Regime() Regime {
	switch {
	case strings.Contains(strings.ToUpper(d.Get(KeyClass)), reanalysisMarker):
		return RegimeReanalysis
	case strings.Contains(strings.ToUpper(d.Get(KeyStream)), ensembleMarker):
		return RegimeEnsemble
	default:
		return RegimeOperational
	}
}

// SetSteps derives the date and step directives for the range [start, end)
// at the given timestep in hours, using the regime selected by the
// document's CLASS and STREAM.
func (d *Document) SetSteps(start, end time.Time, timestep int) (domain.StepPlan, error) {
	plan, err := PlanSteps(d.Regime(), start, end, timestep)
	if err != nil {
		return domain.StepPlan{}, err
	}

	var updates []Directive
	if plan.AccTime != "" {
		updates = append(updates, Directive{Name: KeyAccTime, Value: plan.AccTime})
	}
	startDate, endDate := plan.Start.Format(dateLayout), plan.End.Format(dateLayout)
	updates = append(updates, Directive{Name: KeyStartDate, Value: startDate})
	if endDate != startDate {
		updates = append(updates, Directive{Name: KeyEndDate, Value: endDate})
	}
	updates = append(updates,
		Directive{Name: KeyType, Value: strings.Join(plan.Types, " ")},
		Directive{Name: KeyTime, Value: strings.Join(plan.Times, " ")},
		Directive{Name: KeyStep, Value: strings.Join(plan.Steps, " ")},
		Directive{Name: KeyDTime, Value: strconv.Itoa(plan.Timestep)},
	)

	if endDate == startDate {
		// A leftover END_DATE would widen the retrieval past the range.
		d.Delete(KeyEndDate)
	}
	d.Merge(updates...)
	return plan, nil
}

// PlanSteps computes the step plan for [start, end) under regime. The last
// step is end minus one timestep, so the range must hold a whole number of
// timesteps.
func PlanSteps(regime Regime, start, end time.Time, timestep int) (domain.StepPlan, error) {
	if timestep <= 0 {
		return domain.StepPlan{}, &domain.DomainRangeError{Field: "timestep", Reason: fmt.Sprintf("must be positive, got %d", timestep)}
	}
	start, end = start.UTC(), end.UTC()
	span := end.Sub(start)
	// Compare in hours first so the timestep never overflows a Duration.
	if span <= 0 || int64(timestep) > int64(span/time.Hour) {
		return domain.StepPlan{}, &domain.DomainRangeError{
			Field:  "date range",
			Reason: fmt.Sprintf("end %s must be at least one timestep after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339)),
		}
	}
	step := time.Duration(timestep) * time.Hour
	if span%step != 0 {
		return domain.StepPlan{}, &domain.DomainRangeError{
			Field:  "date range",
			Reason: fmt.Sprintf("range of %s is not a whole number of %dh timesteps", span, timestep),
		}
	}
	last := end.Add(-step)

	plan := domain.StepPlan{Timestep: timestep, Start: start, End: end}

	switch regime {
	case RegimeReanalysis:
		for st := start; !st.After(last); st = st.Add(step) {
			plan.Types = append(plan.Types, domain.TypeAnalysis)
			plan.Times = append(plan.Times, pad(st.Hour()%24))
			plan.Steps = append(plan.Steps, pad(0))
		}

	case RegimeEnsemble:
		base := ceilToRun(end.Add(-ensembleLookback))
		if start.Before(base) {
			return domain.StepPlan{}, &domain.DomainRangeError{
				Field:  "date range",
				Reason: fmt.Sprintf("ensemble steps from %s precede the base time %s", start.Format(time.RFC3339), base.Format(time.RFC3339)),
			}
		}
		for st := start; !st.After(last); st = st.Add(step) {
			plan.Types = append(plan.Types, domain.TypePerturbedForecast)
			plan.Times = append(plan.Times, pad(base.Hour()))
			plan.Steps = append(plan.Steps, pad(int(st.Sub(base)/time.Hour)))
		}
		plan.Start, plan.End = base, base
		plan.AccTime = plan.Times[0]

	default:
		for st := start; !st.After(last); st = st.Add(step) {
			lead := st.Hour() % 12
			typ := domain.TypeForecast
			if lead == 0 {
				typ = domain.TypeAnalysis
			}
			plan.Types = append(plan.Types, typ)
			plan.Times = append(plan.Times, pad(st.Hour()/12*12))
			plan.Steps = append(plan.Steps, pad(lead))
		}
	}

	return plan, nil
}

// ceilToRun rounds t up to the next 00 or 12 UTC mark; t is returned as is
// when it already lies on one.
func ceilToRun(t time.Time) time.Time {
	floor := t.Truncate(runInterval)
	if floor.Equal(t) {
		return t
	}
	return floor.Add(runInterval)
}

// pad formats n with at least two digits.
func pad(n int) string {
	return fmt.Sprintf("%02d", n)
}
