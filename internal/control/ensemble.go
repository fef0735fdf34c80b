package control

import (
	"fmt"
	"math/rand/v2"

	"github.com/couchcryptid/flex-control/internal/domain"
)

// Fixed directives written with every ensemble configuration.
const (
	EnsembleLevel     = "91"
	EnsembleLevelList = "1/to/91"
	EnsembleResol     = "799"
	EnsembleFormat    = "GRIB2"
	EnsembleGauss     = "0"
)

// IntSource draws integers in [0, n). *rand.Rand satisfies it.
type IntSource interface {
	IntN(n int) int
}

// NewSeededSource returns a deterministic source for the given seed.
func NewSeededSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SampleMembers draws n distinct members from 1..domain.EnsembleMembers
// without replacement, in draw order.
func SampleMembers(src IntSource, n int) (domain.EnsembleSelection, error) {
	if n < 1 || n > domain.EnsembleMembers {
		return domain.EnsembleSelection{}, &domain.DomainRangeError{
			Field:  "ensemble sample size",
			Reason: fmt.Sprintf("must be between 1 and %d, got %d", domain.EnsembleMembers, n),
		}
	}

	pool := make([]int, domain.EnsembleMembers)
	for i := range pool {
		pool[i] = i + 1
	}
	// Partial Fisher-Yates: the first n slots become the draw.
	for i := 0; i < n; i++ {
		j := i + src.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	members := make([]int, n)
	copy(members, pool[:n])
	return domain.EnsembleSelection{Members: members}, nil
}

// SetEnsemble draws domain.EnsembleSampleSize members from src and writes
// NUMBER together with the fixed ensemble directives.
func (d *Document) SetEnsemble(src IntSource) (domain.EnsembleSelection, error) {
	sel, err := SampleMembers(src, domain.EnsembleSampleSize)
	if err != nil {
		return domain.EnsembleSelection{}, err
	}
	d.Merge(
		Directive{Name: KeyNumber, Value: sel.String()},
		Directive{Name: KeyLevelList, Value: EnsembleLevelList},
		Directive{Name: KeyLevel, Value: EnsembleLevel},
		Directive{Name: KeyResol, Value: EnsembleResol},
		Directive{Name: KeyFormat, Value: EnsembleFormat},
		Directive{Name: KeyGauss, Value: EnsembleGauss},
	)
	return sel, nil
}
