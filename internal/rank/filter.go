package rank

import (
	"sort"

	"github.com/jobpath-app/go-discovery/internal/domain"
)

// SortKey selects the ordering of filtered search results.
type SortKey string

const (
	SortByDate    SortKey = "date"
	SortByCommute SortKey = "commute"
	SortBySalary  SortKey = "salary"
)

// FilterOptions holds the active search filters. Zero values mean
// "no filter".
type FilterOptions struct {
	MaxCommuteMins int
	TransitOnly    bool
	ProgramOnly    bool
	Sort           SortKey
}

// Filter removes listings failing the active filters and orders the
// rest by the requested sort key. Listings with risk severity
// "danger" are removed unconditionally before anything else; that
// exclusion is not configurable.
func Filter(listings []domain.EnrichedListing, opts FilterOptions) []domain.EnrichedListing {
	result := make([]domain.EnrichedListing, 0, len(listings))
	for _, l := range listings {
		if l.RiskSeverity == domain.RiskDanger {
			continue
		}
		if opts.TransitOnly && l.Commute == nil {
			continue
		}
		if opts.MaxCommuteMins > 0 && l.Commute != nil && l.Commute.Minutes > opts.MaxCommuteMins {
			continue
		}
		if opts.ProgramOnly && !l.ProgramMatch {
			continue
		}
		result = append(result, l)
	}

	switch opts.Sort {
	case SortByCommute:
		// Ascending by minutes; unknown commutes sort after all known
		// values, keeping their original relative order.
		sort.SliceStable(result, func(i, j int) bool {
			a, b := result[i].Commute, result[j].Commute
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.Minutes < b.Minutes
		})
	case SortBySalary:
		// Descending by the salary ceiling; listings without salary
		// data sort last.
		sort.SliceStable(result, func(i, j int) bool {
			a, b := result[i].SalaryCeiling(), result[j].SalaryCeiling()
			return a > b
		})
	default:
		// Date order is inherited from the provider and not recomputed.
	}

	return result
}

// stableSortBy is a small helper shared with the ranking sort.
func stableSortBy(ranked []domain.RankedListing, less func(a, b *domain.RankedListing) bool) {
	sort.SliceStable(ranked, func(i, j int) bool {
		return less(&ranked[i], &ranked[j])
	})
}
