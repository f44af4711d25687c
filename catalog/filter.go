package catalog

import (
	"strings"

	"civic-reports-service/models"
)

// Filter produces the view of reports satisfying every active predicate of
// the criteria. A predicate at its wildcard value is a no-op. The relative
// order of the input is preserved; identical inputs always yield identical
// views.
func Filter(reports []models.Report, criteria models.FilterCriteria) []models.Report {
	query := strings.ToLower(criteria.Query)
	statusActive := criteria.Status != "" && criteria.Status != models.StatusAll
	categoryActive := criteria.Category != "" && criteria.Category != models.CategoryAll

	out := make([]models.Report, 0, len(reports))
	for _, r := range reports {
		if query != "" && !matchesQuery(&r, query) {
			continue
		}
		if statusActive && string(r.Status) != criteria.Status {
			continue
		}
		if categoryActive && r.Category != criteria.Category {
			continue
		}
		out = append(out, r)
	}
	return out
}

// matchesQuery checks the lowercased query against title, description and
// location address.
func matchesQuery(r *models.Report, query string) bool {
	return strings.Contains(strings.ToLower(r.Title), query) ||
		strings.Contains(strings.ToLower(r.Description), query) ||
		strings.Contains(strings.ToLower(r.Location.Address), query)
}
