package aggregate

import (
	"strings"

	"product-dashboard/internal/models"
)

// Criteria are case-insensitive substring filters; empty criteria match all.
type Criteria struct {
	Name        string
	ID          string
	Category    string
	Description string
}

func contains(field, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(field), strings.ToLower(needle))
}

func (c Criteria) Match(p models.Product) bool {
	return contains(p.Name, c.Name) &&
		contains(p.ID, c.ID) &&
		contains(p.Category, c.Category) &&
		contains(p.Description, c.Description)
}

type Page struct {
	Items   []models.Product `json:"items"`
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
	Pages   int              `json:"pages"`
}

// Search filters records and returns the requested 1-based page. Pages past
// the end are empty rather than clamped.
func Search(records []models.Product, c Criteria, page, perPage int) Page {
	if perPage <= 0 {
		perPage = 10
	}
	if page < 1 {
		page = 1
	}
	matched := filter(records, c.Match)

	p := Page{
		Items:   []models.Product{},
		Total:   len(matched),
		Page:    page,
		PerPage: perPage,
		Pages:   len(matched) / perPage,
	}
	if len(matched)%perPage != 0 {
		p.Pages++
	}
	if page > p.Pages {
		return p
	}
	start := (page - 1) * perPage
	end := min(start+perPage, len(matched))
	p.Items = matched[start:end]
	return p
}
