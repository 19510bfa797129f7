package domain

import (
	"cmp"
	"slices"
	"strings"
)

// Pagination pages, filters and sorts a listing the backend returns whole.
type Pagination struct {
	Page     int
	PageSize int
	Term     string
	Sort     string
}

func (f Pagination) SortColumn() string {
	return strings.TrimPrefix(f.Sort, "-")
}

func (f Pagination) SortDirection() string {
	if strings.HasPrefix(f.Sort, "-") {
		return "DESC"
	}

	return "ASC"
}

func (f Pagination) Limit() int {
	return f.PageSize
}

func (f Pagination) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// PromotionSortColumns lists the accepted values of Pagination.Sort for
// promotion listings.
var PromotionSortColumns = []string{"id", "-id", "code", "-code", "discount", "-discount", "creation_date", "-creation_date"}

// PagePromotions filters promotions whose code or description contains Term
// (case-insensitive), sorts them and cuts out the requested page.
func PagePromotions(promotions []Promotion, f Pagination) ([]Promotion, *Metadata) {
	term := strings.ToLower(strings.TrimSpace(f.Term))

	filtered := make([]Promotion, 0, len(promotions))
	for _, p := range promotions {
		if term == "" ||
			strings.Contains(strings.ToLower(p.Code), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			filtered = append(filtered, p)
		}
	}

	desc := f.SortDirection() == "DESC"
	column := f.SortColumn()

	slices.SortStableFunc(filtered, func(a, b Promotion) int {
		var c int
		switch column {
		case "code":
			c = strings.Compare(a.Code, b.Code)
		case "discount":
			c = a.DiscountPercentage.Cmp(b.DiscountPercentage)
		case "creation_date":
			c = a.CreationDate.Compare(b.CreationDate)
		default:
			c = cmp.Compare(a.ID, b.ID)
		}

		if desc {
			return -c
		}
		return c
	})

	metadata := NewMetadata(len(filtered), f.Page, f.PageSize)

	start := min(f.Offset(), len(filtered))
	end := min(start+f.Limit(), len(filtered))

	return filtered[start:end], metadata
}
