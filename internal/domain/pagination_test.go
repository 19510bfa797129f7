package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPagePromotions(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	promotions := []Promotion{
		{ID: 1, Code: "SPRING", DiscountPercentage: dec("10"), Description: "Spring sale", CreationDate: day},
		{ID: 2, Code: "SUMMER", DiscountPercentage: dec("25"), Description: "Summer sale", CreationDate: day.AddDate(0, 1, 0)},
		{ID: 3, Code: "VIP", DiscountPercentage: dec("50"), Description: "Members only", CreationDate: day.AddDate(0, 2, 0)},
	}

	tests := []struct {
		name     string
		f        Pagination
		wantIDs  []int
		wantLast int
		wantRecs int
	}{
		{name: "default order", f: Pagination{Page: 1, PageSize: 10, Sort: "id"}, wantIDs: []int{1, 2, 3}, wantLast: 1, wantRecs: 3},
		{name: "descending discount", f: Pagination{Page: 1, PageSize: 2, Sort: "-discount"}, wantIDs: []int{3, 2}, wantLast: 2, wantRecs: 3},
		{name: "second page", f: Pagination{Page: 2, PageSize: 2, Sort: "creation_date"}, wantIDs: []int{3}, wantLast: 2, wantRecs: 3},
		{name: "term matches description", f: Pagination{Page: 1, PageSize: 10, Sort: "code", Term: "SALE"}, wantIDs: []int{1, 2}, wantLast: 1, wantRecs: 2},
		{name: "page past the end", f: Pagination{Page: 5, PageSize: 10, Sort: "id"}, wantIDs: []int{}, wantLast: 1, wantRecs: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, metadata := PagePromotions(promotions, tt.f)

			ids := make([]int, len(page))
			for i, p := range page {
				ids[i] = p.ID
			}

			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantLast, metadata.LastPage)
			assert.Equal(t, tt.wantRecs, metadata.TotalRecords)
		})
	}
}
