package domain

// Metadata describes one page of an in-memory listing.
type Metadata struct {
	CurrentPage  int
	FirstPage    int
	LastPage     int
	PageSize     int
	TotalRecords int
}

func NewMetadata(totalRecords, page, pageSize int) *Metadata {
	return &Metadata{
		CurrentPage:  page,
		FirstPage:    1,
		LastPage:     max(1, (totalRecords+pageSize-1)/pageSize),
		PageSize:     pageSize,
		TotalRecords: totalRecords,
	}
}
