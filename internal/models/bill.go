package models

// Bill is a shared cost container owned by its creator.
type Bill struct {
	ID    int64
	Name  string
	Label string

	// CreatorID owns the bill. The creator is an implicit participant
	// and is not listed in Members.
	CreatorID int64

	// Members are the users who accepted an invitation to the bill.
	Members []int64

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64
}

// IsParticipant reports whether userID is the creator or a member.
func (b *Bill) IsParticipant(userID int64) bool {
	if b.CreatorID == userID {
		return true
	}
	for _, m := range b.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// ParticipantIDs returns the creator followed by the members.
func (b *Bill) ParticipantIDs() []int64 {
	ids := make([]int64, 0, len(b.Members)+1)
	ids = append(ids, b.CreatorID)
	return append(ids, b.Members...)
}

// BillSummary is a list entry for the created/assigned bill pages.
// Totals holds one entry per currency used in the bill.
type BillSummary struct {
	ID        int64
	Name      string
	Label     string
	CreatorID int64
	CreatedAt int64
	Totals    map[string]int64
}

// Page describes one page of a paginated listing.
type Page struct {
	Number  int
	PerPage int
}

// Offset returns the row offset of the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// TotalPages returns how many pages totalItems spans.
func (p Page) TotalPages(totalItems int) int {
	if totalItems == 0 || p.PerPage <= 0 {
		return 0
	}
	return (totalItems + p.PerPage - 1) / p.PerPage
}
