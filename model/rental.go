// model/rental.go
package model

import "time"

// Rental is one booking of one book for a contiguous date interval.
// Price and dates are immutable once booked; the record only ever
// disappears through cancellation or user cascade.
type Rental struct {
	ID         int64     `json:"id"`
	BookID     int64     `json:"book_id"`
	UserID     int64     `json:"user_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	TotalPrice float64   `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`

	// Denormalized for display.
	BookTitle    string  `json:"book_title,omitempty"`
	BookImageURL *string `json:"book_image_url,omitempty"`
	RenterName   string  `json:"renter_name,omitempty"`
}

// Overlaps reports whether [s1,e1) and [s2,e2) intersect.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
