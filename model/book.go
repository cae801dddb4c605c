// model/book.go
package model

import "time"

type Book struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	PricePerDay  float64   `json:"price_per_day"`
	ImageURL     *string   `json:"image_url,omitempty"`
	IsBookOfWeek bool      `json:"is_book_of_the_week"`
	OwnerID      int64     `json:"owner_id"`
	OwnerName    string    `json:"owner_name,omitempty"`
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
