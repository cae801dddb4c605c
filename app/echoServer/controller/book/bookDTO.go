package book

type CreateBookReq struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	PricePerDay float64 `json:"price_per_day" validate:"required,gt=0"`
	CategoryID  int64   `json:"category_id" validate:"required,gt=0"`
	ImageURL    *string `json:"image_url,omitempty"`
}

type SetBookOfWeekReq struct {
	BookID int64 `json:"book_id" validate:"required,gt=0"`
}
