package domain

import "time"

// Book is a catalog entry. CoverKey and ObjectKey point into the asset bucket;
// only CoverKey is exposed publicly, the ebook object itself is served through
// short-lived presigned URLs to authenticated users.
type Book struct {
	BookID      string    `json:"id" dynamodbav:"book_id"`
	Title       string    `json:"title" dynamodbav:"title"`
	Author      string    `json:"author" dynamodbav:"author"`
	Description string    `json:"description" dynamodbav:"description"`
	PriceIDR    int       `json:"price_idr" dynamodbav:"price_idr"`
	CoverKey    string    `json:"cover_key" dynamodbav:"cover_key"`
	ObjectKey   string    `json:"-" dynamodbav:"object_key"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
}

// CreateBookRequest carries the catalog fields for a new title. The ebook
// object itself travels as a multipart file alongside these fields.
type CreateBookRequest struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	Description string `json:"description"`
	PriceIDR    int    `json:"price_idr" validate:"gte=0"`
}
