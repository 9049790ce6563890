package domain

import "time"

// Event is a shot sports event whose photos are offered for sale.
type Event struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Date         time.Time `json:"date"`
	Description  string    `json:"description,omitempty"`
	CoverURL     string    `json:"cover_url,omitempty"`
	WatermarkURL string    `json:"watermark_url,omitempty"`
	PhotoCount   int       `json:"photo_count"`
}

// Photo belongs to exactly one Event. URL points at the public (possibly
// watermarked) rendition; OriginalPath is the storage path of the full
// resolution file sold to the customer.
type Photo struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	URL          string    `json:"url"`
	OriginalPath string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
