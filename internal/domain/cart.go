package domain

import "time"

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	SessionID string     `bson:"session_id" json:"session_id"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// CartItem is one selected photo. A photo appears at most once per cart;
// uniqueness is keyed by PhotoID.
type CartItem struct {
	PhotoID   string    `bson:"photo_id" json:"photo_id"`
	EventID   string    `bson:"event_id" json:"event_id"`
	EventName string    `bson:"event_name" json:"event_name"`
	PhotoName string    `bson:"photo_name" json:"photo_name"`
	UnitPrice float64   `bson:"unit_price" json:"unit_price"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

func (c *Cart) Contains(photoID string) bool {
	for _, item := range c.Items {
		if item.PhotoID == photoID {
			return true
		}
	}
	return false
}
