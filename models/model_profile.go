package models

// ModelProfile is the public catalog entry for a participant with
// Role = "model".
type ModelProfile struct {
	Model
	UserID          uint     `gorm:"uniqueIndex;not null" json:"user_id"`
	Name            string   `gorm:"not null" json:"name" conform:"trim"`
	Bio             string   `gorm:"size:500" json:"bio"`
	CoverPhoto      string   `json:"cover_photo"`
	Photos          []string `gorm:"serializer:json" json:"photos"`
	Age             int      `json:"age"`
	PricePerMessage int      `gorm:"default:5" json:"price_per_message"`
	IsOnline        bool     `gorm:"default:false" json:"is_online"`
	Rating          float64  `gorm:"default:5" json:"rating"`
	TotalChats      int      `gorm:"default:0" json:"total_chats"`
	Tags            []string `gorm:"serializer:json" json:"tags"`
}
