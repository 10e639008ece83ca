package models

// Media records a chat attachment uploaded to object storage.
type Media struct {
	Model
	UserID       uint   `gorm:"not null;index" json:"user_id"`
	FileType     string `json:"file_type"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}
