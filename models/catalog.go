// models/catalog.go
package models

// Song is a playable song in the catalog. Key is the slug of the title and
// is what unlock rules refer to.
type Song struct {
	ID             string `json:"id" gorm:"primaryKey;type:uuid"`
	Key            string `json:"key" gorm:"uniqueIndex;not null"`
	Title          string `json:"title" gorm:"not null"`
	Artist         string `json:"artist"`
	BannerPath     string `json:"banner_path"`
	BackgroundPath string `json:"background_path"`

	Timestamps
}

// Course is a fixed sequence of songs played as one set.
type Course struct {
	ID         string `json:"id" gorm:"primaryKey;type:uuid"`
	Key        string `json:"key" gorm:"uniqueIndex;not null"`
	Title      string `json:"title" gorm:"not null"`
	BannerPath string `json:"banner_path"`

	Timestamps
}
