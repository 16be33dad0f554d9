package models

import "time"

type Title struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"size:200;not null;index"`
	Year        *int   `json:"year" gorm:"index"`
	Description string `json:"description" gorm:"size:1000"`
	CategoryID  *int64 `json:"-" gorm:"index"`

	// Rating is AVG(reviews.score), filled only by queries that select it.
	Rating *float64 `json:"rating" gorm:"->;-:migration"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Associations
	Category *Category `json:"category" gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genre" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}
