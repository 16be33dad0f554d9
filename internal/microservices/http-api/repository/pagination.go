package repository

import (
	"math"

	"gorm.io/gorm"
)

// Paginate is a gorm scope applying a 1-based page and page size. Pages whose
// offset would overflow are clamped to the largest representable offset.
func Paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if pageSize < 1 {
			pageSize = 1
		}
		offset := math.MaxInt32
		if page-1 <= math.MaxInt32/pageSize {
			offset = (page - 1) * pageSize
		}
		return db.Offset(offset).Limit(pageSize)
	}
}
