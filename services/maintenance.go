package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/blog/models"
)

// OrphanReport counts rows removed by PurgeOrphans.
type OrphanReport struct {
	Comments int64
	Ratings  int64
}

// PurgeOrphans deletes comments and ratings whose post (or comment author) no longer exists.
// Databases written before deletes cascaded can hold such rows.
func PurgeOrphans(ctx context.Context, db *gorm.DB) (OrphanReport, error) {
	var report OrphanReport
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id NOT IN (?) OR user_id NOT IN (?)",
			tx.Model(&models.Post{}).Select("id"),
			tx.Model(&models.User{}).Select("id"),
		).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		report.Comments = res.RowsAffected

		res = tx.Where("post_id NOT IN (?)", tx.Model(&models.Post{}).Select("id")).Delete(&models.Rating{})
		if res.Error != nil {
			return res.Error
		}
		report.Ratings = res.RowsAffected
		return nil
	})
	if err != nil {
		return OrphanReport{}, fmt.Errorf("purge orphans: %w", err)
	}
	return report, nil
}
