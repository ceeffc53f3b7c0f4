// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kozoukioden/HatimChainApp/internal/domain"
)

// ChainsStats returns the number of chains and the greatest UpdatedAt among
// them. When the user filter is non-empty only chains the user created or
// joined are considered. With no rows, maxUpdatedAt is nil.
func ChainsStats(ctx context.Context, db *gorm.DB, userID string) (count int64, maxUpdatedAt *time.Time, err error) {
	tx := db.WithContext(ctx)
	q := tx.Model(&domain.Chain{})
	if userID != "" {
		member := tx.Model(&domain.ChainParticipant{}).Select("chain_id").Where("user_id = ?", userID)
		q = q.Where("created_by = ? OR id IN (?)", userID, member)
	}

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
