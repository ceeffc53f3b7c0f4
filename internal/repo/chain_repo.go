// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Chain
// document and its participant index.
//
// Functions are context-aware and take a *gorm.DB handle so they can run
// inside a caller's transaction. They hold no business rules: part
// transitions are decided in the domain package and persisted here as a
// whole-document replacement guarded by the chain's Version column.
//
// Error semantics:
//   - A missing chain yields gorm.ErrRecordNotFound (exported as ErrNotFound).
//   - A stale Version on update yields ErrVersionConflict.
//   - Any other driver error is returned unchanged.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kozoukioden/HatimChainApp/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrVersionConflict reports that the chain was rewritten by someone else
// between the caller's read and its update.
var ErrVersionConflict = errors.New("chain version conflict")

// Capped listings keep the newest window.
const chainOrder = "created_at DESC, id DESC"

// CreateChain assigns an ID, persists c and indexes its participants in one
// transaction. The caller builds c (see domain.NewChain); Version and
// timestamps are reset here.
func CreateChain(ctx context.Context, db *gorm.DB, c *domain.Chain) (*domain.Chain, error) {
	now := time.Now().UTC()
	c.ID = uuid.NewString()
	c.Version = 1
	c.CreatedAt = now
	c.UpdatedAt = now

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		return syncParticipants(tx, c.ID, c.Participants)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetChain fetches a chain by ID, or ErrNotFound.
func GetChain(ctx context.Context, db *gorm.DB, id string) (*domain.Chain, error) {
	var c domain.Chain
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChains returns at most limit chains, newest first. A limit <= 0 means
// no limit.
func ListChains(ctx context.Context, db *gorm.DB, limit int) ([]domain.Chain, error) {
	var out []domain.Chain
	q := db.WithContext(ctx).Order(chainOrder)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// RecentChains returns the newest chains first.
func RecentChains(ctx context.Context, db *gorm.DB, limit int) ([]domain.Chain, error) {
	var out []domain.Chain
	q := db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// ListOpenChains returns every chain that is not completed and ends after
// now, soonest end first. It is not capped: reminder planning must see all of
// them.
func ListOpenChains(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.Chain, error) {
	var out []domain.Chain
	err := db.WithContext(ctx).
		Where("is_completed = ? AND end_date > ?", false, now.UTC()).
		Order("end_date ASC, id ASC").
		Find(&out).Error
	return out, err
}

// ListChainsByUser returns chains the user created or participates in,
// newest first, resolved through the chain_participants index.
func ListChainsByUser(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.Chain, error) {
	tx := db.WithContext(ctx)
	member := tx.Model(&domain.ChainParticipant{}).
		Select("chain_id").
		Where("user_id = ?", userID)

	var out []domain.Chain
	q := tx.Where("created_by = ? OR id IN (?)", userID, member).Order(chainOrder)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// UpdateChainDocument replaces the mutable state of c (parts, participants,
// completion flag) provided the stored version still equals expected. On
// success c.Version and c.UpdatedAt reflect the new row.
func UpdateChainDocument(ctx context.Context, db *gorm.DB, c *domain.Chain, expected int64) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Chain{}).
			Where("id = ? AND version = ?", c.ID, expected).
			Updates(map[string]any{
				"parts":        c.Parts,
				"participants": c.Participants,
				"is_completed": c.IsCompleted,
				"version":      expected + 1,
				"updated_at":   now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&domain.Chain{}).Where("id = ?", c.ID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrNotFound
			}
			return ErrVersionConflict
		}
		if err := syncParticipants(tx, c.ID, c.Participants); err != nil {
			return err
		}
		c.Version = expected + 1
		c.UpdatedAt = now
		return nil
	})
}

// DeleteChain removes the chain and its participant rows.
func DeleteChain(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chain_id = ?", id).Delete(&domain.ChainParticipant{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Chain{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// syncParticipants makes the index rows for chainID equal to users.
func syncParticipants(tx *gorm.DB, chainID string, users []string) error {
	del := tx.Where("chain_id = ?", chainID)
	if len(users) > 0 {
		del = del.Where("user_id NOT IN ?", users)
	}
	if err := del.Delete(&domain.ChainParticipant{}).Error; err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	rows := make([]domain.ChainParticipant, 0, len(users))
	for _, u := range users {
		if u == "" {
			continue
		}
		rows = append(rows, domain.ChainParticipant{ChainID: chainID, UserID: u})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
