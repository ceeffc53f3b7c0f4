// Package domain defines the persistence models and pure rules for chains:
// collaborative devotional readings split into numbered parts that users
// claim and complete. These types are mapped with GORM and shared by the
// repository, service and HTTP layers.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// ChainType selects how a chain is read. Only hatim has a fixed size.
type ChainType string

const (
	ChainHatim    ChainType = "hatim"
	ChainSalavat  ChainType = "salavat"
	ChainSure     ChainType = "sure"
	ChainDua      ChainType = "dua"
	ChainTopluDua ChainType = "topludua"
)

// HatimParts is the number of juz in a full Quran reading.
const HatimParts = 30

// ChainTypes lists every accepted chain type in display order.
var ChainTypes = []ChainType{ChainHatim, ChainSalavat, ChainSure, ChainDua, ChainTopluDua}

// Valid reports whether t is one of the known chain types.
func (t ChainType) Valid() bool {
	for _, k := range ChainTypes {
		if t == k {
			return true
		}
	}
	return false
}

// DefaultParts returns the part count used when a creator does not pick one.
func DefaultParts(t ChainType) int {
	switch t {
	case ChainHatim:
		return HatimParts
	case ChainSure:
		return 41
	default:
		return 100
	}
}

// PartStatus is the forward-only state of a single part.
type PartStatus string

const (
	PartAvailable PartStatus = "available"
	PartTaken     PartStatus = "taken"
	PartCompleted PartStatus = "completed"
)

// Part is one numbered slice of a chain's workload. TakenByName is a
// snapshot of the claimer's display name at claim time.
type Part struct {
	Number      int        `json:"number"`
	Status      PartStatus `json:"status"`
	TakenBy     string     `json:"taken_by,omitempty"`
	TakenByName string     `json:"taken_by_name,omitempty"`
}

// Chain is stored as one row per document; parts and participants live in
// JSON columns and are always replaced together.
//
// Fields:
//   - ID: UUID primary key assigned on create.
//   - CreatedByName: owner display name captured at creation, never refreshed.
//   - Parts: ordered 1..TotalParts.
//   - Participants: set of user ids (owner first), de-duplicated on insert.
//   - IsCompleted: cache of "every part completed", rewritten on each mutation.
//   - Version: optimistic concurrency token, bumped on every write.
type Chain struct {
	ID                 string                      `json:"id"              gorm:"type:char(36);primaryKey"`
	Type               ChainType                   `json:"type"            gorm:"type:varchar(16);not null;index"`
	Title              string                      `json:"title"           gorm:"type:varchar(255);not null"`
	Description        string                      `json:"description"     gorm:"type:text"`
	CreatedBy          string                      `json:"created_by"      gorm:"type:varchar(128);not null;index"`
	CreatedByName      string                      `json:"created_by_name" gorm:"type:varchar(255)"`
	StartDate          time.Time                   `json:"start_date"`
	EndDate            time.Time                   `json:"end_date"        gorm:"index"`
	TotalParts         int                         `json:"total_parts"     gorm:"not null"`
	Parts              datatypes.JSONSlice[Part]   `json:"parts"           gorm:"not null"`
	Participants       datatypes.JSONSlice[string] `json:"participants"    gorm:"not null"`
	IsCompleted        bool                        `json:"is_completed"    gorm:"not null;default:false;index"`
	SureName           string                      `json:"sure_name,omitempty"         gorm:"type:varchar(128)"`
	LiveStreamURL      string                      `json:"live_stream_url,omitempty"   gorm:"type:varchar(512)"`
	NiyetDescription   string                      `json:"niyet_description,omitempty" gorm:"type:text"`
	HiddenParticipants bool                        `json:"hidden_participants"`
	Version            int64                       `json:"version"         gorm:"not null;default:1"`
	CreatedAt          time.Time                   `json:"created_at"      gorm:"index"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

// TableName returns the database table name for Chain.
func (Chain) TableName() string { return "chains" }

// ChainParticipant indexes chain membership so per-user listings can be
// answered with a query instead of a full scan. Rows are rewritten in the
// same transaction as the owning chain.
type ChainParticipant struct {
	ChainID string `json:"chain_id" gorm:"type:char(36);primaryKey"`
	UserID  string `json:"user_id"  gorm:"type:varchar(128);primaryKey;index:idx_participant_user"`
}

// TableName returns the database table name for ChainParticipant.
func (ChainParticipant) TableName() string { return "chain_participants" }
