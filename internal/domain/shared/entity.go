package shared

import (
	"time"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() int64
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity provides common fields for all entities.
// IDs are assigned by the database on insert and are always positive;
// clients use negative placeholder IDs for records that are not yet
// persisted, so the two ranges never collide.
type BaseEntity struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	// The domain layer owns the version marker via Touch; GORM must not
	// overwrite it on save.
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() int64 {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp.
// UpdatedAt doubles as the version marker for optimistic concurrency:
// an update request carrying a stale marker is rejected with a conflict.
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// NewBaseEntity creates a new base entity. The ID stays zero until the
// record is persisted.
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch advances the version marker. Marker comparisons happen at
// millisecond resolution after the JSON round trip, so consecutive
// touches within the same millisecond still produce distinct markers.
func (e *BaseEntity) Touch() {
	now := time.Now()
	if now.UnixMilli() <= e.UpdatedAt.UnixMilli() {
		now = e.UpdatedAt.Add(time.Millisecond)
	}
	e.UpdatedAt = now
}
