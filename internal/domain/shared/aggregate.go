package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and audit timestamps
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity stamps a fresh id and creation time
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// BaseAggregateRoot is embedded by catalog products and categories,
// tickets and users. Version counts mutations; events recorded by a
// mutation are published by the application layer once the change is
// stored.
// Repositories update a row only while it still holds StoredVersion.
type BaseAggregateRoot struct {
	BaseEntity
	Version int

	stored  int
	pending []DomainEvent
}

// NewBaseAggregateRoot starts a new aggregate at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// RestoreAggregateRoot rebuilds the header of an aggregate read from storage
func RestoreAggregateRoot(entity BaseEntity, version int) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: entity, Version: version, stored: version}
}

func (a *BaseAggregateRoot) GetVersion() int { return a.Version }

// StoredVersion is the version of the stored row this aggregate was read
// from or last written to; zero before the first write
func (a *BaseAggregateRoot) StoredVersion() int { return a.stored }

// IsNew reports whether the aggregate has never been stored
func (a *BaseAggregateRoot) IsNew() bool { return a.stored == 0 }

// MarkStored is called by repositories after a successful write
func (a *BaseAggregateRoot) MarkStored() { a.stored = a.Version }

// IncrementVersion marks a state change
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
	a.UpdatedAt = time.Now()
}

// AddDomainEvent records an event for later publication
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// GetDomainEvents returns the recorded events without clearing them
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.pending }

func (a *BaseAggregateRoot) ClearDomainEvents() { a.pending = nil }

// PullDomainEvents hands over the recorded events and clears them
func (a *BaseAggregateRoot) PullDomainEvents() []DomainEvent {
	events := a.pending
	a.pending = nil
	return events
}
