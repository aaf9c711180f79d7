package models

import (
	"time"
)

// Brother is a registered member of the organization.
type Brother struct {
	ID             uint   `gorm:"primaryKey"`
	Email          string `gorm:"size:60;uniqueIndex;not null"`
	Username       string `gorm:"size:60;uniqueIndex;not null"`
	FirstName      string `gorm:"size:60;index"`
	LastName       string `gorm:"size:60;index"`
	PasswordHash   string `gorm:"size:128"`
	IsAdmin        bool
	EmailConfirmed bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Brother) TableName() string { return "brothers" }

// FullName is the display form used for reservation snapshots.
func (b Brother) FullName() string {
	return b.FirstName + " " + b.LastName
}

// Unit is a top-level physical storage location.
type Unit struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:60;not null"`
	Location  string `gorm:"size:60"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Unit) TableName() string { return "storage_units" }

// Shelf sits inside a unit. UnitID is nullable: a shelf may exist
// before its location is known.
type Shelf struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:20;not null"`
	UnitID    *uint  `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Shelf) TableName() string { return "shelves" }

// Container lives in a unit and/or on a shelf, both independently
// settable.
type Container struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:20;not null"`
	UnitID    *uint  `gorm:"index"`
	ShelfID   *uint  `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Container) TableName() string { return "containers" }

// Item is an inventoriable object placed somewhere in the hierarchy.
type Item struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:60;uniqueIndex;not null"`
	Description string `gorm:"size:200"`
	Quantity    int
	UnitID      *uint `gorm:"index"`
	ShelfID     *uint `gorm:"index"`
	ContainerID *uint `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Item) TableName() string { return "items" }

// Reservation is a time-bounded claim by a brother on an item.
// ReservedBy and ItemName are display snapshots kept on purpose so the
// row still reads sensibly after the brother or item is renamed or
// deleted.
type Reservation struct {
	ID         uint   `gorm:"primaryKey"`
	Reason     string `gorm:"size:200;not null"`
	FromDate   time.Time
	ToDate     time.Time
	ReservedBy string `gorm:"size:60"`
	ItemName   string `gorm:"size:60"`
	Approved   bool   `gorm:"default:false"`
	BrotherID  uint   `gorm:"index;not null"`
	ItemID     uint   `gorm:"index;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Reservation) TableName() string { return "reservations" }

// All lists every entity for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Brother{},
		&Unit{},
		&Shelf{},
		&Container{},
		&Item{},
		&Reservation{},
	}
}
