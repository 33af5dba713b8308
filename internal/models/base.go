package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the uuid primary key shared by every table.
type Base struct {
	ID uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
}

// BeforeCreate assigns a fresh id unless the caller set one.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All lists every model in dependency order, for auto-migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Follow{},
		&Ingredient{},
		&Tag{},
		&Recipe{},
		&RecipeIngredient{},
		&Favorite{},
		&ShoppingListEntry{},
	}
}
