package domain

import (
	"time"

	"github.com/google/uuid"
)

// PathSeparator joins ancestor names when building a category's full path.
const PathSeparator = " > "

// Category represents a node in the self-referencing category hierarchy.
// ParentID is nil for root categories.
type Category struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	ImageURL    string     `json:"image_url" db:"image_url"`
	Active      bool       `json:"active" db:"active"`
	SortOrder   int        `json:"sort_order" db:"sort_order"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty" db:"parent_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// CategoryNode is a category projection enriched with derived hierarchy
// information and, for tree queries, its materialized subcategories.
// Level and FullPath are computed from the ancestor chain, never stored.
type CategoryNode struct {
	Category
	ParentName    string          `json:"parent_name,omitempty"`
	Level         int             `json:"level"`
	FullPath      string          `json:"full_path"`
	Root          bool            `json:"is_root"`
	Subcategories []*CategoryNode `json:"subcategories"`
}
