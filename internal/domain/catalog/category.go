package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
)

// Category groups products on the shop floor and in the admin panel
// (panes, pasteles, bebidas, abarrotes...).
type Category struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
	SortOrder   int
	IsActive    bool
}

// NewCategory creates a new active category
func NewCategory(name, description string, sortOrder int) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	if err := validateCategoryDescription(description); err != nil {
		return nil, err
	}

	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       strings.TrimSpace(description),
		SortOrder:         sortOrder,
		IsActive:          true,
	}, nil
}

// Update changes the category's descriptive fields
func (c *Category) Update(name, description string, sortOrder int) error {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}
	if err := validateCategoryDescription(description); err != nil {
		return err
	}

	c.Name = name
	c.Description = strings.TrimSpace(description)
	c.SortOrder = sortOrder
	c.IncrementVersion()
	return nil
}

// Activate makes the category visible to shoppers
func (c *Category) Activate() error {
	if c.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Category is already active")
	}
	c.IsActive = true
	c.IncrementVersion()
	return nil
}

// Deactivate hides the category from shoppers
func (c *Category) Deactivate() error {
	if !c.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Category is already inactive")
	}
	c.IsActive = false
	c.IncrementVersion()
	return nil
}

func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}

func validateCategoryDescription(description string) error {
	if utf8.RuneCountInString(description) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Category description cannot exceed 500 characters")
	}
	return nil
}
