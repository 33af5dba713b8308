package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

var tagColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// CatalogService serves ingredient and tag reference data.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListIngredients returns ingredients ordered by name, optionally narrowed
// to a case-insensitive name prefix.
func (s *CatalogService) ListIngredients(ctx context.Context, filter types.IngredientFilter) ([]types.IngredientView, error) {
	q := s.db.WithContext(ctx).Order("name ASC").Order("measurement_unit ASC")
	if name := strings.TrimSpace(filter.Name); name != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(name))+"%")
	}

	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}

	views := make([]types.IngredientView, len(ingredients))
	for i := range ingredients {
		views[i] = ingredientView(&ingredients[i])
	}
	return views, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*types.IngredientView, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("ingredient", id.String())
		}
		return nil, fmt.Errorf("failed to load ingredient: %w", err)
	}
	view := ingredientView(&ingredient)
	return &view, nil
}

func (s *CatalogService) ListTags(ctx context.Context) ([]types.TagView, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	views := make([]types.TagView, len(tags))
	for i := range tags {
		views[i] = tagView(&tags[i])
	}
	return views, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (*types.TagView, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("tag", id.String())
		}
		return nil, fmt.Errorf("failed to load tag: %w", err)
	}
	view := tagView(&tag)
	return &view, nil
}

// UpsertIngredient creates the ingredient unless one with the same name and
// unit exists. The bool reports whether a row was created.
func (s *CatalogService) UpsertIngredient(ctx context.Context, name, unit string) (*models.Ingredient, bool, error) {
	name, unit = strings.TrimSpace(name), strings.TrimSpace(unit)
	if name == "" || unit == "" {
		return nil, false, apperror.Validation(apperror.ReasonInvalidField, "ingredient", "name and measurement unit are required")
	}

	db := s.db.WithContext(ctx)
	var ingredient models.Ingredient
	err := db.Where("name = ? AND measurement_unit = ?", name, unit).First(&ingredient).Error
	switch {
	case err == nil:
		return &ingredient, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, fmt.Errorf("failed to load ingredient %s: %w", name, err)
	}

	ingredient = models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(&ingredient).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create ingredient %s: %w", name, err)
	}
	return &ingredient, true, nil
}

// UpsertTag creates or updates a tag keyed by slug.
func (s *CatalogService) UpsertTag(ctx context.Context, name, color, slug string) (*models.Tag, bool, error) {
	name, slug = strings.TrimSpace(name), strings.TrimSpace(slug)
	color = strings.ToUpper(strings.TrimSpace(color))
	if name == "" || slug == "" {
		return nil, false, apperror.Validation(apperror.ReasonInvalidField, "tag", "name and slug are required")
	}
	if !tagColorPattern.MatchString(color) {
		return nil, false, apperror.Validation(apperror.ReasonInvalidField, "color", "color must look like #RRGGBB")
	}

	db := s.db.WithContext(ctx)
	var tag models.Tag
	err := db.Where("slug = ?", slug).First(&tag).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		tag = models.Tag{Name: name, Color: color, Slug: slug}
		if err := db.Create(&tag).Error; err != nil {
			return nil, false, fmt.Errorf("failed to create tag %s: %w", slug, err)
		}
		return &tag, true, nil
	case err != nil:
		return nil, false, fmt.Errorf("failed to load tag %s: %w", slug, err)
	}

	if err := db.Model(&tag).Updates(map[string]interface{}{"name": name, "color": color}).Error; err != nil {
		return nil, false, fmt.Errorf("failed to update tag %s: %w", slug, err)
	}
	tag.Name, tag.Color = name, color
	return &tag, false, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
