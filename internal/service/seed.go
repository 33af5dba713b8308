package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// SeedIngredient is one ingredient entry of a seed file.
type SeedIngredient struct {
	Name            string `yaml:"name"`
	MeasurementUnit string `yaml:"measurement_unit"`
}

// SeedTag is one tag entry of a seed file.
type SeedTag struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
	Slug  string `yaml:"slug"`
}

// Seed is the reference data loaded by the seed command.
type Seed struct {
	Ingredients []SeedIngredient `yaml:"ingredients"`
	Tags        []SeedTag        `yaml:"tags"`
}

// SeedResult counts what a seed run changed.
type SeedResult struct {
	IngredientsCreated int
	TagsCreated        int
	TagsUpdated        int
}

// LoadSeed parses a YAML (or JSON) seed document. A bare list is read as a
// list of ingredients.
func LoadSeed(r io.Reader) (*Seed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	if len(root.Content) == 0 {
		return &Seed{}, nil
	}

	seed := &Seed{}
	if root.Content[0].Kind == yaml.SequenceNode {
		if err := root.Content[0].Decode(&seed.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to decode ingredient list: %w", err)
		}
		return seed, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(seed); err != nil {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}
	return seed, nil
}

// ApplySeed upserts every ingredient and tag of seed through the catalog.
func ApplySeed(ctx context.Context, catalog *CatalogService, seed *Seed) (*SeedResult, error) {
	result := &SeedResult{}
	for _, ing := range seed.Ingredients {
		_, created, err := catalog.UpsertIngredient(ctx, ing.Name, ing.MeasurementUnit)
		if err != nil {
			return result, err
		}
		if created {
			result.IngredientsCreated++
		}
	}
	for _, tag := range seed.Tags {
		_, created, err := catalog.UpsertTag(ctx, tag.Name, tag.Color, tag.Slug)
		if err != nil {
			return result, err
		}
		if created {
			result.TagsCreated++
		} else {
			result.TagsUpdated++
		}
	}
	return result, nil
}
