// Package user defines the profile constraints a discovery session is
// started with. Profiles are produced by onboarding and are read-only here.
package user

import (
	"slices"

	"github.com/alchemorsel/discovery/internal/domain/recipe"
)

// OmnivorePreference disables dietary filtering when present
const OmnivorePreference = "omnivore"

// CookingTime is the coarse time budget declared during onboarding
type CookingTime string

const (
	CookingTimeUnset    CookingTime = ""
	CookingTimeQuick    CookingTime = "quick"    // <= 15 min
	CookingTimeModerate CookingTime = "moderate" // <= 30 min
	CookingTimeRelaxed  CookingTime = "relaxed"  // no limit
)

// MaxMinutes returns the upper bound of the budget, or false when unbounded
func (c CookingTime) MaxMinutes() (int, bool) {
	switch c {
	case CookingTimeQuick:
		return 15, true
	case CookingTimeModerate:
		return 30, true
	default:
		return 0, false
	}
}

// Profile holds the constraints a user declared about themselves
type Profile struct {
	DietaryPreferences []string    `json:"dietaryPreferences" yaml:"dietaryPreferences"`
	CookingTime        CookingTime `json:"cookingTime" yaml:"cookingTime" validate:"omitempty,oneof=quick moderate relaxed"`
	NutritionalGoals   []string    `json:"nutritionalGoals,omitempty" yaml:"nutritionalGoals,omitempty"`
	KitchenEquipment   []string    `json:"kitchenEquipment" yaml:"kitchenEquipment"`
}

// IsOmnivore reports whether dietary filtering should be skipped
func (p Profile) IsOmnivore() bool {
	if len(p.DietaryPreferences) == 0 {
		return true
	}
	for _, pref := range p.DietaryPreferences {
		if recipe.Fold(pref) == OmnivorePreference {
			return true
		}
	}
	return false
}

// OwnsEquipment reports whether every item is in the kitchen
func (p Profile) OwnsEquipment(items []string) bool {
	owned := make(map[string]struct{}, len(p.KitchenEquipment))
	for _, e := range p.KitchenEquipment {
		owned[recipe.Fold(e)] = struct{}{}
	}
	for _, item := range items {
		if _, ok := owned[recipe.Fold(item)]; !ok {
			return false
		}
	}
	return true
}

// Clone returns a deep copy
func (p Profile) Clone() Profile {
	return Profile{
		DietaryPreferences: slices.Clone(p.DietaryPreferences),
		CookingTime:        p.CookingTime,
		NutritionalGoals:   slices.Clone(p.NutritionalGoals),
		KitchenEquipment:   slices.Clone(p.KitchenEquipment),
	}
}
