package recipe

import "errors"

// Domain errors for catalogue construction

var (
	ErrEmptyID             = errors.New("recipe id is required")
	ErrDuplicateID         = errors.New("recipe id already exists in catalogue")
	ErrNegativeCookingTime = errors.New("cooking time cannot be negative")
	ErrRecipeNotFound      = errors.New("recipe not found")
)
