package domain

import "context"

// RecipeAPI is the persistence contract the catalog store depends on.
// Implementations may talk to a remote service, serve from memory, or both.
type RecipeAPI interface {
	List(ctx context.Context) ([]Recipe, error)
	Get(ctx context.Context, id string) (*Recipe, error)
	Create(ctx context.Context, in RecipeInput) (*Recipe, error)
	// Update returns the changed record, which may carry only some fields.
	Update(ctx context.Context, id string, patch RecipePatch) (*RecipeUpdate, error)
	Delete(ctx context.Context, id string) error
	// MockMode reports whether the implementation is serving from local state.
	MockMode() bool
}
