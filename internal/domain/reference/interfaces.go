package reference

import "context"

// Repository provides persistence for reference values.
type Repository interface {
	List(ctx context.Context, category Category) ([]Value, error)
	Categories(ctx context.Context) ([]Category, error)
	Add(ctx context.Context, v *Value) error
}

// Validator checks a value against a reference category.
type Validator interface {
	Validate(ctx context.Context, category Category, value string) error
}

// Check runs v.Validate when a validator is configured.
func Check(ctx context.Context, v Validator, category Category, value string) error {
	if v == nil {
		return nil
	}
	return v.Validate(ctx, category, value)
}
