package cart

import (
	"context"
	"log"
	"time"

	"backend/internal/models"
)

// Repository persists a cart as a single per-owner blob. Load returns
// an empty slice for absent or malformed carts instead of an error;
// Save replaces the whole blob.
type Repository interface {
	Load(ctx context.Context, owner string) ([]models.CartLine, error)
	Save(ctx context.Context, owner string, lines []models.CartLine) error
}

// Store owns the cart for every session. Independent UI surfaces never
// share an in-memory copy: each mutation reloads the persisted blob,
// applies the change, writes the full blob back and broadcasts the
// result, so surfaces that loaded independently cannot lose updates.
type Store struct {
	repo Repository
	bus  *Bus
}

func NewStore(repo Repository, bus *Bus) *Store {
	return &Store{repo: repo, bus: bus}
}

// Load returns the current cart. Gateway failures degrade to an empty
// cart rather than an error; the shopper just sees nothing in it.
func (s *Store) Load(ctx context.Context, owner string) []models.CartLine {
	lines, err := s.repo.Load(ctx, owner)
	if err != nil {
		log.Println("[CART] [ERROR] load failed:", err)
		return []models.CartLine{}
	}
	if lines == nil {
		return []models.CartLine{}
	}
	return lines
}

// AddLine appends a configured line. Material, size and color are
// validated by the producing collaborator against the product's option
// sets; they are not re-checked here.
func (s *Store) AddLine(ctx context.Context, owner string, line models.CartLine) ([]models.CartLine, error) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	if line.AddedAt.IsZero() {
		line.AddedAt = time.Now()
	}

	lines, err := s.repo.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	lines = append(lines, line)

	if err := s.repo.Save(ctx, owner, lines); err != nil {
		return nil, err
	}

	s.bus.PublishLineAdded(LineAdded{Owner: owner, Line: line})
	s.bus.PublishCartChanged(CartChanged{Owner: owner, Lines: lines})
	return lines, nil
}

// Adopt folds the cart keyed by the anonymous token into the owner's
// cart and empties the token cart. Runs when a shopper who filled a
// cart before logging in comes back authenticated; adopted lines keep
// their frozen prices and configuration.
func (s *Store) Adopt(ctx context.Context, token, owner string) error {
	if token == "" || token == owner {
		return nil
	}

	moved, err := s.repo.Load(ctx, token)
	if err != nil || len(moved) == 0 {
		return err
	}

	lines, err := s.repo.Load(ctx, owner)
	if err != nil {
		return err
	}
	lines = append(lines, moved...)

	if err := s.repo.Save(ctx, owner, lines); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, token, []models.CartLine{}); err != nil {
		// The lines are already under the owner key; a token cart that
		// failed to empty only risks a duplicate adoption attempt.
		log.Println("[CART] [ERROR] token cart clear failed:", err)
	}

	s.bus.PublishCartChanged(CartChanged{Owner: owner, Lines: lines})
	return nil
}

// RemoveLine removes the line at index. Indices are only valid for the
// immediately preceding read, so an out-of-bounds index is a no-op.
func (s *Store) RemoveLine(ctx context.Context, owner string, index int) ([]models.CartLine, error) {
	lines, err := s.repo.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(lines) {
		return lines, nil
	}
	lines = append(lines[:index], lines[index+1:]...)

	if err := s.repo.Save(ctx, owner, lines); err != nil {
		return nil, err
	}

	s.bus.PublishCartChanged(CartChanged{Owner: owner, Lines: lines})
	return lines, nil
}

// UpdateQuantity sets the quantity of the line at index, clamped to a
// floor of 1. Out-of-bounds indices are a no-op, like RemoveLine.
func (s *Store) UpdateQuantity(ctx context.Context, owner string, index, quantity int) ([]models.CartLine, error) {
	lines, err := s.repo.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(lines) {
		return lines, nil
	}
	if quantity < 1 {
		quantity = 1
	}
	lines[index].Quantity = quantity

	if err := s.repo.Save(ctx, owner, lines); err != nil {
		return nil, err
	}

	s.bus.PublishCartChanged(CartChanged{Owner: owner, Lines: lines})
	return lines, nil
}

// Clear empties the cart. Used after a successful checkout; the empty
// cart is broadcast so badges and drawers reset everywhere.
func (s *Store) Clear(ctx context.Context, owner string) error {
	if err := s.repo.Save(ctx, owner, []models.CartLine{}); err != nil {
		return err
	}
	s.bus.PublishCartChanged(CartChanged{Owner: owner, Lines: []models.CartLine{}})
	return nil
}

// Total recomputes the cart total from the lines. Never cached: prices
// are frozen per line, so the live sum is always correct.
func Total(lines []models.CartLine) float64 {
	var sum float64
	for _, line := range lines {
		sum += line.Subtotal()
	}
	return sum
}
