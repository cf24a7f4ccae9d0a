package orders

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

// Filter narrows the admin order listing. Query is a case-insensitive
// substring match over order number, customer name, product name and
// company; Status is an exact match, with "" or "all" matching every
// status.
type Filter struct {
	Query  string
	Status string
}

// Service drives the admin order workflow: list/filter, status
// transitions, deletion and dashboard stats.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every order matching the filter, newest first. A filter
// matching nothing yields an empty slice, never an error.
func (s *Service) List(ctx context.Context, filter Filter) ([]models.Order, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]models.Order, 0, len(all))
	for _, order := range all {
		if filter.Matches(order) {
			matched = append(matched, order)
		}
	}
	return matched, nil
}

// Matches applies the free-text and status predicates to one order.
func (f Filter) Matches(order models.Order) bool {
	if f.Status != "" && f.Status != "all" && order.Status != f.Status {
		return false
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	if query == "" {
		return true
	}
	for _, field := range []string{
		order.OrderNumber,
		order.CustomerName,
		order.ProductName,
		order.Company,
	} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// SetStatus overwrites the status of one order. The transition table
// is consulted first; with the current allow-all policy this only
// rejects statuses outside the vocabulary. Setting the current status
// again is a harmless no-op write.
func (s *Service) SetStatus(ctx context.Context, id primitive.ObjectID, status Status) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if !CanTransition(Status(current.Status), status) {
		return fmt.Errorf("transition from %s to %s is not allowed", current.Status, status)
	}

	return s.repo.UpdateStatus(ctx, id, status)
}

// Delete removes one order permanently. Confirmation is the caller's
// responsibility.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}

// Stats counts orders per status for the dashboard cards.
func (s *Service) Stats(ctx context.Context) (map[Status]int, int, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, 0, err
	}

	counts := make(map[Status]int, len(AllStatuses()))
	for _, order := range all {
		if status, ok := ParseStatus(order.Status); ok {
			counts[status]++
		}
	}
	return counts, len(all), nil
}
