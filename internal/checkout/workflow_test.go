package checkout

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/cart"
	"backend/internal/models"
	"backend/internal/orders"
)

type memCartRepo struct {
	carts map[string][]models.CartLine
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: make(map[string][]models.CartLine)}
}

func (r *memCartRepo) Load(_ context.Context, owner string) ([]models.CartLine, error) {
	lines := make([]models.CartLine, len(r.carts[owner]))
	copy(lines, r.carts[owner])
	return lines, nil
}

func (r *memCartRepo) Save(_ context.Context, owner string, lines []models.CartLine) error {
	stored := make([]models.CartLine, len(lines))
	copy(stored, lines)
	r.carts[owner] = stored
	return nil
}

// fakeOrderRepo records inserts and can fail specific product names.
type fakeOrderRepo struct {
	created []models.Order
	failFor map[string]error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{failFor: make(map[string]error)}
}

func (r *fakeOrderRepo) Insert(_ context.Context, order models.Order) (models.Order, error) {
	if err := r.failFor[order.ProductName]; err != nil {
		return models.Order{}, err
	}
	order.ID = primitive.NewObjectID()
	r.created = append(r.created, order)
	return order, nil
}

func (r *fakeOrderRepo) Get(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	for _, order := range r.created {
		if order.ID == id {
			return order, nil
		}
	}
	return models.Order{}, orders.ErrNotFound
}

func (r *fakeOrderRepo) List(_ context.Context) ([]models.Order, error) {
	return append([]models.Order{}, r.created...), nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status orders.Status) error {
	for i := range r.created {
		if r.created[i].ID == id {
			r.created[i].Status = string(status)
			return nil
		}
	}
	return orders.ErrNotFound
}

func (r *fakeOrderRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	for i := range r.created {
		if r.created[i].ID == id {
			r.created = append(r.created[:i], r.created[i+1:]...)
			return nil
		}
	}
	return orders.ErrNotFound
}

func completeUser() models.User {
	return models.User{
		ID:       primitive.NewObjectID(),
		Email:    "lab@example.co.id",
		FullName: "Rina Wijaya",
		Phone:    "08123456789",
		Company:  "PT. Kimia Nusantara",
		Position: "Procurement",
		Address:  "Jl. Industri No. 4, Bekasi",
	}
}

func fixture(t *testing.T) (*Workflow, *memCartRepo, *fakeOrderRepo, *cart.Bus) {
	t.Helper()
	cartRepo := newMemCartRepo()
	orderRepo := newFakeOrderRepo()
	bus := cart.NewBus()
	store := cart.NewStore(cartRepo, bus)
	return NewWorkflow(store, orderRepo), cartRepo, orderRepo, bus
}

func line(name string, price float64, quantity int) models.CartLine {
	return models.CartLine{
		Product:  models.CartProduct{ID: "p", Name: name, BasePrice: price},
		Material: "Stainless Steel 304",
		Size:     "1200 x 800 x 2400 mm",
		Color:    "White",
		Quantity: quantity,
		AddedAt:  time.Now(),
	}
}

func TestSubmitEmptyCartCreatesNothing(t *testing.T) {
	workflow, _, orderRepo, _ := fixture(t)

	_, err := workflow.Submit(context.Background(), completeUser(), "owner")
	assert.ErrorIs(t, err, ErrCartEmpty)
	assert.Empty(t, orderRepo.created)
}

func TestSubmitIncompleteProfileListsMissingFields(t *testing.T) {
	workflow, cartRepo, orderRepo, _ := fixture(t)
	cartRepo.carts["owner"] = []models.CartLine{line("Laminar Air Flow", 18500000, 1)}

	user := completeUser()
	user.Company = ""
	user.Address = ""

	_, err := workflow.Submit(context.Background(), user, "owner")

	var profileErr ProfileIncompleteError
	require.ErrorAs(t, err, &profileErr)
	assert.Equal(t, []string{"company", "address"}, profileErr.Missing)
	assert.Empty(t, orderRepo.created)
}

func TestSubmitTwoLinesSharesOrderNumberAndClearsCart(t *testing.T) {
	workflow, cartRepo, orderRepo, bus := fixture(t)
	cartRepo.carts["owner"] = []models.CartLine{
		line("Lemari Asam Prosafeaire", 25000000, 2),
		line("Laminar Air Flow", 18500000, 1),
	}

	var broadcasts []cart.CartChanged
	bus.SubscribeCartChanged(func(e cart.CartChanged) { broadcasts = append(broadcasts, e) })

	user := completeUser()
	result, err := workflow.Submit(context.Background(), user, "owner")
	require.NoError(t, err)

	assert.True(t, result.Complete())
	require.Len(t, result.Succeeded, 2)
	require.Len(t, orderRepo.created, 2)

	first, second := orderRepo.created[0], orderRepo.created[1]
	assert.Equal(t, result.OrderNumber, first.OrderNumber)
	assert.Equal(t, first.OrderNumber, second.OrderNumber)

	// Lines are created in cart order with per-line frozen totals.
	assert.Equal(t, "Lemari Asam Prosafeaire", first.ProductName)
	assert.Equal(t, 50000000.0, first.TotalPrice)
	assert.Equal(t, "Laminar Air Flow", second.ProductName)
	assert.Equal(t, 18500000.0, second.TotalPrice)
	assert.Equal(t, 68500000.0, result.Total)

	// The customer snapshot is copied at submission time.
	assert.Equal(t, user.FullName, first.CustomerName)
	assert.Equal(t, user.Company, first.Company)
	assert.Equal(t, user.Address, second.Address)

	// Cart cleared and the empty cart broadcast.
	assert.Empty(t, cartRepo.carts["owner"])
	require.NotEmpty(t, broadcasts)
	assert.Empty(t, broadcasts[len(broadcasts)-1].Lines)
}

func TestSubmitFreezesPriceAndInitialStatus(t *testing.T) {
	workflow, cartRepo, orderRepo, _ := fixture(t)
	l := line("Lemari Asam Prosafeaire", 25000000, 2)
	l.Size = "1200 x 800 x 2400 mm"
	cartRepo.carts["owner"] = []models.CartLine{l}

	result, err := workflow.Submit(context.Background(), completeUser(), "owner")
	require.NoError(t, err)

	require.Len(t, orderRepo.created, 1)
	order := orderRepo.created[0]
	assert.Equal(t, 50000000.0, order.TotalPrice)
	assert.Equal(t, string(orders.StatusPengajuan), order.Status)
	assert.Equal(t, "Stainless Steel 304", order.Material)
	assert.Equal(t, 2, order.Quantity)
	assert.Equal(t, result.Total, order.TotalPrice)
}

func TestSubmitPartialFailureReportsSplitAndKeepsCart(t *testing.T) {
	workflow, cartRepo, orderRepo, _ := fixture(t)
	cartRepo.carts["owner"] = []models.CartLine{
		line("Lemari Asam Prosafeaire", 25000000, 1),
		line("Laminar Air Flow", 18500000, 1),
		line("Fume Hood Scrubber Prosafeaire", 20500000, 1),
	}
	orderRepo.failFor["Laminar Air Flow"] = errors.New("storage gateway down")

	result, err := workflow.Submit(context.Background(), completeUser(), "owner")
	require.NoError(t, err)

	assert.True(t, result.Partial())
	assert.False(t, result.Complete())
	require.Len(t, result.Succeeded, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "Laminar Air Flow", result.Failed[0].Line.Product.Name)
	assert.Contains(t, result.Failed[0].Reason, "storage gateway down")

	// Created records stand, nothing is rolled back, and the cart is
	// left untouched for the shopper to act on.
	assert.Len(t, orderRepo.created, 2)
	assert.Len(t, cartRepo.carts["owner"], 3)
}

func TestSubmitTotalFailureCreatesNothingAndKeepsCart(t *testing.T) {
	workflow, cartRepo, orderRepo, _ := fixture(t)
	cartRepo.carts["owner"] = []models.CartLine{line("Laminar Air Flow", 18500000, 1)}
	orderRepo.failFor["Laminar Air Flow"] = errors.New("storage gateway down")

	result, err := workflow.Submit(context.Background(), completeUser(), "owner")
	require.NoError(t, err)

	assert.False(t, result.Complete())
	assert.False(t, result.Partial())
	assert.Empty(t, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Len(t, cartRepo.carts["owner"], 1)
}

func TestNewOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^TRS-[0-9A-Z]+$`)

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	number := NewOrderNumber(at)
	assert.Regexp(t, pattern, number)

	// Same instant, same number: the timestamp is the grouping key.
	assert.Equal(t, number, NewOrderNumber(at))

	// A later instant yields a different number.
	assert.NotEqual(t, number, NewOrderNumber(at.Add(time.Millisecond)))
}

func TestSubmitDropsOwnerLockWhenDone(t *testing.T) {
	workflow, cartRepo, _, _ := fixture(t)
	cartRepo.carts["owner"] = []models.CartLine{line("Laminar Air Flow", 18500000, 1)}

	_, err := workflow.Submit(context.Background(), completeUser(), "owner")
	require.NoError(t, err)

	// Gated submissions must release their lock entry too.
	_, err = workflow.Submit(context.Background(), completeUser(), "someone-else")
	assert.ErrorIs(t, err, ErrCartEmpty)

	workflow.mu.Lock()
	held := len(workflow.locks)
	workflow.mu.Unlock()
	assert.Zero(t, held)
}
