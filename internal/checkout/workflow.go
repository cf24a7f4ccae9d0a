package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"backend/internal/cart"
	"backend/internal/models"
	"backend/internal/orders"
)

// ErrCartEmpty gates submission of an empty cart. The caller redirects
// to the catalog instead of surfacing an error.
var ErrCartEmpty = errors.New("cart is empty")

// ProfileIncompleteError gates submission until the fulfillment
// profile is filled in. Missing lists exactly the empty fields so the
// profile form can highlight them.
type ProfileIncompleteError struct {
	Missing []string
}

func (e ProfileIncompleteError) Error() string {
	return fmt.Sprintf("profile incomplete: missing %s", strings.Join(e.Missing, ", "))
}

// FailedLine pairs a cart line with the reason its order record could
// not be created.
type FailedLine struct {
	Line   models.CartLine `json:"line"`
	Reason string          `json:"reason"`
}

// Result is the outcome of one submission attempt. Created records are
// never rolled back: a partial result means the succeeded orders stand
// and the failed lines did not produce one.
type Result struct {
	OrderNumber string         `json:"orderNumber"`
	Succeeded   []models.Order `json:"succeeded"`
	Failed      []FailedLine   `json:"failed"`
	Total       float64        `json:"total"`
}

// Complete reports whether every line produced an order record.
func (r Result) Complete() bool {
	return len(r.Failed) == 0 && len(r.Succeeded) > 0
}

// Partial reports a split outcome: some records committed, some lines
// failed.
func (r Result) Partial() bool {
	return len(r.Succeeded) > 0 && len(r.Failed) > 0
}

// Workflow converts a cart into persisted order records after the
// profile and cart gates pass.
type Workflow struct {
	store *cart.Store
	repo  orders.Repository

	mu    sync.Mutex
	locks map[string]*ownerLock
}

// ownerLock serializes submissions per cart owner so a double-click on
// submit cannot create duplicate order batches. Entries are refcounted
// and dropped from the map once the last submission for an owner
// finishes, so the map only holds in-flight owners.
type ownerLock struct {
	sync.Mutex
	refs int
}

func NewWorkflow(store *cart.Store, repo orders.Repository) *Workflow {
	return &Workflow{
		store: store,
		repo:  repo,
		locks: make(map[string]*ownerLock),
	}
}

func (w *Workflow) acquireOwner(owner string) *ownerLock {
	w.mu.Lock()
	lock, ok := w.locks[owner]
	if !ok {
		lock = &ownerLock{}
		w.locks[owner] = lock
	}
	lock.refs++
	w.mu.Unlock()

	lock.Lock()
	return lock
}

func (w *Workflow) releaseOwner(owner string, lock *ownerLock) {
	lock.Unlock()

	w.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(w.locks, owner)
	}
	w.mu.Unlock()
}

// Submit runs one checkout attempt for the given user and cart owner.
// Order records are created sequentially in cart-line order, each with
// the customer profile copied at this instant and total price frozen
// at unit price times quantity. On full success the cart is cleared
// and an empty cart-changed event is broadcast; on partial failure the
// cart is left untouched and the split is reported in the result.
func (w *Workflow) Submit(ctx context.Context, user models.User, owner string) (Result, error) {
	lock := w.acquireOwner(owner)
	defer w.releaseOwner(owner, lock)

	if missing := user.MissingProfileFields(); len(missing) > 0 {
		return Result{}, ProfileIncompleteError{Missing: missing}
	}

	lines := w.store.Load(ctx, owner)
	if len(lines) == 0 {
		return Result{}, ErrCartEmpty
	}

	result := Result{
		OrderNumber: NewOrderNumber(time.Now()),
		Succeeded:   []models.Order{},
		Failed:      []FailedLine{},
	}

	for _, line := range lines {
		order := models.Order{
			OrderNumber:     result.OrderNumber,
			CustomerName:    user.FullName,
			CustomerEmail:   user.Email,
			CustomerPhone:   user.Phone,
			Company:         user.Company,
			Position:        user.Position,
			Address:         user.Address,
			ProductName:     line.Product.Name,
			Material:        line.Material,
			Size:            line.Size,
			Color:           line.Color,
			AdditionalNotes: line.Notes,
			Quantity:        line.Quantity,
			TotalPrice:      line.Subtotal(),
			Status:          string(orders.StatusPengajuan),
			CreatedDate:     time.Now(),
		}

		created, err := w.repo.Insert(ctx, order)
		if err != nil {
			log.Println("[CHECKOUT] [ERROR] order create failed:", err)
			result.Failed = append(result.Failed, FailedLine{Line: line, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, created)
		result.Total += created.TotalPrice
	}

	if result.Complete() {
		if err := w.store.Clear(ctx, owner); err != nil {
			// Orders are committed; a cart that failed to clear is an
			// annoyance, not a lost submission.
			log.Println("[CHECKOUT] [ERROR] cart clear failed:", err)
		}
	}

	log.Printf("[CHECKOUT] [INFO] %s: %d created, %d failed",
		result.OrderNumber, len(result.Succeeded), len(result.Failed))
	return result, nil
}

// NewOrderNumber derives the grouping key for one submission from the
// current time: TRS- followed by the unix millisecond timestamp in
// uppercase base 36.
func NewOrderNumber(t time.Time) string {
	return "TRS-" + strings.ToUpper(strconv.FormatInt(t.UnixMilli(), 36))
}
