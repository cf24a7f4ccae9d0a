package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/models"
)

type memRepo struct {
	carts   map[string][]models.CartLine
	loadErr error
	saveErr error
}

func newMemRepo() *memRepo {
	return &memRepo{carts: make(map[string][]models.CartLine)}
}

func (r *memRepo) Load(_ context.Context, owner string) ([]models.CartLine, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	lines := make([]models.CartLine, len(r.carts[owner]))
	copy(lines, r.carts[owner])
	return lines, nil
}

func (r *memRepo) Save(_ context.Context, owner string, lines []models.CartLine) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	stored := make([]models.CartLine, len(lines))
	copy(stored, lines)
	r.carts[owner] = stored
	return nil
}

func testLine(name string, price float64, quantity int) models.CartLine {
	return models.CartLine{
		Product: models.CartProduct{
			ID:        "p1",
			Name:      name,
			BasePrice: price,
		},
		Material: "Stainless Steel 304",
		Size:     "1200 mm",
		Color:    "White",
		Quantity: quantity,
		AddedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPersistedStateMatchesReplay(t *testing.T) {
	repo := newMemRepo()
	store := NewStore(repo, NewBus())
	ctx := context.Background()

	// Replay the same operations against a plain slice and compare the
	// persisted blob after every step.
	var expected []models.CartLine

	a := testLine("Lemari Asam Prosafeaire", 25000000, 2)
	b := testLine("Laminar Air Flow", 18500000, 1)

	_, err := store.AddLine(ctx, "u1", a)
	require.NoError(t, err)
	expected = append(expected, a)
	assert.Equal(t, expected, repo.carts["u1"])

	_, err = store.AddLine(ctx, "u1", b)
	require.NoError(t, err)
	expected = append(expected, b)
	assert.Equal(t, expected, repo.carts["u1"])

	_, err = store.UpdateQuantity(ctx, "u1", 1, 5)
	require.NoError(t, err)
	expected[1].Quantity = 5
	assert.Equal(t, expected, repo.carts["u1"])

	_, err = store.RemoveLine(ctx, "u1", 0)
	require.NoError(t, err)
	expected = expected[1:]
	assert.Equal(t, expected, repo.carts["u1"])
}

func TestAddLineClampsQuantity(t *testing.T) {
	repo := newMemRepo()
	store := NewStore(repo, NewBus())

	line := testLine("Lemari Asam Prosafeaire", 25000000, 0)
	lines, err := store.AddLine(context.Background(), "u1", line)
	require.NoError(t, err)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestUpdateQuantityFloorsAtOne(t *testing.T) {
	repo := newMemRepo()
	store := NewStore(repo, NewBus())
	ctx := context.Background()

	_, err := store.AddLine(ctx, "u1", testLine("Laminar Air Flow", 18500000, 3))
	require.NoError(t, err)

	for _, quantity := range []int{0, -1, -100} {
		lines, err := store.UpdateQuantity(ctx, "u1", 0, quantity)
		require.NoError(t, err)
		assert.Equal(t, 1, lines[0].Quantity, "quantity %d should clamp to 1", quantity)
	}
}

func TestRemoveLineOutOfBoundsIsNoOp(t *testing.T) {
	repo := newMemRepo()
	store := NewStore(repo, NewBus())
	ctx := context.Background()

	_, err := store.AddLine(ctx, "u1", testLine("Laminar Air Flow", 18500000, 1))
	require.NoError(t, err)

	for _, index := range []int{-1, 1, 99} {
		lines, err := store.RemoveLine(ctx, "u1", index)
		require.NoError(t, err)
		assert.Len(t, lines, 1)
	}
}

func TestUpdateQuantityOutOfBoundsIsNoOp(t *testing.T) {
	repo := newMemRepo()
	store := NewStore(repo, NewBus())

	lines, err := store.UpdateQuantity(context.Background(), "u1", 3, 10)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestLoadDegradesToEmptyOnGatewayFailure(t *testing.T) {
	repo := newMemRepo()
	repo.loadErr = errors.New("storage offline")
	store := NewStore(repo, NewBus())

	lines := store.Load(context.Background(), "u1")
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
}

func TestTotalSurvivesSerializationRoundTrip(t *testing.T) {
	lines := []models.CartLine{
		testLine("Lemari Asam Prosafeaire", 25000000, 2),
		testLine("Laminar Air Flow", 18500000, 3),
	}
	want := 25000000*2.0 + 18500000*3.0
	assert.Equal(t, want, Total(lines))

	data, err := json.Marshal(lines)
	require.NoError(t, err)

	var decoded []models.CartLine
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, want, Total(decoded))
}

func TestTotalOfEmptyCartIsZero(t *testing.T) {
	assert.Zero(t, Total(nil))
	assert.Zero(t, Total([]models.CartLine{}))
}

func TestMutationsBroadcastFullCart(t *testing.T) {
	repo := newMemRepo()
	bus := NewBus()
	store := NewStore(repo, bus)
	ctx := context.Background()

	var changed []CartChanged
	var added []LineAdded
	bus.SubscribeCartChanged(func(e CartChanged) { changed = append(changed, e) })
	bus.SubscribeLineAdded(func(e LineAdded) { added = append(added, e) })

	line := testLine("Fume Hood Scrubber Prosafeaire", 20500000, 1)
	_, err := store.AddLine(ctx, "u1", line)
	require.NoError(t, err)

	require.Len(t, added, 1)
	assert.Equal(t, line.Product.Name, added[0].Line.Product.Name)
	require.Len(t, changed, 1)
	assert.Len(t, changed[0].Lines, 1)

	require.NoError(t, store.Clear(ctx, "u1"))
	require.Len(t, changed, 2)
	assert.Empty(t, changed[1].Lines)
	assert.Empty(t, repo.carts["u1"])
}

func TestAdoptMovesAnonymousLinesToUser(t *testing.T) {
	repo := newMemRepo()
	bus := NewBus()
	store := NewStore(repo, bus)
	ctx := context.Background()

	anon := testLine("Lemari Asam Prosafeaire", 25000000, 2)
	_, err := store.AddLine(ctx, "token-1", anon)
	require.NoError(t, err)

	var changed []CartChanged
	bus.SubscribeCartChanged(func(e CartChanged) { changed = append(changed, e) })

	require.NoError(t, store.Adopt(ctx, "token-1", "user-1"))

	assert.Equal(t, []models.CartLine{anon}, repo.carts["user-1"])
	assert.Empty(t, repo.carts["token-1"])
	require.Len(t, changed, 1)
	assert.Equal(t, "user-1", changed[0].Owner)
	assert.Len(t, changed[0].Lines, 1)
}

func TestAdoptAppendsAfterExistingUserLines(t *testing.T) {
	repo := newMemRepo()
	store := NewStore(repo, NewBus())
	ctx := context.Background()

	existing := testLine("Laminar Air Flow", 18500000, 1)
	adopted := testLine("Fume Hood Scrubber Prosafeaire", 20500000, 1)
	repo.carts["user-1"] = []models.CartLine{existing}
	repo.carts["token-1"] = []models.CartLine{adopted}

	require.NoError(t, store.Adopt(ctx, "token-1", "user-1"))

	assert.Equal(t, []models.CartLine{existing, adopted}, repo.carts["user-1"])
	assert.Empty(t, repo.carts["token-1"])
}

func TestAdoptIsNoOpWithoutTokenCart(t *testing.T) {
	repo := newMemRepo()
	store := NewStore(repo, NewBus())
	ctx := context.Background()

	existing := testLine("Laminar Air Flow", 18500000, 1)
	repo.carts["user-1"] = []models.CartLine{existing}

	require.NoError(t, store.Adopt(ctx, "", "user-1"))
	require.NoError(t, store.Adopt(ctx, "user-1", "user-1"))
	require.NoError(t, store.Adopt(ctx, "never-seen-token", "user-1"))

	assert.Equal(t, []models.CartLine{existing}, repo.carts["user-1"])
}
