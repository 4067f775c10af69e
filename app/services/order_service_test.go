package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fornello/pizzeria/app/models"
	"github.com/fornello/pizzeria/app/repositories"
	"github.com/fornello/pizzeria/app/services"
)

// fakeOrderStore is an in-memory stand-in for the order repository with
// the same atomicity guarantees: the sequencer hands out distinct
// numbers under concurrency, and status updates are conditional on the
// current status.
type fakeOrderStore struct {
	mu     sync.Mutex
	seq    int64
	orders map[primitive.ObjectID]models.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[primitive.ObjectID]models.Order)}
}

func (s *fakeOrderStore) NextOrderNumber(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq, nil
}

func (s *fakeOrderStore) Create(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orders {
		if existing.OrderNumber == order.OrderNumber {
			return repositories.ErrDuplicate
		}
	}
	order.ID = primitive.NewObjectID()
	s.orders[order.ID] = *order
	return nil
}

func (s *fakeOrderStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, repositories.ErrNotFound
	}
	return order, nil
}

func (s *fakeOrderStore) All(context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out, nil
}

func (s *fakeOrderStore) ByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) UpdateStatusFrom(_ context.Context, id primitive.ObjectID, from, to models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok || order.Status != from {
		return repositories.ErrNotFound
	}
	order.Status = to
	s.orders[id] = order
	return nil
}

type fakePizzaFinder struct {
	pizzas map[primitive.ObjectID]models.Pizza
}

func (f *fakePizzaFinder) FindByID(_ context.Context, id primitive.ObjectID) (models.Pizza, error) {
	pizza, ok := f.pizzas[id]
	if !ok {
		return models.Pizza{}, repositories.ErrNotFound
	}
	return pizza, nil
}

func fixture() (*services.OrderService, *fakeOrderStore, models.Pizza) {
	store := newFakeOrderStore()
	pizza := models.Pizza{
		ID:          primitive.NewObjectID(),
		Name:        "Margherita",
		BasePrice:   8.50,
		Description: "Tomato, mozzarella and fresh basil.",
		Ingredients: []models.Ingredient{{Name: "Mozzarella", Price: 1.20}},
	}
	finder := &fakePizzaFinder{pizzas: map[primitive.ObjectID]models.Pizza{pizza.ID: pizza}}
	return services.NewOrderService(store, finder, nil), store, pizza
}

func TestPlaceOrderAssignsSequentialNumbers(t *testing.T) {
	svc, _, pizza := fixture()
	userID := primitive.NewObjectID()

	first, err := svc.PlaceOrder(context.Background(), userID,
		[]services.PlaceOrderLine{{PizzaID: pizza.ID.Hex(), Quantity: 1, TotalPrice: 8.50}}, 8.50, nil)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if first.OrderNumber != 1 {
		t.Errorf("first order number = %d, want 1", first.OrderNumber)
	}

	second, err := svc.PlaceOrder(context.Background(), userID,
		[]services.PlaceOrderLine{{PizzaID: pizza.ID.Hex(), Quantity: 2, TotalPrice: 17.00}}, 17.00, nil)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if second.OrderNumber != 2 {
		t.Errorf("second order number = %d, want 2", second.OrderNumber)
	}
}

// Two identical placements are distinct orders with distinct numbers,
// and concurrent placements never collide.
func TestPlaceOrderConcurrentNumbersAreDistinct(t *testing.T) {
	svc, _, pizza := fixture()
	userID := primitive.NewObjectID()

	const n = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[int64]bool)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := svc.PlaceOrder(context.Background(), userID,
				[]services.PlaceOrderLine{{PizzaID: pizza.ID.Hex(), Quantity: 1, TotalPrice: 8.50}}, 8.50, nil)
			if err != nil {
				t.Errorf("place: %v", err)
				return
			}
			mu.Lock()
			numbers[order.OrderNumber] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(numbers) != n {
		t.Fatalf("got %d distinct numbers, want %d", len(numbers), n)
	}
	for i := int64(1); i <= n; i++ {
		if !numbers[i] {
			t.Errorf("number %d missing from sequence", i)
		}
	}
}

func TestPlaceOrderSnapshotsCatalogue(t *testing.T) {
	svc, _, pizza := fixture()

	order, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(),
		[]services.PlaceOrderLine{
			{PizzaID: pizza.ID.Hex(), Quantity: 3, TotalPrice: 25.50, CustomText: "extra basil"},
			{PizzaID: pizza.ID.Hex(), TotalPrice: 8.50}, // zero quantity defaults to 1
		}, 34.00, nil)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if len(order.Lines) != 2 {
		t.Fatalf("lines = %d", len(order.Lines))
	}
	line := order.Lines[0]
	if line.Name != pizza.Name || line.BasePrice != pizza.BasePrice {
		t.Errorf("snapshot mismatch: %+v", line)
	}
	if line.Description != pizza.Description || len(line.Ingredients) != len(pizza.Ingredients) {
		t.Errorf("snapshot mismatch: %+v", line)
	}
	// Totals are taken as supplied, not recomputed.
	if line.TotalPrice != 25.50 {
		t.Errorf("line total = %v", line.TotalPrice)
	}
	if line.CustomText != "extra basil" {
		t.Errorf("custom text = %q", line.CustomText)
	}
	if order.Lines[1].Quantity != 1 {
		t.Errorf("defaulted quantity = %d, want 1", order.Lines[1].Quantity)
	}
	if order.TotalAmount != 34.00 {
		t.Errorf("total = %v, want 34", order.TotalAmount)
	}
	if order.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", order.Status)
	}
}

func TestPlaceOrderEmpty(t *testing.T) {
	svc, store, _ := fixture()

	_, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(), nil, 0, nil)
	if !errors.Is(err, services.ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}
	if store.seq != 0 {
		t.Error("rejected order must not consume a sequence number")
	}
}

func TestPlaceOrderUnknownPizza(t *testing.T) {
	svc, store, _ := fixture()

	cases := []string{primitive.NewObjectID().Hex(), "not-a-hex-id"}
	for _, id := range cases {
		_, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(),
			[]services.PlaceOrderLine{{PizzaID: id, Quantity: 1, TotalPrice: 8.50}}, 8.50, nil)
		if !errors.Is(err, services.ErrUnknownPizza) {
			t.Errorf("id %q: expected ErrUnknownPizza, got %v", id, err)
		}
	}
	if store.seq != 0 {
		t.Error("rejected order must not consume a sequence number")
	}
}

func TestSetStatusFollowsLifecycle(t *testing.T) {
	svc, store, pizza := fixture()
	order, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(),
		[]services.PlaceOrderLine{{PizzaID: pizza.ID.Hex(), Quantity: 1, TotalPrice: 8.50}}, 8.50, nil)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	updated, err := svc.SetStatus(context.Background(), order.ID, "delivered")
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if updated.Status != models.StatusDelivered {
		t.Errorf("status = %s", updated.Status)
	}

	// Delivered is terminal: nothing moves it, and the stored order
	// stays untouched.
	for _, to := range []string{"pending", "cancelledByAdmin", "cancelledByCustomer"} {
		if _, err := svc.SetStatus(context.Background(), order.ID, to); !errors.Is(err, services.ErrInvalidTransition) {
			t.Errorf("delivered → %s: expected ErrInvalidTransition, got %v", to, err)
		}
	}
	stored, _ := store.FindByID(context.Background(), order.ID)
	if stored.Status != models.StatusDelivered {
		t.Errorf("stored status mutated to %s", stored.Status)
	}
}

func TestSetStatusUnknownOrder(t *testing.T) {
	svc, _, _ := fixture()

	_, err := svc.SetStatus(context.Background(), primitive.NewObjectID(), "delivered")
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetStatusUnknownStatusString(t *testing.T) {
	svc, store, pizza := fixture()
	order, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(),
		[]services.PlaceOrderLine{{PizzaID: pizza.ID.Hex(), Quantity: 1, TotalPrice: 8.50}}, 8.50, nil)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	for _, s := range []string{"cancelled", "shipped", ""} {
		if _, err := svc.SetStatus(context.Background(), order.ID, s); !errors.Is(err, services.ErrInvalidStatus) {
			t.Errorf("status %q: expected ErrInvalidStatus, got %v", s, err)
		}
	}

	stored, _ := store.FindByID(context.Background(), order.ID)
	if stored.Status != models.StatusPending {
		t.Errorf("rejected status mutated order to %s", stored.Status)
	}
}

func TestCancelByCustomer(t *testing.T) {
	svc, _, pizza := fixture()
	owner := primitive.NewObjectID()

	order, err := svc.PlaceOrder(context.Background(), owner,
		[]services.PlaceOrderLine{{PizzaID: pizza.ID.Hex(), Quantity: 1, TotalPrice: 8.50}}, 8.50, nil)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	cancelled, err := svc.CancelByCustomer(context.Background(), order.ID, owner, false)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.StatusCancelledByCustomer {
		t.Errorf("status = %s", cancelled.Status)
	}
}

func TestCancelByAdminBypassesOwnership(t *testing.T) {
	svc, _, pizza := fixture()
	owner := primitive.NewObjectID()
	admin := primitive.NewObjectID()

	order, err := svc.PlaceOrder(context.Background(), owner,
		[]services.PlaceOrderLine{{PizzaID: pizza.ID.Hex(), Quantity: 1, TotalPrice: 8.50}}, 8.50, nil)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	cancelled, err := svc.CancelByCustomer(context.Background(), order.ID, admin, true)
	if err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
	if cancelled.Status != models.StatusCancelledByCustomer {
		t.Errorf("status = %s", cancelled.Status)
	}
}

func TestCancelByCustomerOwnershipAndLifecycle(t *testing.T) {
	svc, store, pizza := fixture()
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	order, err := svc.PlaceOrder(context.Background(), owner,
		[]services.PlaceOrderLine{{PizzaID: pizza.ID.Hex(), Quantity: 1, TotalPrice: 8.50}}, 8.50, nil)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if _, err := svc.CancelByCustomer(context.Background(), order.ID, stranger, false); !errors.Is(err, services.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	stored, _ := store.FindByID(context.Background(), order.ID)
	if stored.Status != models.StatusPending {
		t.Errorf("stranger's attempt mutated status to %s", stored.Status)
	}

	if _, err := svc.CancelByCustomer(context.Background(), primitive.NewObjectID(), owner, false); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Once delivered the customer is too late.
	if _, err := svc.SetStatus(context.Background(), order.ID, "delivered"); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if _, err := svc.CancelByCustomer(context.Background(), order.ID, owner, false); !errors.Is(err, services.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestListForUserFilters(t *testing.T) {
	svc, _, pizza := fixture()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	for _, user := range []primitive.ObjectID{alice, alice, bob} {
		if _, err := svc.PlaceOrder(context.Background(), user,
			[]services.PlaceOrderLine{{PizzaID: pizza.ID.Hex(), Quantity: 1, TotalPrice: 8.50}}, 8.50, nil); err != nil {
			t.Fatalf("place: %v", err)
		}
	}

	mine, err := svc.ListForUser(context.Background(), alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("alice sees %d orders, want 2", len(mine))
	}
	for _, o := range mine {
		if o.UserID != alice {
			t.Errorf("alice sees someone else's order %d", o.OrderNumber)
		}
	}

	all, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("admin sees %d orders, want 3", len(all))
	}
}

func TestPlaceOrderDispatchesConfirmation(t *testing.T) {
	store := newFakeOrderStore()
	pizza := models.Pizza{ID: primitive.NewObjectID(), Name: "Margherita", BasePrice: 8.50}
	finder := &fakePizzaFinder{pizzas: map[primitive.ObjectID]models.Pizza{pizza.ID: pizza}}

	var dispatched []interface{ Handle() error }
	svc := services.NewOrderService(store, finder, func(j interface{ Handle() error }) error {
		dispatched = append(dispatched, j)
		return nil
	})

	confirm := func(order models.Order) interface{ Handle() error } {
		return &noopJob{number: order.OrderNumber}
	}
	order, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(),
		[]services.PlaceOrderLine{{PizzaID: pizza.ID.Hex(), Quantity: 1, TotalPrice: 8.50}}, 8.50, confirm)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if len(dispatched) != 1 {
		t.Fatalf("dispatched %d jobs, want 1", len(dispatched))
	}
	if job, ok := dispatched[0].(*noopJob); !ok || job.number != order.OrderNumber {
		t.Errorf("dispatched job = %+v", dispatched[0])
	}
}

type noopJob struct{ number int64 }

func (j *noopJob) Handle() error { return nil }
