package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"catalog-service/internal/domain"
	"catalog-service/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Mock repositories for testing
type mockInventoryRepository struct {
	records map[uuid.UUID]*domain.Inventory
}

func newMockInventoryRepository() *mockInventoryRepository {
	return &mockInventoryRepository{
		records: make(map[uuid.UUID]*domain.Inventory),
	}
}

func (m *mockInventoryRepository) Create(ctx context.Context, inv *domain.Inventory) error {
	r := *inv
	m.records[inv.ID] = &r
	return nil
}

func (m *mockInventoryRepository) Update(ctx context.Context, inv *domain.Inventory) error {
	if _, exists := m.records[inv.ID]; !exists {
		return repository.ErrInventoryNotFound
	}
	r := *inv
	m.records[inv.ID] = &r
	return nil
}

func (m *mockInventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.records[id]; !exists {
		return repository.ErrInventoryNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockInventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Inventory, error) {
	inv, exists := m.records[id]
	if !exists {
		return nil, repository.ErrInventoryNotFound
	}
	r := *inv
	return &r, nil
}

func (m *mockInventoryRepository) FindAll(ctx context.Context) ([]*domain.Inventory, error) {
	all := []*domain.Inventory{}
	for _, inv := range m.records {
		r := *inv
		all = append(all, &r)
	}
	return all, nil
}

func (m *mockInventoryRepository) FindByProductID(ctx context.Context, productID uuid.UUID) ([]*domain.Inventory, error) {
	matches := []*domain.Inventory{}
	for _, inv := range m.records {
		if inv.ProductID == productID {
			r := *inv
			matches = append(matches, &r)
		}
	}
	return matches, nil
}

func (m *mockInventoryRepository) FindLowStock(ctx context.Context) ([]*domain.Inventory, error) {
	matches := []*domain.Inventory{}
	for _, inv := range m.records {
		if inv.Quantity <= inv.ReorderLevel {
			r := *inv
			matches = append(matches, &r)
		}
	}
	return matches, nil
}

func (m *mockInventoryRepository) SumQuantityByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	total := 0
	for _, inv := range m.records {
		if inv.ProductID == productID {
			total += inv.Quantity
		}
	}
	return total, nil
}

func (m *mockInventoryRepository) SumReservedByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	total := 0
	for _, inv := range m.records {
		if inv.ProductID == productID {
			total += inv.ReservedQuantity
		}
	}
	return total, nil
}

func (m *mockInventoryRepository) BeginAllocation(ctx context.Context) (repository.AllocationTx, error) {
	return &mockAllocationTx{
		repo:   m,
		staged: make(map[uuid.UUID]int),
	}, nil
}

// mockAllocationTx stages reserved-quantity writes and applies them only on
// Commit, mirroring the transactional repository behavior
type mockAllocationTx struct {
	repo       *mockInventoryRepository
	staged     map[uuid.UUID]int
	committed  bool
	rolledBack bool
}

func (t *mockAllocationTx) LockRecords(ctx context.Context, productID uuid.UUID) ([]*domain.Inventory, error) {
	records, _ := t.repo.FindByProductID(ctx, productID)
	sort.Slice(records, func(i, j int) bool {
		return records[i].Quantity > records[j].Quantity
	})
	return records, nil
}

func (t *mockAllocationTx) SaveReserved(ctx context.Context, id uuid.UUID, reservedQuantity int) error {
	if _, exists := t.repo.records[id]; !exists {
		return repository.ErrInventoryNotFound
	}
	t.staged[id] = reservedQuantity
	return nil
}

func (t *mockAllocationTx) Commit() error {
	for id, reserved := range t.staged {
		t.repo.records[id].ReservedQuantity = reserved
	}
	t.committed = true
	return nil
}

func (t *mockAllocationTx) Rollback() error {
	t.rolledBack = true
	return nil
}

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[uuid.UUID]*domain.Product),
	}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	p := *product
	m.products[product.ID] = &p
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	p := *product
	m.products[product.ID] = &p
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	p := *product
	return &p, nil
}

func (m *mockProductRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	_, exists := m.products[id]
	return exists, nil
}

func (m *mockProductRepository) List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	all := []*domain.Product{}
	for _, product := range m.products {
		p := *product
		all = append(all, &p)
	}
	return all, len(all), nil
}

func (m *mockProductRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	return m.List(ctx, nil, page, pageSize, "", repository.SortOrderDesc)
}

func seedProduct(repo *mockProductRepository) *domain.Product {
	product := &domain.Product{
		ID:     uuid.New(),
		Name:   "Widget",
		SKU:    "WID-001",
		Price:  9.99,
		Active: true,
	}
	repo.products[product.ID] = product
	return product
}

func seedInventory(repo *mockInventoryRepository, productID uuid.UUID, quantity, reserved int) *domain.Inventory {
	now := time.Now()
	inv := &domain.Inventory{
		ID:               uuid.New(),
		ProductID:        productID,
		Quantity:         quantity,
		ReservedQuantity: reserved,
		ReorderLevel:     DefaultReorderLevel,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	repo.records[inv.ID] = inv
	return inv
}

func newInventoryFixture() (*mockInventoryRepository, *mockProductRepository, InventoryService, *domain.Product) {
	invRepo := newMockInventoryRepository()
	productRepo := newMockProductRepository()
	service := NewInventoryService(invRepo, productRepo)
	product := seedProduct(productRepo)
	return invRepo, productRepo, service, product
}

func TestCreateInventory_Defaults(t *testing.T) {
	_, _, service, product := newInventoryFixture()

	inv, err := service.Create(context.Background(), CreateInventoryInput{
		ProductID: product.ID,
		Quantity:  50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inv.ReservedQuantity != 0 {
		t.Errorf("expected reserved quantity to default to 0, got %d", inv.ReservedQuantity)
	}
	if inv.ReorderLevel != DefaultReorderLevel {
		t.Errorf("expected reorder level to default to %d, got %d", DefaultReorderLevel, inv.ReorderLevel)
	}
}

func TestCreateInventory_UnknownProduct(t *testing.T) {
	invRepo := newMockInventoryRepository()
	productRepo := newMockProductRepository()
	service := NewInventoryService(invRepo, productRepo)

	_, err := service.Create(context.Background(), CreateInventoryInput{
		ProductID: uuid.New(),
		Quantity:  10,
	})
	if !errors.Is(err, repository.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCreateInventory_InvalidCounters(t *testing.T) {
	_, _, service, product := newInventoryFixture()
	ctx := context.Background()

	reserved := 20
	_, err := service.Create(ctx, CreateInventoryInput{
		ProductID:        product.ID,
		Quantity:         10,
		ReservedQuantity: &reserved,
	})
	if !errors.Is(err, ErrInvalidInventoryState) {
		t.Errorf("expected ErrInvalidInventoryState when reserved > quantity, got %v", err)
	}

	_, err = service.Create(ctx, CreateInventoryInput{
		ProductID: product.ID,
		Quantity:  -1,
	})
	if !errors.Is(err, ErrInvalidInventoryState) {
		t.Errorf("expected ErrInvalidInventoryState for negative quantity, got %v", err)
	}
}

func TestReserve_DrainsLargestRecordsFirst(t *testing.T) {
	invRepo, _, service, product := newInventoryFixture()
	ctx := context.Background()

	small := seedInventory(invRepo, product.ID, 5, 0)
	large := seedInventory(invRepo, product.ID, 10, 0)

	if err := service.Reserve(ctx, product.ID, 12); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := invRepo.records[large.ID].ReservedQuantity; got != 10 {
		t.Errorf("expected largest record fully reserved (10), got %d", got)
	}
	if got := invRepo.records[small.ID].ReservedQuantity; got != 2 {
		t.Errorf("expected remainder (2) on the smaller record, got %d", got)
	}
}

func TestReserve_InsufficientKeepsPartialReservations(t *testing.T) {
	invRepo, _, service, product := newInventoryFixture()
	ctx := context.Background()

	seedInventory(invRepo, product.ID, 5, 0)
	seedInventory(invRepo, product.ID, 10, 0)

	err := service.Reserve(ctx, product.ID, 20)
	if !errors.Is(err, ErrInsufficientInventory) {
		t.Fatalf("expected ErrInsufficientInventory, got %v", err)
	}

	// The partial reservations survive the failed call
	total, _ := invRepo.SumReservedByProduct(ctx, product.ID)
	if total != 15 {
		t.Errorf("expected all 15 units reserved after insufficient reserve, got %d", total)
	}
}

func TestReserve_InvalidAmount(t *testing.T) {
	_, _, service, product := newInventoryFixture()
	ctx := context.Background()

	if err := service.Reserve(ctx, product.ID, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity for zero amount, got %v", err)
	}
	if err := service.Reserve(ctx, product.ID, -5); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity for negative amount, got %v", err)
	}
}

func TestReserve_NoRecords(t *testing.T) {
	_, _, service, product := newInventoryFixture()

	err := service.Reserve(context.Background(), product.ID, 5)
	if !errors.Is(err, repository.ErrInventoryNotFound) {
		t.Errorf("expected ErrInventoryNotFound, got %v", err)
	}
}

func TestRelease_DrainsLargestRecordsFirst(t *testing.T) {
	invRepo, _, service, product := newInventoryFixture()
	ctx := context.Background()

	small := seedInventory(invRepo, product.ID, 5, 5)
	large := seedInventory(invRepo, product.ID, 10, 10)

	if err := service.Release(ctx, product.ID, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := invRepo.records[large.ID].ReservedQuantity; got != 3 {
		t.Errorf("expected largest record released to 3, got %d", got)
	}
	if got := invRepo.records[small.ID].ReservedQuantity; got != 5 {
		t.Errorf("expected smaller record untouched (5), got %d", got)
	}
}

func TestRelease_OverflowIsDropped(t *testing.T) {
	invRepo, _, service, product := newInventoryFixture()
	ctx := context.Background()

	seedInventory(invRepo, product.ID, 10, 4)

	if err := service.Release(ctx, product.ID, 100); err != nil {
		t.Fatalf("expected overflow release to succeed, got %v", err)
	}

	total, _ := invRepo.SumReservedByProduct(ctx, product.ID)
	if total != 0 {
		t.Errorf("expected all reservations cleared, got %d", total)
	}
}

func TestAvailableQuantity(t *testing.T) {
	invRepo, _, service, product := newInventoryFixture()
	ctx := context.Background()

	seedInventory(invRepo, product.ID, 10, 4)
	seedInventory(invRepo, product.ID, 5, 1)

	total, err := service.TotalQuantity(ctx, product.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 15 {
		t.Errorf("expected total 15, got %d", total)
	}

	available, err := service.AvailableQuantity(ctx, product.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if available != 10 {
		t.Errorf("expected available 10, got %d", available)
	}

	// A product with no records has zero totals
	other, err := service.TotalQuantity(ctx, uuid.New())
	if err != nil || other != 0 {
		t.Errorf("expected 0 for unknown product, got %d err=%v", other, err)
	}
}

func TestLowStockItems(t *testing.T) {
	invRepo, _, service, product := newInventoryFixture()

	low := seedInventory(invRepo, product.ID, 10, 0) // quantity == reorder level
	seedInventory(invRepo, product.ID, 11, 0)

	items, err := service.LowStockItems(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != low.ID {
		t.Errorf("expected exactly the boundary record flagged low, got %d items", len(items))
	}
}

// Property: after any sequence of reserves and releases, every record holds
// 0 <= reserved <= quantity, and the reserved total never exceeds the stock
// total
func TestProperty_ReservedNeverExceedsQuantity(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("reserve and release keep counters within bounds", prop.ForAll(
		func(quantities []int, amounts []int) bool {
			invRepo := newMockInventoryRepository()
			productRepo := newMockProductRepository()
			service := NewInventoryService(invRepo, productRepo)
			product := seedProduct(productRepo)
			ctx := context.Background()

			for _, q := range quantities {
				seedInventory(invRepo, product.ID, q, 0)
			}

			for i, amount := range amounts {
				if i%2 == 0 {
					// Insufficient inventory is an expected outcome here
					if err := service.Reserve(ctx, product.ID, amount); err != nil &&
						!errors.Is(err, ErrInsufficientInventory) &&
						!errors.Is(err, ErrInvalidQuantity) &&
						!errors.Is(err, repository.ErrInventoryNotFound) {
						t.Logf("FAIL: unexpected reserve error: %v", err)
						return false
					}
				} else {
					if err := service.Release(ctx, product.ID, amount); err != nil {
						t.Logf("FAIL: unexpected release error: %v", err)
						return false
					}
				}
			}

			totalQuantity := 0
			totalReserved := 0
			for _, inv := range invRepo.records {
				if inv.ReservedQuantity < 0 || inv.ReservedQuantity > inv.Quantity {
					t.Logf("FAIL: record out of bounds: quantity=%d reserved=%d", inv.Quantity, inv.ReservedQuantity)
					return false
				}
				totalQuantity += inv.Quantity
				totalReserved += inv.ReservedQuantity
			}

			if totalReserved > totalQuantity {
				t.Logf("FAIL: reserved total %d exceeds stock total %d", totalReserved, totalQuantity)
				return false
			}

			return true
		},
		gen.SliceOf(gen.IntRange(0, 50)),
		gen.SliceOf(gen.IntRange(1, 30)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
