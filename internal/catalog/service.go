package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNotFound    = errors.New("product not found")
	ErrInvalidPage = errors.New("page and perPage must be positive")
)

const DefaultPageSize = 12

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

type Page struct {
	Products    []Product `json:"products"`
	Total       int       `json:"total"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
	PerPage     int       `json:"perPage"`
}

type Stats struct {
	Total      int `json:"total"`
	InStock    int `json:"inStock"`
	LowStock   int `json:"lowStock"`
	OutOfStock int `json:"outOfStock"`
}

const lowStockThreshold = 5

// Service is the mediator between consumers and the LocalStore. Each call
// waits Latency first, standing in for a network round-trip.
//
// Mutations hold mu across read-modify-write, which orders writers inside
// this process only. Another process writing the same key still wins or
// loses by timing.
type Service struct {
	Store   *LocalStore
	Log     *zap.Logger
	Metrics *Metrics
	Latency time.Duration
	Now     func() time.Time

	mu sync.Mutex
}

func NewService(store *LocalStore, log *zap.Logger, latency time.Duration) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Store: store, Log: log, Latency: latency, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Service) wait(ctx context.Context) error {
	if s.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Latency)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Service) read(ctx context.Context) ([]Product, error) {
	products, err := s.Store.Read(ctx)
	if err != nil {
		return nil, err
	}
	s.Metrics.setCount(len(products))
	return products, nil
}

func (s *Service) write(ctx context.Context, products []Product) error {
	if err := s.Store.Write(ctx, products); err != nil {
		return err
	}
	s.Metrics.setCount(len(products))
	return nil
}

func (s *Service) GetProducts(ctx context.Context, page, perPage int) (p Page, err error) {
	defer func() { s.Metrics.observe("list", err) }()

	if page < 1 || perPage < 1 {
		return Page{}, ErrInvalidPage
	}
	if err := s.wait(ctx); err != nil {
		return Page{}, err
	}

	products, err := s.read(ctx)
	if err != nil {
		return Page{}, err
	}
	return paginate(products, page, perPage), nil
}

func paginate(products []Product, page, perPage int) Page {
	total := len(products)

	// Compare before multiplying so huge page numbers can't wrap negative.
	start := total
	if page-1 < totalPages(total, perPage) {
		start = (page - 1) * perPage
	}
	end := start + min(perPage, total-start)

	slice := make([]Product, end-start)
	copy(slice, products[start:end])

	return Page{
		Products:    slice,
		Total:       total,
		TotalPages:  totalPages(total, perPage),
		CurrentPage: page,
		PerPage:     perPage,
	}
}

func totalPages(total, perPage int) int {
	if total == 0 {
		return 0
	}
	return (total-1)/perPage + 1
}

func (s *Service) GetProduct(ctx context.Context, id int64) (p Product, err error) {
	defer func() { s.Metrics.observe("get", err) }()

	if err := s.wait(ctx); err != nil {
		return Product{}, err
	}
	products, err := s.read(ctx)
	if err != nil {
		return Product{}, err
	}
	i := indexOf(products, id)
	if i < 0 {
		return Product{}, ErrNotFound
	}
	return products[i], nil
}

// All returns the full collection in persisted order.
func (s *Service) All(ctx context.Context) (products []Product, err error) {
	defer func() { s.Metrics.observe("all", err) }()

	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.read(ctx)
}

func (s *Service) AddProduct(ctx context.Context, in ProductInput) (p Product, err error) {
	defer func() { s.Metrics.observe("add", err) }()

	if err := s.wait(ctx); err != nil {
		return Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.read(ctx)
	if err != nil {
		return Product{}, err
	}

	p = in.toProduct(nextID(products), s.now())
	products = append(products, p)

	if err := s.write(ctx, products); err != nil {
		return Product{}, err
	}

	s.Log.Info("product added", zap.Int64("id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (p Product, err error) {
	defer func() { s.Metrics.observe("update", err) }()

	if err := s.wait(ctx); err != nil {
		return Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.read(ctx)
	if err != nil {
		return Product{}, err
	}

	i := indexOf(products, id)
	if i < 0 {
		return Product{}, ErrNotFound
	}

	p = patch.apply(products[i])
	p.UpdatedAt = s.now()
	products[i] = p

	if err := s.write(ctx, products); err != nil {
		return Product{}, err
	}

	s.Log.Info("product updated", zap.Int64("id", id))
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) (err error) {
	defer func() { s.Metrics.observe("delete", err) }()

	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.read(ctx)
	if err != nil {
		return err
	}

	i := indexOf(products, id)
	if i < 0 {
		return ErrNotFound
	}

	products = append(products[:i], products[i+1:]...)
	if err := s.write(ctx, products); err != nil {
		return err
	}

	s.Log.Info("product deleted", zap.Int64("id", id))
	return nil
}

func (s *Service) Stats(ctx context.Context) (st Stats, err error) {
	defer func() { s.Metrics.observe("stats", err) }()

	if err := s.wait(ctx); err != nil {
		return Stats{}, err
	}
	products, err := s.read(ctx)
	if err != nil {
		return Stats{}, err
	}
	return computeStats(products), nil
}

func computeStats(products []Product) Stats {
	st := Stats{Total: len(products)}
	for _, p := range products {
		switch {
		case p.Stock <= 0:
			st.OutOfStock++
		case p.Stock <= lowStockThreshold:
			st.InStock++
			st.LowStock++
		default:
			st.InStock++
		}
	}
	return st
}

func (s *Service) Revision(ctx context.Context) (string, error) {
	return s.Store.Revision(ctx)
}

func (s *Service) Ping(ctx context.Context) error {
	return s.Store.Ping(ctx)
}

// Reset drops the persisted collection and seeds it again.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Store.Reset(ctx); err != nil {
		return err
	}
	_, err := s.Store.EnsureSeeded(ctx)
	return err
}
