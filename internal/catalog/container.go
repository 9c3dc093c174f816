package catalog

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Result is the envelope every mutating container operation returns in
// place of an error.
type Result struct {
	Success bool     `json:"success"`
	Data    *Product `json:"data,omitempty"`
	Error   string   `json:"error,omitempty"`

	err error
}

func failed(err error) Result { return Result{Success: false, Error: err.Error(), err: err} }

// Err is the underlying failure, nil on success.
func (r Result) Err() error { return r.err }

const (
	msgLoadFailed   = "failed to load products"
	msgAddFailed    = "failed to add product"
	msgUpdateFailed = "failed to update product"
	msgDeleteFailed = "failed to delete product"
)

// Container keeps the reactive list-view State and advances it through
// Reduce. Overlapping calls are neither queued nor cancelled: whichever
// resolves last decides what State shows.
type Container struct {
	svc *Service
	log *zap.Logger

	mu      sync.Mutex
	st      State
	subs    map[int]func(State)
	nextSub int

	// notifyMu orders deliveries so subscribers see states in reduce order.
	notifyMu sync.Mutex

	initMu   sync.Mutex
	initDone bool
}

func NewContainer(svc *Service, log *zap.Logger) *Container {
	if log == nil {
		log = zap.NewNop()
	}
	return &Container{
		svc:  svc,
		log:  log,
		st:   State{Products: []Product{}},
		subs: map[int]func(State){},
	}
}

func (c *Container) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.st
	st.Products = cloneProducts(c.st.Products)
	return st
}

// Subscribe registers fn to receive the state after every dispatch, in
// dispatch order. fn runs while deliveries are serialized and must not
// call Dispatch itself.
func (c *Container) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Container) Dispatch(a Action) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	c.st = Reduce(c.st, a)
	st := c.st
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	c.log.Debug("dispatch", zap.Stringer("action", a.Type), zap.Int("total", st.Total))

	for _, fn := range subs {
		st.Products = cloneProducts(st.Products)
		fn(st)
	}
}

// Init seeds storage if needed and loads the first page. Once a call
// succeeds later calls are no-ops; a failed call leaves the next one free
// to retry. Concurrent callers wait on the one in progress.
func (c *Container) Init(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if c.initDone {
		return nil
	}

	seeded, err := c.svc.Store.EnsureSeeded(ctx)
	if err != nil {
		c.Dispatch(SetError(msgLoadFailed))
		return err
	}
	if seeded {
		c.log.Info("catalog initialized from seed data")
	}
	if _, err := c.GetAllProducts(ctx, 1, DefaultPageSize); err != nil {
		return err
	}
	c.initDone = true
	return nil
}

// GetAllProducts loads one page into State. Callers re-invoke it when page
// or limit change; the container never reloads on its own.
func (c *Container) GetAllProducts(ctx context.Context, page, limit int) (Page, error) {
	c.Dispatch(SetLoading(true))

	p, err := c.svc.GetProducts(ctx, page, limit)
	if err != nil {
		c.log.Warn("load products failed", zap.Int("page", page), zap.Int("limit", limit), zap.Error(err))
		c.Dispatch(SetError(msgLoadFailed))
		return Page{}, err
	}

	c.Dispatch(SetProducts(p.Products))
	c.Dispatch(SetTotal(p.Total))
	return p, nil
}

func (c *Container) AddProduct(ctx context.Context, in ProductInput) Result {
	c.Dispatch(SetLoading(true))

	p, err := c.svc.AddProduct(ctx, in)
	if err != nil {
		c.log.Warn("add product failed", zap.Error(err))
		c.Dispatch(SetError(msgAddFailed))
		return failed(err)
	}

	c.Dispatch(AddProductAction(p))
	return Result{Success: true, Data: &p}
}

func (c *Container) UpdateProduct(ctx context.Context, id int64, patch ProductPatch) Result {
	c.Dispatch(SetLoading(true))

	p, err := c.svc.UpdateProduct(ctx, id, patch)
	if err != nil {
		c.log.Warn("update product failed", zap.Int64("id", id), zap.Error(err))
		c.Dispatch(SetError(msgUpdateFailed))
		return failed(err)
	}

	c.Dispatch(UpdateProductAction(p))
	return Result{Success: true, Data: &p}
}

func (c *Container) DeleteProduct(ctx context.Context, id int64) Result {
	c.Dispatch(SetLoading(true))

	if err := c.svc.DeleteProduct(ctx, id); err != nil {
		c.log.Warn("delete product failed", zap.Int64("id", id), zap.Error(err))
		c.Dispatch(SetError(msgDeleteFailed))
		return failed(err)
	}

	c.Dispatch(DeleteProductAction(id))
	return Result{Success: true}
}
