package inventory

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/five82/larder/internal/foodapi"
)

// DefaultTimeout bounds each remote call made by the Gateway.
const DefaultTimeout = 5 * time.Second

// Gateway issues remote inventory operations and reconciles their outcomes
// into a Store.
type Gateway struct {
	api      foodapi.InventoryAPI
	store    *Store
	logger   *zap.Logger
	timeout  time.Duration
	validate *validator.Validate

	mu    sync.Mutex
	lanes map[string]*lane
}

// lane serializes expiry updates for a single item.
type lane struct {
	sem    chan struct{}
	latest uint64
	users  int
}

// GatewayOption customizes a Gateway.
type GatewayOption func(*Gateway)

// WithLogger sets the logger used for remote failures.
func WithLogger(logger *zap.Logger) GatewayOption {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithTimeout bounds each remote call. Zero or negative disables the bound.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// NewGateway builds a Gateway that applies outcomes of api calls to store.
func NewGateway(api foodapi.InventoryAPI, store *Store, opts ...GatewayOption) *Gateway {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	g := &Gateway{
		api:      api,
		store:    store,
		logger:   zap.NewNop(),
		timeout:  DefaultTimeout,
		validate: v,
		lanes:    make(map[string]*lane),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Store returns the store the gateway reconciles into.
func (g *Gateway) Store() *Store {
	return g.store
}

// FetchAll replaces the store contents with the remote inventory. On
// failure the store keeps its items and records the error.
func (g *Gateway) FetchAll(ctx context.Context) error {
	ctx, cancel := g.callContext(ctx)
	defer cancel()

	items, err := g.api.ListInventory(ctx)
	if err != nil {
		err = wrap(ErrFetch, err)
		g.logger.Error("fetch inventory failed", zap.Error(err))
		g.store.Fail(err)
		return err
	}
	if dropped := g.store.Load(items); dropped > 0 {
		g.logger.Warn("inventory has repeated item ids", zap.Int("dropped", dropped))
	}
	g.logger.Debug("inventory loaded", zap.Int("items", len(items)))
	return nil
}

// CreateOrIncrement validates product and posts it. Missing required
// fields fail without a network call. The store is not modified; callers
// refresh with FetchAll to see the new or incremented item.
func (g *Gateway) CreateOrIncrement(ctx context.Context, product foodapi.Product) (*foodapi.Item, error) {
	product = product.Trimmed()
	if err := g.validateProduct(product); err != nil {
		g.logger.Info("product rejected", zap.String("name", product.Name), zap.Error(err))
		return nil, err
	}

	ctx, cancel := g.callContext(ctx)
	defer cancel()

	item, err := g.api.AddItem(ctx, product)
	if err != nil {
		err = wrap(ErrCreate, err)
		g.logger.Error("add item failed", zap.String("name", product.Name), zap.Error(err))
		return nil, err
	}
	return item, nil
}

// DeleteOne removes id remotely, then locally. A failed call leaves the
// store unchanged.
func (g *Gateway) DeleteOne(ctx context.Context, id string) error {
	ctx, cancel := g.callContext(ctx)
	defer cancel()

	if err := g.api.DeleteItem(ctx, id); err != nil {
		err = wrap(ErrDelete, err)
		g.logger.Error("delete item failed", zap.String("id", id), zap.Error(err))
		g.store.Fail(err)
		return err
	}
	if err := g.store.RemoveLocal(id); err != nil {
		g.logger.Debug("deleted item was not loaded", zap.String("id", id))
	}
	g.store.ClearError()
	return nil
}

// DeleteAll removes every item remotely, then clears the store. A failed
// call leaves the store unchanged.
func (g *Gateway) DeleteAll(ctx context.Context) error {
	ctx, cancel := g.callContext(ctx)
	defer cancel()

	if err := g.api.DeleteAll(ctx); err != nil {
		err = wrap(ErrDeleteAll, err)
		g.logger.Error("delete all failed", zap.Error(err))
		g.store.Fail(err)
		return err
	}
	g.store.Clear()
	g.store.ClearError()
	return nil
}

// EditExpiry applies an optimistic local expiry edit. Nothing is sent until
// UpdateExpiry is called.
func (g *Gateway) EditExpiry(id, date string) error {
	return g.store.UpsertLocal(id, Patch{ExpiryDate: &date})
}

// UpdateExpiry sends the expiry date for id. Requests for the same id are
// sent one at a time; a request overtaken by a newer one for the same id
// returns ErrSuperseded and its outcome is discarded. A failure keeps the
// local value and marks the item Unsynced.
func (g *Gateway) UpdateExpiry(ctx context.Context, id, date string) error {
	date = strings.TrimSpace(date)

	l, seq := g.acquire(id)
	defer g.release(id, l)

	gen, err := g.store.BeginSync(id)
	if err != nil {
		return err
	}

	if err := validateExpiry(date); err != nil {
		g.applyIfLatest(l, seq, func() { _ = g.store.FailSync(id, gen, err) })
		return err
	}

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		err := wrap(ErrUpdate, ctx.Err())
		g.applyIfLatest(l, seq, func() { _ = g.store.FailSync(id, gen, err) })
		return err
	}
	defer func() { <-l.sem }()

	if !g.isLatest(l, seq) {
		return ErrSuperseded
	}

	callCtx, cancel := g.callContext(ctx)
	defer cancel()

	item, err := g.api.UpdateExpiry(callCtx, id, date)
	if err != nil {
		err = wrap(ErrUpdate, err)
		g.logger.Error("update expiry failed", zap.String("id", id), zap.String("expiry", date), zap.Error(err))
		if !g.applyIfLatest(l, seq, func() { _ = g.store.FailSync(id, gen, err) }) {
			return ErrSuperseded
		}
		return err
	}

	persisted := date
	if item != nil {
		persisted = item.ExpiryDate
	}
	if !g.applyIfLatest(l, seq, func() { _ = g.store.ConfirmSync(id, gen, persisted) }) {
		return ErrSuperseded
	}
	return nil
}

func (g *Gateway) acquire(id string) (*lane, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	l, ok := g.lanes[id]
	if !ok {
		l = &lane{sem: make(chan struct{}, 1)}
		g.lanes[id] = l
	}
	l.users++
	l.latest++
	return l, l.latest
}

func (g *Gateway) release(id string, l *lane) {
	g.mu.Lock()
	defer g.mu.Unlock()

	l.users--
	if l.users == 0 {
		delete(g.lanes, id)
	}
}

func (g *Gateway) isLatest(l *lane, seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return l.latest == seq
}

// applyIfLatest runs fn while no newer request for the lane can register.
func (g *Gateway) applyIfLatest(l *lane, seq uint64, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if l.latest != seq {
		return false
	}
	fn()
	return true
}

func (g *Gateway) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout > 0 {
		return context.WithTimeout(ctx, g.timeout)
	}
	return context.WithCancel(ctx)
}

func (g *Gateway) validateProduct(product foodapi.Product) error {
	err := g.validate.Struct(product)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fe.Field())
		}
		return &ValidationError{Fields: fields}
	}
	return &ValidationError{Reason: err.Error()}
}

func validateExpiry(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse(ExpiryLayout, date); err != nil {
		return &ValidationError{Fields: []string{"expiryDate"}, Reason: "invalid expiry date, use YYYY-MM-DD"}
	}
	return nil
}
