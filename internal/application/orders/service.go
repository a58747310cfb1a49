// Package orders binds the in-memory order sequence to the orders and
// line-item tables. Lookups are read-through; listing rebuilds the cache
// wholesale; writes go to the store first and then patch the cache entry.
package orders

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Tato-23/TareaTiendaOnline/internal/cache"
	"github.com/Tato-23/TareaTiendaOnline/internal/domain"
	"github.com/Tato-23/TareaTiendaOnline/internal/observability"
)

//go:generate mockgen -source=service.go -destination=mock_test.go -package=orders

type Storage interface {
	GetOrder(ctx context.Context, id int64) (*domain.OrderRow, error)
	GetLineItems(ctx context.Context, orderID int64) ([]domain.LineItem, error)
	SelectAll(ctx context.Context) ([]domain.OrderRow, error)
	InsertOrder(ctx context.Context, client string, date time.Time, items []domain.LineItem) (int64, error)
	UpdateOrder(ctx context.Context, id int64, client string, date time.Time, items []domain.LineItem, replaceItems bool) error
	DeleteOrder(ctx context.Context, id int64) error
}

// ProductResolver looks a product up in the resident catalog index, used
// to attach current name and price to updated line items.
type ProductResolver interface {
	Find(id int64) *domain.Product
}

// OrderInput carries a creation or update request. A nil Items slice on
// update means "line items not provided, keep the existing set".
type OrderInput struct {
	Client string
	Date   string
	Items  []domain.LineItem
}

type Service struct {
	cache    *cache.Sequence
	storage  Storage
	products ProductResolver
	logger   *zap.Logger
	metrics  observability.Metrics
}

func NewService(seq *cache.Sequence, storage Storage, products ProductResolver, logger *zap.Logger, metrics observability.Metrics) *Service {
	return &Service{
		cache:    seq,
		storage:  storage,
		products: products,
		logger:   logger,
		metrics:  metrics,
	}
}

// dateLayouts accepts ISO-8601 with or without zone, plus a bare date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, domain.ErrBadTimestamp
}

func formatDate(t time.Time) string {
	return t.Format(time.RFC3339)
}

func convertToMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

// LookupByID checks the cache first and falls through to the store on a
// miss, populating the cache before returning. Both paths hand back the
// same shape: order fields, normalized line items, computed total.
func (s *Service) LookupByID(ctx context.Context, id int64) (*domain.OrderView, error) {
	tCache := time.Now()
	if o := s.cache.Find(id); o != nil {
		o.Normalize()
		// persist the normalized items so later hits skip the work
		s.cache.Update(id, nil, nil, o.Items)

		cacheMs := convertToMs(tCache)
		s.metrics.IncCacheHit()
		s.metrics.ObserveLookup("cache", cacheMs, 0)
		s.logger.Info("order fetched from cache",
			zap.Int64("pedido_id", id),
			zap.Float64("cache_ms", cacheMs),
		)

		v := o.View()
		return &v, nil
	}

	s.metrics.IncCacheMiss()
	cacheMs := convertToMs(tCache)

	tDB := time.Now()
	row, err := s.storage.GetOrder(ctx, id)
	if err != nil {
		s.logger.Warn("order not in cache nor store",
			zap.Int64("pedido_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	items, err := s.storage.GetLineItems(ctx, id)
	if err != nil {
		return nil, err
	}

	o := domain.Order{
		ID:     row.ID,
		Client: row.Client,
		Date:   formatDate(row.Date),
		Items:  items,
	}
	o.Normalize()
	s.cache.Append(o)

	dbMs := convertToMs(tDB)
	s.metrics.ObserveLookup("db", cacheMs, dbMs)
	s.logger.Info("order fetched from store",
		zap.Int64("pedido_id", id),
		zap.Float64("cache_ms", cacheMs),
		zap.Float64("db_ms", dbMs),
	)

	v := o.View()
	return &v, nil
}

func (in OrderInput) validate() error {
	var missing []string
	if in.Client == "" {
		missing = append(missing, "cliente")
	}
	if in.Date == "" {
		missing = append(missing, "fecha_pedido")
	}
	if len(missing) > 0 {
		return &domain.ValidationError{Missing: missing}
	}
	return nil
}

// storeItems filters out records without a product id and applies the
// quantity sentinel; this is the set that goes to the line-item table.
func storeItems(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	for _, it := range items {
		if it.ProductID == 0 {
			continue
		}
		if it.Quantity == 0 {
			it.Quantity = 1
		}
		out = append(out, it)
	}
	return out
}

// Create validates, writes the order row plus line items in one
// transaction, appends the order (raw line-item records as given) to the
// cache, and returns the store-assigned id.
func (s *Service) Create(ctx context.Context, in OrderInput) (int64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}
	dt, err := parseDate(in.Date)
	if err != nil {
		return 0, err
	}

	id, err := s.storage.InsertOrder(ctx, in.Client, dt, storeItems(in.Items))
	if err != nil {
		s.logger.Error("order insert failed", zap.Error(err))
		return 0, err
	}

	o := domain.Order{
		ID:     id,
		Client: in.Client,
		Date:   formatDate(dt),
		Items:  append([]domain.LineItem(nil), in.Items...),
	}
	o.Normalize()
	s.cache.Append(o)

	s.logger.Info("order created",
		zap.Int64("pedido_id", id),
		zap.String("cliente", in.Client),
		zap.Int("items", len(in.Items)),
	)
	return id, nil
}

// Update rewrites the order row (and, when items were provided, the whole
// line-item set) in the store, then patches the cache entry in place.
// Provided items are resolved through the catalog index so the cached view
// carries current names and prices; unresolvable ids are dropped from it.
func (s *Service) Update(ctx context.Context, id int64, in OrderInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	dt, err := parseDate(in.Date)
	if err != nil {
		return err
	}

	replaceItems := in.Items != nil
	if err := s.storage.UpdateOrder(ctx, id, in.Client, dt, storeItems(in.Items), replaceItems); err != nil {
		s.logger.Error("order update failed",
			zap.Int64("pedido_id", id),
			zap.Error(err),
		)
		return err
	}

	var resolved []domain.LineItem
	if replaceItems {
		resolved = make([]domain.LineItem, 0, len(in.Items))
		for _, it := range in.Items {
			p := s.products.Find(it.ProductID)
			if p == nil {
				continue
			}
			q := it.Quantity
			if q == 0 {
				q = 1
			}
			resolved = append(resolved, domain.LineItem{
				ProductID: it.ProductID,
				Name:      p.Name,
				Price:     p.Price,
				Quantity:  q,
			})
		}
	}

	iso := formatDate(dt)
	s.cache.Update(id, &in.Client, &iso, resolved)

	s.logger.Info("order updated",
		zap.Int64("pedido_id", id),
		zap.Bool("items_replaced", replaceItems),
	)
	return nil
}

// Delete removes line items and order row from the store and drops the
// cache entry. Absence anywhere is not an error.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.storage.DeleteOrder(ctx, id); err != nil {
		s.logger.Error("order delete failed",
			zap.Int64("pedido_id", id),
			zap.Error(err),
		)
		return err
	}
	s.cache.Remove(id)
	s.logger.Info("order deleted", zap.Int64("pedido_id", id))
	return nil
}

// ListAll rebuilds the cache from the store (clear, refetch, repopulate)
// and returns the full listing. This is the one operation that fully
// synchronizes the cache in a single step.
func (s *Service) ListAll(ctx context.Context) ([]domain.OrderView, error) {
	s.cache.Clear()
	rows, err := s.storage.SelectAll(ctx)
	if err != nil {
		s.logger.Error("order listing failed", zap.Error(err))
		return nil, err
	}

	for _, row := range rows {
		o := domain.Order{
			ID:     row.ID,
			Client: row.Client,
			Date:   formatDate(row.Date),
			Items:  row.Items,
		}
		o.Normalize()
		s.cache.Append(o)
	}

	cached := s.cache.ListAll()
	out := make([]domain.OrderView, 0, len(cached))
	for i := range cached {
		out = append(out, cached[i].View())
	}
	return out, nil
}

// ExportAll walks the store fresh, independent of cache state.
func (s *Service) ExportAll(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.storage.SelectAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Order{
			ID:     row.ID,
			Client: row.Client,
			Date:   formatDate(row.Date),
			Items:  row.Items,
		})
	}
	return out, nil
}

// ImportReplacing repopulates the cache from the given sequence; the store
// is untouched.
func (s *Service) ImportReplacing(orders []domain.Order) int {
	s.cache.Clear()
	for _, o := range orders {
		s.cache.Append(o)
	}
	s.logger.Info("order cache imported", zap.Int("count", len(orders)))
	return len(orders)
}
