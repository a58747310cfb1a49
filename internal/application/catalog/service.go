// Package catalog binds the in-memory product index to the product table.
package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Tato-23/TareaTiendaOnline/internal/domain"
	"github.com/Tato-23/TareaTiendaOnline/internal/index"
	"github.com/Tato-23/TareaTiendaOnline/internal/observability"
)

//go:generate mockgen -source=service.go -destination=mock_test.go -package=catalog

type Storage interface {
	SelectAll(ctx context.Context) ([]domain.Product, error)
	Insert(ctx context.Context, p domain.Product) (int64, error)
}

// CreateProduct carries a creation request. Pointer-typed numerics
// distinguish "absent" from a legitimate zero.
type CreateProduct struct {
	Name        string
	Price       *float64
	Description string
	Stock       *int
}

type Service struct {
	index   *index.Index
	storage Storage
	logger  *zap.Logger
	metrics observability.Metrics
}

func NewService(idx *index.Index, storage Storage, logger *zap.Logger, metrics observability.Metrics) *Service {
	return &Service{
		index:   idx,
		storage: storage,
		logger:  logger,
		metrics: metrics,
	}
}

// reload pours the whole product table into the index. The index is NOT
// cleared first: lookups deliberately work against the enlarged, possibly
// duplicate-holding tree so that they always see store state as of the
// reload. Callers that need a clean tree clear it themselves.
func (s *Service) reload(ctx context.Context) (int, error) {
	t0 := time.Now()
	rows, err := s.storage.SelectAll(ctx)
	if err != nil {
		s.logger.Error("catalog reload failed", zap.Error(err))
		return 0, err
	}
	for _, p := range rows {
		s.index.Insert(p)
	}
	s.metrics.ObserveReload(len(rows), float64(time.Since(t0).Microseconds())/1000.0)
	return len(rows), nil
}

// LookupByID reloads the index from the store and then searches it, so the
// answer is consistent with store state at the time of the call.
func (s *Service) LookupByID(ctx context.Context, id int64) (*domain.Product, error) {
	n, err := s.reload(ctx)
	if err != nil {
		return nil, err
	}

	p := s.index.Find(id)
	if p == nil {
		s.logger.Info("product not found",
			zap.Int64("product_id", id),
			zap.Int("reloaded_rows", n),
		)
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// Create validates the request, inserts the row, and appends only the new
// product to the resident index. No reload happens here, so the index may
// lag concurrent external writes until the next lookup.
func (s *Service) Create(ctx context.Context, in CreateProduct) (int64, error) {
	var missing []string
	if in.Name == "" {
		missing = append(missing, "nombre")
	}
	if in.Price == nil {
		missing = append(missing, "precio")
	}
	if in.Description == "" {
		missing = append(missing, "descripcion")
	}
	if in.Stock == nil {
		missing = append(missing, "stock")
	}
	if len(missing) > 0 {
		return 0, &domain.ValidationError{Missing: missing}
	}

	p := domain.Product{
		Name:        in.Name,
		Price:       *in.Price,
		Description: in.Description,
		Stock:       *in.Stock,
	}
	id, err := s.storage.Insert(ctx, p)
	if err != nil {
		s.logger.Error("product insert failed", zap.Error(err))
		return 0, err
	}
	p.ID = id
	s.index.Insert(p)

	s.logger.Info("product created",
		zap.Int64("product_id", id),
		zap.String("nombre", p.Name),
	)
	return id, nil
}

// ExportAscending rebuilds the index from scratch and returns the in-order
// walk: the authoritative ascending snapshot for external persistence.
func (s *Service) ExportAscending(ctx context.Context) ([]domain.Product, error) {
	s.index.Clear()
	if _, err := s.reload(ctx); err != nil {
		return nil, err
	}
	return s.index.InOrder(), nil
}

// ImportReplacing repopulates the index from the given sequence. The store
// is untouched; duplicate ids in the input shadow each other in the tree.
func (s *Service) ImportReplacing(products []domain.Product) int {
	s.index.Clear()
	for _, p := range products {
		s.index.Insert(p)
	}
	s.logger.Info("product index imported", zap.Int("count", len(products)))
	return len(products)
}
