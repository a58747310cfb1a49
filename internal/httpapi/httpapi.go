package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Tato-23/TareaTiendaOnline/internal/application/catalog"
	"github.com/Tato-23/TareaTiendaOnline/internal/application/orders"
	"github.com/Tato-23/TareaTiendaOnline/internal/config"
	"github.com/Tato-23/TareaTiendaOnline/internal/domain"
	"github.com/Tato-23/TareaTiendaOnline/internal/observability"
	"github.com/Tato-23/TareaTiendaOnline/internal/snapshot"
)

//go:generate mockgen -source=httpapi.go -destination=mock_test.go -package=httpapi

type Catalog interface {
	LookupByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, in catalog.CreateProduct) (int64, error)
	ExportAscending(ctx context.Context) ([]domain.Product, error)
	ImportReplacing(products []domain.Product) int
}

type Orders interface {
	LookupByID(ctx context.Context, id int64) (*domain.OrderView, error)
	Create(ctx context.Context, in orders.OrderInput) (int64, error)
	Update(ctx context.Context, id int64, in orders.OrderInput) error
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]domain.OrderView, error)
	ExportAll(ctx context.Context) ([]domain.Order, error)
	ImportReplacing(orders []domain.Order) int
}

type Server struct {
	catalog   Catalog
	orders    Orders
	snapshots config.Snapshot
	router    chi.Router
	logger    *zap.Logger
	metrics   observability.Metrics
}

func New(cat Catalog, ord Orders, snapshots config.Snapshot, logger *zap.Logger, metrics observability.Metrics) *Server {
	s := &Server{
		catalog:   cat,
		orders:    ord,
		snapshots: snapshots,
		router:    chi.NewRouter(),
		logger:    logger,
		metrics:   metrics,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		ServerTimingApp(s.metrics),
	)

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.router.Post("/products", s.createProduct)
	s.router.Get("/products/{product_id}", s.getProduct)

	s.router.Get("/pedidos", s.listOrders)
	s.router.Post("/pedidos", s.createOrder)
	s.router.Get("/pedidos/{pedido_id}", s.getOrder)
	s.router.Put("/pedidos/{pedido_id}", s.updateOrder)
	s.router.Delete("/pedidos/{pedido_id}", s.deleteOrder)

	s.router.Get("/export/productos", s.exportProducts)
	s.router.Post("/import/productos", s.importProducts)
	s.router.Get("/export/pedidos", s.exportOrders)
	s.router.Post("/import/pedidos", s.importOrders)
}

type productRequest struct {
	Nombre      string   `json:"nombre"`
	Precio      *float64 `json:"precio"`
	Descripcion string   `json:"descripcion"`
	Stock       *int     `json:"stock"`
}

type orderRequest struct {
	Cliente     string            `json:"cliente"`
	FechaPedido string            `json:"fecha_pedido"`
	Productos   []domain.LineItem `json:"productos"`
}

type createdResponse struct {
	Message   string `json:"message"`
	ProductID int64  `json:"product_id,omitempty"`
	PedidoID  int64  `json:"pedido_id,omitempty"`
}

type snapshotResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !s.decode(w, r, &req) {
		return
	}

	id, err := s.catalog.Create(r.Context(), catalog.CreateProduct{
		Name:        req.Nombre,
		Price:       req.Precio,
		Description: req.Descripcion,
		Stock:       req.Stock,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, createdResponse{Message: "product created", ProductID: id})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "product_id")
	if !ok {
		return
	}
	p, err := s.catalog.LookupByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, p)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "pedido_id")
	if !ok {
		return
	}
	o, err := s.orders.LookupByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, o)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	out, err := s.orders.ListAll(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if out == nil {
		out = []domain.OrderView{}
	}
	writeJSON(w, out)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !s.decode(w, r, &req) {
		return
	}

	id, err := s.orders.Create(r.Context(), orders.OrderInput{
		Client: req.Cliente,
		Date:   req.FechaPedido,
		Items:  req.Productos,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, createdResponse{Message: "order created", PedidoID: id})
}

func (s *Server) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "pedido_id")
	if !ok {
		return
	}
	var req orderRequest
	if !s.decode(w, r, &req) {
		return
	}

	err := s.orders.Update(r.Context(), id, orders.OrderInput{
		Client: req.Cliente,
		Date:   req.FechaPedido,
		Items:  req.Productos,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, createdResponse{Message: "order updated", PedidoID: id})
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "pedido_id")
	if !ok {
		return
	}
	if err := s.orders.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, createdResponse{Message: "order deleted", PedidoID: id})
}

func (s *Server) exportProducts(w http.ResponseWriter, r *http.Request) {
	seq, err := s.catalog.ExportAscending(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := snapshot.Write(s.snapshots.Products, seq); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, snapshotResponse{Message: "products exported", Count: len(seq)})
}

func (s *Server) importProducts(w http.ResponseWriter, r *http.Request) {
	var seq []domain.Product
	if err := snapshot.Read(s.snapshots.Products, &seq); err != nil {
		s.writeError(w, err)
		return
	}
	n := s.catalog.ImportReplacing(seq)
	writeJSON(w, snapshotResponse{Message: "products imported", Count: n})
}

func (s *Server) exportOrders(w http.ResponseWriter, r *http.Request) {
	seq, err := s.orders.ExportAll(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := snapshot.Write(s.snapshots.Orders, seq); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, snapshotResponse{Message: "orders exported", Count: len(seq)})
}

func (s *Server) importOrders(w http.ResponseWriter, r *http.Request) {
	var seq []domain.Order
	if err := snapshot.Read(s.snapshots.Orders, &seq); err != nil {
		s.writeError(w, err)
		return
	}
	n := s.orders.ImportReplacing(seq)
	writeJSON(w, snapshotResponse{Message: "orders imported", Count: n})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Error("bad request body", zap.Error(err))
		http.Error(w, "bad json", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		http.Error(w, verr.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrBadTimestamp):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		s.logger.Error("request failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil {
		http.Error(w, key+" must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	return srv.ListenAndServe()
}

func (s *Server) Handler() http.Handler { return s.router }
