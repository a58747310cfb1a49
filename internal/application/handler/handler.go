package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Tato-23/TareaTiendaOnline/internal/application/orders"
	"github.com/Tato-23/TareaTiendaOnline/internal/config"
	"github.com/Tato-23/TareaTiendaOnline/internal/domain"
	"github.com/Tato-23/TareaTiendaOnline/internal/observability"
	"github.com/Tato-23/TareaTiendaOnline/internal/pkg/retry"
)

//go:generate mockgen -source=handler.go -destination=mock_test.go -package=handler

var (
	ErrBadJSON     = errors.New("bad json")
	ErrCreate      = errors.New("order create failed")
	ErrCircuitOpen = errors.New("circuit breaker open")
)

type Orders interface {
	Create(ctx context.Context, in orders.OrderInput) (int64, error)
}

type Gate interface {
	Allow() error
	Success()
	Failure()
}

type orderMessage struct {
	Cliente     string            `json:"cliente"`
	FechaPedido string            `json:"fecha_pedido"`
	Productos   []domain.LineItem `json:"productos"`
}

type Handler struct {
	orders      Orders
	gate        Gate
	retryPolicy config.Retry
	logger      *zap.Logger
	metrics     observability.Metrics
}

func NewHandler(ord Orders, gate Gate, retryPolicy config.Retry, logger *zap.Logger, metrics observability.Metrics) *Handler {
	return &Handler{
		orders:      ord,
		gate:        gate,
		retryPolicy: retryPolicy,
		logger:      logger,
		metrics:     metrics,
	}
}

// Handle processes one order-create message. The consumer commits the offset
// only after Handle returns nil.
func (h *Handler) Handle(ctx context.Context, message kafkago.Message) error {
	start := time.Now()

	if err := h.gate.Allow(); err != nil {
		h.logger.Warn("circuit breaker is open",
			zap.Error(err),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}

	var msg orderMessage
	if err := json.Unmarshal(message.Value, &msg); err != nil {
		h.logger.Error("bad json format",
			zap.Error(err),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		h.gate.Failure()
		h.metrics.ObserveIngest(msSince(start), false)
		return ErrBadJSON
	}

	var id int64
	err := retry.Do(ctx, h.retryPolicy, func() error {
		var cerr error
		id, cerr = h.orders.Create(ctx, orders.OrderInput{
			Client: msg.Cliente,
			Date:   msg.FechaPedido,
			Items:  msg.Productos,
		})
		return cerr
	})
	if err != nil {
		// Invalid payloads fail deterministically; they say nothing about the
		// store's health, so the gate stays untouched.
		var verr *domain.ValidationError
		if errors.As(err, &verr) || errors.Is(err, domain.ErrBadTimestamp) {
			h.logger.Error("rejecting invalid order message",
				zap.Error(err),
				zap.Int("partition", message.Partition),
				zap.Int64("offset", message.Offset),
			)
			h.metrics.ObserveIngest(msSince(start), false)
			return ErrBadJSON
		}

		h.logger.Error("order create failed after retries",
			zap.Error(err),
			zap.String("cliente", msg.Cliente),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		h.gate.Failure()
		h.metrics.ObserveIngest(msSince(start), false)
		return ErrCreate
	}

	h.gate.Success()
	h.metrics.ObserveIngest(msSince(start), true)
	h.logger.Info("order ingested",
		zap.Int64("pedido_id", id),
		zap.String("cliente", msg.Cliente),
		zap.Int("partition", message.Partition),
		zap.Int64("offset", message.Offset),
		zap.Int("value_bytes", len(message.Value)),
	)
	return nil
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
