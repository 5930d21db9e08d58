package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/analytics"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// MetricsListener keeps the daily sales metric current by recomputing it for
// the day of every order event.
type MetricsListener struct {
	consumer MessageReader
	uc       analytics.UseCase
	logger   logger.ZapLogger
}

func NewMetricsListener(consumer MessageReader, uc analytics.UseCase, logger logger.ZapLogger) *MetricsListener {
	return &MetricsListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *MetricsListener) Start(ctx context.Context) {
	l.logger.Info("Starting metrics Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping metrics Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *MetricsListener) processMessage(ctx context.Context, value []byte) {
	var event model.OrderEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	switch event.EventType {
	case model.EventOrderCreated, model.EventOrderConfirmed, model.EventOrderCancelled,
		model.EventOrderDeleted, model.EventOrderStatusChanged:
	default:
		return
	}
	if event.OrganizationID == "" || event.OrderDate.IsZero() {
		l.logger.Warn("Skipping incomplete order event", zap.String("event_id", event.EventID))
		return
	}

	_, err := l.uc.CalculateDailyMetrics(auth.System(ctx, event.OrganizationID), event.OrganizationID, event.OrderDate)
	if err != nil {
		l.logger.Error("Failed to recalculate daily metric",
			zap.String("order_id", event.OrderID),
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
	}
}
