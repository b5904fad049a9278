package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shipdesk/settlement-core/internal/apperrors"
	"github.com/shipdesk/settlement-core/internal/core/domain"
	portssvc "github.com/shipdesk/settlement-core/internal/core/ports/services"
	"github.com/shipdesk/settlement-core/internal/dto"
	"github.com/shopspring/decimal"
)

// feedUserID is stamped into audit fields for mutations driven by carrier
// event feeds.
const feedUserID = "system-carrier-feed"

// DeliveryEvent is the carrier feed payload for a delivered shipment.
type DeliveryEvent struct {
	AWB         string    `json:"awb"`
	DeliveredAt time.Time `json:"deliveredAt"`
}

// WeightReconciliationEvent is the carrier feed payload for a weight audit row.
type WeightReconciliationEvent struct {
	AWB             string          `json:"awb"`
	ClaimedWeight   decimal.Decimal `json:"claimedWeight"`
	CarrierWeight   decimal.Decimal `json:"carrierWeight"`
	DeductionAmount decimal.Decimal `json:"deductionAmount"`
	ReportDate      time.Time       `json:"reportDate"`
}

// Config selects the brokers and topics the consumer group reads.
type Config struct {
	Brokers       []string
	DeliveryTopic string
	WeightTopic   string
	GroupID       string
}

// Consumer reads carrier delivery and weight-reconciliation events and feeds
// them into the settlement services. Events are processed at-least-once;
// every downstream operation is idempotent, so redelivery is harmless.
type Consumer struct {
	deliveryReader *kafka.Reader
	weightReader   *kafka.Reader

	shipmentSvc   portssvc.ShipmentSvcFacade
	remittanceSvc portssvc.RemittanceSvcFacade
	disputeSvc    portssvc.DisputeSvcFacade
	logger        *slog.Logger

	wg sync.WaitGroup
}

// NewConsumer creates a consumer group over the delivery and weight topics.
func NewConsumer(cfg Config, shipmentSvc portssvc.ShipmentSvcFacade, remittanceSvc portssvc.RemittanceSvcFacade, disputeSvc portssvc.DisputeSvcFacade, logger *slog.Logger) *Consumer {
	return &Consumer{
		deliveryReader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			Topic:   cfg.DeliveryTopic,
			GroupID: cfg.GroupID,
		}),
		weightReader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			Topic:   cfg.WeightTopic,
			GroupID: cfg.GroupID,
		}),
		shipmentSvc:   shipmentSvc,
		remittanceSvc: remittanceSvc,
		disputeSvc:    disputeSvc,
		logger:        logger,
	}
}

// Start launches one goroutine per topic. Both exit when ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	c.wg.Add(2)
	go c.consumeDeliveries(ctx)
	go c.consumeWeightFacts(ctx)
	c.logger.Info("Kafka consumers started")
}

// Close stops both readers and waits for the consume loops to drain.
func (c *Consumer) Close() error {
	derr := c.deliveryReader.Close()
	werr := c.weightReader.Close()
	c.wg.Wait()
	if derr != nil {
		return derr
	}
	return werr
}

func (c *Consumer) consumeDeliveries(ctx context.Context) {
	defer c.wg.Done()
	for {
		msg, err := c.deliveryReader.ReadMessage(ctx)
		if err != nil {
			if isShutdown(ctx, err) {
				return
			}
			c.logger.Error("Failed to read delivery event", slog.String("error", err.Error()))
			continue
		}
		c.handleDelivery(ctx, msg.Value)
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, payload []byte) {
	var event DeliveryEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.logger.Error("Malformed delivery event, skipping", slog.String("error", err.Error()))
		return
	}
	if event.AWB == "" {
		c.logger.Error("Delivery event without awb, skipping")
		return
	}
	deliveredAt := event.DeliveredAt
	if deliveredAt.IsZero() {
		deliveredAt = time.Now().UTC()
	}

	shipment, err := c.shipmentSvc.MarkDelivered(ctx, event.AWB, deliveredAt, feedUserID)
	if err != nil {
		c.logger.Error("Failed to mark shipment delivered from feed",
			slog.String("awb", event.AWB), slog.String("error", err.Error()))
		return
	}

	// Prepaid shipments carry no COD to remit.
	if shipment.PaymentMode != domain.PaymentCOD {
		return
	}

	_, err = c.remittanceSvc.IngestEligibleShipment(ctx, event.AWB, feedUserID)
	if err != nil && !errors.Is(err, apperrors.ErrAlreadyProcessed) {
		c.logger.Error("Failed to queue delivered shipment for remittance",
			slog.String("awb", event.AWB), slog.String("error", err.Error()))
	}
}

func (c *Consumer) consumeWeightFacts(ctx context.Context) {
	defer c.wg.Done()
	for {
		msg, err := c.weightReader.ReadMessage(ctx)
		if err != nil {
			if isShutdown(ctx, err) {
				return
			}
			c.logger.Error("Failed to read weight reconciliation event", slog.String("error", err.Error()))
			continue
		}
		c.handleWeightFact(ctx, msg.Value)
	}
}

func (c *Consumer) handleWeightFact(ctx context.Context, payload []byte) {
	var event WeightReconciliationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.logger.Error("Malformed weight reconciliation event, skipping", slog.String("error", err.Error()))
		return
	}

	row := dto.WeightFactRow{
		AWB:             event.AWB,
		ClaimedWeight:   event.ClaimedWeight,
		CarrierWeight:   event.CarrierWeight,
		DeductionAmount: event.DeductionAmount,
	}
	if !event.ReportDate.IsZero() {
		row.ReportDate = &event.ReportDate
	}
	_, err := c.disputeSvc.IngestWeightFact(ctx, row, feedUserID)
	if err != nil && !errors.Is(err, apperrors.ErrAlreadyProcessed) && !errors.Is(err, apperrors.ErrValidation) {
		c.logger.Error("Failed to ingest weight fact from feed",
			slog.String("awb", event.AWB), slog.String("error", err.Error()))
	}
}

func isShutdown(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe)
}
