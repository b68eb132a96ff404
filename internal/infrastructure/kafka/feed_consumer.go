// Package kafka consume el feed de stock publicado en un tópico Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/pkg/config"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

const defaultRetryDelay = 2 * time.Second

// MessageReader subconjunto de *kafka.Reader que usa el consumidor (commit manual de offsets).
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// StockReconciler aplica un lote de stock (implementado por inventory.ReconcileStockUseCase).
type StockReconciler interface {
	ReconcileStockFromRequest(ctx context.Context, in []dto.StockRecordRequest) (*dto.ReconcileResponse, error)
}

// NewReader crea el reader de kafka-go con consumer group; los offsets se confirman manualmente.
func NewReader(cfg config.KafkaConfig) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// FeedConsumer lee lotes del tópico y los concilia uno a uno.
// Cada mensaje es un arreglo JSON de dto.StockRecordRequest.
type FeedConsumer struct {
	reader     MessageReader
	reconciler StockReconciler
	log        *logger.Logger
	retryDelay time.Duration
}

// NewFeedConsumer construye el consumidor.
func NewFeedConsumer(reader MessageReader, reconciler StockReconciler, log *logger.Logger) *FeedConsumer {
	if log == nil {
		log = logger.Nop()
	}
	return &FeedConsumer{
		reader:     reader,
		reconciler: reconciler,
		log:        log,
		retryDelay: defaultRetryDelay,
	}
}

// Run procesa mensajes hasta que ctx se cancele o el reader se cierre.
//
// El offset se confirma solo cuando el lote quedó aplicado o cuando el mensaje es irrecuperable
// (JSON inválido o datos rechazados); un error del almacén reintenta el mismo mensaje sin confirmar.
func (c *FeedConsumer) Run(ctx context.Context) error {
	c.log.Info().Msg("consumidor del feed de stock iniciado")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				c.log.Info().Msg("consumidor del feed de stock detenido")
				return nil
			}
			c.log.Error().Err(err).Msg("leer mensaje de Kafka")
			if !c.wait(ctx) {
				return nil
			}
			continue
		}

		if !c.process(ctx, msg) {
			return nil
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error().Err(err).Int64("offset", msg.Offset).Msg("confirmar offset")
		}
	}
}

// Close cierra el reader subyacente.
func (c *FeedConsumer) Close() error {
	return c.reader.Close()
}

// process devuelve false solo si ctx se canceló antes de aplicar el mensaje.
func (c *FeedConsumer) process(ctx context.Context, msg kafkago.Message) bool {
	var records []dto.StockRecordRequest
	if err := json.Unmarshal(msg.Value, &records); err != nil {
		c.log.Warn().Err(err).
			Int("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("mensaje del feed descartado: JSON inválido")
		return true
	}

	for {
		res, err := c.reconciler.ReconcileStockFromRequest(ctx, records)
		if err == nil {
			c.log.Info().
				Str("batch_id", res.BatchID).
				Int64("offset", msg.Offset).
				Int("created", res.Created).
				Int("updated", res.Updated).
				Msg("lote del feed aplicado")
			return true
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			c.log.Warn().Err(err).Int64("offset", msg.Offset).Msg("mensaje del feed descartado: lote inválido")
			return true
		}
		c.log.Error().Err(err).Int64("offset", msg.Offset).Msg("aplicar lote del feed; se reintenta")
		if !c.wait(ctx) {
			return false
		}
	}
}

func (c *FeedConsumer) wait(ctx context.Context) bool {
	t := time.NewTimer(c.retryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
