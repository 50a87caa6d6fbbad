package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/fit-tracker/internal/logger"
	"github.com/sbilibin2017/fit-tracker/internal/models"
)

// Error variables
var (
	ErrDatapointExists   = errors.New("a datapoint is already recorded for this date")
	ErrDatapointNotFound = errors.New("no datapoint found")
)

// DatapointReader defines read-only operations for one metric family.
type DatapointReader interface {
	List(ctx context.Context, ownerID int64, limit, offset int) ([]models.DatapointDB, error)
	GetByDate(ctx context.Context, ownerID int64, date time.Time) (*models.DatapointDB, error)
}

// DatapointWriter defines write operations for one metric family.
type DatapointWriter interface {
	Save(ctx context.Context, ownerID int64, date time.Time, value float64, name *string, reps *int64) (*models.DatapointDB, error)
	UpdateByDate(ctx context.Context, ownerID int64, date time.Time, value float64, name *string, reps *int64) (*models.DatapointDB, error)
	DeleteByDate(ctx context.Context, ownerID int64, date time.Time) (int64, error)
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// sampleRecordedEvent is published after a sample is stored.
type sampleRecordedEvent struct {
	Metric    string  `json:"metric"`
	OwnerID   int64   `json:"owner_id"`
	Date      string  `json:"date"`
	Datapoint float64 `json:"datapoint"`
}

// DatapointService implements the shared semantics of all four metric
// families (weight, calories, steps, exercise). One instance per family,
// parameterized by the family's metric descriptor.
type DatapointService struct {
	metric      models.Metric
	reader      DatapointReader
	writer      DatapointWriter
	kafkaWriter KafkaWriter
}

// NewDatapointService creates a new DatapointService. The Kafka writer may
// be nil, in which case events are skipped.
func NewDatapointService(metric models.Metric, reader DatapointReader, writer DatapointWriter, kafkaWriter KafkaWriter) *DatapointService {
	return &DatapointService{
		metric:      metric,
		reader:      reader,
		writer:      writer,
		kafkaWriter: kafkaWriter,
	}
}

// Metric returns the family descriptor this service was built with.
func (s *DatapointService) Metric() models.Metric {
	return s.metric
}

// List returns the owner's samples; an empty page is ErrDatapointNotFound,
// matching the API's 404-on-empty contract.
func (s *DatapointService) List(ctx context.Context, ownerID int64, limit, offset int) ([]models.DatapointDB, error) {
	entries, err := s.reader.List(ctx, ownerID, limit, offset)
	if err != nil {
		logger.Log.Errorw("failed to list datapoints", "metric", s.metric.Name, "err", err)
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrDatapointNotFound
	}
	return entries, nil
}

// Get returns the owner's sample for the given day.
func (s *DatapointService) Get(ctx context.Context, ownerID int64, date time.Time) (*models.DatapointDB, error) {
	entry, err := s.reader.GetByDate(ctx, ownerID, date)
	if err != nil {
		logger.Log.Errorw("failed to get datapoint", "metric", s.metric.Name, "err", err)
		return nil, err
	}
	if entry == nil {
		return nil, ErrDatapointNotFound
	}
	return entry, nil
}

// Create records a sample for the given day. At most one sample per
// (owner, date) is allowed; a duplicate is rejected and the existing row is
// left untouched. The check and insert share the request transaction.
func (s *DatapointService) Create(ctx context.Context, ownerID int64, date time.Time, value float64, name *string, reps *int64) (*models.DatapointDB, error) {
	existing, err := s.reader.GetByDate(ctx, ownerID, date)
	if err != nil {
		logger.Log.Errorw("failed to check existing datapoint", "metric", s.metric.Name, "err", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrDatapointExists
	}

	entry, err := s.writer.Save(ctx, ownerID, date, value, name, reps)
	if err != nil {
		logger.Log.Errorw("failed to save datapoint", "metric", s.metric.Name, "err", err)
		return nil, err
	}

	s.publishSample(ctx, entry)

	return entry, nil
}

// Update replaces the owner's sample for the given day.
func (s *DatapointService) Update(ctx context.Context, ownerID int64, date time.Time, value float64, name *string, reps *int64) (*models.DatapointDB, error) {
	entry, err := s.writer.UpdateByDate(ctx, ownerID, date, value, name, reps)
	if err != nil {
		logger.Log.Errorw("failed to update datapoint", "metric", s.metric.Name, "err", err)
		return nil, err
	}
	if entry == nil {
		return nil, ErrDatapointNotFound
	}
	return entry, nil
}

// Delete removes the owner's sample for the given day.
func (s *DatapointService) Delete(ctx context.Context, ownerID int64, date time.Time) error {
	affected, err := s.writer.DeleteByDate(ctx, ownerID, date)
	if err != nil {
		logger.Log.Errorw("failed to delete datapoint", "metric", s.metric.Name, "err", err)
		return err
	}
	if affected == 0 {
		return ErrDatapointNotFound
	}
	return nil
}

// publishSample publishes a sample-recorded event to Kafka. Publishing is
// best effort: failures are logged, never surfaced to the caller.
func (s *DatapointService) publishSample(ctx context.Context, entry *models.DatapointDB) {
	if s.kafkaWriter == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "metric", s.metric.Name)
		return
	}

	event := sampleRecordedEvent{
		Metric:    s.metric.Name,
		OwnerID:   entry.OwnerID,
		Date:      entry.Date.Format("2006-01-02"),
		Datapoint: entry.Datapoint,
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal sample event", "metric", s.metric.Name, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(s.metric.Name),
		Value: data,
	}
	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish sample event", "metric", s.metric.Name, "error", err)
		return
	}

	logger.Log.Infow("sample event published", "metric", s.metric.Name, "owner_id", entry.OwnerID)
}
