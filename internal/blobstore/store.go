package blobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-dashboard/internal/weather"
	"github.com/vzahanych/weather-dashboard/pkg/telemetry"
)

const ContentTypeJSON = "application/json"

var (
	ErrNoObservation  = errors.New("no observation to save")
	ErrBucketNotExist = errors.New("bucket does not exist")
	ErrInvalidKey     = errors.New("invalid object key")
)

// Backend is the storage service the store writes through.
type Backend interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	CreateBucket(ctx context.Context, bucket string) error
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error
	Name() string
}

type ContainerState string

const (
	ContainerExists  ContainerState = "exists"
	ContainerCreated ContainerState = "created"
	ContainerFailed  ContainerState = "failed"
)

type ContainerResult struct {
	Bucket string
	State  ContainerState
	// CreateAttempted is set once the lookup reported the bucket missing.
	CreateAttempted bool
	Err             error
}

func (r ContainerResult) OK() bool {
	return r.Err == nil
}

type SaveResult struct {
	City      string
	Key       string
	Timestamp string
	Err       error
}

func (r SaveResult) OK() bool {
	return r.Err == nil
}

type Store struct {
	backend Backend
	bucket  string
	prefix  string
	logger  *zap.Logger
	tele    *telemetry.Telemetry
	now     func() time.Time
}

func NewStore(backend Backend, bucket, prefix string, logger *zap.Logger, tele *telemetry.Telemetry) *Store {
	return &Store{
		backend: backend,
		bucket:  bucket,
		prefix:  prefix,
		logger:  logger.With(zap.String("bucket", bucket), zap.String("backend", backend.Name())),
		tele:    tele,
		now:     time.Now,
	}
}

func (s *Store) Bucket() string {
	return s.bucket
}

func (s *Store) BackendName() string {
	return s.backend.Name()
}

// EnsureContainer creates the bucket when the lookup reports it missing. Failures end up in the
// result; the caller carries on either way.
func (s *Store) EnsureContainer(ctx context.Context) ContainerResult {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "blobstore.EnsureContainer")
	defer span.End()

	res := ContainerResult{Bucket: s.bucket}

	exists, err := s.backend.BucketExists(ctx, s.bucket)
	if err != nil {
		res.State, res.Err = ContainerFailed, fmt.Errorf("lookup bucket %s: %w", s.bucket, err)
	} else if exists {
		res.State = ContainerExists
	} else {
		res.CreateAttempted = true
		if err := s.backend.CreateBucket(ctx, s.bucket); err != nil {
			res.State, res.Err = ContainerFailed, fmt.Errorf("create bucket %s: %w", s.bucket, err)
		} else {
			res.State = ContainerCreated
		}
	}

	span.SetAttributes(attribute.String("state", string(res.State)))
	if res.Err != nil {
		span.RecordError(res.Err)
		s.logger.Error("Error checking/creating bucket", zap.Error(res.Err))
	} else {
		s.logger.Info("Bucket ready", zap.String("state", string(res.State)))
	}

	return res
}

// Save stamps the observation with the current time and uploads it under
// {prefix}/{city}-{timestamp}.json.
func (s *Store) Save(ctx context.Context, obs *weather.Observation, city string) SaveResult {
	res := SaveResult{City: city}
	if obs == nil {
		res.Err = ErrNoObservation
		return res
	}

	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "blobstore.Save")
	defer span.End()

	res.Timestamp = weather.FormatTimestamp(s.now())
	res.Key = ObjectKey(s.prefix, city, res.Timestamp)

	span.SetAttributes(
		attribute.String("city", city),
		attribute.String("key", res.Key),
	)

	obs.Stamp(res.Timestamp)

	data, err := json.Marshal(obs)
	if err != nil {
		res.Err = fmt.Errorf("encode observation: %w", err)
	} else if err := s.backend.Upload(ctx, s.bucket, res.Key, data, ContentTypeJSON); err != nil {
		res.Err = fmt.Errorf("upload %s: %w", res.Key, err)
	}

	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetAttributes(attribute.Bool("success", false))
		s.logger.Error("Error saving observation",
			zap.String("city", city),
			zap.String("key", res.Key),
			zap.Error(res.Err))
		return res
	}

	span.SetAttributes(attribute.Bool("success", true))
	s.logger.Info("Saved observation",
		zap.String("city", city),
		zap.String("key", res.Key),
		zap.Int("bytes", len(data)))

	return res
}

func ObjectKey(prefix, city, timestamp string) string {
	return fmt.Sprintf("%s/%s-%s.json", prefix, city, timestamp)
}
