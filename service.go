package imagestore

import (
	"context"
	"net/url"

	"github.com/mwantia/imagestore/data"
	"github.com/mwantia/imagestore/driver"
	"github.com/mwantia/imagestore/event"
	"github.com/mwantia/imagestore/log"
	"github.com/mwantia/imagestore/resource"
)

// Service wires one image driver, the event dispatcher and the images
// resource together. Construction is explicit: the driver instance is passed
// in, never looked up from ambient state.
type Service struct {
	driver driver.ImageDriver
	events *event.Dispatcher
	images *resource.Images
	logger *log.Logger
}

// New creates a service around the given driver and attaches the store
// handler to the db.images.load topic. Additional listeners may be attached
// through Events before the first request.
func New(drv driver.ImageDriver, opts ...ServiceOption) (*Service, error) {
	options := newDefaultServiceOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	events := event.NewDispatcher()
	service := &Service{
		driver: drv,
		events: events,
		images: resource.NewImages(events),
		logger: log.NewLogger("imagestore", options.LogLevel, options.LogFile, options.NoTerminalLog),
	}

	events.Attach(event.TopicImagesLoad, service.loadImages)

	return service, nil
}

// Events exposes the dispatcher so cross-cutting listeners can attach to
// named topics.
func (s *Service) Events() *event.Dispatcher {
	return s.events
}

// Open prepares the underlying driver for use.
func (s *Service) Open(ctx context.Context) error {
	if err := s.driver.Open(ctx); err != nil {
		s.logger.Error("Failed to open driver '%s': %v", s.driver.Name(), err)
		return err
	}

	if !s.driver.Capabilities().Contains(driver.CapabilityMetadataQuery) {
		s.logger.Warn("Driver '%s' has no native metadata querying; searches scan the full record set", s.driver.Name())
	}

	s.logger.Info("Opened driver '%s'", s.driver.Name())
	return nil
}

// Close releases the underlying driver.
func (s *Service) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// loadImages is the store handler attached to db.images.load. It executes the
// query the resource built and writes the result list and its freshness
// marker back into the shared event context.
func (s *Service) loadImages(ctx context.Context, e *event.Event) error {
	query := e.Query
	if query == nil {
		query = data.NewQuery()
	}

	records, err := s.driver.Search(ctx, query)
	if err != nil {
		return err
	}

	e.Response.Images = records
	e.Response.LastModified = data.LastModified(records)
	return nil
}

// ListImages runs the full listing flow for the given request parameters and
// returns the populated response: body, ETag and freshness marker.
func (s *Service) ListImages(ctx context.Context, params url.Values) (*event.Response, error) {
	e := event.NewEvent(params)
	if err := s.images.Get(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Debug("Listed %d images", len(e.Response.Images))
	return e.Response, nil
}

// HeadImages runs the same flow as ListImages and discards the body while
// keeping the headers.
func (s *Service) HeadImages(ctx context.Context, params url.Values) (*event.Response, error) {
	e := event.NewEvent(params)
	if err := s.images.Head(ctx, e); err != nil {
		return nil, err
	}

	return e.Response, nil
}

// InsertImage stores a new record and notifies db.image.added listeners.
func (s *Service) InsertImage(ctx context.Context, identifier string, record *data.ImageRecord) error {
	if err := s.driver.Insert(ctx, identifier, record); err != nil {
		return err
	}

	s.logger.Debug("Inserted image '%s'", identifier)
	return s.trigger(ctx, event.TopicImageAdded, identifier)
}

// DeleteImage removes a record and notifies db.image.removed listeners.
func (s *Service) DeleteImage(ctx context.Context, identifier string) error {
	if err := s.driver.Delete(ctx, identifier); err != nil {
		return err
	}

	s.logger.Debug("Deleted image '%s'", identifier)
	return s.trigger(ctx, event.TopicImageRemoved, identifier)
}

// LoadImage returns the core fields of one record.
func (s *Service) LoadImage(ctx context.Context, identifier string) (*data.ImageRecord, error) {
	return s.driver.Load(ctx, identifier)
}

// ReplaceImageMetadata replaces the whole metadata map of a record and
// notifies db.image.metadata.updated listeners.
func (s *Service) ReplaceImageMetadata(ctx context.Context, identifier string, metadata data.Metadata) error {
	if err := s.driver.ReplaceMetadata(ctx, identifier, metadata); err != nil {
		return err
	}

	return s.trigger(ctx, event.TopicImageMetadataUpdated, identifier)
}

// GetImageMetadata returns the metadata map of a record.
func (s *Service) GetImageMetadata(ctx context.Context, identifier string) (data.Metadata, error) {
	return s.driver.GetMetadata(ctx, identifier)
}

// ClearImageMetadata removes all metadata of a record and notifies
// db.image.metadata.updated listeners.
func (s *Service) ClearImageMetadata(ctx context.Context, identifier string) error {
	if err := s.driver.ClearMetadata(ctx, identifier); err != nil {
		return err
	}

	return s.trigger(ctx, event.TopicImageMetadataUpdated, identifier)
}

func (s *Service) trigger(ctx context.Context, topic, identifier string) error {
	e := event.NewEvent(nil)
	e.Identifier = identifier

	return s.events.Trigger(ctx, topic, e)
}
