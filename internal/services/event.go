package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"eventcalendar/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	images         domain.ImageStore
	policy         domain.WritePolicy
	contextTimeout time.Duration
	logger         *slog.Logger
}

// NewEventService returns the EventService. images may be nil, in which case
// requests carrying an image are rejected.
func NewEventService(eventRepo domain.EventRepository,
	images domain.ImageStore,
	policy domain.WritePolicy,
	timeout time.Duration,
	logger *slog.Logger,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		images:         images,
		policy:         policy,
		contextTimeout: timeout,
		logger:         logger,
	}
}

func (s *eventService) ListEvents(ctx context.Context, p domain.Principal, filter domain.EventFilter) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	q, err := domain.BuildEventQuery(p, filter)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *eventService) ListPublicEvents(ctx context.Context, city string) ([]*domain.PublicEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx, domain.PublicEventQuery(city))
	if err != nil {
		return nil, fmt.Errorf("list public events: %w", err)
	}
	out := make([]*domain.PublicEvent, 0, len(events))
	for _, e := range events {
		out = append(out, e.Public())
	}
	return out, nil
}

func (s *eventService) GetEvent(ctx context.Context, p domain.Principal, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanRead(p, e) {
		return nil, domain.ErrForbidden
	}
	return e, nil
}

func (s *eventService) CreateEvent(ctx context.Context, p domain.Principal, in domain.EventInput, image *domain.ImageUpload) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.CanCreate(p, s.policy) {
		return nil, domain.ErrForbidden
	}
	e, err := domain.ValidateEvent(in, nil)
	if err != nil {
		return nil, err
	}
	e.CreatedBy = p.UserID
	if image == nil {
		if err := s.checkImageURL(e, ""); err != nil {
			return nil, err
		}
	}

	uploaded, err := s.upload(ctx, e, image)
	if err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, e); err != nil {
		s.discard(ctx, uploaded)
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.InfoContext(ctx, "event created", "id", e.ID, "createdBy", e.CreatedBy)
	return e, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, p domain.Principal, id string, in domain.EventInput, image *domain.ImageUpload) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanWrite(p, current, s.policy) {
		return nil, domain.ErrForbidden
	}
	e, err := domain.ValidateEvent(in, current)
	if err != nil {
		return nil, err
	}
	if image == nil {
		if err := s.checkImageURL(e, current.ImageURL); err != nil {
			return nil, err
		}
	}

	uploaded, err := s.upload(ctx, e, image)
	if err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		s.discard(ctx, uploaded)
		return nil, fmt.Errorf("update event: %w", err)
	}
	if current.ImageURL != "" && current.ImageURL != e.ImageURL {
		s.discard(ctx, current.ImageURL)
	}
	return e, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, p domain.Principal, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanWrite(p, current, s.policy) {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if current.ImageURL != "" {
		s.discard(ctx, current.ImageURL)
	}
	s.logger.InfoContext(ctx, "event deleted", "id", id)
	return nil
}

// load fetches an event by id. Ids that are not UUIDs cannot exist.
func (s *eventService) load(ctx context.Context, id string) (*domain.Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// checkImageURL rejects a client-supplied URL that points into the image store
// unless it is the event's current image; such objects belong to other events.
func (s *eventService) checkImageURL(e *domain.Event, current string) error {
	if s.images == nil || e.ImageURL == "" || e.ImageURL == current || !s.images.Owns(e.ImageURL) {
		return nil
	}
	return domain.NewValidationError("imageUrl", "Image URL cannot reference an uploaded image; upload a file instead")
}

// upload stores image and points e at it. It returns the new URL, or "" when
// there was nothing to upload.
func (s *eventService) upload(ctx context.Context, e *domain.Event, image *domain.ImageUpload) (string, error) {
	if image == nil {
		return "", nil
	}
	if s.images == nil {
		return "", domain.NewValidationError("image", "Image uploads are not enabled")
	}
	url, err := s.images.Upload(ctx, e.Title, image)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	e.ImageURL = url
	return url, nil
}

// discard removes an image that is no longer referenced. Failures are logged only.
func (s *eventService) discard(ctx context.Context, url string) {
	if url == "" || s.images == nil || !s.images.Owns(url) {
		return
	}
	// The request context may already be done; cleanup gets its own budget.
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.contextTimeout)
	defer cancel()
	if err := s.images.Delete(cctx, url); err != nil {
		s.logger.WarnContext(ctx, "failed to delete image", "url", url, "err", err)
	}
}
