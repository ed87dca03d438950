package portfolio

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repo   Repository
	images ImageStore
	locker Locker
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repo = repo
	}
}

// WithImageStore sets the image store. Without it the service keeps image
// bytes inline in the repository.
func WithImageStore(images ImageStore) Option {
	return func(s *service) {
		s.images = images
	}
}

// WithLocker sets the lock used to serialize screen and thumbnail mutations
func WithLocker(locker Locker) Option {
	return func(s *service) {
		s.locker = locker
	}
}

// WithLogger sets the service logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for createdAt/updatedAt
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithIDGenerator overrides how entity ids are generated
func WithIDGenerator(newID func() string) Option {
	return func(s *service) {
		s.newID = newID
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}

	for _, option := range options {
		option(s)
	}

	if s.repo == nil {
		return nil, errors.New("repository is required")
	}
	if s.images == nil {
		s.images = NewInlineImageStore(s.repo)
	}
	if s.locker == nil {
		s.locker = NewLocalLocker()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}
