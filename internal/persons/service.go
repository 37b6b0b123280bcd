package persons

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const maxImageSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

// Upload carries a submitted image file.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Service validates and publishes reports and answers lookups.
type Service struct {
	store     Store
	uploadDir string
	lifetime  time.Duration
	clock     clockwork.Clock
	logger    *zap.SugaredLogger
}

// NewService creates a report service. lifetime controls how long a published
// report stays visible before the sweeper purges it.
func NewService(store Store, uploadDir string, lifetime time.Duration, logger *zap.SugaredLogger) *Service {
	return &Service{
		store:     store,
		uploadDir: uploadDir,
		lifetime:  lifetime,
		clock:     clockwork.NewRealClock(),
		logger:    logger,
	}
}

// SetClock swaps the time source. Tests inject a fake for deterministic
// publish and expiry timestamps.
func (s *Service) SetClock(c clockwork.Clock) {
	s.clock = c
}

// Publish validates the input, stores the image under a collision-free
// generated filename, and persists the report. Validation failures wrap
// ErrInvalidInput and leave nothing behind.
func (s *Service) Publish(ctx context.Context, name string, image Upload, lat, lon *float64) (*Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be blank", ErrInvalidInput)
	}
	if len(image.Data) == 0 {
		return nil, fmt.Errorf("%w: image file cannot be empty", ErrInvalidInput)
	}
	if _, ok := allowedImageTypes[image.ContentType]; !ok {
		return nil, fmt.Errorf("%w: only JPEG and PNG images are allowed", ErrInvalidInput)
	}
	if len(image.Data) > maxImageSize {
		return nil, fmt.Errorf("%w: image size must not exceed 5MB", ErrInvalidInput)
	}

	// The random prefix keeps two simultaneous publishes with the same
	// original filename from colliding on disk.
	filename := uuid.New().String() + "_" + filepath.Base(image.Filename)
	path := filepath.Join(s.uploadDir, filename)

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	if err := os.WriteFile(path, image.Data, 0o644); err != nil {
		return nil, fmt.Errorf("write image file: %w", err)
	}

	now := s.clock.Now()
	person := &Person{
		ID:                uuid.New().String(),
		FullName:          name,
		ImagePath:         filename,
		PublishedAt:       now,
		ExpiresAt:         now.Add(s.lifetime),
		LastSeenLatitude:  lat,
		LastSeenLongitude: lon,
	}

	if err := s.store.Save(ctx, person); err != nil {
		// Keep the store authoritative: a failed insert removes the orphaned file.
		_ = os.Remove(path)
		return nil, err
	}

	s.logger.Infow("saved person",
		"id", person.ID,
		"name", person.FullName,
		"published_at", person.PublishedAt,
		"expires_at", person.ExpiresAt,
	)
	return person, nil
}

// Get returns the report with the given id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Person, error) {
	return s.store.FindByID(ctx, id)
}

// List returns one page of non-expired reports, newest first.
func (s *Service) List(ctx context.Context, page, size int) ([]Person, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}
	return s.store.FindActive(ctx, s.clock.Now(), size, page*size)
}

// ImageLocation maps a stored filename to its path on disk. The filename is
// reduced to its base to keep lookups inside the upload directory.
func (s *Service) ImageLocation(filename string) string {
	return filepath.Join(s.uploadDir, filepath.Base(filename))
}
