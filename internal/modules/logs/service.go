package logs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"savelog/internal/blobstore"
	"savelog/internal/domain"
	"savelog/internal/metrics"

	"gorm.io/gorm"
)

// CreateInput are the already-validated parameters of a create operation.
type CreateInput struct {
	Content       string
	Filename      string
	Private       bool
	ExpireMinutes int
}

// CreateResult is the record plus its derived locator and expiry.
type CreateResult struct {
	Log      *domain.Log
	FileURL  string
	ExpireAt *time.Time
}

// Service owns the log record lifecycle: the dual write to the metadata
// table and the blob area, owner-scoped reads and deletes, and the two
// maintenance sweeps.
type Service struct {
	logs    LogRepositoryInterface
	blobs   BlobStoreInterface
	baseURL string
	metrics *metrics.Metrics

	now func() time.Time
}

func NewService(logs LogRepositoryInterface, blobs BlobStoreInterface, baseURL string, m *metrics.Metrics) *Service {
	return &Service{
		logs:    logs,
		blobs:   blobs,
		baseURL: baseURL,
		metrics: m,
		now:     time.Now,
	}
}

// Create registers the metadata row first, then writes the blob. When the
// blob write fails the row is rolled back and the whole operation fails with
// ErrStorageWrite, so no caller ever holds metadata for a blob that was never
// written. Reconciliation only has to repair out-of-band blob loss.
func (s *Service) Create(ctx context.Context, in CreateInput, identity *domain.User) (*CreateResult, error) {
	if in.Private && identity == nil {
		return nil, ErrUnauthenticated
	}

	// Only private records carry an owner. Authenticated callers posting
	// public logs stay anonymous on the record.
	var ownerID *int64
	if in.Private {
		id := identity.ID
		ownerID = &id
	}

	var expireAt *time.Time
	if in.ExpireMinutes > 0 {
		t := s.now().Add(time.Duration(in.ExpireMinutes) * time.Minute)
		expireAt = &t
	}

	filename := in.Filename
	if filename == "" {
		// Second-granularity names can collide; a collision just means the
		// later write shadows the earlier blob, same as a reused filename.
		filename = fmt.Sprintf("log_%d.txt", s.now().Unix())
	}
	// Reject bad names before the metadata insert; otherwise the blob write
	// would fail after the row exists and force a rollback.
	if err := blobstore.ValidateName(filename); err != nil {
		return nil, err
	}

	rec := &domain.Log{
		OwnerID:  ownerID,
		Filename: filename,
		Content:  in.Content,
		Private:  in.Private,
		ExpireAt: expireAt,
	}
	if err := s.logs.Create(ctx, rec); err != nil {
		return nil, err
	}

	if err := s.blobs.Write(filename, []byte(in.Content)); err != nil {
		// Roll the metadata back so the failed create leaves no orphan.
		if _, delErr := s.logs.DeleteByID(ctx, rec.ID); delErr != nil {
			return nil, fmt.Errorf("%w: %w (metadata rollback also failed: %v)", ErrStorageWrite, err, delErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	if s.metrics != nil {
		s.metrics.LogsCreated.Inc()
	}

	return &CreateResult{
		Log:      rec,
		FileURL:  fmt.Sprintf("%s/logs/f/%s", s.baseURL, filename),
		ExpireAt: expireAt,
	}, nil
}

// GetByFilename serves the blob content of the first record (by creation
// order) carrying the filename, applying the read access rules.
func (s *Service) GetByFilename(ctx context.Context, filename string, identity *domain.User) ([]byte, error) {
	rec, err := s.logs.GetByFilename(ctx, filename)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := CanRead(rec, identity); err != nil {
		return nil, err
	}

	content, err := s.blobs.Read(rec.Filename)
	if err != nil {
		// Metadata without a blob is the orphan state; until reconciliation
		// runs the record reads as absent.
		return nil, ErrNotFound
	}

	if s.metrics != nil {
		s.metrics.LogsRead.Inc()
	}
	return content, nil
}

// GetByID returns the full record, owner only. A record that exists but
// belongs to somebody else reads as NotFound, indistinguishable from true
// absence.
func (s *Service) GetByID(ctx context.Context, id int64, identity *domain.User) (*domain.Log, error) {
	if err := RequireIdentity(identity); err != nil {
		return nil, err
	}

	rec, err := s.logs.GetByIDForOwner(ctx, id, identity.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *Service) ListPublic(ctx context.Context) ([]*domain.Log, error) {
	return s.logs.ListPublic(ctx)
}

// ListOwned returns every record owned by the identity, private or not.
func (s *Service) ListOwned(ctx context.Context, identity *domain.User) ([]*domain.Log, error) {
	if err := RequireIdentity(identity); err != nil {
		return nil, err
	}
	return s.logs.ListByOwner(ctx, identity.ID)
}

// Delete removes an owned record and its blob. The metadata delete is the
// arbiter under concurrency: of two racing deletes only one sees a row
// removed, the other reports NotFound. Blob absence is not an error.
func (s *Service) Delete(ctx context.Context, id int64, identity *domain.User) error {
	if err := RequireIdentity(identity); err != nil {
		return err
	}

	rec, err := s.logs.GetByIDForOwner(ctx, id, identity.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	deleted, err := s.logs.DeleteByID(ctx, rec.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	if err := s.blobs.Remove(rec.Filename); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	if s.metrics != nil {
		s.metrics.LogsDeleted.Inc()
	}
	return nil
}

// DeleteAllOwned removes every record the identity owns, blobs included, and
// returns how many records went away. Running it again right after returns 0.
func (s *Service) DeleteAllOwned(ctx context.Context, identity *domain.User) (int64, error) {
	if err := RequireIdentity(identity); err != nil {
		return 0, err
	}

	owned, err := s.logs.ListByOwner(ctx, identity.ID)
	if err != nil {
		return 0, err
	}
	for _, rec := range owned {
		if err := s.blobs.Remove(rec.Filename); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrStorageWrite, err)
		}
	}

	count, err := s.logs.DeleteByOwner(ctx, identity.ID)
	if err != nil {
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.LogsDeleted.Add(float64(count))
	}
	return count, nil
}

// SweepExpired deletes every record whose deadline has passed, blob included.
// A blob that fails to go away does not stop the sweep; the record count
// reflects metadata removals and reconciliation cannot resurrect the record
// either way.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	expired, err := s.logs.ListExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}

	var count int64
	for _, rec := range expired {
		deleted, err := s.logs.DeleteByID(ctx, rec.ID)
		if err != nil {
			return count, err
		}
		if !deleted {
			continue
		}
		count++
		_ = s.blobs.Remove(rec.Filename)
	}

	if s.metrics != nil {
		s.metrics.RecordsSwept.Add(float64(count))
	}
	return count, nil
}

// ReconcileMissingBlobs drops every record whose blob is gone. The blob area
// is ground truth here: metadata that lost its file is unreadable anyway, so
// the row is removed rather than repaired.
func (s *Service) ReconcileMissingBlobs(ctx context.Context) (int64, error) {
	all, err := s.logs.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	for _, rec := range all {
		exists, err := s.blobs.Exists(rec.Filename)
		if err != nil {
			// Can't tell either way; leave the record alone.
			continue
		}
		if exists {
			continue
		}
		deleted, err := s.logs.DeleteByID(ctx, rec.ID)
		if err != nil {
			return count, err
		}
		if deleted {
			count++
		}
	}

	if s.metrics != nil {
		s.metrics.OrphansReconciled.Add(float64(count))
	}
	return count, nil
}
