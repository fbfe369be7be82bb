package store

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/cha-ryne/ratings-sync/internal/identity"
	"github.com/cha-ryne/ratings-sync/internal/logging"
	"github.com/cha-ryne/ratings-sync/internal/ratings/domain"
	"github.com/cha-ryne/ratings-sync/internal/ratings/repository"
	"github.com/cha-ryne/ratings-sync/internal/transport"
	"github.com/google/uuid"
)

// ratingsPath is the logical endpoint for the ratings collection.
const ratingsPath = "ratings"

const (
	msgSelectStars = "Please select a rating by clicking on the stars"
	msgBusy        = "A rating is already being submitted, please wait"
	msgLoadFailed  = "Unable to load ratings. Please try again later."
)

// Selection is the candidate rating a submission consumes.
type Selection struct {
	ProjectID int
	Stars     int
	Comment   string
}

// SubmitResult reports the outcome of a submission. LocalOnly means the
// rating was committed locally but remote confirmation never arrived; the
// caller still sees success because the visible state is already correct.
type SubmitResult struct {
	Success   bool   `json:"success"`
	LocalOnly bool   `json:"local_only"`
	Message   string `json:"message,omitempty"`
}

// submitPayload is the canonical wire body for a rating submission.
type submitPayload struct {
	ProjectID int    `json:"project_id"`
	UserID    string `json:"user_id"`
	Stars     int    `json:"stars"`
	Comment   string `json:"comment"`
}

// Store owns the canonical in-memory mapping of project ratings. Writes are
// optimistic: the mapping is mutated before any network round trip, and a
// failed reconciliation never rolls the mutation back.
type Store struct {
	identity  *identity.Provider
	fetcher   *transport.Fetcher
	snapshots *repository.SnapshotRepository // may be nil when storage is down

	mu         sync.Mutex
	collection domain.Collection
	busy       bool
	lastError  string
}

// NewStore creates a Store, seeding the collection from the persisted
// snapshot when one exists.
func NewStore(ctx context.Context, idp *identity.Provider, fetcher *transport.Fetcher, snapshots *repository.SnapshotRepository) *Store {
	s := &Store{
		identity:   idp,
		fetcher:    fetcher,
		snapshots:  snapshots,
		collection: make(domain.Collection),
	}

	if snapshots != nil {
		logger := logging.New(ctx)
		if c, err := snapshots.Load(ctx); err == nil {
			s.collection = c
			logger.Infof("snapshot_restore", "restored ratings for %d projects", len(c))
		} else if err != domain.ErrSnapshotNotFound {
			logger.Warnf("snapshot_restore", "could not restore snapshot: %v", err)
		}
	}

	return s
}

// Load fetches the remote ratings collection and replaces the mapping on
// success. A failed fetch preserves whatever mapping currently exists and
// records a user-visible error. The busy flag is cleared on every path.
func (s *Store) Load(ctx context.Context) error {
	logger := logging.New(ctx)

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return domain.ErrSubmissionInFlight
	}
	s.busy = true
	s.lastError = ""
	s.mu.Unlock()

	raw, err := s.fetcher.Do(ctx, http.MethodGet, ratingsPath, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	if err != nil {
		logger.Error("load_ratings", err)
		s.lastError = msgLoadFailed
		return err
	}

	var list []domain.Rating
	if jsonErr := json.Unmarshal(raw, &list); jsonErr != nil {
		// Success with a non-array body is a backend quirk; keep the
		// current mapping rather than wiping good data.
		logger.Warnf("load_ratings", "unexpected body shape: %v", jsonErr)
		return nil
	}

	s.collection = domain.Group(list)
	s.saveSnapshot(ctx, logger)
	return nil
}

// Submit validates the selection, commits it optimistically, then attempts
// remote persistence. Network failure is absorbed: the optimistic record is
// retained and the result still reports success with LocalOnly set.
func (s *Store) Submit(ctx context.Context, sel Selection) SubmitResult {
	logger := logging.New(ctx)

	if sel.Stars < 1 || sel.Stars > 5 {
		return SubmitResult{Success: false, Message: msgSelectStars}
	}

	userID := s.identity.GetOrCreate(ctx)

	optimistic := domain.Rating{
		ID:        domain.TempIDPrefix + uuid.NewString(),
		ProjectID: sel.ProjectID,
		UserID:    userID,
		Stars:     sel.Stars,
		Comment:   sel.Comment,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return SubmitResult{Success: false, Message: msgBusy}
	}
	s.busy = true
	s.collection[sel.ProjectID] = append(s.collection[sel.ProjectID], optimistic)
	s.saveSnapshot(ctx, logger)
	s.mu.Unlock()

	payload := submitPayload{
		ProjectID: sel.ProjectID,
		UserID:    userID,
		Stars:     sel.Stars,
		Comment:   sel.Comment,
	}
	raw, err := s.fetcher.Do(ctx, http.MethodPost, ratingsPath, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	if err != nil {
		// Deliberately not surfaced: the visible rating is already
		// correct locally.
		logger.Warnf("submit_rating", "remote persistence failed, keeping local record: %v", err)
		return SubmitResult{Success: true, LocalOnly: true}
	}

	confirmed, ok := decodeConfirmed(raw)
	if !ok || confirmed.UserID != userID {
		logger.Warn("submit_rating", "response did not contain the created rating, keeping local record")
		return SubmitResult{Success: true, LocalOnly: true}
	}

	s.reconcile(sel.ProjectID, userID, confirmed)
	s.saveSnapshot(ctx, logger)
	return SubmitResult{Success: true}
}

// Average returns the rounded mean of stars for a project, 0 without ratings.
func (s *Store) Average(projectID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection.Average(projectID)
}

// Count returns the number of ratings for a project.
func (s *Store) Count(projectID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection.Count(projectID)
}

// CommentsWithText returns the project's non-blank comments, newest first.
func (s *Store) CommentsWithText(projectID int) []domain.Rating {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection.CommentsWithText(projectID)
}

// TopComments returns at most n of the newest non-blank comments; n <= 0
// means the default of 3.
func (s *Store) TopComments(projectID, n int) []domain.Rating {
	if n <= 0 {
		n = 3
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection.TopComments(projectID, n)
}

// Busy reports whether a load or submission is in flight.
func (s *Store) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// LastError returns the user-visible message of the last failed load, or "".
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Ratings returns a copy of the project's ratings.
func (s *Store) Ratings(projectID int) []domain.Rating {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Rating(nil), s.collection[projectID]...)
}

// decodeConfirmed extracts the created rating from a response that is either
// the record itself or an array containing it.
func decodeConfirmed(raw json.RawMessage) (domain.Rating, bool) {
	var one domain.Rating
	if err := json.Unmarshal(raw, &one); err == nil && one.UserID != "" {
		return one, true
	}
	var many []domain.Rating
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 && many[0].UserID != "" {
		return many[0], true
	}
	return domain.Rating{}, false
}

// reconcile replaces the optimistic record matching the confirmed one by
// userID + projectID + nearest CreatedAt. The server sends no temp-id
// correlation, so proximity is the only available match. When nothing
// matches, the confirmed record is appended instead of guessing.
// Caller holds s.mu.
func (s *Store) reconcile(projectID int, userID string, confirmed domain.Rating) {
	ratings := s.collection[projectID]

	confirmedAt := confirmed.CreatedTime()
	best := -1
	var bestDelta time.Duration
	for i, r := range ratings {
		if !r.IsTemporary() || r.UserID != userID {
			continue
		}
		delta := confirmedAt.Sub(r.CreatedTime())
		if delta < 0 {
			delta = -delta
		}
		if best == -1 || delta < bestDelta {
			best = i
			bestDelta = delta
		}
	}

	if best == -1 {
		confirmed.ProjectID = projectID
		s.collection[projectID] = append(ratings, confirmed)
		return
	}

	// Fill fields a degraded response may have dropped.
	if confirmed.ID == "" {
		confirmed.ID = ratings[best].ID
	}
	if confirmed.CreatedAt == "" {
		confirmed.CreatedAt = ratings[best].CreatedAt
	}
	confirmed.ProjectID = projectID
	ratings[best] = confirmed
}

// saveSnapshot persists the collection best-effort. Caller holds s.mu.
func (s *Store) saveSnapshot(ctx context.Context, logger *logging.Logger) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(ctx, s.collection); err != nil {
		logger.Warnf("snapshot_save", "could not persist snapshot: %v", err)
	}
}
