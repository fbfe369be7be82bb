package session

import (
	"context"
	"sync"

	"github.com/cha-ryne/ratings-sync/internal/ratings/domain"
	"github.com/cha-ryne/ratings-sync/internal/ratings/store"
)

// State is a snapshot of the UI-facing selection. It holds no canonical
// data; everything here is derived from and reset by interaction.
type State struct {
	SelectedProjectID int    `json:"selected_project_id"`
	SelectedStars     int    `json:"selected_stars"`
	DraftComment      string `json:"draft_comment"`
	RatingModalOpen   bool   `json:"rating_modal_open"`
	CommentsModalOpen bool   `json:"comments_modal_open"`
}

// Session tracks the in-progress rating composition that a submission
// consumes. Closing either modal clears the associated selection, so stale
// state cannot leak into the next interaction.
type Session struct {
	store *store.Store

	mu    sync.Mutex
	state State
}

// New creates a Session over the given store.
func New(st *store.Store) *Session {
	return &Session{store: st}
}

// OpenRatingModal starts composing a rating for a project, optionally with a
// preselected star count.
func (s *Session) OpenRatingModal(projectID, stars int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectedProjectID = projectID
	s.state.SelectedStars = stars
	s.state.DraftComment = ""
	s.state.RatingModalOpen = true
}

// SelectStars updates the star selection of the open composition.
func (s *Session) SelectStars(stars int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectedStars = stars
}

// SetComment updates the draft comment of the open composition.
func (s *Session) SetComment(comment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DraftComment = comment
}

// CloseRatingModal abandons the composition and clears the selection.
func (s *Session) CloseRatingModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearSelection()
	s.state.RatingModalOpen = false
}

// Submit hands the current selection to the store. The selection is reset
// and the modal closed on every outcome.
func (s *Session) Submit(ctx context.Context) store.SubmitResult {
	s.mu.Lock()
	sel := store.Selection{
		ProjectID: s.state.SelectedProjectID,
		Stars:     s.state.SelectedStars,
		Comment:   s.state.DraftComment,
	}
	s.mu.Unlock()

	result := s.store.Submit(ctx, sel)

	s.mu.Lock()
	s.clearSelection()
	s.state.RatingModalOpen = false
	s.mu.Unlock()

	return result
}

// ShowAllComments opens the comments listing for a project.
func (s *Session) ShowAllComments(projectID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectedProjectID = projectID
	s.state.CommentsModalOpen = true
}

// AllComments returns every non-blank comment for the selected project,
// newest first. Empty when no comments modal is open.
func (s *Session) AllComments() []domain.Rating {
	s.mu.Lock()
	projectID := s.state.SelectedProjectID
	open := s.state.CommentsModalOpen
	s.mu.Unlock()

	if !open || projectID == 0 {
		return nil
	}
	return s.store.CommentsWithText(projectID)
}

// CloseCommentsModal closes the comments listing and clears the selection.
func (s *Session) CloseCommentsModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectedProjectID = 0
	s.state.CommentsModalOpen = false
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// clearSelection resets the composition fields. Caller holds s.mu.
func (s *Session) clearSelection() {
	s.state.SelectedProjectID = 0
	s.state.SelectedStars = 0
	s.state.DraftComment = ""
}
