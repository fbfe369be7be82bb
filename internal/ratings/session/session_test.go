package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/cha-ryne/ratings-sync/internal/identity"
	"github.com/cha-ryne/ratings-sync/internal/ratings/session"
	"github.com/cha-ryne/ratings-sync/internal/ratings/store"
	"github.com/cha-ryne/ratings-sync/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// offlineSession pairs a session with a store whose endpoints are all dead,
// so submissions exercise the optimistic local path.
func offlineSession(t *testing.T) (*session.Session, *store.Store) {
	t.Helper()
	resolver := transport.NewResolver(transport.ResolverConfig{BaseURL: "http://127.0.0.1:1"})
	fetcher := transport.NewFetcher(resolver, 200*time.Millisecond)
	st := store.NewStore(context.Background(), identity.NewProvider(nil), fetcher, nil)
	return session.New(st), st
}

func TestSession_RatingModal(t *testing.T) {
	t.Run("open seeds the selection", func(t *testing.T) {
		sess, _ := offlineSession(t)

		sess.OpenRatingModal(3, 4)
		state := sess.Snapshot()
		assert.Equal(t, 3, state.SelectedProjectID)
		assert.Equal(t, 4, state.SelectedStars)
		assert.Empty(t, state.DraftComment)
		assert.True(t, state.RatingModalOpen)
	})

	t.Run("close clears the selection", func(t *testing.T) {
		sess, _ := offlineSession(t)

		sess.OpenRatingModal(3, 4)
		sess.SetComment("draft text")
		sess.CloseRatingModal()

		state := sess.Snapshot()
		assert.Zero(t, state.SelectedProjectID)
		assert.Zero(t, state.SelectedStars)
		assert.Empty(t, state.DraftComment)
		assert.False(t, state.RatingModalOpen)
	})

	t.Run("submit consumes the selection and resets", func(t *testing.T) {
		sess, st := offlineSession(t)

		sess.OpenRatingModal(5, 0)
		sess.SelectStars(4)
		sess.SetComment("lovely")

		result := sess.Submit(context.Background())
		assert.True(t, result.Success)
		assert.True(t, result.LocalOnly)

		ratings := st.Ratings(5)
		require.Len(t, ratings, 1)
		assert.Equal(t, 4, ratings[0].Stars)
		assert.Equal(t, "lovely", ratings[0].Comment)

		state := sess.Snapshot()
		assert.Zero(t, state.SelectedStars)
		assert.False(t, state.RatingModalOpen)
	})

	t.Run("submit without stars fails but still resets", func(t *testing.T) {
		sess, st := offlineSession(t)

		sess.OpenRatingModal(5, 0)
		result := sess.Submit(context.Background())
		assert.False(t, result.Success)
		assert.Empty(t, st.Ratings(5))

		assert.False(t, sess.Snapshot().RatingModalOpen)
	})
}

func TestSession_CommentsModal(t *testing.T) {
	t.Run("open selects the project", func(t *testing.T) {
		sess, st := offlineSession(t)
		st.Submit(context.Background(), store.Selection{ProjectID: 2, Stars: 5, Comment: "visible"})

		sess.ShowAllComments(2)
		comments := sess.AllComments()
		require.Len(t, comments, 1)
		assert.Equal(t, "visible", comments[0].Comment)
	})

	t.Run("closed modal lists nothing", func(t *testing.T) {
		sess, _ := offlineSession(t)
		sess.ShowAllComments(2)
		sess.CloseCommentsModal()

		assert.Empty(t, sess.AllComments())
		assert.Zero(t, sess.Snapshot().SelectedProjectID)
	})
}
