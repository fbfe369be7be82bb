package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRating_UnmarshalJSON(t *testing.T) {
	t.Run("numeric id and fields", func(t *testing.T) {
		var r Rating
		err := json.Unmarshal([]byte(`{"id":42,"project_id":1,"user_id":"user_abc","stars":5,"comment":"nice","created_at":"2025-06-01T10:00:00Z"}`), &r)
		require.NoError(t, err)
		assert.Equal(t, "42", r.ID)
		assert.Equal(t, 1, r.ProjectID)
		assert.Equal(t, 5, r.Stars)
	})

	t.Run("string-typed numbers", func(t *testing.T) {
		var r Rating
		err := json.Unmarshal([]byte(`{"id":"abc","project_id":"3","user_id":"user_abc","stars":"4","comment":"","created_at":""}`), &r)
		require.NoError(t, err)
		assert.Equal(t, "abc", r.ID)
		assert.Equal(t, 3, r.ProjectID)
		assert.Equal(t, 4, r.Stars)
	})

	t.Run("missing id tolerated", func(t *testing.T) {
		var r Rating
		err := json.Unmarshal([]byte(`{"project_id":1,"user_id":"u","stars":2,"comment":"x"}`), &r)
		require.NoError(t, err)
		assert.Empty(t, r.ID)
	})
}

func TestGroup(t *testing.T) {
	t.Run("groups by project and coerces stars", func(t *testing.T) {
		c := Group([]Rating{
			{ProjectID: 1, Stars: 5},
			{ProjectID: 1, Stars: 9},
			{ProjectID: 2, Stars: 0},
			{ProjectID: 0, Stars: 3}, // no project, dropped
		})

		require.Len(t, c[1], 2)
		assert.Equal(t, 5, c[1][1].Stars)
		require.Len(t, c[2], 1)
		assert.Equal(t, 1, c[2][0].Stars)
		assert.NotContains(t, c, 0)
	})
}

func TestCollection_Average(t *testing.T) {
	t.Run("rounds the mean", func(t *testing.T) {
		c := Group([]Rating{
			{ProjectID: 1, Stars: 5},
			{ProjectID: 1, Stars: 4},
		})
		// mean 4.5 rounds up
		assert.Equal(t, 5, c.Average(1))
	})

	t.Run("empty or absent project is zero", func(t *testing.T) {
		c := make(Collection)
		assert.Equal(t, 0, c.Average(7))
	})

	t.Run("5 and 3 average to 4", func(t *testing.T) {
		c := Group([]Rating{
			{ProjectID: 1, Stars: 5},
			{ProjectID: 1, Stars: 3},
		})
		assert.Equal(t, 4, c.Average(1))
	})
}

func TestCollection_Comments(t *testing.T) {
	c := Group([]Rating{
		{ProjectID: 1, Stars: 5, Comment: "oldest", CreatedAt: "2025-01-01T00:00:00Z"},
		{ProjectID: 1, Stars: 4, Comment: "   ", CreatedAt: "2025-02-01T00:00:00Z"},
		{ProjectID: 1, Stars: 4, Comment: "", CreatedAt: "2025-03-01T00:00:00Z"},
		{ProjectID: 1, Stars: 3, Comment: "middle", CreatedAt: "2025-04-01T00:00:00Z"},
		{ProjectID: 1, Stars: 2, Comment: "newest", CreatedAt: "2025-05-01T00:00:00Z"},
	})

	t.Run("filters blank comments and sorts newest first", func(t *testing.T) {
		comments := c.CommentsWithText(1)
		require.Len(t, comments, 3)
		assert.Equal(t, "newest", comments[0].Comment)
		assert.Equal(t, "middle", comments[1].Comment)
		assert.Equal(t, "oldest", comments[2].Comment)
	})

	t.Run("top comments truncates", func(t *testing.T) {
		top := c.TopComments(1, 2)
		require.Len(t, top, 2)
		assert.Equal(t, "newest", top[0].Comment)
	})

	t.Run("fewer comments than limit", func(t *testing.T) {
		assert.Len(t, c.TopComments(1, 10), 3)
	})

	t.Run("absent project yields empty", func(t *testing.T) {
		assert.Empty(t, c.CommentsWithText(9))
	})
}

func TestRating_IsTemporary(t *testing.T) {
	assert.True(t, Rating{ID: TempIDPrefix + "123"}.IsTemporary())
	assert.False(t, Rating{ID: "42"}.IsTemporary())
	assert.False(t, Rating{}.IsTemporary())
}
