package domain

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Rating is a single user's rating for a portfolio project. IDs are
// server-assigned once confirmed; optimistic local records carry a temporary
// "tmp_" prefixed ID until then.
type Rating struct {
	ID        string `json:"id,omitempty"`
	ProjectID int    `json:"project_id"`
	UserID    string `json:"user_id"`
	Stars     int    `json:"stars"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

// TempIDPrefix marks optimistic records awaiting remote confirmation.
const TempIDPrefix = "tmp_"

// IsTemporary reports whether the rating is an unconfirmed optimistic record.
func (r Rating) IsTemporary() bool {
	return strings.HasPrefix(r.ID, TempIDPrefix)
}

// CreatedTime parses the creation timestamp; the zero time on failure.
func (r Rating) CreatedTime() time.Time {
	t, err := time.Parse(time.RFC3339, r.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// UnmarshalJSON tolerates the wire quirks of the ratings API: numeric or
// string ids, and numbers delivered as strings.
func (r *Rating) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        json.RawMessage `json:"id"`
		ProjectID json.RawMessage `json:"project_id"`
		UserID    string          `json:"user_id"`
		Stars     json.RawMessage `json:"stars"`
		Comment   string          `json:"comment"`
		CreatedAt string          `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.ID = flexString(raw.ID)
	r.ProjectID = flexInt(raw.ProjectID)
	r.UserID = raw.UserID
	r.Stars = flexInt(raw.Stars)
	r.Comment = raw.Comment
	r.CreatedAt = raw.CreatedAt
	return nil
}

func flexString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func flexInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v
		}
	}
	return 0
}

// Collection maps a project ID to its ratings. Insertion order carries no
// meaning; display order is always derived from CreatedAt.
type Collection map[int][]Rating

// Group builds a Collection from a flat list, dropping records without a
// project and coercing stars into [1,5].
func Group(list []Rating) Collection {
	c := make(Collection)
	for _, r := range list {
		if r.ProjectID == 0 {
			continue
		}
		r.Stars = clampStars(r.Stars)
		c[r.ProjectID] = append(c[r.ProjectID], r)
	}
	return c
}

// Clone makes a deep copy so callers can hand out state without aliasing.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for pid, ratings := range c {
		out[pid] = append([]Rating(nil), ratings...)
	}
	return out
}

// Average returns the rounded mean of stars for a project, 0 when it has no
// ratings.
func (c Collection) Average(projectID int) int {
	ratings := c[projectID]
	if len(ratings) == 0 {
		return 0
	}
	total := 0
	for _, r := range ratings {
		total += r.Stars
	}
	return int(math.Round(float64(total) / float64(len(ratings))))
}

// Count returns the number of ratings for a project.
func (c Collection) Count(projectID int) int {
	return len(c[projectID])
}

// CommentsWithText returns the project's ratings whose comment is non-blank,
// newest first.
func (c Collection) CommentsWithText(projectID int) []Rating {
	var out []Rating
	for _, r := range c[projectID] {
		if strings.TrimSpace(r.Comment) != "" {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedTime().After(out[j].CreatedTime())
	})
	return out
}

// TopComments returns at most n of the newest non-blank comments.
func (c Collection) TopComments(projectID, n int) []Rating {
	comments := c.CommentsWithText(projectID)
	if n > 0 && len(comments) > n {
		comments = comments[:n]
	}
	return comments
}

func clampStars(stars int) int {
	if stars < 1 {
		return 1
	}
	if stars > 5 {
		return 5
	}
	return stars
}
