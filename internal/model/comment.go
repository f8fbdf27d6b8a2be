package model

import "time"

// Comment is a review of a court.  Replies carry the id of the comment they
// answer in ParentID and are returned nested under it.
type Comment struct {
	ID          string    `json:"id"`
	ParentID    string    `json:"parentId,omitempty"`
	DisplayName string    `json:"displayName"`
	PfpSrc      string    `json:"pfpSrc"`
	Date        time.Time `json:"date"`
	Stars       int       `json:"stars"`
	Text        string    `json:"text"`
	Cancha      *Place    `json:"cancha,omitempty"`
	Replies     []Comment `json:"replies,omitempty"`
}

// CommentID derives a comment id from the author's name and the posting
// time, formatted as a UTC ISO timestamp without fractional seconds.
func CommentID(author string, at time.Time) string {
	return author + "-" + at.UTC().Format("2006-01-02T15:04:05")
}
