package domain

import "time"

// Log is the metadata record describing one stored blob. The blob content is
// mirrored into Content at creation time and never re-read from disk; when the
// two diverge the record is repaired by reconciliation, not by re-deriving
// Content from the file.
type Log struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	OwnerID   *int64     `json:"owner_id,omitempty" gorm:"index"` // nil for anonymous records
	Filename  string     `json:"filename" gorm:"index"`
	Content   string     `json:"content"`
	Private   bool       `json:"private"`
	ExpireAt  *time.Time `json:"expire_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Log) TableName() string { return "logs" }

// Expired reports whether the record is past its deadline. Records without a
// deadline never expire.
func (l *Log) Expired(now time.Time) bool {
	return l.ExpireAt != nil && l.ExpireAt.Before(now)
}

// OwnedBy reports whether userID is the record's owner. Anonymous records are
// owned by nobody.
func (l *Log) OwnedBy(userID int64) bool {
	return l.OwnerID != nil && *l.OwnerID == userID
}
