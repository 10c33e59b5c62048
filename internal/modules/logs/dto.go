package logs

// CreateLogRequest mirrors the create operation's inputs. Content is a
// pointer so an explicitly empty string still counts as present.
type CreateLogRequest struct {
	Content       *string `json:"content" binding:"required"`
	Filename      string  `json:"filename"`
	Private       bool    `json:"private"`
	ExpireMinutes int     `json:"expire_minutes" binding:"omitempty,gt=0"`
}

// CreateLogResponse carries the locator of the stored blob and the expiry
// instant, or "none" when the record never expires.
type CreateLogResponse struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	FileURL  string `json:"file_url"`
	ExpireAt string `json:"expire_at"`
}

type CountResponse struct {
	Removed int64 `json:"removed"`
}
