package content

import (
	"io"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type Announcement struct {
	ID         string    `json:"id"`
	ClassID    string    `json:"class_id"`
	UserID     string    `json:"user_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

type NewAnnouncement struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Content = core.CleanString(na.Content)
	return validate.Struct(na)
}

type Assignment struct {
	ID          string    `json:"id"`
	ClassID     string    `json:"class_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	// DueDate is deliberately opaque text, preserving the on-disk
	// contract; it is neither parsed nor timezone-aware.
	DueDate   string    `json:"due_date,omitempty"`
	Points    *int      `json:"points,omitempty"`
	Type      string    `json:"assignment_type,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type NewAssignment struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Points      *int   `json:"points" validate:"omitempty,gte=0"`
	Type        string `json:"assignment_type"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.DueDate = core.CleanString(na.DueDate)
	na.Type = core.CleanString(na.Type)
	return validate.Struct(na)
}

// Submission statuses.
const StatusTurnedIn = "turned_in"

type Submission struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignment_id"`
	StudentID    string    `json:"student_id"`
	FilePath     string    `json:"file_path,omitempty"`
	Comment      string    `json:"comment,omitempty"`
	Status       string    `json:"status"`
	SubmittedAt  time.Time `json:"submitted_at"` // UTC
}

// NewSubmission is a student's one-time response to an assignment.
// File is optional; a disallowed file type is dropped while the
// comment is still persisted.
type NewSubmission struct {
	Comment string
	File    *Upload
}

// Upload is an incoming file blob with its declared filename.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

type Comment struct {
	ID             string    `json:"id"`
	AnnouncementID string    `json:"announcement_id"`
	UserID         string    `json:"user_id"`
	AuthorName     string    `json:"author_name,omitempty"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"` // UTC
}

type NewComment struct {
	Content string `json:"content" validate:"required"`
}

func (nc *NewComment) Validate(validate *validator.Validate) error {
	nc.Content = core.CleanString(nc.Content)
	return validate.Struct(nc)
}
