package classroom

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type Class struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Section     string    `json:"section,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	Room        string    `json:"room,omitempty"`
	Code        string    `json:"class_code"`
	TeacherID   string    `json:"teacher_id"`
	TeacherName string    `json:"teacher_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

type Enrollment struct {
	ID         string    `json:"id"`
	ClassID    string    `json:"class_id"`
	StudentID  string    `json:"student_id"`
	EnrolledAt time.Time `json:"enrolled_at"` // UTC
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Title   string `json:"title" validate:"required"`
	Section string `json:"section"`
	Subject string `json:"subject"`
	Room    string `json:"room"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Section = core.CleanString(nc.Section)
	nc.Subject = core.CleanString(nc.Subject)
	nc.Room = core.CleanString(nc.Room)
	return validate.Struct(nc)
}

// JoinClass carries the join code submitted by a student.
// Codes are matched case-insensitively; Validate normalizes to uppercase.
type JoinClass struct {
	Code string `json:"class_code" validate:"required"`
}

func (jc *JoinClass) Validate(validate *validator.Validate) error {
	jc.Code = NormalizeCode(jc.Code)
	return validate.Struct(jc)
}

// GetFilter selects a single Class by ID or by join code.
type GetFilter struct {
	ID   string
	Code string
}
