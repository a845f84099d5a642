package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/content"
)

type announcementRow struct {
	ID         string      `db:"id"`
	ClassID    string      `db:"class_id"`
	AuthorID   string      `db:"author_id"`
	AuthorName null.String `db:"author_name"`
	Title      string      `db:"title"`
	Content    string      `db:"content"`
	CreatedAt  time.Time   `db:"created_at"`
}

type assignmentRow struct {
	ID          string    `db:"id"`
	ClassID     string    `db:"class_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	DueDate     string    `db:"due_date"`
	Points      null.Int  `db:"points"`
	Type        string    `db:"type"`
	CreatedAt   time.Time `db:"created_at"`
}

type submissionRow struct {
	ID           string    `db:"id"`
	AssignmentID string    `db:"assignment_id"`
	StudentID    string    `db:"student_id"`
	FilePath     string    `db:"file_path"`
	Comment      string    `db:"comment"`
	Status       string    `db:"status"`
	SubmittedAt  time.Time `db:"submitted_at"`
}

type commentRow struct {
	ID             string      `db:"id"`
	AnnouncementID string      `db:"announcement_id"`
	AuthorID       string      `db:"author_id"`
	AuthorName     null.String `db:"author_name"`
	Content        string      `db:"content"`
	CreatedAt      time.Time   `db:"created_at"`
}

type contentRepository struct {
	db *sqlx.DB
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *sqlx.DB) *contentRepository {
	return &contentRepository{db: db}
}

func (repo contentRepository) trapNoRowsErr(err, sentinel error, msg string) error {
	if err == sql.ErrNoRows {
		return sentinel
	}
	return errors.Wrap(err, msg)
}

// ---- announcements

func (repo contentRepository) fromAnnouncementRow(row announcementRow) content.Announcement {
	return content.Announcement{
		ID:         row.ID,
		ClassID:    row.ClassID,
		UserID:     row.AuthorID,
		AuthorName: row.AuthorName.String,
		Title:      row.Title,
		Content:    row.Content,
		CreatedAt:  row.CreatedAt,
	}
}

func (repo contentRepository) CreateAnnouncement(ctx context.Context, ann content.Announcement) (content.Announcement, error) {
	ann.ID = uuid.New().String()
	row := announcementRow{
		ID:        ann.ID,
		ClassID:   ann.ClassID,
		AuthorID:  ann.UserID,
		Title:     ann.Title,
		Content:   ann.Content,
		CreatedAt: ann.CreatedAt.UTC(),
	}

	const q = `
		INSERT INTO announcements (id, class_id, author_id, title, content, created_at)
		VALUES (:id, :class_id, :author_id, :title, :content, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return content.Announcement{}, errors.Wrap(err, "inserting announcement")
	}
	ann.CreatedAt = row.CreatedAt
	return ann, nil
}

func (repo contentRepository) GetAnnouncement(ctx context.Context, id string) (content.Announcement, error) {
	if _, err := uuid.Parse(id); err != nil {
		return content.Announcement{}, content.ErrAnnouncementNotFound
	}

	const q = `
		SELECT a.*, u.full_name AS author_name
		FROM announcements a
		JOIN users u ON u.id = a.author_id
		WHERE a.id = $1`

	var row announcementRow
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return content.Announcement{}, repo.trapNoRowsErr(err, content.ErrAnnouncementNotFound, "finding announcement")
	}
	return repo.fromAnnouncementRow(row), nil
}

func (repo contentRepository) QueryAnnouncementsByClass(ctx context.Context, classID string) ([]content.Announcement, error) {
	const q = `
		SELECT a.*, u.full_name AS author_name
		FROM announcements a
		JOIN users u ON u.id = a.author_id
		WHERE a.class_id = $1
		ORDER BY a.created_at DESC`

	var rows []announcementRow
	if err := repo.db.SelectContext(ctx, &rows, q, classID); err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}

	anns := make([]content.Announcement, 0, len(rows))
	for _, row := range rows {
		anns = append(anns, repo.fromAnnouncementRow(row))
	}
	return anns, nil
}

// ---- assignments

func (repo contentRepository) fromAssignmentRow(row assignmentRow) content.Assignment {
	var points *int
	if row.Points.Valid {
		p := row.Points.Int
		points = &p
	}
	return content.Assignment{
		ID:          row.ID,
		ClassID:     row.ClassID,
		Title:       row.Title,
		Description: row.Description,
		DueDate:     row.DueDate,
		Points:      points,
		Type:        row.Type,
		CreatedAt:   row.CreatedAt,
	}
}

func (repo contentRepository) CreateAssignment(ctx context.Context, a content.Assignment) (content.Assignment, error) {
	a.ID = uuid.New().String()
	row := assignmentRow{
		ID:          a.ID,
		ClassID:     a.ClassID,
		Title:       a.Title,
		Description: a.Description,
		DueDate:     a.DueDate,
		Points:      null.IntFromPtr(a.Points),
		Type:        a.Type,
		CreatedAt:   a.CreatedAt.UTC(),
	}

	const q = `
		INSERT INTO assignments (id, class_id, title, description, due_date, points, type, created_at)
		VALUES (:id, :class_id, :title, :description, :due_date, :points, :type, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return content.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return repo.fromAssignmentRow(row), nil
}

func (repo contentRepository) GetAssignment(ctx context.Context, id string) (content.Assignment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return content.Assignment{}, content.ErrAssignmentNotFound
	}

	var row assignmentRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM assignments WHERE id = $1", id); err != nil {
		return content.Assignment{}, repo.trapNoRowsErr(err, content.ErrAssignmentNotFound, "finding assignment")
	}
	return repo.fromAssignmentRow(row), nil
}

func (repo contentRepository) QueryAssignmentsByClass(ctx context.Context, classID string) ([]content.Assignment, error) {
	// due_date is free text; the textual sort is the contract.
	const q = "SELECT * FROM assignments WHERE class_id = $1 ORDER BY due_date"

	var rows []assignmentRow
	if err := repo.db.SelectContext(ctx, &rows, q, classID); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}

	asgs := make([]content.Assignment, 0, len(rows))
	for _, row := range rows {
		asgs = append(asgs, repo.fromAssignmentRow(row))
	}
	return asgs, nil
}

// ---- submissions

func (repo contentRepository) fromSubmissionRow(row submissionRow) content.Submission {
	return content.Submission{
		ID:           row.ID,
		AssignmentID: row.AssignmentID,
		StudentID:    row.StudentID,
		FilePath:     row.FilePath,
		Comment:      row.Comment,
		Status:       row.Status,
		SubmittedAt:  row.SubmittedAt,
	}
}

func (repo contentRepository) CreateSubmission(ctx context.Context, sub content.Submission) (content.Submission, error) {
	sub.ID = uuid.New().String()
	row := submissionRow{
		ID:           sub.ID,
		AssignmentID: sub.AssignmentID,
		StudentID:    sub.StudentID,
		FilePath:     sub.FilePath,
		Comment:      sub.Comment,
		Status:       sub.Status,
		SubmittedAt:  sub.SubmittedAt.UTC(),
	}

	const q = `
		INSERT INTO submissions (id, assignment_id, student_id, file_path, comment, status, submitted_at)
		VALUES (:id, :assignment_id, :student_id, :file_path, :comment, :status, :submitted_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		if isUniqueViolation(err, "submissions_assignment_id_student_id_key") {
			return content.Submission{}, content.ErrAlreadySubmitted
		}
		return content.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return repo.fromSubmissionRow(row), nil
}

func (repo contentRepository) GetSubmission(ctx context.Context, assignmentID, studentID string) (content.Submission, error) {
	const q = "SELECT * FROM submissions WHERE assignment_id = $1 AND student_id = $2"

	var row submissionRow
	if err := repo.db.GetContext(ctx, &row, q, assignmentID, studentID); err != nil {
		return content.Submission{}, repo.trapNoRowsErr(err, content.ErrSubmissionNotFound, "finding submission")
	}
	return repo.fromSubmissionRow(row), nil
}

func (repo contentRepository) QuerySubmissionsByAssignment(ctx context.Context, assignmentID string) ([]content.Submission, error) {
	const q = "SELECT * FROM submissions WHERE assignment_id = $1 ORDER BY submitted_at"

	var rows []submissionRow
	if err := repo.db.SelectContext(ctx, &rows, q, assignmentID); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}

	subs := make([]content.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, repo.fromSubmissionRow(row))
	}
	return subs, nil
}

// ---- comments

func (repo contentRepository) fromCommentRow(row commentRow) content.Comment {
	return content.Comment{
		ID:             row.ID,
		AnnouncementID: row.AnnouncementID,
		UserID:         row.AuthorID,
		AuthorName:     row.AuthorName.String,
		Content:        row.Content,
		CreatedAt:      row.CreatedAt,
	}
}

func (repo contentRepository) CreateComment(ctx context.Context, cmt content.Comment) (content.Comment, error) {
	cmt.ID = uuid.New().String()
	row := commentRow{
		ID:             cmt.ID,
		AnnouncementID: cmt.AnnouncementID,
		AuthorID:       cmt.UserID,
		Content:        cmt.Content,
		CreatedAt:      cmt.CreatedAt.UTC(),
	}

	const q = `
		INSERT INTO comments (id, announcement_id, author_id, content, created_at)
		VALUES (:id, :announcement_id, :author_id, :content, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return content.Comment{}, errors.Wrap(err, "inserting comment")
	}
	cmt.CreatedAt = row.CreatedAt
	return cmt, nil
}

func (repo contentRepository) QueryCommentsByAnnouncement(ctx context.Context, announcementID string) ([]content.Comment, error) {
	const q = `
		SELECT c.*, u.full_name AS author_name
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.announcement_id = $1
		ORDER BY c.created_at`

	var rows []commentRow
	if err := repo.db.SelectContext(ctx, &rows, q, announcementID); err != nil {
		return nil, errors.Wrap(err, "querying comments")
	}

	cmts := make([]content.Comment, 0, len(rows))
	for _, row := range rows {
		cmts = append(cmts, repo.fromCommentRow(row))
	}
	return cmts, nil
}
