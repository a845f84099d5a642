package content

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrAlreadySubmitted     = errors.New("you have already submitted this assignment")
	ErrFileTooLarge         = errors.New("file exceeds the maximum upload size")
)

type (
	Repository interface {
		CreateAnnouncement(ctx context.Context, ann Announcement) (Announcement, error)
		GetAnnouncement(ctx context.Context, id string) (Announcement, error)
		// QueryAnnouncementsByClass returns announcements newest first,
		// with the author's name joined in.
		QueryAnnouncementsByClass(ctx context.Context, classID string) ([]Announcement, error)

		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		GetAssignment(ctx context.Context, id string) (Assignment, error)
		// QueryAssignmentsByClass returns assignments ordered by their
		// (textual) due date.
		QueryAssignmentsByClass(ctx context.Context, classID string) ([]Assignment, error)

		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		GetSubmission(ctx context.Context, assignmentID, studentID string) (Submission, error)
		QuerySubmissionsByAssignment(ctx context.Context, assignmentID string) ([]Submission, error)

		CreateComment(ctx context.Context, cmt Comment) (Comment, error)
		QueryCommentsByAnnouncement(ctx context.Context, announcementID string) ([]Comment, error)
	}

	Service interface {
		PostAnnouncement(ctx context.Context, actor user.User, classID string, na NewAnnouncement) (Announcement, error)
		ListAnnouncements(ctx context.Context, actor user.User, classID string) ([]Announcement, error)

		CreateAssignment(ctx context.Context, actor user.User, classID string, na NewAssignment) (Assignment, error)
		ListAssignments(ctx context.Context, actor user.User, classID string) ([]Assignment, error)
		GetAssignment(ctx context.Context, actor user.User, assignmentID string) (Assignment, error)

		Submit(ctx context.Context, actor user.User, assignmentID string, ns NewSubmission) (Submission, error)
		GetOwnSubmission(ctx context.Context, actor user.User, assignmentID string) (Submission, error)
		ListSubmissions(ctx context.Context, actor user.User, assignmentID string) ([]Submission, error)

		CommentOnAnnouncement(ctx context.Context, actor user.User, announcementID string, nc NewComment) (Comment, error)
		ListComments(ctx context.Context, actor user.User, announcementID string) ([]Comment, error)
	}

	service struct {
		repo    Repository
		classes classroom.Service
		files   FileStore
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, classes classroom.Service, files FileStore) Service {
	return &service{repo: repo, classes: classes, files: files}
}

// PostAnnouncement requires class membership; the author may be the
// owning teacher or any enrolled student.
func (svc *service) PostAnnouncement(ctx context.Context, actor user.User, classID string, na NewAnnouncement) (Announcement, error) {
	class, err := svc.classes.Get(ctx, actor, classID)
	if err != nil {
		return Announcement{}, err
	}

	ann := Announcement{
		ClassID:    class.ID,
		UserID:     actor.ID,
		AuthorName: actor.FullName,
		Title:      na.Title,
		Content:    na.Content,
		CreatedAt:  time.Now().UTC(),
	}
	return svc.repo.CreateAnnouncement(ctx, ann)
}

func (svc *service) ListAnnouncements(ctx context.Context, actor user.User, classID string) ([]Announcement, error) {
	class, err := svc.classes.Get(ctx, actor, classID)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryAnnouncementsByClass(ctx, class.ID)
}

func (svc *service) CreateAssignment(ctx context.Context, actor user.User, classID string, na NewAssignment) (Assignment, error) {
	if !actor.IsTeacher() {
		return Assignment{}, classroom.ErrTeachersOnly
	}
	// Get denies a teacher who does not own the class
	class, err := svc.classes.Get(ctx, actor, classID)
	if err != nil {
		return Assignment{}, err
	}

	a := Assignment{
		ClassID:     class.ID,
		Title:       na.Title,
		Description: na.Description,
		DueDate:     na.DueDate,
		Points:      na.Points,
		Type:        na.Type,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateAssignment(ctx, a)
}

func (svc *service) ListAssignments(ctx context.Context, actor user.User, classID string) ([]Assignment, error) {
	class, err := svc.classes.Get(ctx, actor, classID)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryAssignmentsByClass(ctx, class.ID)
}

func (svc *service) GetAssignment(ctx context.Context, actor user.User, assignmentID string) (Assignment, error) {
	a, err := svc.repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return Assignment{}, err
	}
	if _, err = svc.classes.Get(ctx, actor, a.ClassID); err != nil {
		return Assignment{}, err
	}
	return a, nil
}

func (svc *service) Submit(ctx context.Context, actor user.User, assignmentID string, ns NewSubmission) (Submission, error) {
	if !actor.IsStudent() {
		return Submission{}, classroom.ErrStudentsOnly
	}
	a, err := svc.GetAssignment(ctx, actor, assignmentID)
	if err != nil {
		return Submission{}, err
	}

	// a file with a disallowed extension is dropped, not an error;
	// the comment still goes through.
	var filePath string
	if f := ns.File; f != nil && AllowedFile(f.Filename) {
		if f.Size > core.Conf.Uploads.MaxSize {
			return Submission{}, core.NewValidationError(ErrFileTooLarge,
				core.FieldError{Field: "file", Error: ErrFileTooLarge.Error()})
		}
		filePath, err = svc.files.Save(StoredName(actor.ID, a.ID, f.Filename), f.Content)
		if err != nil {
			return Submission{}, errors.Wrap(err, "saving submission file")
		}
	}

	sub := Submission{
		AssignmentID: a.ID,
		StudentID:    actor.ID,
		FilePath:     filePath,
		Comment:      core.CleanString(ns.Comment),
		Status:       StatusTurnedIn,
		SubmittedAt:  time.Now().UTC(),
	}
	return svc.repo.CreateSubmission(ctx, sub)
}

func (svc *service) GetOwnSubmission(ctx context.Context, actor user.User, assignmentID string) (Submission, error) {
	if !actor.IsStudent() {
		return Submission{}, classroom.ErrStudentsOnly
	}
	a, err := svc.GetAssignment(ctx, actor, assignmentID)
	if err != nil {
		return Submission{}, err
	}
	return svc.repo.GetSubmission(ctx, a.ID, actor.ID)
}

// ListSubmissions is the owning teacher's grading view.
func (svc *service) ListSubmissions(ctx context.Context, actor user.User, assignmentID string) ([]Submission, error) {
	if !actor.IsTeacher() {
		return nil, classroom.ErrTeachersOnly
	}
	a, err := svc.GetAssignment(ctx, actor, assignmentID)
	if err != nil {
		return nil, err
	}
	return svc.repo.QuerySubmissionsByAssignment(ctx, a.ID)
}

func (svc *service) CommentOnAnnouncement(ctx context.Context, actor user.User, announcementID string, nc NewComment) (Comment, error) {
	ann, err := svc.repo.GetAnnouncement(ctx, announcementID)
	if err != nil {
		return Comment{}, err
	}
	if _, err = svc.classes.Get(ctx, actor, ann.ClassID); err != nil {
		return Comment{}, err
	}

	cmt := Comment{
		AnnouncementID: ann.ID,
		UserID:         actor.ID,
		AuthorName:     actor.FullName,
		Content:        nc.Content,
		CreatedAt:      time.Now().UTC(),
	}
	return svc.repo.CreateComment(ctx, cmt)
}

func (svc *service) ListComments(ctx context.Context, actor user.User, announcementID string) ([]Comment, error) {
	ann, err := svc.repo.GetAnnouncement(ctx, announcementID)
	if err != nil {
		return nil, err
	}
	if _, err = svc.classes.Get(ctx, actor, ann.ClassID); err != nil {
		return nil, err
	}
	return svc.repo.QueryCommentsByAnnouncement(ctx, ann.ID)
}
