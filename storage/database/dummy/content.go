package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/content"
)

type contentRepository struct {
	db *DB
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *DB) content.Repository {
	return &contentRepository{db: db}
}

func (repo *contentRepository) authorName(id string) string {
	if usr, ok := repo.db.users[id]; ok {
		return usr.FullName
	}
	return ""
}

func (repo *contentRepository) CreateAnnouncement(ctx context.Context, ann content.Announcement) (content.Announcement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ann.ID = uuid.New().String()
	repo.db.announcements[ann.ID] = &ann
	ann.AuthorName = repo.authorName(ann.UserID)
	return ann, nil
}

func (repo *contentRepository) GetAnnouncement(ctx context.Context, id string) (content.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ann, ok := repo.db.announcements[id]; ok {
		a := *ann
		a.AuthorName = repo.authorName(a.UserID)
		return a, nil
	}
	return content.Announcement{}, content.ErrAnnouncementNotFound
}

func (repo *contentRepository) QueryAnnouncementsByClass(ctx context.Context, classID string) ([]content.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	anns := make([]content.Announcement, 0)
	for _, ann := range repo.db.announcements {
		if ann.ClassID == classID {
			a := *ann
			a.AuthorName = repo.authorName(a.UserID)
			anns = append(anns, a)
		}
	}
	sort.Slice(anns, func(i, j int) bool { return anns[i].CreatedAt.After(anns[j].CreatedAt) })
	return anns, nil
}

func (repo *contentRepository) CreateAssignment(ctx context.Context, a content.Assignment) (content.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a.ID = uuid.New().String()
	repo.db.assignments[a.ID] = &a
	return a, nil
}

func (repo *contentRepository) GetAssignment(ctx context.Context, id string) (content.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.assignments[id]; ok {
		return *a, nil
	}
	return content.Assignment{}, content.ErrAssignmentNotFound
}

func (repo *contentRepository) QueryAssignmentsByClass(ctx context.Context, classID string) ([]content.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	asgs := make([]content.Assignment, 0)
	for _, a := range repo.db.assignments {
		if a.ClassID == classID {
			asgs = append(asgs, *a)
		}
	}
	sort.Slice(asgs, func(i, j int) bool { return asgs[i].DueDate < asgs[j].DueDate })
	return asgs, nil
}

func (repo *contentRepository) CreateSubmission(ctx context.Context, sub content.Submission) (content.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, s := range repo.db.submissions {
		if s.AssignmentID == sub.AssignmentID && s.StudentID == sub.StudentID {
			return content.Submission{}, content.ErrAlreadySubmitted
		}
	}

	sub.ID = uuid.New().String()
	repo.db.submissions[sub.ID] = &sub
	return sub, nil
}

func (repo *contentRepository) GetSubmission(ctx context.Context, assignmentID, studentID string) (content.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sub := range repo.db.submissions {
		if sub.AssignmentID == assignmentID && sub.StudentID == studentID {
			return *sub, nil
		}
	}
	return content.Submission{}, content.ErrSubmissionNotFound
}

func (repo *contentRepository) QuerySubmissionsByAssignment(ctx context.Context, assignmentID string) ([]content.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]content.Submission, 0)
	for _, sub := range repo.db.submissions {
		if sub.AssignmentID == assignmentID {
			subs = append(subs, *sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubmittedAt.Before(subs[j].SubmittedAt) })
	return subs, nil
}

func (repo *contentRepository) CreateComment(ctx context.Context, cmt content.Comment) (content.Comment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cmt.ID = uuid.New().String()
	repo.db.comments[cmt.ID] = &cmt
	cmt.AuthorName = repo.authorName(cmt.UserID)
	return cmt, nil
}

func (repo *contentRepository) QueryCommentsByAnnouncement(ctx context.Context, announcementID string) ([]content.Comment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cmts := make([]content.Comment, 0)
	for _, cmt := range repo.db.comments {
		if cmt.AnnouncementID == announcementID {
			c := *cmt
			c.AuthorName = repo.authorName(c.UserID)
			cmts = append(cmts, c)
		}
	}
	sort.Slice(cmts, func(i, j int) bool { return cmts[i].CreatedAt.Before(cmts[j].CreatedAt) })
	return cmts, nil
}
