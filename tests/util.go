package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/content"
	"github.com/trezcool/darasa/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		FullName:  name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser(): %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func CreateClass(
	t *testing.T,
	repo classroom.Repository,
	title, code string,
	teacher user.User,
	createdAt ...time.Time,
) classroom.Class {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	class, err := repo.CreateClass(context.Background(), classroom.Class{
		Title:     title,
		Code:      code,
		TeacherID: teacher.ID,
		CreatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateClass(): %v", err)
	}
	return class
}

func Enroll(
	t *testing.T,
	repo classroom.Repository,
	class classroom.Class,
	student user.User,
	enrolledAt ...time.Time,
) classroom.Enrollment {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(enrolledAt) > 0 {
		tstamp = enrolledAt[0].UTC()
	}
	enr, err := repo.CreateEnrollment(context.Background(), classroom.Enrollment{
		ClassID:    class.ID,
		StudentID:  student.ID,
		EnrolledAt: tstamp,
	})
	if err != nil {
		t.Fatalf("Enroll(): %v", err)
	}
	return enr
}

func CreateAnnouncement(
	t *testing.T,
	repo content.Repository,
	class classroom.Class,
	author user.User,
	title, body string,
) content.Announcement {
	t.Helper()

	ann, err := repo.CreateAnnouncement(context.Background(), content.Announcement{
		ClassID:   class.ID,
		UserID:    author.ID,
		Title:     title,
		Content:   body,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateAnnouncement(): %v", err)
	}
	return ann
}

func CreateAssignment(
	t *testing.T,
	repo content.Repository,
	class classroom.Class,
	title, dueDate string,
) content.Assignment {
	t.Helper()

	a, err := repo.CreateAssignment(context.Background(), content.Assignment{
		ClassID:   class.ID,
		Title:     title,
		DueDate:   dueDate,
		Type:      "assignment",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateAssignment(): %v", err)
	}
	return a
}
