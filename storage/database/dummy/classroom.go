package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
)

type classroomRepository struct {
	db *DB
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *DB) classroom.Repository {
	return &classroomRepository{db: db}
}

// withTeacherName denormalizes the owner's name the way the SQL
// queries join it in.
func (repo *classroomRepository) withTeacherName(class classroom.Class) classroom.Class {
	if t, ok := repo.db.users[class.TeacherID]; ok {
		class.TeacherName = t.FullName
	}
	return class
}

func (repo *classroomRepository) CreateClass(ctx context.Context, class classroom.Class) (classroom.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, c := range repo.db.classes {
		if c.Code == class.Code {
			return classroom.Class{}, classroom.ErrCodeExists
		}
	}

	class.ID = uuid.New().String()
	repo.db.classes[class.ID] = &class
	return repo.withTeacherName(class), nil
}

func (repo *classroomRepository) GetClass(ctx context.Context, filter classroom.GetFilter) (classroom.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if class, ok := repo.db.classes[filter.ID]; ok {
			return repo.withTeacherName(*class), nil
		}
		return classroom.Class{}, classroom.ErrClassNotFound
	}
	for _, class := range repo.db.classes {
		if class.Code == filter.Code {
			return repo.withTeacherName(*class), nil
		}
	}
	return classroom.Class{}, classroom.ErrClassNotFound
}

func (repo *classroomRepository) QueryClassesByTeacher(ctx context.Context, teacherID string) ([]classroom.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]classroom.Class, 0)
	for _, class := range repo.db.classes {
		if class.TeacherID == teacherID {
			classes = append(classes, repo.withTeacherName(*class))
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].CreatedAt.After(classes[j].CreatedAt) })
	return classes, nil
}

func (repo *classroomRepository) QueryClassesByStudent(ctx context.Context, studentID string) ([]classroom.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	enrs := make([]classroom.Enrollment, 0)
	for _, enr := range repo.db.enrollments {
		if enr.StudentID == studentID {
			enrs = append(enrs, *enr)
		}
	}
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].EnrolledAt.After(enrs[j].EnrolledAt) })

	classes := make([]classroom.Class, 0, len(enrs))
	for _, enr := range enrs {
		if class, ok := repo.db.classes[enr.ClassID]; ok {
			classes = append(classes, repo.withTeacherName(*class))
		}
	}
	return classes, nil
}

func (repo *classroomRepository) CreateEnrollment(ctx context.Context, enr classroom.Enrollment) (classroom.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, e := range repo.db.enrollments {
		if e.ClassID == enr.ClassID && e.StudentID == enr.StudentID {
			return classroom.Enrollment{}, classroom.ErrAlreadyEnrolled
		}
	}

	enr.ID = uuid.New().String()
	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *classroomRepository) IsEnrolled(ctx context.Context, classID, studentID string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, enr := range repo.db.enrollments {
		if enr.ClassID == classID && enr.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *classroomRepository) QueryClassStudents(ctx context.Context, classID string) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]user.User, 0)
	for _, enr := range repo.db.enrollments {
		if enr.ClassID == classID {
			if usr, ok := repo.db.users[enr.StudentID]; ok {
				students = append(students, *usr)
			}
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].FullName < students[j].FullName })
	return students, nil
}
