package classroom

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrClassNotFound   = errors.New("class not found")
	ErrCodeExists      = errors.New("a class with this code already exists")
	ErrAlreadyEnrolled = errors.New("you are already enrolled in this class")
	ErrNoClassAccess   = errors.New("you do not have access to this class")
	ErrTeachersOnly    = errors.New("teachers only")
	ErrStudentsOnly    = errors.New("only students can join classes")
)

type (
	Repository interface {
		CreateClass(ctx context.Context, class Class) (Class, error)
		GetClass(ctx context.Context, filter GetFilter) (Class, error)
		// QueryClassesByTeacher returns a teacher's own classes, newest first.
		QueryClassesByTeacher(ctx context.Context, teacherID string) ([]Class, error)
		// QueryClassesByStudent returns a student's enrolled classes,
		// ordered by enrollment time, newest first.
		QueryClassesByStudent(ctx context.Context, studentID string) ([]Class, error)
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		IsEnrolled(ctx context.Context, classID, studentID string) (bool, error)
		// QueryClassStudents returns the class roster ordered by name.
		QueryClassStudents(ctx context.Context, classID string) ([]user.User, error)
	}

	Service interface {
		Create(ctx context.Context, actor user.User, nc NewClass) (Class, error)
		Join(ctx context.Context, actor user.User, code string) (Enrollment, error)
		List(ctx context.Context, actor user.User) ([]Class, error)
		Get(ctx context.Context, actor user.User, classID string) (Class, error)
		Roster(ctx context.Context, actor user.User, classID string) ([]user.User, error)
		Authorize(ctx context.Context, actor user.User, class Class) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, actor user.User, nc NewClass) (Class, error) {
	if !actor.IsTeacher() {
		return Class{}, ErrTeachersOnly
	}

	class := Class{
		Title:     nc.Title,
		Section:   nc.Section,
		Subject:   nc.Subject,
		Room:      nc.Room,
		TeacherID: actor.ID,
		CreatedAt: time.Now().UTC(),
	}

	// the code space is large enough that a collision is a freak event;
	// one extra draw covers it.
	for attempts := 0; ; attempts++ {
		code, err := GenerateCode()
		if err != nil {
			return Class{}, err
		}
		class.Code = code

		created, err := svc.repo.CreateClass(ctx, class)
		if err != nil {
			if errors.Cause(err) == ErrCodeExists && attempts < 1 {
				continue
			}
			return Class{}, err
		}
		return created, nil
	}
}

func (svc *service) Join(ctx context.Context, actor user.User, code string) (Enrollment, error) {
	if !actor.IsStudent() {
		return Enrollment{}, ErrStudentsOnly
	}

	class, err := svc.repo.GetClass(ctx, GetFilter{Code: NormalizeCode(code)})
	if err != nil {
		return Enrollment{}, err
	}

	enr := Enrollment{
		ClassID:    class.ID,
		StudentID:  actor.ID,
		EnrolledAt: time.Now().UTC(),
	}
	return svc.repo.CreateEnrollment(ctx, enr)
}

func (svc *service) List(ctx context.Context, actor user.User) ([]Class, error) {
	if actor.IsTeacher() {
		return svc.repo.QueryClassesByTeacher(ctx, actor.ID)
	}
	return svc.repo.QueryClassesByStudent(ctx, actor.ID)
}

func (svc *service) Get(ctx context.Context, actor user.User, classID string) (Class, error) {
	class, err := svc.repo.GetClass(ctx, GetFilter{ID: classID})
	if err != nil {
		return Class{}, err
	}
	if err = svc.Authorize(ctx, actor, class); err != nil {
		return Class{}, err
	}
	return class, nil
}

func (svc *service) Roster(ctx context.Context, actor user.User, classID string) ([]user.User, error) {
	class, err := svc.Get(ctx, actor, classID)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryClassStudents(ctx, class.ID)
}

// Authorize is the single access rule for a class: the owning teacher
// and enrolled students are members, everyone else is denied. Every
// content operation goes through here before touching the store.
func (svc *service) Authorize(ctx context.Context, actor user.User, class Class) error {
	if actor.IsTeacher() {
		if class.TeacherID == actor.ID {
			return nil
		}
		return ErrNoClassAccess
	}

	enrolled, err := svc.repo.IsEnrolled(ctx, class.ID, actor.ID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrNoClassAccess
	}
	return nil
}
