package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
)

type classRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Section     string      `db:"section"`
	Subject     string      `db:"subject"`
	Room        string      `db:"room"`
	Code        string      `db:"code"`
	TeacherID   string      `db:"teacher_id"`
	TeacherName null.String `db:"teacher_name"`
	CreatedAt   time.Time   `db:"created_at"`
}

type enrollmentRow struct {
	ID         string    `db:"id"`
	ClassID    string    `db:"class_id"`
	StudentID  string    `db:"student_id"`
	EnrolledAt time.Time `db:"enrolled_at"`
}

// classCols joins the teacher's name in so listings need no extra query.
const classCols = `
	c.id, c.title, c.section, c.subject, c.room, c.code, c.teacher_id, c.created_at,
	u.full_name AS teacher_name`

type classroomRepository struct {
	db *sqlx.DB
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *sqlx.DB) *classroomRepository {
	return &classroomRepository{db: db}
}

func (repo classroomRepository) toRow(class classroom.Class) classRow {
	return classRow{
		ID:        class.ID,
		Title:     class.Title,
		Section:   class.Section,
		Subject:   class.Subject,
		Room:      class.Room,
		Code:      class.Code,
		TeacherID: class.TeacherID,
		CreatedAt: class.CreatedAt.UTC(),
	}
}

func (repo classroomRepository) fromRow(row classRow) classroom.Class {
	return classroom.Class{
		ID:          row.ID,
		Title:       row.Title,
		Section:     row.Section,
		Subject:     row.Subject,
		Room:        row.Room,
		Code:        row.Code,
		TeacherID:   row.TeacherID,
		TeacherName: row.TeacherName.String,
		CreatedAt:   row.CreatedAt,
	}
}

func (repo classroomRepository) fromRows(rows []classRow) []classroom.Class {
	classes := make([]classroom.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, repo.fromRow(row))
	}
	return classes
}

// trapNoRowsErr maps psql "no rows" err to classroom.ErrClassNotFound
func (repo classroomRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return classroom.ErrClassNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo classroomRepository) CreateClass(ctx context.Context, class classroom.Class) (classroom.Class, error) {
	class.ID = uuid.New().String()
	row := repo.toRow(class)

	const q = `
		INSERT INTO classes (id, title, section, subject, room, code, teacher_id, created_at)
		VALUES (:id, :title, :section, :subject, :room, :code, :teacher_id, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		if isUniqueViolation(err, "classes_code_key") {
			return classroom.Class{}, classroom.ErrCodeExists
		}
		return classroom.Class{}, errors.Wrap(err, "inserting class")
	}
	return repo.fromRow(row), nil
}

func (repo classroomRepository) GetClass(ctx context.Context, filter classroom.GetFilter) (classroom.Class, error) {
	q := "SELECT" + classCols + `
		FROM classes c
		JOIN users u ON u.id = c.teacher_id
		WHERE `

	var row classRow
	if filter.ID != "" {
		if _, err := uuid.Parse(filter.ID); err != nil {
			return classroom.Class{}, classroom.ErrClassNotFound
		}
		if err := repo.db.GetContext(ctx, &row, q+"c.id = $1", filter.ID); err != nil {
			return classroom.Class{}, repo.trapNoRowsErr(err, "finding class by ID")
		}
	} else {
		if err := repo.db.GetContext(ctx, &row, q+"c.code = $1", filter.Code); err != nil {
			return classroom.Class{}, repo.trapNoRowsErr(err, "finding class by code")
		}
	}
	return repo.fromRow(row), nil
}

func (repo classroomRepository) QueryClassesByTeacher(ctx context.Context, teacherID string) ([]classroom.Class, error) {
	q := "SELECT" + classCols + `
		FROM classes c
		JOIN users u ON u.id = c.teacher_id
		WHERE c.teacher_id = $1
		ORDER BY c.created_at DESC`

	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, q, teacherID); err != nil {
		return nil, errors.Wrap(err, "querying classes by teacher")
	}
	return repo.fromRows(rows), nil
}

func (repo classroomRepository) QueryClassesByStudent(ctx context.Context, studentID string) ([]classroom.Class, error) {
	q := "SELECT" + classCols + `
		FROM classes c
		JOIN users u ON u.id = c.teacher_id
		JOIN enrollments e ON e.class_id = c.id
		WHERE e.student_id = $1
		ORDER BY e.enrolled_at DESC`

	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying classes by student")
	}
	return repo.fromRows(rows), nil
}

func (repo classroomRepository) CreateEnrollment(ctx context.Context, enr classroom.Enrollment) (classroom.Enrollment, error) {
	enr.ID = uuid.New().String()
	row := enrollmentRow{
		ID:         enr.ID,
		ClassID:    enr.ClassID,
		StudentID:  enr.StudentID,
		EnrolledAt: enr.EnrolledAt.UTC(),
	}

	const q = `
		INSERT INTO enrollments (id, class_id, student_id, enrolled_at)
		VALUES (:id, :class_id, :student_id, :enrolled_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		if isUniqueViolation(err, "enrollments_class_id_student_id_key") {
			return classroom.Enrollment{}, classroom.ErrAlreadyEnrolled
		}
		return classroom.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	enr.EnrolledAt = row.EnrolledAt
	return enr, nil
}

func (repo classroomRepository) IsEnrolled(ctx context.Context, classID, studentID string) (bool, error) {
	const q = "SELECT EXISTS (SELECT 1 FROM enrollments WHERE class_id = $1 AND student_id = $2)"

	var enrolled bool
	if err := repo.db.GetContext(ctx, &enrolled, q, classID, studentID); err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return enrolled, nil
}

func (repo classroomRepository) QueryClassStudents(ctx context.Context, classID string) ([]user.User, error) {
	const q = `
		SELECT u.*
		FROM users u
		JOIN enrollments e ON e.student_id = u.id
		WHERE e.class_id = $1
		ORDER BY u.full_name`

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, q, classID); err != nil {
		return nil, errors.Wrap(err, "querying class roster")
	}

	uRepo := userRepository{}
	students := make([]user.User, 0, len(rows))
	for _, row := range rows {
		students = append(students, uRepo.fromRow(row))
	}
	return students, nil
}
