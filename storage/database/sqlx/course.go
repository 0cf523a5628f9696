package sqlxrepos

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/course"
)

// courseOrderColumns maps the orderable course fields to their column.
var courseOrderColumns = map[string]string{
	"id":   "c.id",
	"name": "c.name",
	"cost": "c.cost",
}

type (
	courseRow struct {
		ID          int             `db:"id"`
		OwnerID     null.Int        `db:"owner_id"`
		Name        string          `db:"name"`
		Description null.String     `db:"description"`
		Image       null.String     `db:"image"`
		IsPublished bool            `db:"is_published"`
		IsFree      bool            `db:"is_free"`
		Cost        decimal.Decimal `db:"cost"`
	}

	stepRow struct {
		ID             int         `db:"id"`
		LessonID       int         `db:"lesson_id"`
		OrderingNumber int         `db:"ordering_number"`
		Name           string      `db:"name"`
		Content        null.String `db:"content"`
		IsFree         bool        `db:"is_free"`
	}
)

func toCourseRow(c course.Course) courseRow {
	return courseRow{
		ID:          c.ID,
		OwnerID:     c.OwnerID,
		Name:        c.Name,
		Description: nullString(c.Description),
		Image:       nullString(c.Image),
		IsPublished: c.IsPublished,
		IsFree:      c.IsFree,
		Cost:        c.Cost,
	}
}

func (r courseRow) toCourse() course.Course {
	return course.Course{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Name:        r.Name,
		Description: r.Description.String,
		Image:       r.Image.String,
		IsPublished: r.IsPublished,
		IsFree:      r.IsFree,
		Cost:        r.Cost,
	}
}

func (r stepRow) toStep() course.Step {
	return course.Step{
		ID:             r.ID,
		LessonID:       r.LessonID,
		OrderingNumber: r.OrderingNumber,
		Name:           r.Name,
		Content:        r.Content.String,
		IsFree:         r.IsFree,
	}
}

// courseRepository runs on exec; db is nil once inside a transaction.
type courseRepository struct {
	db   core.DB
	exec core.DBExecutor
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db core.DB) course.Repository {
	return &courseRepository{db: db, exec: db}
}

func (repo *courseRepository) Atomic(ctx context.Context, fn func(repo course.Repository) error) error {
	if repo.db == nil { // already in a transaction
		return fn(repo)
	}
	return core.RunInTx(ctx, repo.db, func(exec core.DBExecutor) error {
		return fn(&courseRepository{exec: exec})
	})
}

// Course

const courseColumns = `c.id, c.owner_id, c.name, c.description, c.image, c.is_published, c.is_free, c.cost`

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	row := toCourseRow(c)
	err := repo.exec.GetContext(ctx, &row.ID, `
		INSERT INTO course (owner_id, name, description, image, is_published, is_free, cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		row.OwnerID, row.Name, row.Description, row.Image, row.IsPublished, row.IsFree, row.Cost,
	)
	if err != nil {
		return course.Course{}, err
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id int) (course.Course, error) {
	var row courseRow
	if err := repo.exec.GetContext(ctx, &row, `SELECT `+courseColumns+` FROM course c WHERE c.id = $1`, id); err != nil {
		return course.Course{}, notFound(err, course.ErrCourseNotFound)
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter) ([]course.Course, error) {
	var (
		q     strings.Builder
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	q.WriteString(`SELECT ` + courseColumns + ` FROM course c`)
	if filter.StudentID != 0 {
		q.WriteString(` JOIN course_student cs ON cs.course_id = c.id AND cs.user_id = ` + arg(filter.StudentID))
	}
	if filter.OwnerID != 0 {
		conds = append(conds, `c.owner_id = `+arg(filter.OwnerID))
	}
	if filter.PublishedOnly {
		conds = append(conds, `c.is_published`)
	}
	if len(conds) > 0 {
		q.WriteString(` WHERE ` + strings.Join(conds, " AND "))
	}
	orderBy := make([]string, 0, len(filter.Ordering)+2)
	for _, ord := range filter.Ordering {
		if col, ok := courseOrderColumns[ord.Field]; ok {
			orderBy = append(orderBy, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	orderBy = append(orderBy, "c.name ASC", "c.id ASC")
	q.WriteString(` ORDER BY ` + strings.Join(orderBy, ", "))

	var rows []courseRow
	if err := repo.exec.SelectContext(ctx, &rows, q.String(), args...); err != nil {
		return nil, err
	}
	courses := make([]course.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.toCourse())
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	row := toCourseRow(c)
	res, err := repo.exec.NamedExecContext(ctx, `
		UPDATE course SET
			owner_id = :owner_id, name = :name, description = :description, image = :image,
			is_published = :is_published, is_free = :is_free, cost = :cost
		WHERE id = :id`, row)
	if err != nil {
		return course.Course{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrCourseNotFound
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id int) error {
	_, err := repo.exec.ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id)
	return err
}

// Module

func (repo *courseRepository) CreateModule(ctx context.Context, m course.Module) (course.Module, error) {
	err := repo.exec.GetContext(ctx, &m.ID,
		`INSERT INTO module (course_id, ordering_number, name) VALUES ($1, $2, $3) RETURNING id`,
		m.CourseID, m.OrderingNumber, m.Name,
	)
	if pqCode(err) == foreignKeyViolation {
		return course.Module{}, course.ErrCourseNotFound
	}
	return m, err
}

func (repo *courseRepository) GetModule(ctx context.Context, id int) (course.Module, error) {
	var m course.Module
	err := repo.exec.QueryRowxContext(ctx,
		`SELECT id, course_id, ordering_number, name FROM module WHERE id = $1`, id,
	).Scan(&m.ID, &m.CourseID, &m.OrderingNumber, &m.Name)
	return m, notFound(err, course.ErrModuleNotFound)
}

func (repo *courseRepository) QueryModules(ctx context.Context, courseIDs ...int) ([]course.Module, error) {
	modules := make([]course.Module, 0)
	if len(courseIDs) == 0 {
		return modules, nil
	}
	q, args, err := in(repo.exec,
		`SELECT id, course_id, ordering_number, name FROM module WHERE course_id IN (?) ORDER BY ordering_number, id`,
		courseIDs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	rows, err := repo.exec.QueryxContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var m course.Module
		if err = rows.Scan(&m.ID, &m.CourseID, &m.OrderingNumber, &m.Name); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

func (repo *courseRepository) UpdateModule(ctx context.Context, m course.Module) (course.Module, error) {
	res, err := repo.exec.ExecContext(ctx,
		`UPDATE module SET ordering_number = $1, name = $2 WHERE id = $3`,
		m.OrderingNumber, m.Name, m.ID,
	)
	if err != nil {
		return course.Module{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Module{}, course.ErrModuleNotFound
	}
	return m, nil
}

func (repo *courseRepository) DeleteModules(ctx context.Context, ids ...int) error {
	return repo.deleteIn(ctx, `DELETE FROM module WHERE id IN (?)`, ids)
}

// Lesson

func (repo *courseRepository) CreateLesson(ctx context.Context, l course.Lesson) (course.Lesson, error) {
	err := repo.exec.GetContext(ctx, &l.ID,
		`INSERT INTO lesson (module_id, ordering_number, name) VALUES ($1, $2, $3) RETURNING id`,
		l.ModuleID, l.OrderingNumber, l.Name,
	)
	if pqCode(err) == foreignKeyViolation {
		return course.Lesson{}, course.ErrModuleNotFound
	}
	return l, err
}

func (repo *courseRepository) GetLesson(ctx context.Context, id int) (course.Lesson, error) {
	var l course.Lesson
	err := repo.exec.QueryRowxContext(ctx,
		`SELECT id, module_id, ordering_number, name FROM lesson WHERE id = $1`, id,
	).Scan(&l.ID, &l.ModuleID, &l.OrderingNumber, &l.Name)
	return l, notFound(err, course.ErrLessonNotFound)
}

func (repo *courseRepository) QueryLessons(ctx context.Context, moduleIDs ...int) ([]course.Lesson, error) {
	lessons := make([]course.Lesson, 0)
	if len(moduleIDs) == 0 {
		return lessons, nil
	}
	q, args, err := in(repo.exec,
		`SELECT id, module_id, ordering_number, name FROM lesson WHERE module_id IN (?) ORDER BY ordering_number, id`,
		moduleIDs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	rows, err := repo.exec.QueryxContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var l course.Lesson
		if err = rows.Scan(&l.ID, &l.ModuleID, &l.OrderingNumber, &l.Name); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

func (repo *courseRepository) UpdateLesson(ctx context.Context, l course.Lesson) (course.Lesson, error) {
	res, err := repo.exec.ExecContext(ctx,
		`UPDATE lesson SET ordering_number = $1, name = $2 WHERE id = $3`,
		l.OrderingNumber, l.Name, l.ID,
	)
	if err != nil {
		return course.Lesson{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Lesson{}, course.ErrLessonNotFound
	}
	return l, nil
}

func (repo *courseRepository) DeleteLessons(ctx context.Context, ids ...int) error {
	return repo.deleteIn(ctx, `DELETE FROM lesson WHERE id IN (?)`, ids)
}

// Step

const stepColumns = `id, lesson_id, ordering_number, name, content, is_free`

func (repo *courseRepository) CreateStep(ctx context.Context, s course.Step) (course.Step, error) {
	err := repo.exec.GetContext(ctx, &s.ID, `
		INSERT INTO step (lesson_id, ordering_number, name, content, is_free)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		s.LessonID, s.OrderingNumber, s.Name, nullString(s.Content), s.IsFree,
	)
	if pqCode(err) == foreignKeyViolation {
		return course.Step{}, course.ErrLessonNotFound
	}
	return s, err
}

func (repo *courseRepository) GetStep(ctx context.Context, id int) (course.Step, error) {
	var row stepRow
	if err := repo.exec.GetContext(ctx, &row, `SELECT `+stepColumns+` FROM step WHERE id = $1`, id); err != nil {
		return course.Step{}, notFound(err, course.ErrStepNotFound)
	}
	return row.toStep(), nil
}

func (repo *courseRepository) QuerySteps(ctx context.Context, lessonIDs ...int) ([]course.Step, error) {
	steps := make([]course.Step, 0)
	if len(lessonIDs) == 0 {
		return steps, nil
	}
	q, args, err := in(repo.exec,
		`SELECT `+stepColumns+` FROM step WHERE lesson_id IN (?) ORDER BY ordering_number, id`,
		lessonIDs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []stepRow
	if err = repo.exec.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	for _, r := range rows {
		steps = append(steps, r.toStep())
	}
	return steps, nil
}

func (repo *courseRepository) UpdateStep(ctx context.Context, s course.Step) (course.Step, error) {
	res, err := repo.exec.ExecContext(ctx,
		`UPDATE step SET ordering_number = $1, name = $2, content = $3, is_free = $4 WHERE id = $5`,
		s.OrderingNumber, s.Name, nullString(s.Content), s.IsFree, s.ID,
	)
	if err != nil {
		return course.Step{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Step{}, course.ErrStepNotFound
	}
	return s, nil
}

func (repo *courseRepository) DeleteSteps(ctx context.Context, ids ...int) error {
	return repo.deleteIn(ctx, `DELETE FROM step WHERE id IN (?)`, ids)
}

func (repo *courseRepository) AddStepViewer(ctx context.Context, stepID, userID int) error {
	_, err := repo.exec.ExecContext(ctx,
		`INSERT INTO step_viewer (step_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		stepID, userID,
	)
	if pqCode(err) == foreignKeyViolation {
		return course.ErrStepNotFound
	}
	return err
}

func (repo *courseRepository) QueryStepViewers(ctx context.Context, stepID int) ([]int, error) {
	ids := make([]int, 0)
	err := repo.exec.SelectContext(ctx, &ids, `SELECT user_id FROM step_viewer WHERE step_id = $1 ORDER BY user_id`, stepID)
	return ids, err
}

func (repo *courseRepository) deleteIn(ctx context.Context, query string, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := in(repo.exec, query, ids)
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	_, err = repo.exec.ExecContext(ctx, q, args...)
	return err
}
