package course

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/access"
	"github.com/trezcool/coursehub/core/user"
)

var (
	// errors
	ErrCourseNotFound = core.NewNotFoundError("course")
	ErrModuleNotFound = core.NewNotFoundError("module")
	ErrLessonNotFound = core.NewNotFoundError("lesson")
	ErrStepNotFound   = core.NewNotFoundError("step")

	errForeignEntry = "does not belong to this form"
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		GetCourse(ctx context.Context, id int) (Course, error)
		QueryCourses(ctx context.Context, filter QueryFilter) ([]Course, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		DeleteCourse(ctx context.Context, id int) error

		CreateModule(ctx context.Context, m Module) (Module, error)
		GetModule(ctx context.Context, id int) (Module, error)
		QueryModules(ctx context.Context, courseIDs ...int) ([]Module, error)
		UpdateModule(ctx context.Context, m Module) (Module, error)
		DeleteModules(ctx context.Context, ids ...int) error

		CreateLesson(ctx context.Context, l Lesson) (Lesson, error)
		GetLesson(ctx context.Context, id int) (Lesson, error)
		QueryLessons(ctx context.Context, moduleIDs ...int) ([]Lesson, error)
		UpdateLesson(ctx context.Context, l Lesson) (Lesson, error)
		DeleteLessons(ctx context.Context, ids ...int) error

		CreateStep(ctx context.Context, s Step) (Step, error)
		GetStep(ctx context.Context, id int) (Step, error)
		QuerySteps(ctx context.Context, lessonIDs ...int) ([]Step, error)
		UpdateStep(ctx context.Context, s Step) (Step, error)
		DeleteSteps(ctx context.Context, ids ...int) error

		// AddStepViewer records userID as a viewer of the step; adding it twice is a no-op.
		AddStepViewer(ctx context.Context, stepID, userID int) error
		QueryStepViewers(ctx context.Context, stepID int) ([]int, error)

		// Atomic runs fn with a Repository whose writes are all committed, or none when fn fails.
		Atomic(ctx context.Context, fn func(repo Repository) error) error
	}

	// Enrollments tells whether a user studies a course.
	Enrollments interface {
		IsEnrolled(ctx context.Context, userID, courseID int) (bool, error)
	}

	Service interface {
		GetCourse(ctx context.Context, id int) (Course, error)
		ListPublished(ctx context.Context, ordering ...core.DBOrdering) ([]Course, error)
		ListOwned(ctx context.Context, actor user.User, ordering ...core.DBOrdering) ([]Course, error)
		Preview(ctx context.Context, id int) (CourseTree, error)
		FreeCourse(ctx context.Context, id int) (CourseTree, error)
		FreeStep(ctx context.Context, id int) (Step, error)

		TeacherCourse(ctx context.Context, actor user.User, id int) (CourseTree, error)
		CreateCourse(ctx context.Context, actor user.User, form CourseForm) (Course, error)
		UpdateCourse(ctx context.Context, actor user.User, id int, form CourseUpdate) (CourseTree, error)
		DeleteCourse(ctx context.Context, actor user.User, id int) error

		CreateModule(ctx context.Context, actor user.User, courseID int, form ModuleForm) (Module, error)
		TeacherModule(ctx context.Context, actor user.User, id int) (ModuleTree, error)
		UpdateModule(ctx context.Context, actor user.User, id int, form ModuleUpdate) (ModuleTree, error)
		DeleteModule(ctx context.Context, actor user.User, id int) error

		CreateLesson(ctx context.Context, actor user.User, moduleID int, form LessonForm) (Lesson, error)
		TeacherLesson(ctx context.Context, actor user.User, id int) (LessonTree, error)
		UpdateLesson(ctx context.Context, actor user.User, id int, form LessonUpdate) (LessonTree, error)
		DeleteLesson(ctx context.Context, actor user.User, id int) error

		CreateStep(ctx context.Context, actor user.User, lessonID int, form StepForm) (Step, error)
		TeacherStep(ctx context.Context, actor user.User, id int) (Step, error)
		UpdateStep(ctx context.Context, actor user.User, id int, form StepForm) (Step, error)
		DeleteStep(ctx context.Context, actor user.User, id int) error
		StepViewers(ctx context.Context, actor user.User, id int) ([]int, error)

		StudentCourse(ctx context.Context, actor user.User, id int) (CourseTree, error)
		StudentStep(ctx context.Context, actor user.User, id int) (Step, error)
	}

	service struct {
		repo        Repository
		enrollments Enrollments
		validate    *validator.Validate
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, enrollments Enrollments, validate *validator.Validate) Service {
	return &service{
		repo:        repo,
		enrollments: enrollments,
		validate:    validate,
	}
}

// authorize resolves the resource flags of course c for actor, then applies the access rules.
func (svc *service) authorize(ctx context.Context, action access.Action, actor *user.User, c Course, st *Step) error {
	res := access.Resource{
		OwnerID:     c.ownerID(),
		IsPublished: c.IsPublished,
		CourseFree:  c.IsFree,
	}
	if st != nil {
		res.StepFree = st.IsFree
	}
	if action == access.ActionStudy && actor != nil {
		enrolled, err := svc.enrollments.IsEnrolled(ctx, actor.ID, c.ID)
		if err != nil {
			return errors.Wrap(err, "checking enrollment")
		}
		res.Enrolled = enrolled
	}
	return access.Authorize(action, actor, res)
}

// Ancestors lookups

func (svc *service) GetCourse(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *service) moduleWithCourse(ctx context.Context, id int) (Module, Course, error) {
	m, err := svc.repo.GetModule(ctx, id)
	if err != nil {
		return Module{}, Course{}, err
	}
	c, err := svc.repo.GetCourse(ctx, m.CourseID)
	return m, c, errors.Wrap(err, "finding module course")
}

func (svc *service) lessonWithCourse(ctx context.Context, id int) (Lesson, Course, error) {
	l, err := svc.repo.GetLesson(ctx, id)
	if err != nil {
		return Lesson{}, Course{}, err
	}
	_, c, err := svc.moduleWithCourse(ctx, l.ModuleID)
	return l, c, errors.Wrap(err, "finding lesson course")
}

func (svc *service) stepWithCourse(ctx context.Context, id int) (Step, Course, error) {
	s, err := svc.repo.GetStep(ctx, id)
	if err != nil {
		return Step{}, Course{}, err
	}
	_, c, err := svc.lessonWithCourse(ctx, s.LessonID)
	return s, c, errors.Wrap(err, "finding step course")
}

// Public

func (svc *service) ListPublished(ctx context.Context, ordering ...core.DBOrdering) ([]Course, error) {
	if err := checkOrdering(ordering); err != nil {
		return nil, err
	}
	return svc.repo.QueryCourses(ctx, QueryFilter{PublishedOnly: true, Ordering: ordering})
}

func checkOrdering(ordering []core.DBOrdering) error {
	for _, ord := range ordering {
		valid := false
		for _, fld := range OrderingFields {
			valid = valid || ord.Field == fld
		}
		if !valid {
			return core.NewValidationError(nil, core.FieldError{
				Field: "ordering",
				Error: fmt.Sprintf("cannot order by %q, choices are: %s", ord.Field, strings.Join(OrderingFields, ", ")),
			})
		}
	}
	return nil
}

// Preview returns a published course with the content of its paid steps left out.
func (svc *service) Preview(ctx context.Context, id int) (CourseTree, error) {
	c, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return CourseTree{}, err
	}
	if !c.IsPublished {
		return CourseTree{}, ErrCourseNotFound
	}
	tree, err := svc.courseTree(ctx, c)
	if err != nil {
		return CourseTree{}, err
	}
	if !c.IsFree {
		tree.hidePaidContent()
	}
	return tree, nil
}

func (svc *service) FreeCourse(ctx context.Context, id int) (CourseTree, error) {
	c, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return CourseTree{}, err
	}
	if err = svc.authorize(ctx, access.ActionPreview, nil, c, nil); err != nil {
		return CourseTree{}, err
	}
	return svc.courseTree(ctx, c)
}

func (svc *service) FreeStep(ctx context.Context, id int) (Step, error) {
	s, c, err := svc.stepWithCourse(ctx, id)
	if err != nil {
		return Step{}, err
	}
	if err = svc.authorize(ctx, access.ActionPreview, nil, c, &s); err != nil {
		return Step{}, err
	}
	return s, nil
}

// Teacher: Course

func (svc *service) ListOwned(ctx context.Context, actor user.User, ordering ...core.DBOrdering) ([]Course, error) {
	if err := checkOrdering(ordering); err != nil {
		return nil, err
	}
	return svc.repo.QueryCourses(ctx, QueryFilter{OwnerID: actor.ID, Ordering: ordering})
}

func (svc *service) TeacherCourse(ctx context.Context, actor user.User, id int) (CourseTree, error) {
	c, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return CourseTree{}, err
	}
	if err = svc.authorize(ctx, access.ActionManage, &actor, c, nil); err != nil {
		return CourseTree{}, err
	}
	return svc.courseTree(ctx, c)
}

func (svc *service) CreateCourse(ctx context.Context, actor user.User, form CourseForm) (Course, error) {
	if err := form.Validate(svc.validate); err != nil {
		return Course{}, err
	}
	var c Course
	form.apply(&c)
	c.OwnerID.SetValid(actor.ID)

	c, err := svc.repo.CreateCourse(ctx, c)
	return c, errors.Wrap(err, "creating course")
}

// UpdateCourse saves the course fields along with its module set, all at once.
func (svc *service) UpdateCourse(ctx context.Context, actor user.User, id int, form CourseUpdate) (CourseTree, error) {
	c, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return CourseTree{}, err
	}
	if err = svc.authorize(ctx, access.ActionManage, &actor, c, nil); err != nil {
		return CourseTree{}, err
	}
	if err = form.Validate(svc.validate); err != nil {
		return CourseTree{}, err
	}

	modules, err := svc.repo.QueryModules(ctx, c.ID)
	if err != nil {
		return CourseTree{}, errors.Wrap(err, "querying modules")
	}
	existing := make(map[int]bool, len(modules))
	for _, m := range modules {
		existing[m.ID] = true
	}
	changes, err := splitSet("modules", form.Modules, existing)
	if err != nil {
		return CourseTree{}, err
	}

	form.apply(&c)
	err = svc.repo.Atomic(ctx, func(repo Repository) error {
		var err error
		if c, err = repo.UpdateCourse(ctx, c); err != nil {
			return errors.Wrap(err, "updating course")
		}
		for _, e := range changes.saves {
			m := Module{ID: e.ID, CourseID: c.ID, OrderingNumber: e.OrderingNumber, Name: e.Name}
			if e.ID == 0 {
				_, err = repo.CreateModule(ctx, m)
			} else {
				_, err = repo.UpdateModule(ctx, m)
			}
			if err != nil {
				return errors.Wrap(err, "saving module")
			}
		}
		return errors.Wrap(repo.DeleteModules(ctx, changes.deletes...), "deleting modules")
	})
	if err != nil {
		return CourseTree{}, err
	}
	return svc.courseTree(ctx, c)
}

func (svc *service) DeleteCourse(ctx context.Context, actor user.User, id int) error {
	c, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.authorize(ctx, access.ActionManage, &actor, c, nil); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteCourse(ctx, c.ID), "deleting course")
}

// Teacher: Module

func (svc *service) CreateModule(ctx context.Context, actor user.User, courseID int, form ModuleForm) (Module, error) {
	c, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		return Module{}, err
	}
	if err = svc.authorize(ctx, access.ActionManage, &actor, c, nil); err != nil {
		return Module{}, err
	}
	if err = form.Validate(svc.validate); err != nil {
		return Module{}, err
	}
	m, err := svc.repo.CreateModule(ctx, Module{CourseID: c.ID, OrderingNumber: form.OrderingNumber, Name: form.Name})
	return m, errors.Wrap(err, "creating module")
}

func (svc *service) TeacherModule(ctx context.Context, actor user.User, id int) (ModuleTree, error) {
	m, c, err := svc.moduleWithCourse(ctx, id)
	if err != nil {
		return ModuleTree{}, err
	}
	if err = svc.authorize(ctx, access.ActionManage, &actor, c, nil); err != nil {
		return ModuleTree{}, err
	}
	return svc.moduleTree(ctx, m)
}

// UpdateModule saves the module fields along with its lesson set, all at once.
func (svc *service) UpdateModule(ctx context.Context, actor user.User, id int, form ModuleUpdate) (ModuleTree, error) {
	m, c, err := svc.moduleWithCourse(ctx, id)
	if err != nil {
		return ModuleTree{}, err
	}
	if err = svc.authorize(ctx, access.ActionManage, &actor, c, nil); err != nil {
		return ModuleTree{}, err
	}
	if err = form.Validate(svc.validate); err != nil {
		return ModuleTree{}, err
	}

	lessons, err := svc.repo.QueryLessons(ctx, m.ID)
	if err != nil {
		return ModuleTree{}, errors.Wrap(err, "querying lessons")
	}
	existing := make(map[int]bool, len(lessons))
	for _, l := range lessons {
		existing[l.ID] = true
	}
	changes, err := splitSet("lessons", form.Lessons, existing)
	if err != nil {
		return ModuleTree{}, err
	}

	m.OrderingNumber = form.OrderingNumber
	m.Name = form.Name
	err = svc.repo.Atomic(ctx, func(repo Repository) error {
		var err error
		if m, err = repo.UpdateModule(ctx, m); err != nil {
			return errors.Wrap(err, "updating module")
		}
		for _, e := range changes.saves {
			l := Lesson{ID: e.ID, ModuleID: m.ID, OrderingNumber: e.OrderingNumber, Name: e.Name}
			if e.ID == 0 {
				_, err = repo.CreateLesson(ctx, l)
			} else {
				_, err = repo.UpdateLesson(ctx, l)
			}
			if err != nil {
				return errors.Wrap(err, "saving lesson")
			}
		}
		return errors.Wrap(repo.DeleteLessons(ctx, changes.deletes...), "deleting lessons")
	})
	if err != nil {
		return ModuleTree{}, err
	}
	return svc.moduleTree(ctx, m)
}

func (svc *service) DeleteModule(ctx context.Context, actor user.User, id int) error {
	m, c, err := svc.moduleWithCourse(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.authorize(ctx, access.ActionManage, &actor, c, nil); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteModules(ctx, m.ID), "deleting module")
}

// Teacher: Lesson

func (svc *service) CreateLesson(ctx context.Context, actor user.User, moduleID int, form LessonForm) (Lesson, error) {
	m, c, err := svc.moduleWithCourse(ctx, moduleID)
	if err != nil {
		return Lesson{}, err
	}
	if err = svc.authorize(ctx, access.ActionManage, &actor, c, nil); err != nil {
		return Lesson{}, err
	}
	if err = form.Validate(svc.validate); err != nil {
		return Lesson{}, err
	}
	l, err := svc.repo.CreateLesson(ctx, Lesson{ModuleID: m.ID, OrderingNumber: form.OrderingNumber, Name: form.Name})
	return l, errors.Wrap(err, "creating lesson")
}

func (svc *service) TeacherLesson(ctx context.Context, actor user.User, id int) (LessonTree, error) {
	l, c, err := svc.lessonWithCourse(ctx, id)
	if err != nil {
		return LessonTree{}, err
	}
	if err = svc.authorize(ctx, access.ActionManage, &actor, c, nil); err != nil {
		return LessonTree{}, err
	}
	return svc.lessonTree(ctx, l)
}

// UpdateLesson saves the lesson fields along with its step set, all at once.
// Steps listed in the set keep their content and free flag.
func (svc *service) UpdateLesson(ctx context.Context, actor user.User, id int, form LessonUpdate) (LessonTree, error) {
	l, c, err := svc.lessonWithCourse(ctx, id)
	if err != nil {
		return LessonTree{}, err
	}
	if err = svc.authorize(ctx, access.ActionManage, &actor, c, nil); err != nil {
		return LessonTree{}, err
	}
	if err = form.Validate(svc.validate); err != nil {
		return LessonTree{}, err
	}

	steps, err := svc.repo.QuerySteps(ctx, l.ID)
	if err != nil {
		return LessonTree{}, errors.Wrap(err, "querying steps")
	}
	existing := make(map[int]bool, len(steps))
	byID := make(map[int]Step, len(steps))
	for _, s := range steps {
		existing[s.ID] = true
		byID[s.ID] = s
	}
	changes, err := splitSet("steps", form.Steps, existing)
	if err != nil {
		return LessonTree{}, err
	}

	l.OrderingNumber = form.OrderingNumber
	l.Name = form.Name
	err = svc.repo.Atomic(ctx, func(repo Repository) error {
		var err error
		if l, err = repo.UpdateLesson(ctx, l); err != nil {
			return errors.Wrap(err, "updating lesson")
		}
		for _, e := range changes.saves {
			s := byID[e.ID]
			s.LessonID = l.ID
			s.OrderingNumber = e.OrderingNumber
			s.Name = e.Name
			if e.ID == 0 {
				_, err = repo.CreateStep(ctx, s)
			} else {
				_, err = repo.UpdateStep(ctx, s)
			}
			if err != nil {
				return errors.Wrap(err, "saving step")
			}
		}
		return errors.Wrap(repo.DeleteSteps(ctx, changes.deletes...), "deleting steps")
	})
	if err != nil {
		return LessonTree{}, err
	}
	return svc.lessonTree(ctx, l)
}

func (svc *service) DeleteLesson(ctx context.Context, actor user.User, id int) error {
	l, c, err := svc.lessonWithCourse(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.authorize(ctx, access.ActionManage, &actor, c, nil); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteLessons(ctx, l.ID), "deleting lesson")
}

// Teacher: Step

func (svc *service) CreateStep(ctx context.Context, actor user.User, lessonID int, form StepForm) (Step, error) {
	l, c, err := svc.lessonWithCourse(ctx, lessonID)
	if err != nil {
		return Step{}, err
	}
	if err = svc.authorize(ctx, access.ActionManage, &actor, c, nil); err != nil {
		return Step{}, err
	}
	if err = form.Validate(svc.validate); err != nil {
		return Step{}, err
	}
	s, err := svc.repo.CreateStep(ctx, Step{
		LessonID:       l.ID,
		OrderingNumber: form.OrderingNumber,
		Name:           form.Name,
		Content:        form.Content,
		IsFree:         form.IsFree,
	})
	return s, errors.Wrap(err, "creating step")
}

func (svc *service) TeacherStep(ctx context.Context, actor user.User, id int) (Step, error) {
	s, c, err := svc.stepWithCourse(ctx, id)
	if err != nil {
		return Step{}, err
	}
	if err = svc.authorize(ctx, access.ActionManage, &actor, c, &s); err != nil {
		return Step{}, err
	}
	return s, nil
}

func (svc *service) UpdateStep(ctx context.Context, actor user.User, id int, form StepForm) (Step, error) {
	s, c, err := svc.stepWithCourse(ctx, id)
	if err != nil {
		return Step{}, err
	}
	if err = svc.authorize(ctx, access.ActionManage, &actor, c, &s); err != nil {
		return Step{}, err
	}
	if err = form.Validate(svc.validate); err != nil {
		return Step{}, err
	}
	s.OrderingNumber = form.OrderingNumber
	s.Name = form.Name
	s.Content = form.Content
	s.IsFree = form.IsFree
	s, err = svc.repo.UpdateStep(ctx, s)
	return s, errors.Wrap(err, "updating step")
}

func (svc *service) DeleteStep(ctx context.Context, actor user.User, id int) error {
	s, c, err := svc.stepWithCourse(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.authorize(ctx, access.ActionManage, &actor, c, &s); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteSteps(ctx, s.ID), "deleting step")
}

// StepViewers lists the IDs of the users who viewed a step.
func (svc *service) StepViewers(ctx context.Context, actor user.User, id int) ([]int, error) {
	s, c, err := svc.stepWithCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = svc.authorize(ctx, access.ActionManage, &actor, c, &s); err != nil {
		return nil, err
	}
	ids, err := svc.repo.QueryStepViewers(ctx, s.ID)
	return ids, errors.Wrap(err, "querying step viewers")
}

// Student

func (svc *service) StudentCourse(ctx context.Context, actor user.User, id int) (CourseTree, error) {
	c, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return CourseTree{}, err
	}
	if err = svc.authorize(ctx, access.ActionStudy, &actor, c, nil); err != nil {
		return CourseTree{}, err
	}
	return svc.courseTree(ctx, c)
}

// StudentStep returns a step of an enrolled course and records actor as one of its viewers.
func (svc *service) StudentStep(ctx context.Context, actor user.User, id int) (Step, error) {
	s, c, err := svc.stepWithCourse(ctx, id)
	if err != nil {
		return Step{}, err
	}
	if err = svc.authorize(ctx, access.ActionStudy, &actor, c, &s); err != nil {
		return Step{}, err
	}
	if err = svc.repo.AddStepViewer(ctx, s.ID, actor.ID); err != nil {
		return Step{}, errors.Wrap(err, "recording step view")
	}
	return s, nil
}

// Trees

func (svc *service) courseTree(ctx context.Context, c Course) (CourseTree, error) {
	tree := CourseTree{Course: c, Modules: []ModuleTree{}}
	modules, err := svc.repo.QueryModules(ctx, c.ID)
	if err != nil {
		return CourseTree{}, errors.Wrap(err, "querying modules")
	}
	for _, m := range modules {
		mt, err := svc.moduleTree(ctx, m)
		if err != nil {
			return CourseTree{}, err
		}
		tree.Modules = append(tree.Modules, mt)
	}
	return tree, nil
}

func (svc *service) moduleTree(ctx context.Context, m Module) (ModuleTree, error) {
	tree := ModuleTree{Module: m, Lessons: []LessonTree{}}
	lessons, err := svc.repo.QueryLessons(ctx, m.ID)
	if err != nil {
		return ModuleTree{}, errors.Wrap(err, "querying lessons")
	}
	lessonIDs := make([]int, 0, len(lessons))
	for _, l := range lessons {
		lessonIDs = append(lessonIDs, l.ID)
	}
	steps, err := svc.repo.QuerySteps(ctx, lessonIDs...)
	if err != nil {
		return ModuleTree{}, errors.Wrap(err, "querying steps")
	}
	byLesson := make(map[int][]Step, len(lessons))
	for _, s := range steps {
		byLesson[s.LessonID] = append(byLesson[s.LessonID], s)
	}
	for _, l := range lessons {
		lt := LessonTree{Lesson: l, Steps: byLesson[l.ID]}
		if lt.Steps == nil {
			lt.Steps = []Step{}
		}
		tree.Lessons = append(tree.Lessons, lt)
	}
	return tree, nil
}

func (svc *service) lessonTree(ctx context.Context, l Lesson) (LessonTree, error) {
	steps, err := svc.repo.QuerySteps(ctx, l.ID)
	if err != nil {
		return LessonTree{}, errors.Wrap(err, "querying steps")
	}
	if steps == nil {
		steps = []Step{}
	}
	return LessonTree{Lesson: l, Steps: steps}, nil
}

func (t *CourseTree) hidePaidContent() {
	for i := range t.Modules {
		for j := range t.Modules[i].Lessons {
			steps := t.Modules[i].Lessons[j].Steps
			for k := range steps {
				if !steps[k].IsFree {
					steps[k].Content = ""
				}
			}
		}
	}
}

// Form-sets

type setChanges struct {
	saves   []SetEntry // ID 0: create
	deletes []int
}

// splitSet sorts the entries of a form-set into saves and deletes.
// Entries pointing at a child the parent does not have make the whole set invalid.
func splitSet(name string, entries []SetEntry, existing map[int]bool) (setChanges, error) {
	var (
		changes setChanges
		fldErrs []core.FieldError
	)
	for i, e := range entries {
		if e.ID != 0 && !existing[e.ID] {
			fldErrs = append(fldErrs, core.FieldError{Field: fmt.Sprintf("%s[%d].id", name, i), Error: errForeignEntry})
			continue
		}
		if e.Delete {
			changes.deletes = append(changes.deletes, e.ID)
		} else {
			changes.saves = append(changes.saves, e)
		}
	}
	if len(fldErrs) > 0 {
		return setChanges{}, core.NewValidationError(nil, fldErrs...)
	}
	return changes, nil
}
