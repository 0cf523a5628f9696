package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

// Atomic restores every table as it was when fn fails.
func (repo *courseRepository) Atomic(_ context.Context, fn func(repo course.Repository) error) error {
	repo.db.txMu.Lock()
	defer repo.db.txMu.Unlock()

	repo.db.mu.RLock()
	snap := repo.db.snapshot()
	repo.db.mu.RUnlock()

	if err := fn(repo); err != nil {
		repo.db.mu.Lock()
		repo.db.restore(snap)
		repo.db.mu.Unlock()
		return err
	}
	return nil
}

// Course

func (repo *courseRepository) CreateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c.ID = repo.db.nextPK()
	repo.db.courses[c.ID] = c
	return c, nil
}

func (repo *courseRepository) GetCourse(_ context.Context, id int) (course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.courses[id]; ok {
		return c, nil
	}
	return course.Course{}, course.ErrCourseNotFound
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter course.QueryFilter) ([]course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	courses := make([]course.Course, 0)
	for _, c := range repo.db.courses {
		if filter.PublishedOnly && !c.IsPublished {
			continue
		}
		if filter.OwnerID != 0 && !c.IsOwnedBy(filter.OwnerID) {
			continue
		}
		if filter.StudentID != 0 {
			if _, ok := repo.db.students[pair{c.ID, filter.StudentID}]; !ok {
				continue
			}
		}
		courses = append(courses, c)
	}
	ordering := make([]core.DBOrdering, 0, len(filter.Ordering)+2)
	ordering = append(ordering, filter.Ordering...)
	ordering = append(ordering, core.DBOrdering{Field: "name", Ascending: true}, core.DBOrdering{Field: "id", Ascending: true})
	sort.SliceStable(courses, func(i, j int) bool {
		for _, ord := range ordering {
			if cmp := compareCourses(courses[i], courses[j], ord.Field); cmp != 0 {
				return (cmp < 0) == ord.Ascending
			}
		}
		return false
	})
	return courses, nil
}

func compareCourses(a, b course.Course, field string) int {
	switch field {
	case "id":
		return a.ID - b.ID
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "cost":
		return a.Cost.Cmp(b.Cost)
	}
	return 0
}

func (repo *courseRepository) UpdateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.courses[c.ID]; !ok {
		return course.Course{}, course.ErrCourseNotFound
	}
	repo.db.courses[c.ID] = c
	return c, nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.deleteCourse(id)
	return nil
}

// Module

func (repo *courseRepository) CreateModule(_ context.Context, m course.Module) (course.Module, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.courses[m.CourseID]; !ok {
		return course.Module{}, course.ErrCourseNotFound
	}
	m.ID = repo.db.nextPK()
	repo.db.modules[m.ID] = m
	return m, nil
}

func (repo *courseRepository) GetModule(_ context.Context, id int) (course.Module, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if m, ok := repo.db.modules[id]; ok {
		return m, nil
	}
	return course.Module{}, course.ErrModuleNotFound
}

func (repo *courseRepository) QueryModules(_ context.Context, courseIDs ...int) ([]course.Module, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	parents := idSet(courseIDs)
	modules := make([]course.Module, 0)
	for _, m := range repo.db.modules {
		if parents[m.CourseID] {
			modules = append(modules, m)
		}
	}
	sort.Slice(modules, func(i, j int) bool {
		return byOrdering(modules[i].OrderingNumber, modules[i].ID, modules[j].OrderingNumber, modules[j].ID)
	})
	return modules, nil
}

func (repo *courseRepository) UpdateModule(_ context.Context, m course.Module) (course.Module, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.modules[m.ID]; !ok {
		return course.Module{}, course.ErrModuleNotFound
	}
	repo.db.modules[m.ID] = m
	return m, nil
}

func (repo *courseRepository) DeleteModules(_ context.Context, ids ...int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, id := range ids {
		repo.db.deleteModule(id)
	}
	return nil
}

// Lesson

func (repo *courseRepository) CreateLesson(_ context.Context, l course.Lesson) (course.Lesson, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.modules[l.ModuleID]; !ok {
		return course.Lesson{}, course.ErrModuleNotFound
	}
	l.ID = repo.db.nextPK()
	repo.db.lessons[l.ID] = l
	return l, nil
}

func (repo *courseRepository) GetLesson(_ context.Context, id int) (course.Lesson, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if l, ok := repo.db.lessons[id]; ok {
		return l, nil
	}
	return course.Lesson{}, course.ErrLessonNotFound
}

func (repo *courseRepository) QueryLessons(_ context.Context, moduleIDs ...int) ([]course.Lesson, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	parents := idSet(moduleIDs)
	lessons := make([]course.Lesson, 0)
	for _, l := range repo.db.lessons {
		if parents[l.ModuleID] {
			lessons = append(lessons, l)
		}
	}
	sort.Slice(lessons, func(i, j int) bool {
		return byOrdering(lessons[i].OrderingNumber, lessons[i].ID, lessons[j].OrderingNumber, lessons[j].ID)
	})
	return lessons, nil
}

func (repo *courseRepository) UpdateLesson(_ context.Context, l course.Lesson) (course.Lesson, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.lessons[l.ID]; !ok {
		return course.Lesson{}, course.ErrLessonNotFound
	}
	repo.db.lessons[l.ID] = l
	return l, nil
}

func (repo *courseRepository) DeleteLessons(_ context.Context, ids ...int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, id := range ids {
		repo.db.deleteLesson(id)
	}
	return nil
}

// Step

func (repo *courseRepository) CreateStep(_ context.Context, s course.Step) (course.Step, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.lessons[s.LessonID]; !ok {
		return course.Step{}, course.ErrLessonNotFound
	}
	s.ID = repo.db.nextPK()
	repo.db.steps[s.ID] = s
	return s, nil
}

func (repo *courseRepository) GetStep(_ context.Context, id int) (course.Step, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if s, ok := repo.db.steps[id]; ok {
		return s, nil
	}
	return course.Step{}, course.ErrStepNotFound
}

func (repo *courseRepository) QuerySteps(_ context.Context, lessonIDs ...int) ([]course.Step, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	parents := idSet(lessonIDs)
	steps := make([]course.Step, 0)
	for _, s := range repo.db.steps {
		if parents[s.LessonID] {
			steps = append(steps, s)
		}
	}
	sort.Slice(steps, func(i, j int) bool {
		return byOrdering(steps[i].OrderingNumber, steps[i].ID, steps[j].OrderingNumber, steps[j].ID)
	})
	return steps, nil
}

func (repo *courseRepository) UpdateStep(_ context.Context, s course.Step) (course.Step, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.steps[s.ID]; !ok {
		return course.Step{}, course.ErrStepNotFound
	}
	repo.db.steps[s.ID] = s
	return s, nil
}

func (repo *courseRepository) DeleteSteps(_ context.Context, ids ...int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, id := range ids {
		repo.db.deleteStep(id)
	}
	return nil
}

func (repo *courseRepository) AddStepViewer(_ context.Context, stepID, userID int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.steps[stepID]; !ok {
		return course.ErrStepNotFound
	}
	repo.db.stepViewers[pair{stepID, userID}] = struct{}{}
	return nil
}

func (repo *courseRepository) QueryStepViewers(_ context.Context, stepID int) ([]int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	ids := make([]int, 0)
	for k := range repo.db.stepViewers {
		if k.a == stepID {
			ids = append(ids, k.b)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func idSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func byOrdering(ordI, idI, ordJ, idJ int) bool {
	if ordI == ordJ {
		return idI < idJ
	}
	return ordI < ordJ
}
