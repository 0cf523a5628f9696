// Package inmemdb keeps every table in memory. It backs the test-suite.
package inmemdb

import (
	"sync"

	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/enrollment"
	"github.com/trezcool/coursehub/core/user"
)

type pair struct {
	a, b int
}

// DB holds the in-memory tables. The zero value is not usable, see NewDB.
type DB struct {
	mu   sync.RWMutex
	txMu sync.Mutex // serializes Atomic blocks
	pk   int

	users       map[int]user.User
	courses     map[int]course.Course
	modules     map[int]course.Module
	lessons     map[int]course.Lesson
	steps       map[int]course.Step
	stepViewers map[pair]struct{} // {stepID, userID}
	students    map[pair]struct{} // {courseID, userID}
	payments    map[int]enrollment.Payment
}

func NewDB() *DB {
	db := new(DB)
	db.reset()
	return db
}

func (db *DB) reset() {
	db.users = make(map[int]user.User)
	db.courses = make(map[int]course.Course)
	db.modules = make(map[int]course.Module)
	db.lessons = make(map[int]course.Lesson)
	db.steps = make(map[int]course.Step)
	db.stepViewers = make(map[pair]struct{})
	db.students = make(map[pair]struct{})
	db.payments = make(map[int]enrollment.Payment)
}

func (db *DB) nextPK() int {
	db.pk++
	return db.pk
}

// snapshot copies every table; restore puts them back. Callers hold the lock.
func (db *DB) snapshot() *DB {
	snap := &DB{pk: db.pk}
	snap.reset()
	for k, v := range db.users {
		snap.users[k] = v
	}
	for k, v := range db.courses {
		snap.courses[k] = v
	}
	for k, v := range db.modules {
		snap.modules[k] = v
	}
	for k, v := range db.lessons {
		snap.lessons[k] = v
	}
	for k, v := range db.steps {
		snap.steps[k] = v
	}
	for k := range db.stepViewers {
		snap.stepViewers[k] = struct{}{}
	}
	for k := range db.students {
		snap.students[k] = struct{}{}
	}
	for k, v := range db.payments {
		snap.payments[k] = v
	}
	return snap
}

func (db *DB) restore(snap *DB) {
	db.pk = snap.pk
	db.users = snap.users
	db.courses = snap.courses
	db.modules = snap.modules
	db.lessons = snap.lessons
	db.steps = snap.steps
	db.stepViewers = snap.stepViewers
	db.students = snap.students
	db.payments = snap.payments
}

// Cascades, mirroring the ON DELETE CASCADE foreign keys. Callers hold the lock.

func (db *DB) deleteCourse(id int) {
	delete(db.courses, id)
	for mid, m := range db.modules {
		if m.CourseID == id {
			db.deleteModule(mid)
		}
	}
	for k := range db.students {
		if k.a == id {
			delete(db.students, k)
		}
	}
	for pid, p := range db.payments {
		if p.CourseID.Valid && p.CourseID.Int == id {
			delete(db.payments, pid)
		}
	}
}

func (db *DB) deleteModule(id int) {
	delete(db.modules, id)
	for lid, l := range db.lessons {
		if l.ModuleID == id {
			db.deleteLesson(lid)
		}
	}
}

func (db *DB) deleteLesson(id int) {
	delete(db.lessons, id)
	for sid, s := range db.steps {
		if s.LessonID == id {
			db.deleteStep(sid)
		}
	}
}

func (db *DB) deleteStep(id int) {
	delete(db.steps, id)
	for k := range db.stepViewers {
		if k.a == id {
			delete(db.stepViewers, k)
		}
	}
}
