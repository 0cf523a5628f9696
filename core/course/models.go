package course

import (
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/coursehub/core"
)

// MaxOrderingNumber is the largest ordering number a module, lesson or step can hold.
const MaxOrderingNumber = 32767

// OrderingFields are the course fields a listing can be ordered by.
var OrderingFields = []string{"id", "name", "cost"}

type (
	// Course is the root of the content hierarchy. OwnerID is null for orphaned courses.
	Course struct {
		ID          int             `json:"id"`
		OwnerID     null.Int        `json:"owner_id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Image       string          `json:"image"`
		IsPublished bool            `json:"is_published"`
		IsFree      bool            `json:"is_free"`
		Cost        decimal.Decimal `json:"cost"`
	}

	Module struct {
		ID             int    `json:"id"`
		CourseID       int    `json:"course_id"`
		OrderingNumber int    `json:"ordering_number"`
		Name           string `json:"name"`
	}

	Lesson struct {
		ID             int    `json:"id"`
		ModuleID       int    `json:"module_id"`
		OrderingNumber int    `json:"ordering_number"`
		Name           string `json:"name"`
	}

	Step struct {
		ID             int    `json:"id"`
		LessonID       int    `json:"lesson_id"`
		OrderingNumber int    `json:"ordering_number"`
		Name           string `json:"name"`
		Content        string `json:"content"`
		IsFree         bool   `json:"is_free"`
	}
)

// IsOwnedBy reports whether userID owns the course.
func (c Course) IsOwnedBy(userID int) bool {
	return c.OwnerID.Valid && c.OwnerID.Int == userID
}

// RequiresPayment reports whether students must pay before starting the course.
func (c Course) RequiresPayment() bool {
	return c.Cost.IsPositive()
}

func (c Course) ownerID() int {
	if c.OwnerID.Valid {
		return c.OwnerID.Int
	}
	return 0
}

// Nested views of the hierarchy, children sorted by ordering number.
type (
	CourseTree struct {
		Course
		Modules []ModuleTree `json:"modules"`
	}

	ModuleTree struct {
		Module
		Lessons []LessonTree `json:"lessons"`
	}

	LessonTree struct {
		Lesson
		Steps []Step `json:"steps"`
	}
)

// QueryFilter narrows down course listings. Zero values are ignored.
type QueryFilter struct {
	OwnerID       int
	StudentID     int
	PublishedOnly bool
	Ordering      []core.DBOrdering // by name, then id, when empty
}
