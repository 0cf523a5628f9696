// Package access holds the authorization rules for course content.
package access

import (
	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/user"
)

// Action is something a user tries to do with a piece of course content.
type Action int

const (
	// ActionManage covers every teacher-side read/mutation of a course and its descendants.
	ActionManage Action = iota + 1
	// ActionStudy covers the student-side viewing of an enrolled course.
	ActionStudy
	// ActionPreview covers the free preview of a course or step.
	ActionPreview
	// ActionSubscribe covers the subscription page of a course.
	ActionSubscribe
)

func (a Action) String() string {
	switch a {
	case ActionManage:
		return "manage"
	case ActionStudy:
		return "study"
	case ActionPreview:
		return "preview"
	case ActionSubscribe:
		return "subscribe"
	default:
		return "unknown"
	}
}

// Resource describes the node being accessed through the flags of its ancestor course.
type Resource struct {
	OwnerID     int // 0: course without owner
	IsPublished bool
	CourseFree  bool
	StepFree    bool
	Enrolled    bool // whether the actor is in the course's enrolled set
}

// Authorize returns core.ErrForbidden unless actor may perform action on res.
// It does no I/O: callers resolve the ancestor course and enrollment first.
func Authorize(action Action, actor *user.User, res Resource) error {
	switch action {
	case ActionManage:
		if actor != nil && res.OwnerID != 0 && actor.ID == res.OwnerID {
			return nil
		}
	case ActionStudy:
		if actor != nil && res.Enrolled {
			return nil
		}
	case ActionPreview:
		if res.CourseFree || res.StepFree {
			return nil
		}
	case ActionSubscribe:
		if actor != nil && res.IsPublished {
			return nil
		}
	}
	return core.ErrForbidden
}
