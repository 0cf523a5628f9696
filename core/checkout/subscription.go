package checkout

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/access"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/enrollment"
	"github.com/trezcool/coursehub/core/user"
)

var (
	// errors
	ErrPaymentRequired = errors.New("payment required")
	ErrUnknownAction   = errors.New("one of create_payment, start_course or stop_course is required")
	ErrFreeCourse      = errors.New("this course is free")
)

// Action is what a student confirms on the subscription page of a course.
type Action string

const (
	ActionCreatePayment Action = "create_payment"
	ActionStartCourse   Action = "start_course"
	ActionStopCourse    Action = "stop_course"
)

type (
	// State is the relation of a student to a course.
	State struct {
		Course     course.Course `json:"course"`
		Paid       bool          `json:"paid"`
		Subscribed bool          `json:"subscribed"`
	}

	// Result is the State after a confirmed Action. RedirectURL is set when the student must go pay.
	Result struct {
		State
		Payment     *enrollment.Payment `json:"payment,omitempty"`
		RedirectURL string              `json:"redirect_url,omitempty"`
	}

	Subscriptions interface {
		State(ctx context.Context, actor user.User, courseID int) (State, error)
		Confirm(ctx context.Context, actor user.User, courseID int, action Action) (Result, error)
	}

	subscriptions struct {
		courses      course.Service
		ledger       enrollment.Service
		orchestrator *Orchestrator
	}
)

var _ Subscriptions = (*subscriptions)(nil)

func NewSubscriptions(courses course.Service, ledger enrollment.Service, orchestrator *Orchestrator) Subscriptions {
	return &subscriptions{
		courses:      courses,
		ledger:       ledger,
		orchestrator: orchestrator,
	}
}

// State tells whether actor paid for and studies a published course.
func (svc *subscriptions) State(ctx context.Context, actor user.User, courseID int) (State, error) {
	c, err := svc.courses.GetCourse(ctx, courseID)
	if err != nil {
		return State{}, err
	}
	if err = access.Authorize(access.ActionSubscribe, &actor, access.Resource{IsPublished: c.IsPublished}); err != nil {
		return State{}, err
	}
	return svc.state(ctx, actor, c)
}

func (svc *subscriptions) state(ctx context.Context, actor user.User, c course.Course) (State, error) {
	paid, err := svc.ledger.HasPaid(ctx, actor.ID, c.ID)
	if err != nil {
		return State{}, errors.Wrap(err, "checking payment")
	}
	subscribed, err := svc.ledger.IsEnrolled(ctx, actor.ID, c.ID)
	if err != nil {
		return State{}, errors.Wrap(err, "checking enrollment")
	}
	return State{Course: c, Paid: paid, Subscribed: subscribed}, nil
}

// Confirm performs action for actor on a published course:
//  - create_payment opens a checkout session and returns its redirect link
//  - start_course enrolls actor once the course is free or a payment row exists
//  - stop_course unenrolls actor
func (svc *subscriptions) Confirm(ctx context.Context, actor user.User, courseID int, action Action) (Result, error) {
	st, err := svc.State(ctx, actor, courseID)
	if err != nil {
		return Result{}, err
	}

	var res Result
	switch action {
	case ActionCreatePayment:
		if !st.Course.RequiresPayment() {
			return Result{}, core.NewValidationError(ErrFreeCourse)
		}
		p, err := svc.orchestrator.Checkout(ctx, actor, st.Course)
		if err != nil {
			return Result{}, errors.Wrap(err, "checking out")
		}
		res.Payment = &p
		res.RedirectURL = p.Link
	case ActionStartCourse:
		if st.Course.RequiresPayment() && !st.Paid {
			return Result{}, ErrPaymentRequired
		}
		if err = svc.ledger.Enroll(ctx, actor.ID, st.Course.ID); err != nil {
			return Result{}, errors.Wrap(err, "enrolling")
		}
	case ActionStopCourse:
		if err = svc.ledger.Unenroll(ctx, actor.ID, st.Course.ID); err != nil {
			return Result{}, errors.Wrap(err, "unenrolling")
		}
	default:
		return Result{}, core.NewValidationError(ErrUnknownAction)
	}

	if res.State, err = svc.state(ctx, actor, st.Course); err != nil {
		return Result{}, err
	}
	return res, nil
}
