package enrollment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/course"
)

var (
	// errors
	ErrPaymentNotFound = core.NewNotFoundError("payment")
	ErrEmptySession    = errors.New("checkout session id is required")
)

type (
	Repository interface {
		// AddStudent is a no-op when the user already studies the course.
		AddStudent(ctx context.Context, courseID, userID int) error
		// RemoveStudent is a no-op when the user does not study the course.
		RemoveStudent(ctx context.Context, courseID, userID int) error
		IsStudent(ctx context.Context, courseID, userID int) (bool, error)

		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		GetPayment(ctx context.Context, id int) (Payment, error)
		UpdatePayment(ctx context.Context, p Payment) (Payment, error)
		// QueryPayments returns the matching payments, newest first.
		QueryPayments(ctx context.Context, filter PaymentFilter) ([]Payment, error)
	}

	// CourseQuerier lists courses; course.Repository satisfies it.
	CourseQuerier interface {
		QueryCourses(ctx context.Context, filter course.QueryFilter) ([]course.Course, error)
	}

	Service interface {
		Enroll(ctx context.Context, userID, courseID int) error
		Unenroll(ctx context.Context, userID, courseID int) error
		IsEnrolled(ctx context.Context, userID, courseID int) (bool, error)
		StudentCourses(ctx context.Context, userID int) ([]course.Course, error)

		RecordPayment(ctx context.Context, userID int, c course.Course, method string) (Payment, error)
		AttachCheckoutSession(ctx context.Context, paymentID int, sessionID, link string) (Payment, error)
		HasPaid(ctx context.Context, userID, courseID int) (bool, error)
		UserPayments(ctx context.Context, userID int) ([]Payment, error)
	}

	service struct {
		repo    Repository
		courses CourseQuerier
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, courses CourseQuerier) Service {
	return &service{repo: repo, courses: courses}
}

func (svc *service) Enroll(ctx context.Context, userID, courseID int) error {
	return errors.Wrap(svc.repo.AddStudent(ctx, courseID, userID), "adding student")
}

func (svc *service) Unenroll(ctx context.Context, userID, courseID int) error {
	return errors.Wrap(svc.repo.RemoveStudent(ctx, courseID, userID), "removing student")
}

func (svc *service) IsEnrolled(ctx context.Context, userID, courseID int) (bool, error) {
	ok, err := svc.repo.IsStudent(ctx, courseID, userID)
	return ok, errors.Wrap(err, "checking student")
}

// StudentCourses lists the courses a user studies, ordered by name.
func (svc *service) StudentCourses(ctx context.Context, userID int) ([]course.Course, error) {
	courses, err := svc.courses.QueryCourses(ctx, course.QueryFilter{StudentID: userID})
	return courses, errors.Wrap(err, "querying student courses")
}

// RecordPayment opens a ledger row charging the current cost of c, not yet linked to any checkout session.
func (svc *service) RecordPayment(ctx context.Context, userID int, c course.Course, method string) (Payment, error) {
	p := Payment{
		UserID:      userID,
		PaymentDate: time.Now().UTC().Truncate(24 * time.Hour),
		Method:      method,
		Amount:      c.Cost,
	}
	p.CourseID.SetValid(c.ID)
	p, err := svc.repo.CreatePayment(ctx, p)
	return p, errors.Wrap(err, "creating payment")
}

func (svc *service) AttachCheckoutSession(ctx context.Context, paymentID int, sessionID, link string) (Payment, error) {
	if sessionID == "" {
		return Payment{}, ErrEmptySession
	}
	p, err := svc.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return Payment{}, err
	}
	p.SessionID = sessionID
	p.Link = link
	p, err = svc.repo.UpdatePayment(ctx, p)
	return p, errors.Wrap(err, "updating payment")
}

// HasPaid reports whether any payment row exists for the user and course.
// Amount, date and session state are not looked at.
func (svc *service) HasPaid(ctx context.Context, userID, courseID int) (bool, error) {
	payments, err := svc.repo.QueryPayments(ctx, PaymentFilter{UserID: userID, CourseID: courseID})
	if err != nil {
		return false, errors.Wrap(err, "querying payments")
	}
	return len(payments) > 0, nil
}

func (svc *service) UserPayments(ctx context.Context, userID int) ([]Payment, error) {
	payments, err := svc.repo.QueryPayments(ctx, PaymentFilter{UserID: userID})
	return payments, errors.Wrap(err, "querying payments")
}
