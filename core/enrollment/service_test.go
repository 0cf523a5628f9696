package enrollment_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursehub/core/enrollment"
	"github.com/trezcool/coursehub/testutil"
)

func Test_service_Enroll(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewApp(t)
	owner := testutil.CreateUser(t, app.UserRepo, "owner@test.cd", "", true)
	student := testutil.CreateUser(t, app.UserRepo, "student@test.cd", "", true)
	zeta := testutil.CreateCourse(t, app.CourseRepo, owner, "Zeta", testutil.CourseOpts{Published: true})
	alpha := testutil.CreateCourse(t, app.CourseRepo, owner, "Alpha", testutil.CourseOpts{Published: true})
	testutil.CreateCourse(t, app.CourseRepo, owner, "Other", testutil.CourseOpts{Published: true})

	for i := 0; i < 2; i++ {
		require.NoError(t, app.EnrollmentSvc.Enroll(ctx, student.ID, zeta.ID))
		require.NoError(t, app.EnrollmentSvc.Enroll(ctx, student.ID, alpha.ID))
	}
	ok, err := app.EnrollmentSvc.IsEnrolled(ctx, student.ID, zeta.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	courses, err := app.EnrollmentSvc.StudentCourses(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Alpha", courses[0].Name)
	assert.Equal(t, "Zeta", courses[1].Name)

	for i := 0; i < 2; i++ {
		require.NoError(t, app.EnrollmentSvc.Unenroll(ctx, student.ID, zeta.ID))
	}
	ok, err = app.EnrollmentSvc.IsEnrolled(ctx, student.ID, zeta.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	courses, err = app.EnrollmentSvc.StudentCourses(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func Test_service_payments(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewApp(t)
	owner := testutil.CreateUser(t, app.UserRepo, "owner@test.cd", "", true)
	student := testutil.CreateUser(t, app.UserRepo, "student@test.cd", "", true)
	pro := testutil.CreateCourse(t, app.CourseRepo, owner, "Pro", testutil.CourseOpts{Published: true, Cost: "500.00"})
	intro := testutil.CreateCourse(t, app.CourseRepo, owner, "Intro", testutil.CourseOpts{Published: true})

	paid, err := app.EnrollmentSvc.HasPaid(ctx, student.ID, pro.ID)
	require.NoError(t, err)
	assert.False(t, paid)

	p1, err := app.EnrollmentSvc.RecordPayment(ctx, student.ID, pro, "stripe")
	require.NoError(t, err)
	assert.NotZero(t, p1.ID)
	assert.Equal(t, student.ID, p1.UserID)
	assert.Equal(t, pro.ID, p1.CourseID.Int)
	assert.True(t, decimal.RequireFromString("500").Equal(p1.Amount))
	assert.Equal(t, time.Now().UTC().Truncate(24*time.Hour), p1.PaymentDate)
	assert.False(t, p1.HasSession())

	t.Run("attach", func(t *testing.T) {
		_, err := app.EnrollmentSvc.AttachCheckoutSession(ctx, p1.ID, "", "http://pay")
		assert.Equal(t, enrollment.ErrEmptySession, err)

		_, err = app.EnrollmentSvc.AttachCheckoutSession(ctx, 999, "sess", "http://pay")
		assert.Equal(t, enrollment.ErrPaymentNotFound, err)

		p, err := app.EnrollmentSvc.AttachCheckoutSession(ctx, p1.ID, "sess_1", "http://pay/1")
		require.NoError(t, err)
		assert.Equal(t, "sess_1", p.SessionID)
		assert.Equal(t, "http://pay/1", p.Link)
		assert.True(t, p.HasSession())
	})

	// any row counts, whatever its amount or session state
	p2, err := app.EnrollmentSvc.RecordPayment(ctx, student.ID, intro, "console")
	require.NoError(t, err)
	assert.True(t, p2.Amount.IsZero())
	paid, err = app.EnrollmentSvc.HasPaid(ctx, student.ID, intro.ID)
	require.NoError(t, err)
	assert.True(t, paid)

	payments, err := app.EnrollmentSvc.UserPayments(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, p2.ID, payments[0].ID)
	assert.Equal(t, p1.ID, payments[1].ID)

	payments, err = app.EnrollmentSvc.UserPayments(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}
