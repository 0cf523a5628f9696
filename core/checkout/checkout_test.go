package checkout_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/checkout"
	"github.com/trezcool/coursehub/testutil"
)

var errGatewayDown = errors.New("gateway down")

type fakeGateway struct {
	failOn   string
	products []string
	amounts  []int64
	sessions []checkout.SessionParams
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) CreateProduct(_ context.Context, name string) (string, error) {
	if g.failOn == "product" {
		return "", errGatewayDown
	}
	g.products = append(g.products, name)
	return "prod_1", nil
}

func (g *fakeGateway) CreatePrice(_ context.Context, amount int64, currency, productID string) (string, error) {
	if g.failOn == "price" {
		return "", errGatewayDown
	}
	g.amounts = append(g.amounts, amount)
	return "price_1", nil
}

func (g *fakeGateway) CreateSession(_ context.Context, params checkout.SessionParams) (checkout.Session, error) {
	if g.failOn == "session" {
		return checkout.Session{}, errGatewayDown
	}
	g.sessions = append(g.sessions, params)
	return checkout.Session{ID: "sess_123", URL: "https://pay.test/sess_123"}, nil
}

func TestPriceSubunits(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{amount: "0", want: 0},
		{amount: "500.00", want: 50000},
		{amount: "19.99", want: 1999},
		{amount: "10.999", want: 1099},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, checkout.PriceSubunits(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestOrchestrator_Checkout(t *testing.T) {
	ctx := context.Background()

	t.Run("links the session", func(t *testing.T) {
		gw := &fakeGateway{}
		app := testutil.NewApp(t, gw)
		owner := testutil.CreateUser(t, app.UserRepo, "owner@test.cd", "", true)
		student := testutil.CreateUser(t, app.UserRepo, "student@test.cd", "", true)
		pro := testutil.CreateCourse(t, app.CourseRepo, owner, "Pro", testutil.CourseOpts{Published: true, Cost: "500.00"})

		p, err := app.Orchestrator.Checkout(ctx, student, pro)
		require.NoError(t, err)
		assert.Equal(t, "sess_123", p.SessionID)
		assert.Equal(t, "https://pay.test/sess_123", p.Link)
		assert.Equal(t, "fake", p.Method)

		assert.Equal(t, []string{"Pro"}, gw.products)
		assert.Equal(t, []int64{50000}, gw.amounts)
		require.Len(t, gw.sessions, 1)
		assert.Equal(t, checkout.SessionParams{
			PriceID:    "price_1",
			Quantity:   1,
			SuccessURL: fmt.Sprintf("http://localhost:8000/api/student/confirm_subscription/%d", pro.ID),
			CancelURL:  "http://localhost:8000/api/student/courses",
		}, gw.sessions[0])

		payments, err := app.EnrollmentSvc.UserPayments(ctx, student.ID)
		require.NoError(t, err)
		assert.Equal(t, p, payments[0])
	})

	for _, step := range []string{"product", "price", "session"} {
		t.Run(step+" failure", func(t *testing.T) {
			app := testutil.NewApp(t, &fakeGateway{failOn: step})
			owner := testutil.CreateUser(t, app.UserRepo, "owner@test.cd", "", true)
			student := testutil.CreateUser(t, app.UserRepo, "student@test.cd", "", true)
			pro := testutil.CreateCourse(t, app.CourseRepo, owner, "Pro", testutil.CourseOpts{Published: true, Cost: "500.00"})

			_, err := app.Orchestrator.Checkout(ctx, student, pro)
			assert.Equal(t, errGatewayDown, errors.Cause(err))

			payments, err := app.EnrollmentSvc.UserPayments(ctx, student.ID)
			require.NoError(t, err)
			require.Len(t, payments, 1)
			assert.False(t, payments[0].HasSession())

			// the unlinked row still counts as paid
			paid, err := app.EnrollmentSvc.HasPaid(ctx, student.ID, pro.ID)
			require.NoError(t, err)
			assert.True(t, paid)
		})
	}
}

func TestSubscriptions_Confirm(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	app := testutil.NewApp(t, gw)
	owner := testutil.CreateUser(t, app.UserRepo, "owner@test.cd", "", true)
	student := testutil.CreateUser(t, app.UserRepo, "student@test.cd", "", true)
	intro := testutil.CreateCourse(t, app.CourseRepo, owner, "Intro", testutil.CourseOpts{Published: true})
	pro := testutil.CreateCourse(t, app.CourseRepo, owner, "Pro", testutil.CourseOpts{Published: true, Cost: "500.00"})
	draft := testutil.CreateCourse(t, app.CourseRepo, owner, "Draft", testutil.CourseOpts{})

	t.Run("draft", func(t *testing.T) {
		_, err := app.Subscriptions.State(ctx, student, draft.ID)
		assert.Equal(t, core.ErrForbidden, errors.Cause(err))
		_, err = app.Subscriptions.Confirm(ctx, student, draft.ID, checkout.ActionStartCourse)
		assert.Equal(t, core.ErrForbidden, errors.Cause(err))
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := app.Subscriptions.Confirm(ctx, student, intro.ID, checkout.Action("dance"))
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, checkout.ErrUnknownAction, vErr.Err)
	})

	t.Run("free course", func(t *testing.T) {
		_, err := app.Subscriptions.Confirm(ctx, student, intro.ID, checkout.ActionCreatePayment)
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, checkout.ErrFreeCourse, vErr.Err)

		res, err := app.Subscriptions.Confirm(ctx, student, intro.ID, checkout.ActionStartCourse)
		require.NoError(t, err)
		assert.True(t, res.Subscribed)
		assert.False(t, res.Paid)
		assert.Empty(t, res.RedirectURL)

		res, err = app.Subscriptions.Confirm(ctx, student, intro.ID, checkout.ActionStopCourse)
		require.NoError(t, err)
		assert.False(t, res.Subscribed)
	})

	t.Run("paid course", func(t *testing.T) {
		_, err := app.Subscriptions.Confirm(ctx, student, pro.ID, checkout.ActionStartCourse)
		assert.Equal(t, checkout.ErrPaymentRequired, errors.Cause(err))

		res, err := app.Subscriptions.Confirm(ctx, student, pro.ID, checkout.ActionCreatePayment)
		require.NoError(t, err)
		assert.Equal(t, "https://pay.test/sess_123", res.RedirectURL)
		require.NotNil(t, res.Payment)
		assert.Equal(t, "sess_123", res.Payment.SessionID)
		assert.True(t, res.Paid)
		assert.False(t, res.Subscribed)

		res, err = app.Subscriptions.Confirm(ctx, student, pro.ID, checkout.ActionStartCourse)
		require.NoError(t, err)
		assert.True(t, res.Subscribed)

		st, err := app.Subscriptions.State(ctx, student, pro.ID)
		require.NoError(t, err)
		assert.Equal(t, checkout.State{Course: pro, Paid: true, Subscribed: true}, st)
	})
}
