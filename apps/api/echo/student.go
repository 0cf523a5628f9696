package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core/checkout"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/enrollment"
)

type studentApi struct {
	courses       course.Service
	ledger        enrollment.Service
	subscriptions checkout.Subscriptions
}

func registerStudentAPI(
	g *echo.Group,
	authed []echo.MiddlewareFunc,
	courses course.Service,
	ledger enrollment.Service,
	subscriptions checkout.Subscriptions,
) {
	api := studentApi{
		courses:       courses,
		ledger:        ledger,
		subscriptions: subscriptions,
	}

	sg := g.Group("/student", authed...)
	sg.GET("/courses", api.listCourses)
	sg.GET("/course/:id", api.retrieveCourse)
	sg.GET("/step/:id", api.retrieveStep)
	sg.GET("/confirm_subscription/:id", api.subscriptionState)
	sg.POST("/confirm_subscription/:id", api.confirmSubscription)
	sg.GET("/payments", api.listPayments)
}

func (api *studentApi) listCourses(ctx echo.Context) error {
	courses, err := api.ledger.StudentCourses(ctx.Request().Context(), contextUser(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "listing student courses")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(courses))
}

func (api *studentApi) retrieveCourse(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	tree, err := api.courses.StudentCourse(ctx.Request().Context(), contextUser(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tree)
}

func (api *studentApi) retrieveStep(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	step, err := api.courses.StudentStep(ctx.Request().Context(), contextUser(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, step)
}

func (api *studentApi) subscriptionState(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	st, err := api.subscriptions.State(ctx.Request().Context(), contextUser(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, st)
}

// confirmSubscription answers with 303 See Other and the gateway link when the student must go pay.
func (api *studentApi) confirmSubscription(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data ConfirmSubscriptionRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ConfirmSubscriptionRequest")
	}

	res, err := api.subscriptions.Confirm(ctx.Request().Context(), contextUser(ctx), id, data.Action())
	if err != nil {
		return err
	}
	if res.RedirectURL != "" {
		ctx.Response().Header().Set(echo.HeaderLocation, res.RedirectURL)
		return ctx.JSON(http.StatusSeeOther, res)
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *studentApi) listPayments(ctx echo.Context) error {
	payments, err := api.ledger.UserPayments(ctx.Request().Context(), contextUser(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "listing payments")
	}
	if payments == nil {
		payments = []enrollment.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

// ConfirmSubscriptionRequest holds the button the student pressed on the subscription page.
type ConfirmSubscriptionRequest struct {
	CreatePayment bool `json:"create_payment" form:"create_payment"`
	StartCourse   bool `json:"start_course" form:"start_course"`
	StopCourse    bool `json:"stop_course" form:"stop_course"`
}

// Action returns the first flag set, in page order.
func (r ConfirmSubscriptionRequest) Action() checkout.Action {
	switch {
	case r.CreatePayment:
		return checkout.ActionCreatePayment
	case r.StartCourse:
		return checkout.ActionStartCourse
	case r.StopCourse:
		return checkout.ActionStopCourse
	default:
		return ""
	}
}
