package echoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursehub/core/checkout"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/enrollment"
	"github.com/trezcool/coursehub/testutil"
)

func Test_studentApi_subscription(t *testing.T) {
	srv, app := setup(t)
	owner := testutil.CreateUser(t, app.UserRepo, "owner@test.cd", pwd, true)
	student := testutil.CreateUser(t, app.UserRepo, "student@test.cd", pwd, true)
	token := getToken(t, srv, student)

	pro := testutil.CreateCourse(t, app.CourseRepo, owner, "Pro", testutil.CourseOpts{Published: true, Cost: "500.00"})
	m := testutil.CreateModule(t, app.CourseRepo, pro, 1, "M")
	l := testutil.CreateLesson(t, app.CourseRepo, m, 1, "L")
	s := testutil.CreateStep(t, app.CourseRepo, l, 1, "S", "secret", false)
	draft := testutil.CreateCourse(t, app.CourseRepo, owner, "Draft", testutil.CourseOpts{})

	proPath := fmt.Sprintf("/api/student/confirm_subscription/%d", pro.ID)
	confirm := func(flag string) []byte { return []byte(fmt.Sprintf(`{%q: true}`, flag)) }

	tests := []httpTest{
		{name: "auth required", path: proPath, wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "state", path: proPath, token: token, wantData: marshalObj(t, checkout.State{Course: pro})},
		{
			name: "draft course", path: fmt.Sprintf("/api/student/confirm_subscription/%d", draft.ID), token: token,
			wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden),
		},
		{
			name: "no action", method: http.MethodPost, path: proPath, token: token, body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: checkout.ErrUnknownAction.Error()}),
		},
		{
			name: "start before paying", method: http.MethodPost, path: proPath, token: token, body: confirm("start_course"),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: checkout.ErrPaymentRequired.Error()}),
		},
		{
			name: "course before enrolling", path: fmt.Sprintf("/api/student/course/%d", pro.ID), token: token,
			wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, srv)
		})
	}

	t.Run("pay, study, stop", func(t *testing.T) {
		rec := httpTest{method: http.MethodPost, path: proPath, token: token, body: confirm("create_payment"), wantCode: http.StatusSeeOther}.run(t, srv)
		var res checkout.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		require.NotNil(t, res.Payment)
		assert.True(t, strings.HasPrefix(res.Payment.SessionID, "cs_"))
		assert.Equal(t, res.RedirectURL, rec.Header().Get("Location"))
		assert.Equal(t, "500", res.Payment.Amount.String())
		assert.True(t, res.Paid)
		assert.False(t, res.Subscribed)

		rec = httpTest{method: http.MethodPost, path: proPath, token: token, body: confirm("start_course")}.run(t, srv)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.True(t, res.Subscribed)

		httpTest{path: "/api/student/courses", token: token, wantData: marshalObj(t, []course.Course{pro})}.run(t, srv)
		httpTest{path: fmt.Sprintf("/api/student/course/%d", pro.ID), token: token}.run(t, srv)
		httpTest{path: fmt.Sprintf("/api/student/step/%d", s.ID), token: token, wantData: marshalObj(t, s)}.run(t, srv)
		httpTest{path: fmt.Sprintf("/api/student/step/%d", s.ID), token: token}.run(t, srv)

		viewers, err := app.CourseRepo.QueryStepViewers(context.Background(), s.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{student.ID}, viewers)

		rec = httpTest{path: "/api/student/payments", token: token}.run(t, srv)
		var payments []enrollment.Payment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payments))
		require.Len(t, payments, 1)
		assert.Equal(t, pro.ID, payments[0].CourseID.Int)

		rec = httpTest{method: http.MethodPost, path: proPath, token: token, body: confirm("stop_course")}.run(t, srv)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.False(t, res.Subscribed)
		assert.True(t, res.Paid)

		httpTest{path: fmt.Sprintf("/api/student/step/%d", s.ID), token: token, wantCode: http.StatusForbidden}.run(t, srv)
		httpTest{path: "/api/student/courses", token: token, wantData: []byte(`[]`)}.run(t, srv)
	})
}

func Test_studentApi_freeCourse(t *testing.T) {
	srv, app := setup(t)
	owner := testutil.CreateUser(t, app.UserRepo, "owner@test.cd", pwd, true)
	student := testutil.CreateUser(t, app.UserRepo, "student@test.cd", pwd, true)
	token := getToken(t, srv, student)

	intro := testutil.CreateCourse(t, app.CourseRepo, owner, "Intro", testutil.CourseOpts{Published: true})
	path := fmt.Sprintf("/api/student/confirm_subscription/%d", intro.ID)

	httpTest{
		method: http.MethodPost, path: path, token: token, body: []byte(`{"create_payment": true}`),
		wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: checkout.ErrFreeCourse.Error()}),
	}.run(t, srv)
	httpTest{
		method: http.MethodPost, path: path, token: token, body: []byte(`{"start_course": true}`),
		wantData: marshalObj(t, checkout.Result{State: checkout.State{Course: intro, Subscribed: true}}),
	}.run(t, srv)
	httpTest{path: "/api/student/payments", token: token, wantData: []byte(`[]`)}.run(t, srv)
}
