package echoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/testutil"
)

var errForbidden = httpErr{Error: "permission denied"}

func Test_courseApi_public(t *testing.T) {
	srv, app := setup(t)
	owner := testutil.CreateUser(t, app.UserRepo, "owner@test.cd", pwd, true)

	paid := testutil.CreateCourse(t, app.CourseRepo, owner, "Pro", testutil.CourseOpts{Published: true, Cost: "500.00"})
	free := testutil.CreateCourse(t, app.CourseRepo, owner, "Intro", testutil.CourseOpts{Published: true, Free: true})
	draft := testutil.CreateCourse(t, app.CourseRepo, owner, "Draft", testutil.CourseOpts{})

	m := testutil.CreateModule(t, app.CourseRepo, paid, 1, "Basics")
	l := testutil.CreateLesson(t, app.CourseRepo, m, 1, "Hello")
	freeStep := testutil.CreateStep(t, app.CourseRepo, l, 1, "Teaser", "teaser content", true)
	paidStep := testutil.CreateStep(t, app.CourseRepo, l, 2, "Deep dive", "paid content", false)

	hidden := paidStep
	hidden.Content = ""
	preview := course.CourseTree{
		Course: paid,
		Modules: []course.ModuleTree{{
			Module:  m,
			Lessons: []course.LessonTree{{Lesson: l, Steps: []course.Step{freeStep, hidden}}},
		}},
	}

	tests := []httpTest{
		{name: "published courses by name", path: "/api/courses", wantData: marshalObj(t, []course.Course{free, paid})},
		{name: "preview hides paid content", path: fmt.Sprintf("/api/course/%d", paid.ID), wantData: marshalObj(t, preview)},
		{
			name: "preview of a draft", path: fmt.Sprintf("/api/course/%d", draft.ID), wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "course not found"}),
		},
		{name: "invalid id", path: "/api/course/abc", wantCode: http.StatusNotFound},
		{name: "free course", path: fmt.Sprintf("/api/free/course/%d", free.ID)},
		{
			name: "paid course is not free", path: fmt.Sprintf("/api/free/course/%d", paid.ID),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden),
		},
		{name: "free step", path: fmt.Sprintf("/api/free/step/%d", freeStep.ID), wantData: marshalObj(t, freeStep)},
		{
			name: "paid step", path: fmt.Sprintf("/api/free/step/%d", paidStep.ID),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden),
		},
		{name: "unknown step", path: "/api/free/step/999", wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "step not found"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, srv)
		})
	}
}

func Test_courseApi_teacher(t *testing.T) {
	srv, app := setup(t)
	owner := testutil.CreateUser(t, app.UserRepo, "owner@test.cd", pwd, true)
	other := testutil.CreateUser(t, app.UserRepo, "other@test.cd", pwd, true)
	ownerToken := getToken(t, srv, owner)
	otherToken := getToken(t, srv, other)

	var c course.Course
	t.Run("create course", func(t *testing.T) {
		httpTest{
			method: http.MethodPost, path: "/api/teacher/course/create", token: ownerToken,
			body: []byte(`{"name": "  ", "cost": "-1"}`), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"name": "this field is required", "cost": "cost must be 0 or greater"}),
		}.run(t, srv)

		rec := httpTest{
			method: http.MethodPost, path: "/api/teacher/course/create", token: ownerToken,
			body: []byte(`{"name": "Go 101", "is_published": true, "cost": "500.00"}`), wantCode: http.StatusCreated,
		}.run(t, srv)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
		assert.Equal(t, owner.ID, c.OwnerID.Int)
	})

	coursePath := fmt.Sprintf("/api/teacher/course/%d", c.ID)
	tests := []httpTest{
		{name: "auth required", path: "/api/teacher/courses", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "owned courses", path: "/api/teacher/courses", token: ownerToken, wantData: marshalObj(t, []course.Course{c})},
		{name: "not owned courses", path: "/api/teacher/courses", token: otherToken, wantData: []byte(`[]`)},
		{name: "owner detail", path: coursePath, token: ownerToken, wantData: marshalObj(t, course.CourseTree{Course: c, Modules: []course.ModuleTree{}})},
		{name: "other detail", path: coursePath, token: otherToken, wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden)},
		{
			name: "other update", method: http.MethodPut, path: coursePath + "/update", token: otherToken,
			body: []byte(`{"name": "Hacked"}`), wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden),
		},
		{name: "other delete", method: http.MethodDelete, path: coursePath, token: otherToken, wantCode: http.StatusForbidden},
		{name: "edit form", path: coursePath + "/update", token: ownerToken},
		{name: "form schema", path: "/api/teacher/forms/course_update", token: ownerToken, wantData: marshalObj(t, course.CourseUpdate{}.Schema())},
		{name: "unknown form", path: "/api/teacher/forms/lol", token: ownerToken, wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, srv)
		})
	}

	t.Run("update with module set", func(t *testing.T) {
		rec := httpTest{
			method: http.MethodPut, path: coursePath + "/update", token: ownerToken,
			body: []byte(`{
				"name": "Go 101", "is_published": true, "cost": "500.00",
				"modules": [
					{"ordering_number": 2, "name": "Second"},
					{"ordering_number": 1, "name": "First"},
					{"ordering_number": 3, "name": ""}
				]
			}`),
		}.run(t, srv)
		var tree course.CourseTree
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
		require.Len(t, tree.Modules, 2)
		assert.Equal(t, "First", tree.Modules[0].Name)
		assert.Equal(t, "Second", tree.Modules[1].Name)

		// foreign module ids are rejected
		foreign := testutil.CreateCourse(t, app.CourseRepo, other, "Other", testutil.CourseOpts{})
		fm := testutil.CreateModule(t, app.CourseRepo, foreign, 1, "Theirs")
		httpTest{
			method: http.MethodPut, path: coursePath + "/update", token: ownerToken,
			body:     []byte(fmt.Sprintf(`{"name": "Go 101", "modules": [{"id": %d, "ordering_number": 1, "name": "Mine"}]}`, fm.ID)),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"modules[0].id": "does not belong to this form"}),
		}.run(t, srv)

		// names are required unless deleting
		httpTest{
			method: http.MethodPut, path: coursePath + "/update", token: ownerToken,
			body:     []byte(fmt.Sprintf(`{"name": "Go 101", "modules": [{"id": %d, "ordering_number": 1, "name": ""}]}`, tree.Modules[0].ID)),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"modules[0].name": "this field is required"}),
		}.run(t, srv)

		// delete one, rename the other
		rec = httpTest{
			method: http.MethodPut, path: coursePath + "/update", token: ownerToken,
			body: []byte(fmt.Sprintf(`{"name": "Go 102", "modules": [{"id": %d, "delete": true}, {"id": %d, "ordering_number": 5, "name": "Renamed"}]}`,
				tree.Modules[0].ID, tree.Modules[1].ID)),
		}.run(t, srv)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
		assert.Equal(t, "Go 102", tree.Name)
		require.Len(t, tree.Modules, 1)
		assert.Equal(t, "Renamed", tree.Modules[0].Name)
	})

	t.Run("hierarchy and cascade", func(t *testing.T) {
		rec := httpTest{
			method: http.MethodPost, path: coursePath + "/modules", token: ownerToken,
			body: []byte(`{"ordering_number": 1, "name": "M"}`), wantCode: http.StatusCreated,
		}.run(t, srv)
		var m course.Module
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))

		httpTest{
			method: http.MethodPost, path: fmt.Sprintf("/api/teacher/module/%d/lessons", m.ID), token: otherToken,
			body: []byte(`{"ordering_number": 1, "name": "L"}`), wantCode: http.StatusForbidden,
		}.run(t, srv)
		rec = httpTest{
			method: http.MethodPost, path: fmt.Sprintf("/api/teacher/module/%d/lessons", m.ID), token: ownerToken,
			body: []byte(`{"ordering_number": 1, "name": "L"}`), wantCode: http.StatusCreated,
		}.run(t, srv)
		var l course.Lesson
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &l))

		rec = httpTest{
			method: http.MethodPost, path: fmt.Sprintf("/api/teacher/lesson/%d/steps", l.ID), token: ownerToken,
			body: []byte(`{"ordering_number": 1, "name": "S", "content": "body"}`), wantCode: http.StatusCreated,
		}.run(t, srv)
		var s course.Step
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))

		stepPath := fmt.Sprintf("/api/teacher/step/%d/update", s.ID)
		httpTest{
			method: http.MethodPut, path: stepPath, token: ownerToken,
			body: []byte(`{"ordering_number": 40000, "name": "S"}`), wantCode: http.StatusBadRequest,
		}.run(t, srv)
		httpTest{
			method: http.MethodPut, path: stepPath, token: ownerToken,
			body: []byte(`{"ordering_number": 2, "name": "S2", "content": "new body", "is_free": true}`),
		}.run(t, srv)
		httpTest{path: fmt.Sprintf("/api/teacher/lesson/%d/update", l.ID), token: ownerToken}.run(t, srv)
		httpTest{path: fmt.Sprintf("/api/teacher/module/%d/update", m.ID), token: ownerToken}.run(t, srv)

		httpTest{method: http.MethodDelete, path: fmt.Sprintf("/api/teacher/module/%d", m.ID), token: ownerToken, wantCode: http.StatusNoContent}.run(t, srv)
		httpTest{path: stepPath, token: ownerToken, wantCode: http.StatusNotFound}.run(t, srv)
		httpTest{path: fmt.Sprintf("/api/teacher/lesson/%d/update", l.ID), token: ownerToken, wantCode: http.StatusNotFound}.run(t, srv)
	})

	t.Run("delete course", func(t *testing.T) {
		httpTest{method: http.MethodDelete, path: coursePath, token: ownerToken, wantCode: http.StatusNoContent}.run(t, srv)
		httpTest{path: coursePath, token: ownerToken, wantCode: http.StatusNotFound}.run(t, srv)
	})
}

func Test_courseApi_descendants_notOwner(t *testing.T) {
	srv, app := setup(t)
	owner := testutil.CreateUser(t, app.UserRepo, "owner@test.cd", pwd, true)
	other := testutil.CreateUser(t, app.UserRepo, "other@test.cd", pwd, true)
	otherToken := getToken(t, srv, other)

	c := testutil.CreateCourse(t, app.CourseRepo, owner, "Go", testutil.CourseOpts{Published: true})
	m := testutil.CreateModule(t, app.CourseRepo, c, 1, "M")
	l := testutil.CreateLesson(t, app.CourseRepo, m, 1, "L")
	s := testutil.CreateStep(t, app.CourseRepo, l, 1, "S", "content", false)
	want := course.CourseTree{
		Course: c,
		Modules: []course.ModuleTree{{
			Module:  m,
			Lessons: []course.LessonTree{{Lesson: l, Steps: []course.Step{s}}},
		}},
	}

	modulePath := fmt.Sprintf("/api/teacher/module/%d", m.ID)
	lessonPath := fmt.Sprintf("/api/teacher/lesson/%d", l.ID)
	stepPath := fmt.Sprintf("/api/teacher/step/%d", s.ID)
	tests := []httpTest{
		{name: "module edit", path: modulePath + "/update"},
		{
			name: "module update", method: http.MethodPut, path: modulePath + "/update",
			body: []byte(fmt.Sprintf(`{"ordering_number": 9, "name": "Hacked", "lessons": [{"id": %d, "delete": true}]}`, l.ID)),
		},
		{name: "module delete", method: http.MethodDelete, path: modulePath},
		{name: "lesson create", method: http.MethodPost, path: modulePath + "/lessons", body: []byte(`{"ordering_number": 2, "name": "X"}`)},
		{name: "lesson edit", path: lessonPath + "/update"},
		{
			name: "lesson update", method: http.MethodPut, path: lessonPath + "/update",
			body: []byte(fmt.Sprintf(`{"ordering_number": 9, "name": "Hacked", "steps": [{"id": %d, "delete": true}]}`, s.ID)),
		},
		{name: "lesson delete", method: http.MethodDelete, path: lessonPath},
		{name: "step create", method: http.MethodPost, path: lessonPath + "/steps", body: []byte(`{"ordering_number": 2, "name": "X"}`)},
		{name: "step edit", path: stepPath + "/update"},
		{
			name: "step update", method: http.MethodPut, path: stepPath + "/update",
			body: []byte(`{"ordering_number": 9, "name": "Hacked", "content": "x", "is_free": true}`),
		},
		{name: "step delete", method: http.MethodDelete, path: stepPath},
		{name: "step viewers", path: stepPath + "/viewers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.token = otherToken
			tt.wantCode = http.StatusForbidden
			tt.wantData = marshalObj(t, errForbidden)
			tt.run(t, srv)

			tree, err := app.CourseSvc.TeacherCourse(context.Background(), owner, c.ID)
			require.NoError(t, err)
			assert.Equal(t, want, tree)
		})
	}
}

func Test_courseApi_listings(t *testing.T) {
	srv, app := setup(t)
	owner := testutil.CreateUser(t, app.UserRepo, "owner@test.cd", pwd, true)
	ownerToken := getToken(t, srv, owner)
	cheap := testutil.CreateCourse(t, app.CourseRepo, owner, "Zen", testutil.CourseOpts{Published: true, Cost: "10"})
	pricey := testutil.CreateCourse(t, app.CourseRepo, owner, "Art", testutil.CourseOpts{Published: true, Cost: "99.50"})

	tests := []httpTest{
		{name: "by name", path: "/api/courses", wantData: marshalObj(t, []course.Course{pricey, cheap})},
		{name: "by cost", path: "/api/courses?ordering=cost", wantData: marshalObj(t, []course.Course{cheap, pricey})},
		{name: "by cost desc", path: "/api/courses?ordering=-cost,name", wantData: marshalObj(t, []course.Course{pricey, cheap})},
		{name: "owned by id desc", path: "/api/teacher/courses?ordering=-id", token: ownerToken, wantData: marshalObj(t, []course.Course{pricey, cheap})},
		{
			name: "unknown field", path: "/api/courses?ordering=owner_id", wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"ordering": `cannot order by "owner_id", choices are: id, name, cost`}),
		},
		{
			name: "cost too large", method: http.MethodPost, path: "/api/teacher/course/create", token: ownerToken,
			body: []byte(`{"name": "Gold", "cost": "100000000"}`), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"cost": "ensure this value is less than or equal to 99999999.99"}),
		},
		{
			name: "cost with 3 decimals", method: http.MethodPost, path: "/api/teacher/course/create", token: ownerToken,
			body: []byte(`{"name": "Gold", "cost": "1.005"}`), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"cost": "ensure that there are no more than 2 decimal places"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, srv)
		})
	}
}
