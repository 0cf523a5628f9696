package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/user"
)

type courseApi struct {
	svc course.Service
}

// EditResponse carries an object along with the schema of the form editing it.
type EditResponse struct {
	Form   core.FormSchema `json:"form"`
	Object interface{}     `json:"object"`
}

func registerCourseAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc course.Service) {
	api := courseApi{svc: svc}

	// public
	g.GET("/courses", api.listPublished)
	g.GET("/course/:id", api.preview)
	g.GET("/free/course/:id", api.freeCourse)
	g.GET("/free/step/:id", api.freeStep)

	// teacher
	tg := g.Group("/teacher", authed...)
	tg.GET("/forms/:name", api.form)

	tg.GET("/courses", api.listOwned)
	tg.POST("/course/create", api.createCourse)
	tg.GET("/course/:id", api.retrieveCourse)
	tg.GET("/course/:id/update", api.editCourse)
	tg.PUT("/course/:id/update", api.updateCourse)
	tg.DELETE("/course/:id", api.destroyCourse)
	tg.POST("/course/:id/modules", api.createModule)

	tg.GET("/module/:id/update", api.editModule)
	tg.PUT("/module/:id/update", api.updateModule)
	tg.DELETE("/module/:id", api.destroyModule)
	tg.POST("/module/:id/lessons", api.createLesson)

	tg.GET("/lesson/:id/update", api.editLesson)
	tg.PUT("/lesson/:id/update", api.updateLesson)
	tg.DELETE("/lesson/:id", api.destroyLesson)
	tg.POST("/lesson/:id/steps", api.createStep)

	tg.GET("/step/:id/update", api.editStep)
	tg.PUT("/step/:id/update", api.updateStep)
	tg.DELETE("/step/:id", api.destroyStep)
	tg.GET("/step/:id/viewers", api.stepViewers)
}

// Public

func (api *courseApi) listPublished(ctx echo.Context) error {
	courses, err := api.svc.ListPublished(ctx.Request().Context(), queryOrdering(ctx)...)
	if err != nil {
		return errors.Wrap(err, "listing published courses")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(courses))
}

func (api *courseApi) preview(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	tree, err := api.svc.Preview(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tree)
}

func (api *courseApi) freeCourse(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	tree, err := api.svc.FreeCourse(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tree)
}

func (api *courseApi) freeStep(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	step, err := api.svc.FreeStep(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, step)
}

// Teacher

var forms = func() map[string]core.Form {
	all := map[string]core.Form{
		"register":     user.NewUser{},
		"code_confirm": user.ConfirmCode{},
	}
	for name, f := range course.Forms {
		all[name] = f
	}
	return all
}()

func (api *courseApi) form(ctx echo.Context) error {
	f, ok := forms[ctx.Param("name")]
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, f.Schema())
}

func (api *courseApi) listOwned(ctx echo.Context) error {
	courses, err := api.svc.ListOwned(ctx.Request().Context(), contextUser(ctx), queryOrdering(ctx)...)
	if err != nil {
		return errors.Wrap(err, "listing owned courses")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(courses))
}

func (api *courseApi) createCourse(ctx echo.Context) error {
	var data course.CourseForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseForm")
	}
	c, err := api.svc.CreateCourse(ctx.Request().Context(), contextUser(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) retrieveCourse(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	tree, err := api.svc.TeacherCourse(ctx.Request().Context(), contextUser(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tree)
}

func (api *courseApi) editCourse(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	tree, err := api.svc.TeacherCourse(ctx.Request().Context(), contextUser(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, EditResponse{Form: course.CourseUpdate{}.Schema(), Object: tree})
}

func (api *courseApi) updateCourse(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data course.CourseUpdate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseUpdate")
	}
	tree, err := api.svc.UpdateCourse(ctx.Request().Context(), contextUser(ctx), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tree)
}

func (api *courseApi) destroyCourse(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteCourse(ctx.Request().Context(), contextUser(ctx), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) createModule(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data course.ModuleForm
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ModuleForm")
	}
	m, err := api.svc.CreateModule(ctx.Request().Context(), contextUser(ctx), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *courseApi) editModule(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	tree, err := api.svc.TeacherModule(ctx.Request().Context(), contextUser(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, EditResponse{Form: course.ModuleUpdate{}.Schema(), Object: tree})
}

func (api *courseApi) updateModule(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data course.ModuleUpdate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ModuleUpdate")
	}
	tree, err := api.svc.UpdateModule(ctx.Request().Context(), contextUser(ctx), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tree)
}

func (api *courseApi) destroyModule(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteModule(ctx.Request().Context(), contextUser(ctx), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) createLesson(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data course.LessonForm
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LessonForm")
	}
	l, err := api.svc.CreateLesson(ctx.Request().Context(), contextUser(ctx), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, l)
}

func (api *courseApi) editLesson(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	tree, err := api.svc.TeacherLesson(ctx.Request().Context(), contextUser(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, EditResponse{Form: course.LessonUpdate{}.Schema(), Object: tree})
}

func (api *courseApi) updateLesson(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data course.LessonUpdate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LessonUpdate")
	}
	tree, err := api.svc.UpdateLesson(ctx.Request().Context(), contextUser(ctx), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tree)
}

func (api *courseApi) destroyLesson(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteLesson(ctx.Request().Context(), contextUser(ctx), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) createStep(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data course.StepForm
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StepForm")
	}
	s, err := api.svc.CreateStep(ctx.Request().Context(), contextUser(ctx), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *courseApi) editStep(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	s, err := api.svc.TeacherStep(ctx.Request().Context(), contextUser(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, EditResponse{Form: course.StepForm{}.Schema(), Object: s})
}

func (api *courseApi) updateStep(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data course.StepForm
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StepForm")
	}
	s, err := api.svc.UpdateStep(ctx.Request().Context(), contextUser(ctx), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *courseApi) destroyStep(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteStep(ctx.Request().Context(), contextUser(ctx), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) stepViewers(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	ids, err := api.svc.StepViewers(ctx.Request().Context(), contextUser(ctx), id)
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []int{}
	}
	return ctx.JSON(http.StatusOK, ids)
}

func emptyIfNil(courses []course.Course) []course.Course {
	if courses == nil {
		return []course.Course{}
	}
	return courses
}
