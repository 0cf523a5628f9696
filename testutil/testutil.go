// Package testutil wires the app over the in-memory repositories and provides test fixtures.
package testutil

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/checkout"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/enrollment"
	"github.com/trezcool/coursehub/core/user"
	appfs "github.com/trezcool/coursehub/fs"
	emailsvc "github.com/trezcool/coursehub/services/email"
	logsvc "github.com/trezcool/coursehub/services/logger"
	paymentsvc "github.com/trezcool/coursehub/services/payment"
	inmemdb "github.com/trezcool/coursehub/storage/database/inmem"
)

var loadOnce sync.Once

// App holds every dependency of the API, backed by an in-memory DB.
type App struct {
	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	DB         *inmemdb.DB

	UserRepo       user.Repository
	CourseRepo     course.Repository
	EnrollmentRepo enrollment.Repository

	UserSvc       user.Service
	CourseSvc     course.Service
	EnrollmentSvc enrollment.Service
	Gateway       checkout.Gateway
	Orchestrator  *checkout.Orchestrator
	Subscriptions checkout.Subscriptions
}

// NewApp returns a fresh App; the console email service sends synchronously and silently.
// gateway replaces the console payment gateway when given.
func NewApp(t *testing.T, gateway ...checkout.Gateway) *App {
	t.Helper()
	conf := core.NewTestConfig()
	logger := NewLogger(conf)

	loadOnce.Do(func() {
		if err := core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, true); err != nil {
			t.Fatalf("ParseEmailTemplates() failed: %v", err)
		}
		if err := user.LoadCommonPasswords(appfs.FS, appfs.CommonPasswordsPath); err != nil {
			t.Fatalf("LoadCommonPasswords() failed: %v", err)
		}
	})

	validate, translator := NewValidator()
	app := &App{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		DB:         inmemdb.NewDB(),
	}
	app.UserRepo = inmemdb.NewUserRepository(app.DB)
	app.CourseRepo = inmemdb.NewCourseRepository(app.DB)
	app.EnrollmentRepo = inmemdb.NewEnrollmentRepository(app.DB)

	app.UserSvc = user.NewService(app.UserRepo, emailsvc.NewConsoleServiceMock(conf), conf)
	app.EnrollmentSvc = enrollment.NewService(app.EnrollmentRepo, app.CourseRepo)
	app.CourseSvc = course.NewService(app.CourseRepo, app.EnrollmentSvc, validate)

	if len(gateway) > 0 {
		app.Gateway = gateway[0]
	} else {
		app.Gateway = paymentsvc.NewConsoleGateway(logger)
	}
	app.Orchestrator = checkout.NewOrchestrator(app.Gateway, app.EnrollmentSvc, conf)
	app.Subscriptions = checkout.NewSubscriptions(app.CourseSvc, app.EnrollmentSvc, app.Orchestrator)
	return app
}

// NewLogger returns a core.Logger that discards everything.
func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "TEST : ", log.LstdFlags), conf)
	logger.Enable(false)
	return logger
}

// NewValidator returns a validator with every app validation & translation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	return validate, translator
}

// Fixtures

func CreateUser(t *testing.T, repo user.Repository, email, pwd string, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Email:     email,
		Phone:     "+7900000" + email[:1],
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CourseOpts are the optional fields of a course fixture.
type CourseOpts struct {
	Published bool
	Free      bool
	Cost      string // decimal
}

func CreateCourse(t *testing.T, repo course.Repository, owner user.User, name string, opts CourseOpts) course.Course {
	t.Helper()
	c := course.Course{
		Name:        name,
		IsPublished: opts.Published,
		IsFree:      opts.Free,
		Cost:        decimal.Zero,
	}
	if owner.ID != 0 {
		c.OwnerID = null.IntFrom(owner.ID)
	}
	if opts.Cost != "" {
		c.Cost = decimal.RequireFromString(opts.Cost)
	}
	c, err := repo.CreateCourse(context.Background(), c)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

func CreateModule(t *testing.T, repo course.Repository, c course.Course, ordering int, name string) course.Module {
	t.Helper()
	m, err := repo.CreateModule(context.Background(), course.Module{CourseID: c.ID, OrderingNumber: ordering, Name: name})
	if err != nil {
		t.Fatalf("CreateModule() failed: %v", err)
	}
	return m
}

func CreateLesson(t *testing.T, repo course.Repository, m course.Module, ordering int, name string) course.Lesson {
	t.Helper()
	l, err := repo.CreateLesson(context.Background(), course.Lesson{ModuleID: m.ID, OrderingNumber: ordering, Name: name})
	if err != nil {
		t.Fatalf("CreateLesson() failed: %v", err)
	}
	return l
}

func CreateStep(t *testing.T, repo course.Repository, l course.Lesson, ordering int, name, content string, isFree bool) course.Step {
	t.Helper()
	s, err := repo.CreateStep(context.Background(), course.Step{
		LessonID:       l.ID,
		OrderingNumber: ordering,
		Name:           name,
		Content:        content,
		IsFree:         isFree,
	})
	if err != nil {
		t.Fatalf("CreateStep() failed: %v", err)
	}
	return s
}

func Enroll(t *testing.T, repo enrollment.Repository, usr user.User, c course.Course) {
	t.Helper()
	if err := repo.AddStudent(context.Background(), c.ID, usr.ID); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
}
