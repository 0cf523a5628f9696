package course

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/trezcool/coursehub/core"
)

type (
	// CourseForm holds the teacher-editable fields of a Course.
	CourseForm struct {
		Name        string          `json:"name" validate:"required,notblank,max=128"`
		Description string          `json:"description"`
		Image       string          `json:"image" validate:"omitempty,max=255"`
		IsPublished bool            `json:"is_published"`
		IsFree      bool            `json:"is_free"`
		Cost        decimal.Decimal `json:"cost" validate:"gte=0"`
	}

	// SetEntry is one row of an inline form-set: no ID creates a child, an ID updates or deletes it.
	SetEntry struct {
		ID             int    `json:"id"`
		OrderingNumber int    `json:"ordering_number" validate:"ordering"`
		Name           string `json:"name" validate:"max=128"`
		Delete         bool   `json:"delete"`
	}

	// CourseUpdate edits a course along with its module set.
	CourseUpdate struct {
		CourseForm
		Modules []SetEntry `json:"modules" validate:"dive"`
	}

	ModuleForm struct {
		OrderingNumber int    `json:"ordering_number" validate:"ordering"`
		Name           string `json:"name" validate:"required,notblank,max=128"`
	}

	// ModuleUpdate edits a module along with its lesson set.
	ModuleUpdate struct {
		ModuleForm
		Lessons []SetEntry `json:"lessons" validate:"dive"`
	}

	LessonForm struct {
		OrderingNumber int    `json:"ordering_number" validate:"ordering"`
		Name           string `json:"name" validate:"required,notblank,max=128"`
	}

	// LessonUpdate edits a lesson along with its step set.
	LessonUpdate struct {
		LessonForm
		Steps []SetEntry `json:"steps" validate:"dive"`
	}

	StepForm struct {
		OrderingNumber int    `json:"ordering_number" validate:"ordering"`
		Name           string `json:"name" validate:"required,notblank,max=128"`
		Content        string `json:"content"`
		IsFree         bool   `json:"is_free"`
	}
)

func (f *CourseForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.Image = core.CleanString(f.Image)
	return validate.Struct(f)
}

func (f *CourseForm) apply(c *Course) {
	c.Name = f.Name
	c.Description = f.Description
	c.Image = f.Image
	c.IsPublished = f.IsPublished
	c.IsFree = f.IsFree
	c.Cost = f.Cost
}

func (CourseForm) Schema() core.FormSchema {
	return core.FormSchema{
		Name: "course",
		Fields: []core.FormField{
			core.Field("name", "course name", core.WidgetText, true),
			core.Field("description", "description", core.WidgetTextarea, false),
			core.Field("image", "image", core.WidgetFile, false),
			core.Field("is_published", "published", core.WidgetCheckbox, false),
			core.Field("is_free", "free preview", core.WidgetCheckbox, false),
			core.Field("cost", "cost", core.WidgetNumber, true),
		},
	}
}

func (u *CourseUpdate) Validate(validate *validator.Validate) error {
	u.Name = core.CleanString(u.Name)
	u.Image = core.CleanString(u.Image)
	u.Modules = cleanSet(u.Modules)
	return validate.Struct(u)
}

func (CourseUpdate) Schema() core.FormSchema {
	schema := CourseForm{}.Schema()
	schema.FormSet = setSchema("modules", "module name")
	return schema
}

func (f *ModuleForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	return validate.Struct(f)
}

func (ModuleForm) Schema() core.FormSchema {
	return core.FormSchema{
		Name: "module",
		Fields: []core.FormField{
			core.Field("ordering_number", "ordering number", core.WidgetNumber, true),
			core.Field("name", "module name", core.WidgetText, true),
		},
	}
}

func (u *ModuleUpdate) Validate(validate *validator.Validate) error {
	u.Name = core.CleanString(u.Name)
	u.Lessons = cleanSet(u.Lessons)
	return validate.Struct(u)
}

func (ModuleUpdate) Schema() core.FormSchema {
	schema := ModuleForm{}.Schema()
	schema.FormSet = setSchema("lessons", "lesson name")
	return schema
}

func (f *LessonForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	return validate.Struct(f)
}

func (LessonForm) Schema() core.FormSchema {
	return core.FormSchema{
		Name: "lesson",
		Fields: []core.FormField{
			core.Field("ordering_number", "ordering number", core.WidgetNumber, true),
			core.Field("name", "lesson name", core.WidgetText, true),
		},
	}
}

func (u *LessonUpdate) Validate(validate *validator.Validate) error {
	u.Name = core.CleanString(u.Name)
	u.Steps = cleanSet(u.Steps)
	return validate.Struct(u)
}

func (LessonUpdate) Schema() core.FormSchema {
	schema := LessonForm{}.Schema()
	schema.FormSet = setSchema("steps", "step name")
	return schema
}

func (f *StepForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	return validate.Struct(f)
}

func (StepForm) Schema() core.FormSchema {
	return core.FormSchema{
		Name: "step",
		Fields: []core.FormField{
			core.Field("ordering_number", "ordering number", core.WidgetNumber, true),
			core.Field("name", "step name", core.WidgetText, true),
			core.Field("content", "content", core.WidgetTextarea, false),
			core.Field("is_free", "free preview", core.WidgetCheckbox, false),
		},
	}
}

// cleanSet trims names and drops the blank rows a client sends for "extra" empty forms.
func cleanSet(entries []SetEntry) []SetEntry {
	cleaned := make([]SetEntry, 0, len(entries))
	for _, e := range entries {
		e.Name = core.CleanString(e.Name)
		if e.ID == 0 && (e.Name == "" || e.Delete) {
			continue
		}
		cleaned = append(cleaned, e)
	}
	return cleaned
}

func setSchema(name, label string) *core.FormSchema {
	return &core.FormSchema{
		Name: name,
		Fields: []core.FormField{
			core.Field("id", "id", core.WidgetNumber, false),
			core.Field("ordering_number", "ordering number", core.WidgetNumber, true),
			core.Field("name", label, core.WidgetText, true),
			core.Field("delete", "delete", core.WidgetCheckbox, false),
		},
	}
}

// Forms lists every form the teacher UI can render, by name.
var Forms = map[string]core.Form{
	"course":        CourseForm{},
	"course_update": CourseUpdate{},
	"module":        ModuleForm{},
	"module_update": ModuleUpdate{},
	"lesson":        LessonForm{},
	"lesson_update": LessonUpdate{},
	"step":          StepForm{},
}
