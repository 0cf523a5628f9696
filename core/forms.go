package core

// Widgets
const (
	WidgetText     = "text"
	WidgetTextarea = "textarea"
	WidgetNumber   = "number"
	WidgetCheckbox = "checkbox"
	WidgetFile     = "file"
	WidgetEmail    = "email"
	WidgetPassword = "password"
)

// CSS classes
const (
	ClassControl    = "form-control"
	ClassCheckInput = "form-check-input"
)

// FormField is a rendering hint for one input of a form.
type FormField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Widget   string `json:"widget"`
	Class    string `json:"class"`
	Required bool   `json:"required"`
}

// Field builds a FormField, picking the CSS class from the widget.
func Field(name, label, widget string, required bool) FormField {
	class := ClassControl
	if widget == WidgetCheckbox {
		class = ClassCheckInput
	}
	return FormField{Name: name, Label: label, Widget: widget, Class: class, Required: required}
}

// FormSchema describes a form and, optionally, the inline form-set edited along with it.
type FormSchema struct {
	Name    string      `json:"name"`
	Fields  []FormField `json:"fields"`
	FormSet *FormSchema `json:"formset,omitempty"`
}

// Form is implemented by every input struct that can be rendered as a form.
type Form interface {
	Schema() FormSchema
}
