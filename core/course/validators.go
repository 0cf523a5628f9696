package course

import (
	"fmt"
	"reflect"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/trezcool/coursehub/core"
)

var (
	orderingTag  = "ordering"
	orderingText = fmt.Sprintf("ensure this value is between 0 and %d", MaxOrderingNumber)

	costPlaces     int32 = 2
	costMax              = decimal.RequireFromString("99999999.99") // NUMERIC(10, 2)
	costMaxTag           = "costmax"
	costMaxText          = fmt.Sprintf("ensure this value is less than or equal to %s", costMax.StringFixed(costPlaces))
	costPlacesTag        = "costplaces"
	costPlacesText       = fmt.Sprintf("ensure that there are no more than %d decimal places", costPlaces)

	requiredTag = "required"
)

// InitValidators registers the course struct validations & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	validate.RegisterStructValidation(setEntryStructValidation, SetEntry{})
	validate.RegisterStructValidation(courseFormStructValidation, CourseForm{})

	_ = validate.RegisterValidation(orderingTag, orderingValidation)
	for tag, text := range map[string]string{
		orderingTag:   orderingText,
		costMaxTag:    costMaxText,
		costPlacesTag: costPlacesText,
	} {
		core.RegisterCustomTranslation(validate, translator, tag, text)
	}
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func orderingValidation(fl validator.FieldLevel) bool {
	n := fl.Field().Int()
	return n >= 0 && n <= MaxOrderingNumber
}

// setEntryStructValidation requires a name on every row not marked for deletion.
func setEntryStructValidation(sl validator.StructLevel) {
	if e, ok := sl.Current().Interface().(SetEntry); ok && !e.Delete && e.Name == "" {
		sl.ReportError(e.Name, "name", "Name", requiredTag, "")
	}
}

// courseFormStructValidation keeps the cost within NUMERIC(10, 2).
func courseFormStructValidation(sl validator.StructLevel) {
	f, ok := sl.Current().Interface().(CourseForm)
	if !ok {
		return
	}
	switch {
	case f.Cost.GreaterThan(costMax):
		sl.ReportError(f.Cost, "cost", "Cost", costMaxTag, "")
	case !f.Cost.Equal(f.Cost.Truncate(costPlaces)):
		sl.ReportError(f.Cost, "cost", "Cost", costPlacesTag, "")
	}
}
