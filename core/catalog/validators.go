package catalog

import (
	"github.com/go-playground/validator/v10"

	"github.com/quadbase/ocms/core"
)

var (
	programTypeTag  = "program_type"
	programTypeText = "invalid program type"
)

func init() {
	_ = core.Validate.RegisterValidation(programTypeTag, programTypeValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, programTypeTag, programTypeText)
}

func programTypeValidation(fl validator.FieldLevel) bool {
	return ProgramType(fl.Field().String()).Valid()
}
