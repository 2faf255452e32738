package feed

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

var (
	postTypeTag  = "posttype"
	postTypeText = "invalid post type"

	privacyTag  = "privacylevel"
	privacyText = "invalid privacy level"
)

func init() {
	_ = core.Validate.RegisterValidation(postTypeTag, postTypeValidation)
	core.RegisterCustomTranslation(postTypeTag, postTypeText)

	_ = core.Validate.RegisterValidation(privacyTag, privacyValidation)
	core.RegisterCustomTranslation(privacyTag, privacyText)
}

func postTypeValidation(fl validator.FieldLevel) bool {
	typ := fl.Field().String()
	for _, t := range AllTypes {
		if t == typ {
			return true
		}
	}
	return false
}

func privacyValidation(fl validator.FieldLevel) bool {
	lvl := fl.Field().String()
	for _, l := range AllPrivacyLevels {
		if l == lvl {
			return true
		}
	}
	return false
}
