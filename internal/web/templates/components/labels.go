package components

import "github.com/mcoot/registrar/internal/model"

// identityFields are repeated on step 2 since the rules may have changed
// after step 1 passed
var identityFields = []model.FieldKind{model.FieldFirstName, model.FieldLastName, model.FieldEmail}

// selectedGender maps a submitted value to a known gender, or "" when the
// placeholder (or nothing) was chosen
func selectedGender(submitted string) model.Gender {
	g, _ := model.ParseGender(submitted)
	return g
}

func genderLabel(g model.Gender) string {
	switch g {
	case model.GenderMale:
		return "Male"
	case model.GenderFemale:
		return "Female"
	default:
		return "Unspecified"
	}
}
