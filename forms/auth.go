package forms

type LoginInput struct {
	Username string `form:"username" validate:"required,notblank"`
	Password string `form:"password" validate:"required,notblank"`
}

type RegisterInput struct {
	Username     string `form:"username" validate:"required,notblank,min=3,max=30,nospace"`
	Password     string `form:"password" validate:"required,notblank,min=6,max=8,complexity"`
	Confirmation string `form:"confirmation" validate:"required,notblank,eqfield=Password"`
}

// ProfileInput checks the username as typed. Surrounding spaces are an
// error, not something to strip. Password fields are cross-checked in the
// handler once a change is requested.
type ProfileInput struct {
	Username        string `form:"username" validate:"required,notblank,nospace,min=3,max=30"`
	CurrentPassword string `form:"current_password"`
	NewPassword     string `form:"new_password" validate:"omitempty,min=6,max=8,complexity"`
	Confirmation    string `form:"confirmation"`
}

// bind reports whether the form decoded and passed every rule.
func bind(f *Form, dst any) bool {
	if err := f.Bind(dst); err != nil {
		f.AddError("form", "InvalidField")
	}
	return f.Valid()
}

// ValidateRegister checks username, password and confirmation.
func ValidateRegister(f *Form) bool {
	return bind(f, &RegisterInput{})
}

func ValidateLogin(f *Form) bool {
	return bind(f, &LoginInput{})
}

func ValidateProfile(f *Form) bool {
	return bind(f, &ProfileInput{})
}

// WantsPasswordChange reports whether any of the three password fields was filled.
func WantsPasswordChange(f *Form) bool {
	return f.Get("current_password") != "" || f.Get("new_password") != "" || f.Get("confirmation") != ""
}
