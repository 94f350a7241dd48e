package form

// LoginForm carries a login submission. Whether the account exists and
// whether the password matches is the credential check's business, not the
// form's; the form only refuses obviously malformed input.
type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (f *LoginForm) Validate() Errors {
	errs := Errors{}

	if f.Username == "" {
		errs.Add("username", "El nombre de usuario es obligatorio.")
	} else if hasSpace(f.Username) {
		errs.Add("username", "El nombre de usuario no puede contener espacios.")
	}

	if f.Password == "" {
		errs.Add("password", "La contraseña es obligatoria.")
	}

	return errs
}

// VerifyCodeForm carries a verification-code submission. The code comparison
// itself lives behind UserService.Verify; the form only checks presence and
// that the username resolves to a user.
type VerifyCodeForm struct {
	Username          string `json:"username" form:"username"`
	CodigoVerificador string `json:"codigo_verificador" form:"codigo_verificador"`
}

// UserLookup is the existence check needed by the verification form.
type UserLookup interface {
	UsernameExists(username string) (bool, error)
}

func (f *VerifyCodeForm) Validate(dir UserLookup) Errors {
	errs := Errors{}

	if f.Username == "" {
		errs.Add("username", "El nombre de usuario es obligatorio.")
	}
	if f.CodigoVerificador == "" {
		errs.Add("codigo_verificador", "El código de verificación es obligatorio.")
	}
	if errs.Has() {
		return errs
	}

	exists, err := dir.UsernameExists(f.Username)
	if err == nil && !exists {
		errs.Add("username", "El usuario no existe.")
	}

	return errs
}

// UpdatePasswordForm carries a password-change submission for the
// authenticated user. The current-password verification happens against the
// stored hash in the service layer; the form handles length, confirmation
// and the new-differs-from-current rule.
type UpdatePasswordForm struct {
	PasswordActual string `json:"password_actual" form:"password_actual"`
	PasswordNueva  string `json:"password_nueva" form:"password_nueva"`
	PasswordNueva2 string `json:"password_nueva2" form:"password_nueva2"`
}

func (f *UpdatePasswordForm) Validate() Errors {
	errs := Errors{}

	if f.PasswordActual == "" {
		errs.Add("password_actual", "La contraseña actual es obligatoria.")
	}
	if len(f.PasswordNueva) < minPasswordLen {
		errs.Add("password_nueva", "La nueva contraseña debe tener al menos 8 caracteres.")
	}

	if f.PasswordNueva2 == "" {
		errs.Add("password_nueva2", "La confirmación de la nueva contraseña es obligatoria.")
	} else if f.PasswordNueva != f.PasswordNueva2 {
		errs.Add("password_nueva2", "Las nuevas contraseñas no coinciden.")
	}
	if f.PasswordActual != "" && f.PasswordNueva != "" && f.PasswordActual == f.PasswordNueva {
		errs.Add("password_nueva", "La nueva contraseña no puede ser igual a la actual.")
	}

	return errs
}
