package form

import (
	"github.com/usuarios-app/usuarios/database/model"
	"github.com/usuarios-app/usuarios/logger"
)

const minPasswordLen = 8

// UserDirectory answers the uniqueness and existence questions the forms
// need. Implemented by service.UserService.
type UserDirectory interface {
	UsernameExists(username string) (bool, error)
	EmailExists(email string) (bool, error)
}

// RegisterForm carries the raw registration submission.
type RegisterForm struct {
	Username  string `json:"username" form:"username"`
	Email     string `json:"email" form:"email"`
	Nombres   string `json:"nombres" form:"nombres"`
	Apellidos string `json:"apellidos" form:"apellidos"`
	Genero    string `json:"genero" form:"genero"`
	Password  string `json:"password" form:"password"`
	Password2 string `json:"password2" form:"password2"`
}

// Validate applies every field rule independently, then the cross-field
// password confirmation. Uniqueness is answered by the directory; a lookup
// failure is logged and the field passes, leaving the database constraint as
// the last line of defense.
func (f *RegisterForm) Validate(dir UserDirectory) Errors {
	errs := Errors{}

	if f.Username == "" {
		errs.Add("username", "El nombre de usuario es obligatorio.")
	} else {
		if hasSpace(f.Username) {
			errs.Add("username", "El nombre de usuario no puede contener espacios.")
		}
		if len(f.Username) > 10 {
			errs.Add("username", "El nombre de usuario no puede exceder 10 caracteres.")
		}
		if exists, err := dir.UsernameExists(f.Username); err != nil {
			logger.Warning("username uniqueness check failed:", err)
		} else if exists {
			errs.Add("username", "El nombre de usuario ya está en uso.")
		}
	}

	if !isEmail(f.Email) {
		errs.Add("email", "Ingrese un correo electrónico válido.")
	} else if exists, err := dir.EmailExists(f.Email); err != nil {
		logger.Warning("email uniqueness check failed:", err)
	} else if exists {
		errs.Add("email", "El correo electrónico ya está en uso.")
	}

	if len(f.Password) < minPasswordLen {
		errs.Add("password", "La contraseña debe tener al menos 8 caracteres.")
	}

	if f.Nombres == "" {
		errs.Add("nombres", "Los nombres son obligatorios.")
	} else if hasDigit(f.Nombres) {
		errs.Add("nombres", "Los nombres no pueden contener números.")
	}

	if f.Apellidos == "" {
		errs.Add("apellidos", "Los apellidos son obligatorios.")
	} else if hasDigit(f.Apellidos) {
		errs.Add("apellidos", "Los apellidos no pueden contener números.")
	}

	if _, ok := model.Generos[f.Genero]; !ok {
		errs.Add("genero", "Seleccione un género válido.")
	}

	// Cross-field checks run after the field checks.
	if f.Password2 == "" {
		errs.Add("password2", "La confirmación de la contraseña es obligatoria.")
	} else if f.Password != f.Password2 {
		errs.Add("password2", "Las contraseñas no coinciden.")
	}

	return errs
}
