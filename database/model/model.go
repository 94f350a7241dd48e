// Package model defines the gorm entities persisted by the usuarios panel.
package model

import "time"

// Genero codes accepted for a user. Stored as a single character.
const (
	GeneroMasculino = "M"
	GeneroFemenino  = "F"
	GeneroOtro      = "O"
)

// Generos maps each stored code to its display label.
var Generos = map[string]string{
	GeneroMasculino: "Masculino",
	GeneroFemenino:  "Femenino",
	GeneroOtro:      "Otro",
}

// User is the sole domain entity: an account that registers, verifies its
// email address with a short code, and then may authenticate.
type User struct {
	Id       int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username string `json:"username" gorm:"uniqueIndex;not null;size:10"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	// Password holds the bcrypt hash, never the clear text.
	Password  string `json:"-" gorm:"column:password_hash;not null"`
	Nombres   string `json:"nombres" gorm:"size:100"`
	Apellidos string `json:"apellidos" gorm:"size:100"`
	Genero    string `json:"genero" gorm:"size:1"`
	// CodigoVerificador is the outstanding email confirmation code. Empty
	// once verification succeeds.
	CodigoVerificador string    `json:"-" gorm:"size:6"`
	IsActive          bool      `json:"isActive" gorm:"not null;default:false"`
	IsStaff           bool      `json:"isStaff" gorm:"not null;default:false"`
	IsSuperuser       bool      `json:"isSuperuser" gorm:"not null;default:false"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ShortName returns the name the user logs in with.
func (u *User) ShortName() string {
	return u.Username
}

// FullName returns the display name composed of first and last names.
func (u *User) FullName() string {
	return u.Nombres + " " + u.Apellidos
}

// Setting is a key/value row backing the runtime configuration.
type Setting struct {
	Id    int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Key   string `json:"key" gorm:"uniqueIndex"`
	Value string `json:"value"`
}
