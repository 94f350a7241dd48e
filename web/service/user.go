package service

import (
	"errors"
	"time"

	"github.com/usuarios-app/usuarios/database"
	"github.com/usuarios-app/usuarios/database/model"
	"github.com/usuarios-app/usuarios/logger"
	"github.com/usuarios-app/usuarios/util/crypto"
	"github.com/usuarios-app/usuarios/util/random"
)

// ErrCodigoIncorrecto is returned by Verify when the submitted code does not
// match the stored one. It is surfaced as a field error, not a system fault.
var ErrCodigoIncorrecto = errors.New("el código de verificación es incorrecto")

// UserService owns every lookup and mutation of the User entity. All
// password handling goes through util/crypto; no caller ever sees a hash.
type UserService struct{}

// NewUser carries the validated registration fields into CreateUser.
type NewUser struct {
	Username  string
	Email     string
	Password  string
	Nombres   string
	Apellidos string
	Genero    string
}

// CreateUser persists a regular account. The activation state is an explicit
// parameter: registration passes false and relies on email verification,
// administrative creation passes true. Inactive accounts get a fresh
// verification code.
func (s *UserService) CreateUser(n NewUser, active bool) (*model.User, error) {
	return s.createUser(n, active, false, false)
}

// CreateSuperuser persists an account with both privilege flags set. It is
// always created active.
func (s *UserService) CreateSuperuser(n NewUser) (*model.User, error) {
	return s.createUser(n, true, true, true)
}

func (s *UserService) createUser(n NewUser, active, staff, superuser bool) (*model.User, error) {
	hash, err := crypto.HashPasswordAsBcrypt(n.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:    n.Username,
		Email:       n.Email,
		Password:    hash,
		Nombres:     n.Nombres,
		Apellidos:   n.Apellidos,
		Genero:      n.Genero,
		IsActive:    active,
		IsStaff:     staff,
		IsSuperuser: superuser,
	}
	if !active {
		user.CodigoVerificador = random.VerificationCode()
	}

	db := database.GetDB()
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) FindByUsername(username string) (*model.User, error) {
	db := database.GetDB()
	user := &model.User{}
	err := db.Model(model.User{}).
		Where("username = ?", username).
		First(user).
		Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) FindByEmail(email string) (*model.User, error) {
	db := database.GetDB()
	user := &model.User{}
	err := db.Model(model.User{}).
		Where("email = ?", email).
		First(user).
		Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) FindByVerificationCode(code string) (*model.User, error) {
	db := database.GetDB()
	user := &model.User{}
	err := db.Model(model.User{}).
		Where("codigo_verificador = ? AND codigo_verificador <> ''", code).
		First(user).
		Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UsernameExists reports whether a user with the given username exists.
func (s *UserService) UsernameExists(username string) (bool, error) {
	var count int64
	err := database.GetDB().Model(model.User{}).
		Where("username = ?", username).
		Count(&count).
		Error
	return count > 0, err
}

// EmailExists reports whether a user with the given email exists.
func (s *UserService) EmailExists(email string) (bool, error) {
	var count int64
	err := database.GetDB().Model(model.User{}).
		Where("email = ?", email).
		Count(&count).
		Error
	return count > 0, err
}

// ListUsers returns one page of all users ordered by username, together with
// the total count. page is 1-based.
func (s *UserService) ListUsers(page, pageSize int) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	db := database.GetDB()

	var total int64
	if err := db.Model(model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := db.Model(model.User{}).
		Order("username ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&users).
		Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *UserService) ListActive() ([]model.User, error) {
	return s.listByActive(true)
}

func (s *UserService) ListInactive() ([]model.User, error) {
	return s.listByActive(false)
}

func (s *UserService) listByActive(active bool) ([]model.User, error) {
	var users []model.User
	err := database.GetDB().Model(model.User{}).
		Where("is_active = ?", active).
		Order("username ASC").
		Find(&users).
		Error
	return users, err
}

func (s *UserService) CountActive() (int64, error) {
	return s.countByActive(true)
}

func (s *UserService) CountInactive() (int64, error) {
	return s.countByActive(false)
}

func (s *UserService) countByActive(active bool) (int64, error) {
	var count int64
	err := database.GetDB().Model(model.User{}).
		Where("is_active = ?", active).
		Count(&count).
		Error
	return count, err
}

// Activate marks the account active by direct administrative action,
// bypassing the verification workflow.
func (s *UserService) Activate(username string) error {
	return s.setActive(username, true)
}

// Deactivate is the soft-delete path: the row stays, the account can no
// longer authenticate.
func (s *UserService) Deactivate(username string) error {
	return s.setActive(username, false)
}

func (s *UserService) setActive(username string, active bool) error {
	user, err := s.FindByUsername(username)
	if err != nil {
		return err
	}
	user.IsActive = active
	return database.GetDB().Save(user).Error
}

// UpdatePassword replaces the stored hash for the account.
func (s *UserService) UpdatePassword(username, newPassword string) error {
	user, err := s.FindByUsername(username)
	if err != nil {
		return err
	}
	hash, err := crypto.HashPasswordAsBcrypt(newPassword)
	if err != nil {
		return err
	}
	user.Password = hash
	return database.GetDB().Save(user).Error
}

func (s *UserService) UpdateEmail(username, newEmail string) error {
	user, err := s.FindByUsername(username)
	if err != nil {
		return err
	}
	user.Email = newEmail
	return database.GetDB().Save(user).Error
}

// CheckUser verifies the credentials and returns the user on success, nil on
// any failure. Callers must not distinguish why it failed: unknown username,
// wrong password and inactive account all look the same to the submitter.
func (s *UserService) CheckUser(username, password string) *model.User {
	user, err := s.FindByUsername(username)
	if database.IsNotFound(err) {
		return nil
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil
	}

	if !crypto.CheckPasswordHash(user.Password, password) {
		return nil
	}
	if !user.IsActive {
		return nil
	}
	return user
}

// VerifyPassword checks a raw password against the stored hash without the
// activity requirement of CheckUser. Used by the password-change workflow
// for the already-authenticated user.
func (s *UserService) VerifyPassword(username, password string) bool {
	user, err := s.FindByUsername(username)
	if err != nil {
		return false
	}
	return crypto.CheckPasswordHash(user.Password, password)
}

// Verify compares the submitted code against the stored one by exact string
// equality. On match it activates the account and rotates the code away so
// it cannot be replayed. Verifying an already-active account never
// deactivates it.
func (s *UserService) Verify(username, code string) (*model.User, error) {
	user, err := s.FindByUsername(username)
	if err != nil {
		return nil, err
	}

	if user.CodigoVerificador == "" || user.CodigoVerificador != code {
		return nil, ErrCodigoIncorrecto
	}

	user.IsActive = true
	user.CodigoVerificador = ""
	if err := database.GetDB().Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// PurgeUnverified deletes inactive accounts with an outstanding code that
// were created before the cutoff. Returns the number of rows removed.
func (s *UserService) PurgeUnverified(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result := database.GetDB().
		Where("is_active = ? AND codigo_verificador <> '' AND created_at < ?", false, cutoff).
		Delete(&model.User{})
	return result.RowsAffected, result.Error
}
