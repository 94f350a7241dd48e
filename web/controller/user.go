package controller

import (
	"net/http"
	"strconv"

	"github.com/usuarios-app/usuarios/database"
	"github.com/usuarios-app/usuarios/logger"
	"github.com/usuarios-app/usuarios/web/entity"
	"github.com/usuarios-app/usuarios/web/form"
	"github.com/usuarios-app/usuarios/web/service"
	"github.com/usuarios-app/usuarios/web/session"

	"github.com/gin-gonic/gin"
)

// registerResult is returned to the submitter after a successful
// registration. EmailSent tells the caller whether the code actually went
// out; a dispatch failure does not undo the account.
type registerResult struct {
	Username  string `json:"username"`
	EmailSent bool   `json:"emailSent"`
}

// UserController orchestrates the user lifecycle: register, verify, login,
// logout, listing and password change.
type UserController struct {
	BaseController

	userService    service.UserService
	settingService service.SettingService
	mailService    *service.MailService
}

// NewUserController creates the controller and registers its routes.
func NewUserController(g *gin.RouterGroup, mailService *service.MailService) *UserController {
	a := &UserController{mailService: mailService}
	a.initRouter(g)
	return a
}

func (a *UserController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/users")

	g.POST("/register/", a.register)
	g.POST("/verificar-codigo/", a.verificarCodigo)
	g.POST("/login/", a.login)
	g.GET("/logout/", a.logout)

	g.GET("/lista/", a.checkLogin, a.lista)
	g.POST("/update-password/", a.checkLogin, a.updatePassword)
	g.GET("/logs/", a.checkLogin, a.checkStaff, a.logs)
}

// register validates the submission, creates the account inactive with a
// fresh verification code and dispatches the code by email. Email failure is
// logged and reported, never fatal to the account.
func (a *UserController) register(c *gin.Context) {
	var f form.RegisterForm
	if err := c.ShouldBind(&f); err != nil {
		pureJsonMsg(c, http.StatusOK, false, "Datos del formulario inválidos.")
		return
	}

	if errs := f.Validate(&a.userService); errs.Has() {
		jsonFieldErrors(c, errs)
		return
	}

	user, err := a.userService.CreateUser(service.NewUser{
		Username:  f.Username,
		Email:     f.Email,
		Password:  f.Password,
		Nombres:   f.Nombres,
		Apellidos: f.Apellidos,
		Genero:    f.Genero,
	}, false)
	if err != nil {
		jsonMsg(c, "No se pudo crear el usuario", err)
		return
	}

	emailSent := false
	if err := a.mailService.SendVerificationCode(c.Request.Context(), user.Email, user.Username, user.CodigoVerificador); err != nil {
		logger.Warningf("verification email to %s failed: %v", user.Email, err)
	} else {
		emailSent = true
	}

	logger.Infof("user %s registered, pending verification", user.Username)
	jsonObj(c, registerResult{Username: user.Username, EmailSent: emailSent}, nil)
}

// verificarCodigo activates the account when the submitted code matches the
// stored one exactly. A mismatch changes nothing and is reported on the code
// field.
func (a *UserController) verificarCodigo(c *gin.Context) {
	var f form.VerifyCodeForm
	if err := c.ShouldBind(&f); err != nil {
		pureJsonMsg(c, http.StatusOK, false, "Datos del formulario inválidos.")
		return
	}

	if errs := f.Validate(&a.userService); errs.Has() {
		jsonFieldErrors(c, errs)
		return
	}

	user, err := a.userService.Verify(f.Username, f.CodigoVerificador)
	if err != nil {
		errs := form.Errors{}
		if database.IsNotFound(err) {
			errs.Add("username", "El usuario no existe.")
		} else {
			errs.Add("codigo_verificador", "El código de verificación es incorrecto.")
		}
		jsonFieldErrors(c, errs)
		return
	}

	logger.Infof("user %s verified and activated", user.Username)
	jsonMsg(c, "Cuenta verificada correctamente.", nil)
}

// login delegates the credential check to the user service. The failure
// answer never reveals whether the username exists.
func (a *UserController) login(c *gin.Context) {
	var f form.LoginForm
	if err := c.ShouldBind(&f); err != nil {
		pureJsonMsg(c, http.StatusOK, false, "Datos del formulario inválidos.")
		return
	}

	if errs := f.Validate(); errs.Has() {
		jsonFieldErrors(c, errs)
		return
	}

	user := a.userService.CheckUser(f.Username, f.Password)
	if user == nil {
		logger.Warningf("failed login for %q, IP: %q", f.Username, getRemoteIp(c))
		pureJsonMsg(c, http.StatusOK, false, "Nombre de usuario o contraseña incorrectos.")
		return
	}

	sessionMaxAge, err := a.settingService.GetSessionMaxAge()
	if err != nil {
		logger.Warning("unable to get session max age:", err)
	}
	if err := session.SetMaxAge(c, sessionMaxAge*60); err != nil {
		logger.Warning("unable to set session max age:", err)
	}
	if err := session.SetLoginUser(c, user); err != nil {
		jsonMsg(c, "No se pudo iniciar la sesión", err)
		return
	}

	logger.Infof("%s logged in successfully, IP: %s", user.Username, getRemoteIp(c))
	jsonMsg(c, "Sesión iniciada correctamente.", nil)
}

// logout invalidates the session. It always succeeds and lands on the home
// page.
func (a *UserController) logout(c *gin.Context) {
	user := session.GetLoginUser(c)
	if user != nil {
		logger.Infof("%s logged out successfully", user.Username)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("unable to clear session:", err)
	}
	c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path"))
}

// lista returns all users ordered by username, paginated at the configured
// page size.
func (a *UserController) lista(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := a.settingService.GetPageSize()
	if err != nil {
		jsonMsg(c, "No se pudo obtener la configuración", err)
		return
	}

	users, total, err := a.userService.ListUsers(page, pageSize)
	if err != nil {
		jsonMsg(c, "No se pudo obtener la lista de usuarios", err)
		return
	}

	jsonObj(c, entity.NewPage(users, total, page, pageSize), nil)
}

// updatePassword rotates the authenticated user's password and re-issues the
// session so credential rotation does not log the user out.
func (a *UserController) updatePassword(c *gin.Context) {
	var f form.UpdatePasswordForm
	if err := c.ShouldBind(&f); err != nil {
		pureJsonMsg(c, http.StatusOK, false, "Datos del formulario inválidos.")
		return
	}

	errs := f.Validate()
	loginUser := session.GetLoginUser(c)
	if f.PasswordActual != "" && !a.userService.VerifyPassword(loginUser.Username, f.PasswordActual) {
		errs.Add("password_actual", "La contraseña actual es incorrecta.")
	}
	if errs.Has() {
		jsonFieldErrors(c, errs)
		return
	}

	if err := a.userService.UpdatePassword(loginUser.Username, f.PasswordNueva); err != nil {
		jsonMsg(c, "No se pudo actualizar la contraseña", err)
		return
	}

	// Re-establish the session with the fresh user record.
	user, err := a.userService.FindByUsername(loginUser.Username)
	if err == nil {
		if err := session.SetLoginUser(c, user); err != nil {
			logger.Warning("unable to refresh session after password change:", err)
		}
	}

	logger.Infof("%s changed password", loginUser.Username)
	jsonMsg(c, "Contraseña actualizada correctamente.", nil)
}

// logs exposes the in-memory log buffer to staff accounts.
func (a *UserController) logs(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "50"))
	if err != nil || count < 1 {
		count = 50
	}
	level := c.DefaultQuery("level", "INFO")
	jsonObj(c, logger.GetLogs(count, level), nil)
}
