// Package controller provides the HTTP request handlers for the usuarios
// panel: registration, verification, login/logout, user listing and
// password change.
package controller

import (
	"net/http"

	"github.com/usuarios-app/usuarios/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides common functionality for all controllers,
// including the authentication check.
type BaseController struct{}

// checkLogin verifies user authentication. AJAX callers get a 401 JSON
// answer, browsers are redirected to the login page.
func (a *BaseController) checkLogin(c *gin.Context) {
	if !session.IsLogin(c) {
		if isAjax(c) {
			pureJsonMsg(c, http.StatusUnauthorized, false, "Inicie sesión para continuar.")
		} else {
			c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path")+"users/login/")
		}
		c.Abort()
	} else {
		c.Next()
	}
}

// checkStaff requires an authenticated staff account.
func (a *BaseController) checkStaff(c *gin.Context) {
	user := session.GetLoginUser(c)
	if user == nil || !user.IsStaff {
		pureJsonMsg(c, http.StatusForbidden, false, "No tiene permisos para esta operación.")
		c.Abort()
		return
	}
	c.Next()
}
