package controller

import (
	"github.com/usuarios-app/usuarios/config"
	"github.com/usuarios-app/usuarios/web/session"

	"github.com/gin-gonic/gin"
)

// IndexController handles the landing page.
type IndexController struct {
	BaseController
}

// NewIndexController creates the controller and registers its routes.
func NewIndexController(g *gin.RouterGroup) *IndexController {
	a := &IndexController{}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.index)
}

// index is the landing page. It reports the panel identity and whether the
// visitor has a session.
func (a *IndexController) index(c *gin.Context) {
	jsonObj(c, gin.H{
		"name":     config.GetName(),
		"version":  config.GetVersion(),
		"loggedIn": session.IsLogin(c),
	}, nil)
}
