// Package entity defines data structures used by the web layer of the
// usuarios panel.
package entity

import (
	"math"
	"net"
	"strings"

	"github.com/usuarios-app/usuarios/util/common"
)

// Msg represents a standard API response with success status, message text,
// and optional data object.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// Page wraps one page of a listing together with paging metadata.
type Page struct {
	Items    any   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Pages    int   `json:"pages"`
}

// NewPage computes the page count from the total and wraps the items.
func NewPage(items any, total int64, page, pageSize int) Page {
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Page{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    pages,
	}
}

// AllSetting contains the configurable settings of the usuarios panel.
type AllSetting struct {
	WebListen     string `json:"webListen" form:"webListen"`
	WebDomain     string `json:"webDomain" form:"webDomain"`
	WebPort       int    `json:"webPort" form:"webPort"`
	WebBasePath   string `json:"webBasePath" form:"webBasePath"`
	SessionMaxAge int    `json:"sessionMaxAge" form:"sessionMaxAge"` // minutes

	PageSize int `json:"pageSize" form:"pageSize"`

	MailEnable     bool   `json:"mailEnable" form:"mailEnable"`
	MailAPIURL     string `json:"mailAPIURL" form:"mailAPIURL"`
	MailSender     string `json:"mailSender" form:"mailSender"`
	MailSenderName string `json:"mailSenderName" form:"mailSenderName"`

	PurgeUnverifiedDays int `json:"purgeUnverifiedDays" form:"purgeUnverifiedDays"`
}

// CheckValid validates the settings, checking the listen address, port and
// base path.
func (s *AllSetting) CheckValid() error {
	if s.WebListen != "" {
		ip := net.ParseIP(s.WebListen)
		if ip == nil {
			return common.NewError("web listen is not valid ip:", s.WebListen)
		}
	}

	if s.WebPort <= 0 || s.WebPort > math.MaxUint16 {
		return common.NewError("web port is not a valid port:", s.WebPort)
	}

	if s.PageSize <= 0 {
		return common.NewError("page size must be positive:", s.PageSize)
	}

	if !strings.HasPrefix(s.WebBasePath, "/") {
		s.WebBasePath = "/" + s.WebBasePath
	}
	if !strings.HasSuffix(s.WebBasePath, "/") {
		s.WebBasePath += "/"
	}

	return nil
}
