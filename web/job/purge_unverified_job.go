// Package job contains the scheduled maintenance jobs of the usuarios panel.
package job

import (
	"time"

	"github.com/usuarios-app/usuarios/logger"
	"github.com/usuarios-app/usuarios/web/service"
)

// PurgeUnverifiedJob deletes inactive accounts whose verification code was
// never confirmed within the configured window, keeping the user table from
// filling with abandoned registrations.
type PurgeUnverifiedJob struct {
	userService    service.UserService
	settingService service.SettingService
}

func NewPurgeUnverifiedJob() *PurgeUnverifiedJob {
	return new(PurgeUnverifiedJob)
}

func (j *PurgeUnverifiedJob) Run() {
	days, err := j.settingService.GetPurgeUnverifiedDays()
	if err != nil {
		logger.Warning("purge unverified: read setting failed:", err)
		return
	}
	if days <= 0 {
		return
	}

	removed, err := j.userService.PurgeUnverified(time.Duration(days) * 24 * time.Hour)
	if err != nil {
		logger.Warning("purge unverified failed:", err)
		return
	}
	if removed > 0 {
		logger.Infof("purged %d unverified accounts older than %d days", removed, days)
	}
}
