package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettingDefaults(t *testing.T) {
	setup(t)
	defer teardown()

	svc := SettingService{}

	pageSize, err := svc.GetPageSize()
	assert.NoError(t, err)
	assert.Equal(t, 10, pageSize)

	basePath, err := svc.GetBasePath()
	assert.NoError(t, err)
	assert.Equal(t, "/", basePath)

	maxAge, err := svc.GetSessionMaxAge()
	assert.NoError(t, err)
	assert.Equal(t, 60, maxAge)

	enabled, err := svc.GetMailEnable()
	assert.NoError(t, err)
	assert.False(t, enabled)

	secret, err := svc.GetSecret()
	assert.NoError(t, err)
	assert.Len(t, secret, 32)

	// The secret is persisted on first read and stable afterwards.
	again, err := svc.GetSecret()
	assert.NoError(t, err)
	assert.Equal(t, secret, again)
}

func TestSettingSaveAndReset(t *testing.T) {
	setup(t)
	defer teardown()

	svc := SettingService{}

	assert.NoError(t, svc.SetPageSize(25))
	pageSize, err := svc.GetPageSize()
	assert.NoError(t, err)
	assert.Equal(t, 25, pageSize)

	assert.NoError(t, svc.SetMailEnable(true))
	enabled, err := svc.GetMailEnable()
	assert.NoError(t, err)
	assert.True(t, enabled)

	assert.NoError(t, svc.ResetSettings())
	pageSize, err = svc.GetPageSize()
	assert.NoError(t, err)
	assert.Equal(t, 10, pageSize)
}

func TestGetAllSetting(t *testing.T) {
	setup(t)
	defer teardown()

	svc := SettingService{}

	all, err := svc.GetAllSetting()
	assert.NoError(t, err)
	assert.Equal(t, 2053, all.WebPort)
	assert.Equal(t, 10, all.PageSize)
	assert.Equal(t, 7, all.PurgeUnverifiedDays)
	assert.NoError(t, all.CheckValid())
}
