package service

import (
	"strconv"

	"github.com/usuarios-app/usuarios/database"
	"github.com/usuarios-app/usuarios/database/model"
	"github.com/usuarios-app/usuarios/util/random"
	"github.com/usuarios-app/usuarios/web/entity"
)

var defaultValueMap = map[string]string{
	"webListen":           "",
	"webDomain":           "",
	"webPort":             "2053",
	"webBasePath":         "/",
	"secret":              random.Seq(32),
	"sessionMaxAge":       "60",
	"pageSize":            "10",
	"mailEnable":          "false",
	"mailAPIURL":          "https://api.brevo.com/v3/smtp/email",
	"mailSender":          "",
	"mailSenderName":      "Usuarios",
	"purgeUnverifiedDays": "7",
}

// SettingService reads and writes runtime settings stored as key/value rows,
// falling back to defaultValueMap for unset keys.
type SettingService struct{}

func (s *SettingService) GetAllSetting() (*entity.AllSetting, error) {
	allSetting := &entity.AllSetting{}
	var err error
	if allSetting.WebListen, err = s.GetListen(); err != nil {
		return nil, err
	}
	if allSetting.WebDomain, err = s.GetWebDomain(); err != nil {
		return nil, err
	}
	if allSetting.WebPort, err = s.GetPort(); err != nil {
		return nil, err
	}
	if allSetting.WebBasePath, err = s.GetBasePath(); err != nil {
		return nil, err
	}
	if allSetting.SessionMaxAge, err = s.GetSessionMaxAge(); err != nil {
		return nil, err
	}
	if allSetting.PageSize, err = s.GetPageSize(); err != nil {
		return nil, err
	}
	if allSetting.MailEnable, err = s.GetMailEnable(); err != nil {
		return nil, err
	}
	if allSetting.MailAPIURL, err = s.GetMailAPIURL(); err != nil {
		return nil, err
	}
	if allSetting.MailSender, err = s.GetMailSender(); err != nil {
		return nil, err
	}
	if allSetting.MailSenderName, err = s.GetMailSenderName(); err != nil {
		return nil, err
	}
	if allSetting.PurgeUnverifiedDays, err = s.GetPurgeUnverifiedDays(); err != nil {
		return nil, err
	}
	return allSetting, nil
}

func (s *SettingService) ResetSettings() error {
	db := database.GetDB()
	return db.Where("1 = 1").Delete(model.Setting{}).Error
}

func (s *SettingService) getSetting(key string) (*model.Setting, error) {
	db := database.GetDB()
	setting := &model.Setting{}
	err := db.Model(model.Setting{}).Where("key = ?", key).First(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *SettingService) saveSetting(key string, value string) error {
	setting, err := s.getSetting(key)
	db := database.GetDB()
	if database.IsNotFound(err) {
		return db.Create(&model.Setting{
			Key:   key,
			Value: value,
		}).Error
	} else if err != nil {
		return err
	}
	setting.Key = key
	setting.Value = value
	return db.Save(setting).Error
}

func (s *SettingService) getString(key string) (string, error) {
	setting, err := s.getSetting(key)
	if database.IsNotFound(err) {
		value, ok := defaultValueMap[key]
		if !ok {
			return "", err
		}
		return value, nil
	} else if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SettingService) setString(key string, value string) error {
	return s.saveSetting(key, value)
}

func (s *SettingService) getBool(key string) (bool, error) {
	str, err := s.getString(key)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(str)
}

func (s *SettingService) setBool(key string, value bool) error {
	return s.setString(key, strconv.FormatBool(value))
}

func (s *SettingService) getInt(key string) (int, error) {
	str, err := s.getString(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(str)
}

func (s *SettingService) setInt(key string, value int) error {
	return s.setString(key, strconv.Itoa(value))
}

func (s *SettingService) GetListen() (string, error) {
	return s.getString("webListen")
}

func (s *SettingService) SetListen(ip string) error {
	return s.setString("webListen", ip)
}

func (s *SettingService) GetWebDomain() (string, error) {
	return s.getString("webDomain")
}

func (s *SettingService) GetPort() (int, error) {
	return s.getInt("webPort")
}

func (s *SettingService) SetPort(port int) error {
	return s.setInt("webPort", port)
}

func (s *SettingService) GetBasePath() (string, error) {
	basePath, err := s.getString("webBasePath")
	if err != nil {
		return "", err
	}
	if basePath == "" {
		basePath = "/"
	}
	return basePath, nil
}

func (s *SettingService) GetSecret() (string, error) {
	secret, err := s.getString("secret")
	if secret == defaultValueMap["secret"] {
		if err := s.saveSetting("secret", secret); err != nil {
			return "", err
		}
	}
	return secret, err
}

func (s *SettingService) GetSessionMaxAge() (int, error) {
	return s.getInt("sessionMaxAge")
}

func (s *SettingService) GetPageSize() (int, error) {
	return s.getInt("pageSize")
}

func (s *SettingService) SetPageSize(pageSize int) error {
	return s.setInt("pageSize", pageSize)
}

func (s *SettingService) GetMailEnable() (bool, error) {
	return s.getBool("mailEnable")
}

func (s *SettingService) SetMailEnable(enable bool) error {
	return s.setBool("mailEnable", enable)
}

func (s *SettingService) GetMailAPIURL() (string, error) {
	return s.getString("mailAPIURL")
}

func (s *SettingService) GetMailSender() (string, error) {
	return s.getString("mailSender")
}

func (s *SettingService) GetMailSenderName() (string, error) {
	return s.getString("mailSenderName")
}

func (s *SettingService) GetPurgeUnverifiedDays() (int, error) {
	return s.getInt("purgeUnverifiedDays")
}

func (s *SettingService) UpdateAllSetting(allSetting *entity.AllSetting) error {
	if err := allSetting.CheckValid(); err != nil {
		return err
	}

	if err := s.setString("webListen", allSetting.WebListen); err != nil {
		return err
	}
	if err := s.setString("webDomain", allSetting.WebDomain); err != nil {
		return err
	}
	if err := s.setInt("webPort", allSetting.WebPort); err != nil {
		return err
	}
	if err := s.setString("webBasePath", allSetting.WebBasePath); err != nil {
		return err
	}
	if err := s.setInt("sessionMaxAge", allSetting.SessionMaxAge); err != nil {
		return err
	}
	if err := s.setInt("pageSize", allSetting.PageSize); err != nil {
		return err
	}
	if err := s.setBool("mailEnable", allSetting.MailEnable); err != nil {
		return err
	}
	if err := s.setString("mailAPIURL", allSetting.MailAPIURL); err != nil {
		return err
	}
	if err := s.setString("mailSender", allSetting.MailSender); err != nil {
		return err
	}
	if err := s.setString("mailSenderName", allSetting.MailSenderName); err != nil {
		return err
	}
	return s.setInt("purgeUnverifiedDays", allSetting.PurgeUnverifiedDays)
}
