package models

// GatewaySetting maps to the `gateway_settings` table, a key-value store for
// operator-editable gateway configuration (callback secret, backend URL,
// currency, return URL). Values here override the environment.
type GatewaySetting struct {
	Name  string `gorm:"column:name;size:100;primaryKey" json:"name"`
	Value string `gorm:"column:value;type:text" json:"value"`
}

func (GatewaySetting) TableName() string {
	return "gateway_settings"
}

// Well-known gateway setting names.
const (
	SettingBackendURL     = "backend_url"
	SettingAPIKey         = "api_secret_key"
	SettingCallbackSecret = "callback_secret"
	SettingCurrency       = "currency"
	SettingReturnURL      = "return_url"
)
