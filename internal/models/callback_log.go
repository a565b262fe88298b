package models

// CallbackLog maps to the `callback_logs` table. Audit trail of every inbound
// notification and its outcome. Never contains secret material.
type CallbackLog struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InvoiceID string `gorm:"column:invoice_id;size:191" json:"invoice_id"`
	TransID   string `gorm:"column:trans_id;size:191;index" json:"trans_id"`
	IP        string `gorm:"column:ip;size:64" json:"ip"`
	Outcome   string `gorm:"column:outcome;size:64" json:"outcome"`
	Detail    string `gorm:"column:detail;type:text" json:"detail"`
	Time      string `gorm:"column:time;size:32" json:"time"`
}

func (CallbackLog) TableName() string {
	return "callback_logs"
}

// Callback outcomes recorded in the audit log.
const (
	OutcomeAccepted         = "accepted"
	OutcomeMissingParams    = "missing_params"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeDuplicate        = "duplicate"
	OutcomeFulfillFailed    = "fulfill_failed"
)
