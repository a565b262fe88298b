package models

// ProcessedTransaction maps to the `processed_transactions` table. The unique
// index on trans_id is what makes the dedupe claim atomic: a duplicate
// callback loses the insert race at the database, not in application code.
type ProcessedTransaction struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TransID   string `gorm:"column:trans_id;size:191;uniqueIndex" json:"trans_id"`
	ClaimedAt int64  `gorm:"column:claimed_at" json:"claimed_at"`
}

func (ProcessedTransaction) TableName() string {
	return "processed_transactions"
}
