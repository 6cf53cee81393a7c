package persist

import "time"

// ShowDocument is the GORM row a show snapshot is stored as: one JSON blob
// column per store, rather than normalising every store into its own
// relational schema.
type ShowDocument struct {
	ID            string `gorm:"primaryKey"`
	Name          string
	PatchJSON     string `gorm:"type:text"`
	GroupsJSON    string `gorm:"type:text"`
	PresetsJSON   string `gorm:"type:text"`
	SequencesJSON string `gorm:"type:text"`
	ExecutorsJSON string `gorm:"type:text"`
	TimingJSON    string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
