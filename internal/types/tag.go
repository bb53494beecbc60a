package types

// Tag is a named calibration stream. Ownership is by reference: Pid points
// at the parent tag's id, and Tbname names the physical partition this
// tag's IOV/Data rows live in. Many tags may share one partition.
type Tag struct {
	ID     string `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Pid    string `gorm:"column:pid;type:varchar(36);index" json:"pid"`
	Name   string `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Tbname string `gorm:"column:tbname;type:varchar(512)" json:"tbname"`
	Ct     int64  `gorm:"column:ct;not null;default:0" json:"ct"`
	Dt     int64  `gorm:"column:dt;not null;default:0" json:"dt"`
	Mode   int64  `gorm:"column:mode;not null;default:0" json:"mode"`
}

func (Tag) TableName() string { return "cdb_tags" }

func (t *Tag) Deactivated() bool { return IsSet(t.Dt) }

// TagWithSchema is the listing row: a tag joined with the id of its active
// schema, empty when none is bound.
type TagWithSchema struct {
	Tag
	SchemaID string `gorm:"column:schema_id" json:"schema_id"`
}
