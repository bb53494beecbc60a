package types

import "gorm.io/datatypes"

// Schema is a JSON validation document bound to a tag. The unique index on
// pid enforces "at most one active schema per tag"; duplicate creation
// surfaces as a conflict at the service boundary.
type Schema struct {
	ID   string         `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Pid  string         `gorm:"column:pid;type:varchar(36);uniqueIndex:cdb_schemas_pid" json:"pid"`
	Ct   int64          `gorm:"column:ct;not null;default:0" json:"ct"`
	Dt   int64          `gorm:"column:dt;not null;default:0" json:"dt"`
	Data datatypes.JSON `gorm:"column:data" json:"data"`
}

func (Schema) TableName() string { return "cdb_schemas" }
