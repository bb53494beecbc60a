package types

// DataRow holds the raw payload bytes for db:// URIs, keyed 1:1 by the
// owning IOV entry's id. Bound per partition (cdb_data_<partition>).
type DataRow struct {
	ID   string `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Pid  string `gorm:"column:pid;type:varchar(36);index" json:"pid"`
	Ct   int64  `gorm:"column:ct;not null;default:0" json:"ct"`
	Dt   int64  `gorm:"column:dt;not null;default:0" json:"dt"`
	Data []byte `gorm:"column:data" json:"data"`
	Size int64  `gorm:"column:size;not null;default:0" json:"size"`
}
