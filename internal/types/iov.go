package types

import "strings"

// URISchemeDB marks payload bytes stored in the partition's paired data
// table; any other scheme is an external reference the core does not
// interpret.
const URISchemeDB = "db://"

// IOVEntry is the bitemporal core record. Valid-time axis: Bt/Et (Et ==
// TimeUnset means open-ended). Transaction-time axis: Ct/Dt. Run/Seq is the
// alternative exact-match validity axis. Rows are write-once: the only
// permitted mutation is stamping Dt.
//
// The struct carries no fixed table name; it is bound per partition through
// the registry (cdb_iov_<partition>).
type IOVEntry struct {
	ID     string `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Pid    string `gorm:"column:pid;type:varchar(36);index" json:"pid"`
	Flavor string `gorm:"column:flavor;type:varchar(128);index" json:"flavor"`
	Ct     int64  `gorm:"column:ct;not null;default:0" json:"ct"`
	Dt     int64  `gorm:"column:dt;not null;default:0" json:"dt"`
	Bt     int64  `gorm:"column:bt;not null;default:0;index" json:"bt"`
	Et     int64  `gorm:"column:et;not null;default:0" json:"et"`
	Run    int64  `gorm:"column:run;not null;default:0;index" json:"run"`
	Seq    int64  `gorm:"column:seq;not null;default:0" json:"seq"`
	Fmt    string `gorm:"column:fmt;type:varchar(36)" json:"fmt"`
	URI    string `gorm:"column:uri;type:varchar(2048)" json:"uri"`
}

func (e *IOVEntry) Deactivated() bool { return IsSet(e.Dt) }

// StoredInDB reports whether the payload bytes live in the paired data row.
func (e *IOVEntry) StoredInDB() bool { return strings.HasPrefix(e.URI, URISchemeDB) }
