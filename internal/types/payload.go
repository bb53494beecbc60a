package types

// Coordinate is the validity-axis query point: either an exact run+sequence
// pair or an event time, never both. Valid() mirrors the axis selection the
// resolver performs: a positive run selects the run branch.
type Coordinate struct {
	Run       int64 `json:"run"`
	Seq       int64 `json:"seq"`
	EventTime int64 `json:"et"`
}

func (c Coordinate) ByRun() bool  { return c.Run > 0 }
func (c Coordinate) ByTime() bool { return !c.ByRun() && c.EventTime > 0 }
func (c Coordinate) Valid() bool  { return c.ByRun() || c.ByTime() }

// ResolvedPayload is the answer to a resolve query: the selected IOV entry
// with Et possibly replaced by the computed effective end of validity. The
// persisted row is never rewritten; EffectiveEt is TimeUnbounded when no
// later interval bounds it.
type ResolvedPayload struct {
	IOVEntry
	EffectiveEt int64 `json:"effective_et"`
}

// ResolveRequest is one element of a bulk resolve: partition plus optional
// flavor chain, coordinate and snapshot cutoff. Key identifies the element
// in the bulk response.
type ResolveRequest struct {
	Key        string     `json:"key"`
	Table      string     `json:"tbname"`
	Flavors    []string   `json:"flavors"`
	Coordinate Coordinate `json:"coordinate"`
	Snapshot   int64      `json:"mt"`
}
