package allocation

// Assignment kinds, as reported to API clients.
const (
	KindTable       = "table"
	KindCombination = "combination"
)

// Assignment is the outcome of a successful allocation: exactly one
// table or exactly one pre-defined combination, never a mix.  The
// interface is sealed; the only implementations are SingleTable and
// Combination.
type Assignment interface {
	Kind() string
	ZoneID() uint64
	Capacity() int
	TableIDs() []uint64
	sealed()
}

// SingleTable assigns one table.
type SingleTable struct {
	TableID uint64
	Zone    uint64
	Seats   int
}

func (a SingleTable) Kind() string       { return KindTable }
func (a SingleTable) ZoneID() uint64     { return a.Zone }
func (a SingleTable) Capacity() int      { return a.Seats }
func (a SingleTable) TableIDs() []uint64 { return []uint64{a.TableID} }
func (SingleTable) sealed()              {}

// Combination assigns every member table of one combination.
type Combination struct {
	CombinationID uint64
	Zone          uint64
	Members       []uint64
	Seats         int
}

func (a Combination) Kind() string   { return KindCombination }
func (a Combination) ZoneID() uint64 { return a.Zone }
func (a Combination) Capacity() int  { return a.Seats }
func (a Combination) TableIDs() []uint64 {
	out := make([]uint64, len(a.Members))
	copy(out, a.Members)
	return out
}
func (Combination) sealed() {}
