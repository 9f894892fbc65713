package device

// Record is a single device as reported by an inventory provider.
type Record struct {
	Id     string
	Status string
}

type ChangeKind int

const (
	_                  = iota
	Added   ChangeKind = iota
	Removed ChangeKind = iota
	Status  ChangeKind = iota
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Status:
		return "status"
	}
	return "unknown"
}

type ChangeEvent struct {
	Device Record
	Kind   ChangeKind
}

// Snapshot is an immutable, enumeration-ordered set of devices keyed by id.
// The zero value is an empty snapshot.
type Snapshot struct {
	order []string
	byId  map[string]Record
}

// SnapshotNew builds a snapshot in the given order. A repeated id keeps the
// position of its first occurrence and the value of its last one.
func SnapshotNew(records ...Record) Snapshot {
	s := Snapshot{
		order: make([]string, 0, len(records)),
		byId:  make(map[string]Record, len(records)),
	}

	for _, r := range records {
		if _, known := s.byId[r.Id]; !known {
			s.order = append(s.order, r.Id)
		}
		s.byId[r.Id] = r
	}

	return s
}

func (s Snapshot) Len() int {
	return len(s.order)
}

func (s Snapshot) Get(id string) (Record, bool) {
	r, ok := s.byId[id]
	return r, ok
}

// Records returns the devices in enumeration order.
func (s Snapshot) Records() []Record {
	records := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, s.byId[id])
	}
	return records
}

func (s Snapshot) IDs() []string {
	return append([]string(nil), s.order...)
}
