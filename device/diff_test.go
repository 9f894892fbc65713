package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	a := Record{Id: "A", Status: "OK"}
	b := Record{Id: "B", Status: "OK"}
	c := Record{Id: "C", Status: "OK"}

	t.Run("empty snapshots yield no changes", func(t *testing.T) {
		assert.Empty(t, Diff(Snapshot{}, Snapshot{}))
		assert.Empty(t, Diff(SnapshotNew(), SnapshotNew()))
	})

	t.Run("identical snapshots yield no changes", func(t *testing.T) {
		assert.Empty(t, Diff(SnapshotNew(a), SnapshotNew(Record{Id: "A", Status: "OK"})))
	})

	t.Run("changed status yields status with new record", func(t *testing.T) {
		down := Record{Id: "A", Status: "Error"}
		changes := Diff(SnapshotNew(a), SnapshotNew(down))

		assert.Equal(t, []ChangeEvent{{Device: down, Kind: Status}}, changes)
	})

	t.Run("missing device is removed", func(t *testing.T) {
		assert.Equal(t, []ChangeEvent{{Device: a, Kind: Removed}}, Diff(SnapshotNew(a), Snapshot{}))
	})

	t.Run("new device is added", func(t *testing.T) {
		assert.Equal(t, []ChangeEvent{{Device: a, Kind: Added}}, Diff(Snapshot{}, SnapshotNew(a)))
	})

	t.Run("removals precede additions", func(t *testing.T) {
		changes := Diff(SnapshotNew(a, b), SnapshotNew(b, c))

		assert.Equal(t, []ChangeEvent{
			{Device: a, Kind: Removed},
			{Device: c, Kind: Added},
		}, changes)
	})

	t.Run("removed and status follow old order, added follow new order", func(t *testing.T) {
		d := Record{Id: "D", Status: "OK"}
		bDown := Record{Id: "B", Status: "Error"}

		changes := Diff(SnapshotNew(c, b, a), SnapshotNew(d, bDown, Record{Id: "E"}))

		assert.Equal(t, []ChangeEvent{
			{Device: c, Kind: Removed},
			{Device: bDown, Kind: Status},
			{Device: a, Kind: Removed},
			{Device: d, Kind: Added},
			{Device: Record{Id: "E"}, Kind: Added},
		}, changes)
	})

	t.Run("removed then re-added id is not correlated", func(t *testing.T) {
		changes := Diff(SnapshotNew(a), SnapshotNew(Record{Id: "A2", Status: "OK"}))

		assert.Equal(t, []ChangeEvent{
			{Device: a, Kind: Removed},
			{Device: Record{Id: "A2", Status: "OK"}, Kind: Added},
		}, changes)
	})
}

func TestSnapshotNew(t *testing.T) {
	t.Run("keeps enumeration order", func(t *testing.T) {
		s := SnapshotNew(Record{Id: "b"}, Record{Id: "a"}, Record{Id: "c"})

		assert.Equal(t, []string{"b", "a", "c"}, s.IDs())
		assert.Equal(t, 3, s.Len())
	})

	t.Run("repeated id keeps first position and last value", func(t *testing.T) {
		s := SnapshotNew(Record{Id: "a", Status: "1"}, Record{Id: "b"}, Record{Id: "a", Status: "2"})

		assert.Equal(t, []Record{{Id: "a", Status: "2"}, {Id: "b"}}, s.Records())
	})

	t.Run("zero value is empty", func(t *testing.T) {
		var s Snapshot
		_, ok := s.Get("a")

		assert.False(t, ok)
		assert.Equal(t, 0, s.Len())
		assert.Empty(t, s.Records())
	})
}

func TestChangeKind_String(t *testing.T) {
	assert.Equal(t, "added", Added.String())
	assert.Equal(t, "removed", Removed.String())
	assert.Equal(t, "status", Status.String())
	assert.Equal(t, "unknown", ChangeKind(0).String())
}
