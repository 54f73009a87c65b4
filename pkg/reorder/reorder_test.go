package reorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/agenda/pkg/entity"
)

func list(ids ...entity.ID) []entity.Subtask {
	out := make([]entity.Subtask, len(ids))
	for i, id := range ids {
		out[i] = entity.Subtask{ID: id, Title: id.String(), Position: i, UpdatedAt: entity.Unix(int64(100 + i))}
	}
	return out
}

func ids(items []entity.Subtask) []entity.ID {
	out := make([]entity.ID, len(items))
	for i, s := range items {
		out[i] = s.ID
	}
	return out
}

func TestMoveRenumbers(t *testing.T) {
	before := list(1, 2, 3)
	after := Move(before, 0, 2)

	assert.Equal(t, []entity.ID{2, 3, 1}, ids(after))
	for i, s := range after {
		assert.Equal(t, i, s.Position)
	}
	assert.Equal(t, []entity.ID{1, 2, 3}, ids(before))
	assert.Equal(t, before[0].UpdatedAt, after[2].UpdatedAt)
}

func TestMoveNoops(t *testing.T) {
	before := list(1, 2, 3)
	for _, tc := range [][2]int{{1, 1}, {0, NoDestination}, {5, 0}, {0, 3}} {
		after := Move(before, tc[0], tc[1])
		assert.Equal(t, before, after)
	}
}

func TestUpdatesSkipPendingAndUnchanged(t *testing.T) {
	before := list(1, -1, 2, 3)
	after := Move(before, 3, 0)

	updates := Updates(before, after)
	require.Len(t, updates, 3)
	assert.Equal(t, PositionUpdate{ID: 3, Position: 0}, updates[0])
	assert.Equal(t, PositionUpdate{ID: 1, Position: 1}, updates[1])
	assert.Equal(t, PositionUpdate{ID: 2, Position: 3}, updates[2])
}

func TestMergeEchoedKeepsLocalOrder(t *testing.T) {
	local := Move(list(1, 2), 0, 1)
	echoed := []entity.Subtask{{ID: 1, Position: 7, UpdatedAt: entity.Unix(999)}}

	merged := MergeEchoed(local, echoed)
	assert.Equal(t, []entity.ID{2, 1}, ids(merged))
	assert.Equal(t, 1, merged[1].Position)
	assert.Equal(t, int64(999), merged[1].UpdatedAt.Unix())
}

func TestMoveEveryPair(t *testing.T) {
	for n := 1; n <= 6; n++ {
		var order []entity.ID
		for i := 1; i <= n; i++ {
			order = append(order, entity.ID(i))
		}
		before := list(order...)
		for from := -1; from <= n; from++ {
			for to := -1; to <= n; to++ {
				after := Move(before, from, to)
				require.Len(t, after, n, "n=%d move %d->%d", n, from, to)

				stamps := make(map[entity.ID]*entity.Timestamp, n)
				for _, s := range before {
					stamps[s.ID] = s.UpdatedAt
				}
				seen := make(map[entity.ID]bool, n)
				for i, s := range after {
					assert.Equal(t, i, s.Position, "n=%d move %d->%d", n, from, to)
					assert.False(t, seen[s.ID], "duplicate id %d", s.ID)
					seen[s.ID] = true
					assert.Equal(t, stamps[s.ID], s.UpdatedAt, "updated_at of %d changed", s.ID)
				}
				assert.Len(t, seen, n)

				assert.Equal(t, order, ids(before), "input reordered")
				valid := from >= 0 && from < n && to >= 0 && to < n
				if valid {
					assert.Equal(t, before[from].ID, after[to].ID)
					rest := append(append([]entity.ID(nil), order[:from]...), order[from+1:]...)
					others := append(append([]entity.ID(nil), ids(after)[:to]...), ids(after)[to+1:]...)
					assert.Equal(t, rest, others, "n=%d move %d->%d", n, from, to)
				} else {
					assert.Equal(t, ids(before), ids(after))
				}

				// Sending the updates turns the old positions into the new ones.
				positions := Positions(before)
				for _, u := range Updates(before, after) {
					positions[u.ID] = u.Position
				}
				assert.Equal(t, Positions(after), positions, "n=%d move %d->%d", n, from, to)
			}
		}
	}
}

func TestDiffResendsUnknownPositions(t *testing.T) {
	after := list(1, 2, 3)
	after = append(after, entity.Subtask{ID: -1, Position: 3})

	got := Diff(map[entity.ID]int{1: 0, 2: 5}, after)
	assert.Equal(t, []PositionUpdate{{ID: 2, Position: 1}, {ID: 3, Position: 2}}, got)
}
