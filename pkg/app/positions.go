package app

import (
	"context"

	"tableflip.dev/agenda/pkg/cache"
	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/reorder"
)

// positionQueue holds the order waiting to be sent for one task while a
// batch is running. known tracks the positions the server last confirmed.
type positionQueue struct {
	known map[entity.ID]int
	order []entity.Subtask
	done  func([]PositionResult)
	ready bool
}

// QueuePositions makes order the server's order for taskID. Batches for one
// task run one after another and each is worked out against the positions
// the server confirmed so far. An order still waiting when a newer one
// arrives is dropped and its done gets nil. base gives the starting
// positions when the task's subtasks are not cached.
func (s *Service) QueuePositions(ctx context.Context, taskID entity.ID, base, order []entity.Subtask, done func([]PositionResult)) {
	s.posMu.Lock()
	q, running := s.positions[taskID]
	if !running {
		if cached, ok := cache.List[entity.Subtask](s.cache, cache.SubtasksKey(taskID)); ok {
			base = cached
		}
		q = &positionQueue{known: reorder.Positions(base)}
		s.positions[taskID] = q
	}
	var dropped func([]PositionResult)
	if q.ready {
		dropped = q.done
	}
	q.order, q.done, q.ready = order, done, true
	s.posMu.Unlock()

	if dropped != nil {
		dropped(nil)
	}
	if !running {
		go s.drainPositions(context.WithoutCancel(ctx), taskID, q)
	}
}

func (s *Service) drainPositions(ctx context.Context, taskID entity.ID, q *positionQueue) {
	for {
		s.posMu.Lock()
		if !q.ready {
			delete(s.positions, taskID)
			s.posMu.Unlock()
			return
		}
		order, done := q.order, q.done
		q.order, q.done, q.ready = nil, nil, false
		updates := reorder.Diff(q.known, order)
		s.posMu.Unlock()

		results := s.UpdatePositions(ctx, taskID, updates)

		s.posMu.Lock()
		for _, r := range results {
			if r.OK() {
				q.known[r.Update.ID] = r.Update.Position
			} else {
				delete(q.known, r.Update.ID)
			}
		}
		s.posMu.Unlock()
		if done != nil {
			done(results)
		}
	}
}
