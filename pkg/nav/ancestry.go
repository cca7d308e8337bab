package nav

import (
	"context"

	"github.com/feishukit/feishukit/internal/logging"
	"github.com/feishukit/feishukit/internal/metrics"
	"github.com/feishukit/feishukit/pkg/models"
	"github.com/feishukit/feishukit/pkg/store"
)

// AncestorChain rebuilds the root-to-leaf location of a wiki node by asking
// each node for its parent until one has none. A repeated id ends the walk
// and what was gathered is final. When a lookup fails the chain resolved so
// far is returned together with a *BrokenLinkError.
func (e *Engine) AncestorChain(ctx context.Context, id string) (Location, error) {
	if e.graph == nil {
		return nil, &UnsupportedError{Op: "resolve node", Mode: models.ModeGraph}
	}
	chain, _, err := ancestorChain(ctx, e.graph, id)
	return chain, err
}

// JumpToNode moves to a wiki node by id and adopts its space.
func (e *Engine) JumpToNode(ctx context.Context, id string) error {
	if e.graph == nil {
		return &UnsupportedError{Op: "resolve node", Mode: models.ModeGraph}
	}
	chain, leaf, err := ancestorChain(ctx, e.graph, id)
	if err != nil {
		return err
	}
	e.applyChain(chain, leaf.SpaceID)
	return nil
}

// applyChain replaces the location and drops the leaf's own listing so the
// first view after a jump is fresh.
func (e *Engine) applyChain(chain Location, spaceID string) {
	e.loc = chain
	if spaceID != "" {
		e.spaceID = spaceID
	}
	e.graphCache.Invalidate(cacheKey(models.ModeGraph, e.spaceID, chain.TailID()))
}

// ancestorChain returns the chain and the descriptor of the starting node.
// An empty id is a broken link, not an empty chain.
func ancestorChain(ctx context.Context, g store.GraphStore, id string) (Location, models.Descriptor, error) {
	log := logging.WithContext(ctx)
	if id == "" {
		metrics.RecordAncestorWalk(0, "broken")
		return nil, models.Descriptor{}, &BrokenLinkError{Err: errEmptyNodeID}
	}
	visited := make(map[string]bool)
	var (
		upward Location // leaf first
		leaf   models.Descriptor
		calls  int
	)

	cur := id
	for cur != "" {
		if visited[cur] {
			log.Warn("ancestor cycle detected", logging.String("node", cur), logging.Int("depth", len(upward)))
			metrics.RecordAncestorWalk(calls, "cycle")
			return reversed(upward), leaf, nil
		}
		visited[cur] = true

		calls++
		d, err := g.GetNode(ctx, cur)
		if err != nil {
			partial := reversed(upward)
			if ctx.Err() != nil {
				return partial, leaf, ctx.Err()
			}
			metrics.RecordAncestorWalk(calls, "broken")
			return partial, leaf, &BrokenLinkError{NodeID: cur, Partial: partial, Err: err}
		}
		if d.ID == "" {
			d.ID = cur
		}
		if calls == 1 {
			leaf = d
		}
		upward = append(upward, Element{Name: d.Name, ID: d.ID, Mode: models.ModeGraph})
		cur = d.ParentID
	}

	metrics.RecordAncestorWalk(calls, "complete")
	return reversed(upward), leaf, nil
}

func reversed(l Location) Location {
	out := make(Location, len(l))
	for i, el := range l {
		out[len(l)-1-i] = el
	}
	return out
}
