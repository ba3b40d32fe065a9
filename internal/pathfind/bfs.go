// Package pathfind finds shortest 4-connected tile paths.
package pathfind

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/dungeonwalk/internal/dungeon"
)

// DefaultBudget is the number of tiles a search may expand before giving up.
const DefaultBudget = 1000

// ErrSearchBudgetExceeded means the frontier was still open when the
// expansion budget ran out. It is distinct from "no path".
var ErrSearchBudgetExceeded = errors.New("pathfind: search budget exceeded")

// WalkableFunc reports whether a tile may be entered.
type WalkableFunc func(row, col int) bool

// Path is a sequence of tiles from (excluding) the start to (including)
// the target.
type Path []dungeon.Position

// FindPath runs a breadth-first search from start to target. Neighbor
// order is shuffled with rng on every expansion so equal-length routes are
// not biased toward one direction.
//
// It returns an empty path when start equals target, found=false when the
// frontier empties without reaching target, and ErrSearchBudgetExceeded
// when budget tiles were expanded with the frontier still open.
func FindPath(start, target dungeon.Position, walkable WalkableFunc, budget int, rng *rand.Rand) (Path, bool, error) {
	if start == target {
		return Path{}, true, nil
	}
	if budget <= 0 {
		budget = DefaultBudget
	}

	parent := map[dungeon.Position]dungeon.Position{start: start}
	queue := []dungeon.Position{start}
	dirs := dungeon.AllDirections()
	expanded := 0

	for len(queue) > 0 {
		if expanded >= budget {
			return nil, false, fmt.Errorf("%w: %d tiles from %s toward %s", ErrSearchBudgetExceeded, expanded, start, target)
		}

		current := queue[0]
		queue = queue[1:]
		expanded++

		rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
		for _, dir := range dirs {
			next := current.Add(dir.Step())
			if _, seen := parent[next]; seen {
				continue
			}
			if !walkable(next.Row, next.Col) {
				continue
			}
			parent[next] = current
			if next == target {
				return reconstruct(parent, start, target), true, nil
			}
			queue = append(queue, next)
		}
	}

	return nil, false, nil
}

func reconstruct(parent map[dungeon.Position]dungeon.Position, start, target dungeon.Position) Path {
	var path Path
	for p := target; p != start; p = parent[p] {
		path = append(path, p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Len returns the number of steps in the path.
func (p Path) Len() int { return len(p) }

// Last returns the final tile of the path.
func (p Path) Last() (dungeon.Position, bool) {
	if len(p) == 0 {
		return dungeon.Position{}, false
	}
	return p[len(p)-1], true
}
