package pathfind

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/lawnchairsociety/dungeonwalk/internal/dungeon"
)

func grid(rows, cols int, blocked ...dungeon.Position) WalkableFunc {
	wall := make(map[dungeon.Position]bool, len(blocked))
	for _, p := range blocked {
		wall[p] = true
	}
	return func(row, col int) bool {
		if row < 0 || row >= rows || col < 0 || col >= cols {
			return false
		}
		return !wall[dungeon.Pos(row, col)]
	}
}

func checkPath(t *testing.T, start dungeon.Position, path Path, walkable WalkableFunc) {
	t.Helper()
	prev := start
	for i, p := range path {
		if !prev.Adjacent(p) {
			t.Fatalf("step %d: %v is not adjacent to %v", i, p, prev)
		}
		if !walkable(p.Row, p.Col) {
			t.Fatalf("step %d: %v is blocked", i, p)
		}
		prev = p
	}
}

func TestStartEqualsTarget(t *testing.T) {
	path, found, err := FindPath(dungeon.Pos(3, 3), dungeon.Pos(3, 3), grid(5, 5), DefaultBudget, rand.New(rand.NewSource(1)))
	if err != nil || !found {
		t.Fatalf("Expected found with no error, got found=%v err=%v", found, err)
	}
	if len(path) != 0 {
		t.Errorf("Expected empty path, got %v", path)
	}
}

func TestOpenGridPathIsManhattan(t *testing.T) {
	tests := []struct {
		start, target dungeon.Position
	}{
		{dungeon.Pos(0, 0), dungeon.Pos(9, 9)},
		{dungeon.Pos(5, 2), dungeon.Pos(5, 8)},
		{dungeon.Pos(9, 0), dungeon.Pos(0, 0)},
		{dungeon.Pos(4, 4), dungeon.Pos(4, 5)},
	}

	walkable := grid(10, 10)
	for seed := int64(1); seed <= 5; seed++ {
		rng := rand.New(rand.NewSource(seed))
		for _, tt := range tests {
			path, found, err := FindPath(tt.start, tt.target, walkable, DefaultBudget, rng)
			if err != nil || !found {
				t.Fatalf("%v -> %v: found=%v err=%v", tt.start, tt.target, found, err)
			}
			if len(path) != tt.start.Manhattan(tt.target) {
				t.Errorf("%v -> %v: length %d, expected %d", tt.start, tt.target, len(path), tt.start.Manhattan(tt.target))
			}
			if last, _ := path.Last(); last != tt.target {
				t.Errorf("%v -> %v: path ends at %v", tt.start, tt.target, last)
			}
			checkPath(t, tt.start, path, walkable)
		}
	}
}

func TestPathAroundWall(t *testing.T) {
	// column 5 is blocked except for the bottom row
	var wall []dungeon.Position
	for row := 0; row < 9; row++ {
		wall = append(wall, dungeon.Pos(row, 5))
	}
	walkable := grid(10, 10, wall...)

	start, target := dungeon.Pos(0, 0), dungeon.Pos(0, 9)
	path, found, err := FindPath(start, target, walkable, DefaultBudget, rand.New(rand.NewSource(7)))
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	// down 9, across 9, up 9
	if len(path) != 27 {
		t.Errorf("Expected path of 27 steps, got %d", len(path))
	}
	checkPath(t, start, path, walkable)
}

func TestTargetSurroundedIsNotFound(t *testing.T) {
	target := dungeon.Pos(5, 5)
	walkable := grid(10, 10,
		dungeon.Pos(4, 5), dungeon.Pos(6, 5), dungeon.Pos(5, 4), dungeon.Pos(5, 6))

	path, found, err := FindPath(dungeon.Pos(0, 0), target, walkable, DefaultBudget, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if found || path != nil {
		t.Errorf("Expected not found, got found=%v path=%v", found, path)
	}
}

func TestBudgetExceeded(t *testing.T) {
	unbounded := func(row, col int) bool { return true }

	_, found, err := FindPath(dungeon.Pos(0, 0), dungeon.Pos(500, 500), unbounded, 100, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrSearchBudgetExceeded) {
		t.Fatalf("Expected ErrSearchBudgetExceeded, got %v", err)
	}
	if found {
		t.Error("Expected found=false with a budget error")
	}
}

func TestBudgetNotHitWhenFrontierEmpties(t *testing.T) {
	// a 3x3 pocket has only 9 tiles, far under the budget
	_, found, err := FindPath(dungeon.Pos(1, 1), dungeon.Pos(50, 50), grid(3, 3), 10, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if found {
		t.Error("Expected not found")
	}
}

func TestSameSeedSamePath(t *testing.T) {
	walkable := grid(12, 12)
	a, _, _ := FindPath(dungeon.Pos(0, 0), dungeon.Pos(11, 11), walkable, DefaultBudget, rand.New(rand.NewSource(99)))
	b, _, _ := FindPath(dungeon.Pos(0, 0), dungeon.Pos(11, 11), walkable, DefaultBudget, rand.New(rand.NewSource(99)))
	if !reflect.DeepEqual(a, b) {
		t.Error("Expected identical paths for identical seeds")
	}
}

func TestPathOnGeneratedDungeon(t *testing.T) {
	catalog, err := dungeon.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	cfg := dungeon.DefaultGeneratorConfig()
	r, err := dungeon.NewGenerator(catalog, cfg, rand.New(rand.NewSource(5))).Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	d := dungeon.New(r)

	path, found, err := FindPath(r.StartTile, r.GoalTile, d.IsTileWalkable, 10000, rand.New(rand.NewSource(5)))
	if err != nil || !found {
		t.Fatalf("Expected a path from start to goal, found=%v err=%v", found, err)
	}
	checkPath(t, r.StartTile, path, d.IsTileWalkable)
}
