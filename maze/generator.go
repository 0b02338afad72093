package maze

import (
	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/vmath"
)

// Cell types
const (
	wall    = true
	passage = false
)

type point struct {
	X, Y int
}

type Config struct {
	// Origin is the top-left cell of the carved area in the target grid
	Origin grid.Coord
	// Width and Height are rounded down to odd values
	Width, Height int

	// Braiding: 0.0 (perfect maze/tree) to 1.0 (no dead ends)
	// Higher values add cycles. Constraints (no plazas/pillars) take precedence
	Braiding float64
}

// Carve writes a maze into g over the configured area: passages become Empty,
// everything else Wall. Cells beyond the area are left untouched
// Returns the number of passage cells
func Carve(g *grid.Grid, cfg Config, rng *vmath.FastRand) int {
	rows := ensureOdd(cfg.Height)
	cols := ensureOdd(cfg.Width)

	cells := make([][]bool, rows)
	for i := range cells {
		cells[i] = make([]bool, cols)
		for j := range cells[i] {
			cells[i][j] = wall
		}
	}

	recursiveBacktracker(cells, point{1, 1}, rng)
	if cfg.Braiding > 0 {
		applySmartBraiding(cells, cfg.Braiding, rng)
	}

	open := 0
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			p := grid.Coord{X: cfg.Origin.X + x, Y: cfg.Origin.Y + y}
			if !g.InBounds(p) {
				continue
			}
			if cells[y][x] == passage {
				g.Set(p, grid.EmptyCell)
				open++
			} else {
				g.Set(p, grid.WallCell)
			}
		}
	}
	return open
}

// --- Core Algorithms ---

func recursiveBacktracker(cells [][]bool, start point, rng *vmath.FastRand) {
	rows, cols := len(cells), len(cells[0])

	stack := []point{start}
	cells[start.Y][start.X] = passage

	dirs := []point{{0, -2}, {0, 2}, {-2, 0}, {2, 0}}

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		candidates := make([]point, 0, 4)

		for _, d := range dirs {
			nx, ny := curr.X+d.X, curr.Y+d.Y
			// Leave 1 cell border for walls
			if nx > 0 && nx < cols-1 && ny > 0 && ny < rows-1 {
				if cells[ny][nx] == wall {
					candidates = append(candidates, d)
				}
			}
		}

		if len(candidates) > 0 {
			d := candidates[rng.Intn(len(candidates))]
			cells[curr.Y+d.Y/2][curr.X+d.X/2] = passage
			next := point{curr.X + d.X, curr.Y + d.Y}
			cells[next.Y][next.X] = passage
			stack = append(stack, next)
		} else {
			stack = stack[:len(stack)-1]
		}
	}
}

func applySmartBraiding(cells [][]bool, probability float64, rng *vmath.FastRand) {
	rows, cols := len(cells), len(cells[0])
	checkDirs := []point{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	jumpDirs := []point{{0, -2}, {0, 2}, {-2, 0}, {2, 0}}

	// Odd nodes are rooms
	for y := 1; y < rows-1; y += 2 {
		for x := 1; x < cols-1; x += 2 {
			if cells[y][x] == wall {
				continue
			}

			exits := 0
			for _, d := range checkDirs {
				if cells[y+d.Y][x+d.X] == passage {
					exits++
				}
			}
			if exits != 1 || rng.Float64() >= probability {
				continue
			}

			candidates := make([]point, 0, 4)
			for _, jd := range jumpDirs {
				nx, ny := x+jd.X, y+jd.Y
				wx, wy := x+jd.X/2, y+jd.Y/2
				if nx >= 0 && nx < cols && ny >= 0 && ny < rows {
					if cells[ny][nx] == passage && cells[wy][wx] == wall && canSafelyRemoveWall(cells, wx, wy) {
						candidates = append(candidates, point{wx, wy})
					}
				}
			}
			if len(candidates) > 0 {
				c := candidates[rng.Intn(len(candidates))]
				cells[c.Y][c.X] = passage
			}
		}
	}
}

// canSafelyRemoveWall checks if opening (x,y) creates prohibited topology:
// a plaza (2x2 passages) or a pillar (isolated wall)
func canSafelyRemoveWall(cells [][]bool, x, y int) bool {
	rows, cols := len(cells), len(cells[0])

	isP := func(tx, ty int) bool {
		if tx < 0 || tx >= cols || ty < 0 || ty >= rows {
			return false
		}
		return cells[ty][tx] == passage
	}

	// Plazas: the four 2x2 quadrants around (x,y)
	if isP(x-1, y-1) && isP(x, y-1) && isP(x-1, y) {
		return false
	}
	if isP(x, y-1) && isP(x+1, y-1) && isP(x+1, y) {
		return false
	}
	if isP(x-1, y) && isP(x-1, y+1) && isP(x, y+1) {
		return false
	}
	if isP(x+1, y) && isP(x, y+1) && isP(x+1, y+1) {
		return false
	}

	// Pillars: every orthogonal wall neighbour keeps another wall connection
	ortho := []point{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	for _, d := range ortho {
		nx, ny := x+d.X, y+d.Y
		if nx < 0 || nx >= cols || ny < 0 || ny >= rows || cells[ny][nx] != wall {
			continue
		}
		wallConnections := 0
		for _, d2 := range ortho {
			nnx, nny := nx+d2.X, ny+d2.Y
			// (x,y) is about to become a passage
			if nnx == x && nny == y {
				continue
			}
			if nnx >= 0 && nnx < cols && nny >= 0 && nny < rows && cells[nny][nnx] == wall {
				wallConnections++
			}
		}
		if wallConnections == 0 {
			return false
		}
	}
	return true
}

// --- Helpers ---

func ensureOdd(n int) int {
	if n < 3 {
		return 3
	}
	if n%2 == 0 {
		return n - 1
	}
	return n
}
