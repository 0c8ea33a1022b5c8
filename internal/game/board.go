package game

import "math/rand"

// BoardCells is the number of cells on a board; values are 1..BoardCells.
const BoardCells = 25

// BoardSide is the width of the square board.
const BoardSide = 5

// Grid is a client-local board layout: a permutation of 1..25 stored
// row-major. The authority never sees one — only claimed values travel.
type Grid [BoardCells]int

// NewGrid deals a fresh board: 1..25 shuffled with Fisher-Yates.
func NewGrid(rng *rand.Rand) Grid {
	var g Grid
	for i := range g {
		g[i] = i + 1
	}
	for i := len(g) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		g[i], g[j] = g[j], g[i]
	}
	return g
}

// At returns the value at (row, col).
func (g Grid) At(row, col int) int {
	return g[row*BoardSide+col]
}

// CompletedLines reports which winning lines are fully claimed on this
// grid. Full recompute every time; the board is 25 cells, incremental
// bookkeeping isn't worth the replay hazards.
func CompletedLines(g Grid, claimed map[int]bool) map[LineID]bool {
	done := make(map[LineID]bool)
	for _, line := range WinningLines {
		complete := true
		for _, pos := range line.Cells {
			if !claimed[g[pos]] {
				complete = false
				break
			}
		}
		if complete {
			done[line.ID] = true
		}
	}
	return done
}
