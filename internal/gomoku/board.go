package gomoku

import (
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
)

const (
	MinBoardSize = 10
	MaxBoardSize = 20

	MinWinLength = 3
	MaxWinLength = 10
)

// Mark identifies the seat occupying a cell. It is the seat index assigned
// at session creation and never changes for the lifetime of the game.
type Mark int8

// NoMark is the value of an empty cell.
const NoMark Mark = -1

var markSymbols = [...]string{"X", "O", "A", "B"}

// Symbol returns the display symbol for the mark, or an empty string for
// an empty cell.
func (m Mark) Symbol() string {
	if m < 0 || int(m) >= len(markSymbols) {
		return ""
	}
	return markSymbols[m]
}

// axes are the four lines through a cell: horizontal, vertical and the two
// diagonals. Each is walked in both directions from the placed cell.
var axes = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// Board is a square grid of marks. Cells are append-only: once placed, a
// mark is never removed or replaced.
type Board struct {
	size  int
	cells [][]Mark
	taken int
}

func NewBoard(size int) *Board {
	cells := make([][]Mark, size)
	for row := range cells {
		cells[row] = make([]Mark, size)
		for col := range cells[row] {
			cells[row][col] = NoMark
		}
	}

	return &Board{
		size:  size,
		cells: cells,
	}
}

func (that *Board) Size() int {
	return that.size
}

// Place puts a mark on the given cell. It is the only mutator of the board
// and it validates before mutating, so a failed call leaves the board
// untouched.
func (that *Board) Place(row, col int, mark Mark) error {
	if row < 0 || row >= that.size || col < 0 || col >= that.size {
		return fmt.Errorf("%w: row %d, col %d", apperror.ErrOutOfBounds, row, col)
	}

	if that.cells[row][col] != NoMark {
		return fmt.Errorf("%w: row %d, col %d", apperror.ErrCellOccupied, row, col)
	}

	that.cells[row][col] = mark
	that.taken++

	return nil
}

// CheckWin reports whether the mark just placed at (row, col) completes a
// run of at least winLength cells. It must be called right after a
// successful Place for that cell; it walks outward from the placed cell
// along each axis, so the cost is bounded by the run length, not the board
// area. Runs longer than winLength still count.
func (that *Board) CheckWin(row, col int, mark Mark, winLength int) bool {
	for _, axis := range axes {
		run := 1
		run += that.runLength(row, col, axis[0], axis[1], mark)
		run += that.runLength(row, col, -axis[0], -axis[1], mark)

		if run >= winLength {
			return true
		}
	}

	return false
}

// runLength counts matching cells from (row, col) exclusive, stepping by
// (deltaRow, deltaCol) until the mark changes or the edge is reached.
func (that *Board) runLength(row, col, deltaRow, deltaCol int, mark Mark) int {
	count := 0

	for {
		row += deltaRow
		col += deltaCol

		if row < 0 || row >= that.size || col < 0 || col >= that.size {
			break
		}

		if that.cells[row][col] != mark {
			break
		}

		count++
	}

	return count
}

func (that *Board) IsFull() bool {
	return that.taken == that.size*that.size
}

// Cells returns the grid as display symbols, empty string for empty cells.
// The result is a copy and safe to hand out.
func (that *Board) Cells() [][]string {
	grid := make([][]string, that.size)
	for row := range grid {
		grid[row] = make([]string, that.size)
		for col := range grid[row] {
			grid[row][col] = that.cells[row][col].Symbol()
		}
	}

	return grid
}
