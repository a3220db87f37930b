package game

// Pattern identifies the winning line a participant completed.
type Pattern string

const (
	PatternNone     Pattern = ""
	PatternRow      Pattern = "row"
	PatternColumn   Pattern = "column"
	PatternDiagonal Pattern = "diagonal"
	PatternCorners  Pattern = "corners"
)

var (
	rowLines      [5][5]int
	columnLines   [5][5]int
	diagonalLines = [2][5]int{
		{0, 6, 12, 18, 24},
		{4, 8, 12, 16, 20},
	}
	cornerCells = [4]int{0, 4, 20, 24}
)

func init() {
	for row := 0; row < 5; row++ {
		for col := 0; col < 5; col++ {
			rowLines[row][col] = row*5 + col
			columnLines[col][row] = row*5 + col
		}
	}
}

// winningPattern checks a marked-index set against the winning lines:
// 5 rows, 5 columns, 2 diagonals, optionally the four corners.
func winningPattern(marked map[int]bool, corners bool) (Pattern, bool) {
	lineMarked := func(line [5]int) bool {
		for _, idx := range line {
			if !marked[idx] {
				return false
			}
		}
		return true
	}

	for _, line := range rowLines {
		if lineMarked(line) {
			return PatternRow, true
		}
	}
	for _, line := range columnLines {
		if lineMarked(line) {
			return PatternColumn, true
		}
	}
	for _, line := range diagonalLines {
		if lineMarked(line) {
			return PatternDiagonal, true
		}
	}
	if corners {
		won := true
		for _, idx := range cornerCells {
			if !marked[idx] {
				won = false
				break
			}
		}
		if won {
			return PatternCorners, true
		}
	}
	return PatternNone, false
}
