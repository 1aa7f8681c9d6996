package domain

const (
	BoardRows = 9
	BoardCols = 10
)

// Board is the display view of the game. Grid[row][col] holds row*10+col+1
// when that value has been drawn and 0 otherwise.
type Board struct {
	Grid          [BoardRows][BoardCols]int
	Chronological []int
	Today         []int
}

func NewBoard(all, today []DrawnNumber) Board {
	b := Board{
		Chronological: Values(all),
		Today:         Values(today),
	}
	for _, v := range b.Chronological {
		if !ValidValue(v) {
			continue
		}
		row, col := (v-1)/BoardCols, (v-1)%BoardCols
		b.Grid[row][col] = v
	}
	return b
}
