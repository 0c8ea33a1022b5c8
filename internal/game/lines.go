package game

type LineID string

type Line struct {
	ID    LineID
	Cells [5]int // row-major positions on the 5x5 board
}

// WinningLines is the fixed set of 12 lines: 5 rows, 5 columns, the main
// diagonal and the anti-diagonal.
var WinningLines = []Line{
	// Rows
	{ID: "row0", Cells: [5]int{0, 1, 2, 3, 4}},
	{ID: "row1", Cells: [5]int{5, 6, 7, 8, 9}},
	{ID: "row2", Cells: [5]int{10, 11, 12, 13, 14}},
	{ID: "row3", Cells: [5]int{15, 16, 17, 18, 19}},
	{ID: "row4", Cells: [5]int{20, 21, 22, 23, 24}},
	// Columns
	{ID: "col0", Cells: [5]int{0, 5, 10, 15, 20}},
	{ID: "col1", Cells: [5]int{1, 6, 11, 16, 21}},
	{ID: "col2", Cells: [5]int{2, 7, 12, 17, 22}},
	{ID: "col3", Cells: [5]int{3, 8, 13, 18, 23}},
	{ID: "col4", Cells: [5]int{4, 9, 14, 19, 24}},
	// Diagonals
	{ID: "diag1", Cells: [5]int{0, 6, 12, 18, 24}},
	{ID: "diag2", Cells: [5]int{4, 8, 12, 16, 20}},
}
