package matching

// Surface is a correlation surface: a row-major grid of similarity scores,
// one cell per template placement. Row/column axes map to the image's y/x
// axes, callers flip the order when deriving box origins.
type Surface struct {
	Values []float64
	Rows   int
	Cols   int
}

// NewSurface allocates a zeroed surface with the given shape.
func NewSurface(rows, cols int) *Surface {
	return &Surface{Values: make([]float64, rows*cols), Rows: rows, Cols: cols}
}

// At returns the score at (row, col). No bounds checking.
func (s *Surface) At(row, col int) float64 { return s.Values[row*s.Cols+col] }

// Set stores a score at (row, col). No bounds checking.
func (s *Surface) Set(row, col int, v float64) { s.Values[row*s.Cols+col] = v }
