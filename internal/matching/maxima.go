package matching

// Peak is a maximum location in a correlation surface, in (row, col) grid
// order. Callers flip the axes when building (x, y) box origins.
type Peak struct {
	Row int
	Col int
}

// FindMaxima extracts candidate peak positions from a correlation surface.
//
// A 1x1 surface means the template was exactly as large as the search region:
// its sole value is a literal score and yields one peak at (0,0) iff it
// reaches scoreThreshold. General peak detection would behave inconsistently
// on a single cell, so this case is handled up front.
//
// With singleMatch the single global maximum is returned regardless of the
// threshold; the caller decides whether to filter it. Otherwise all local
// maxima scoring at least scoreThreshold are returned, border cells included
// and with no cap: downstream suppression needs the full candidate pool.
func FindMaxima(s *Surface, scoreThreshold float64, singleMatch bool) []Peak {
	if s.Rows == 1 && s.Cols == 1 {
		if s.At(0, 0) >= scoreThreshold {
			return []Peak{{Row: 0, Col: 0}}
		}
		return nil
	}

	if singleMatch {
		return []Peak{globalMaximum(s)}
	}
	return localMaxima(s, scoreThreshold)
}

func globalMaximum(s *Surface) Peak {
	best := Peak{}
	bestVal := s.At(0, 0)
	for row := 0; row < s.Rows; row++ {
		for col := 0; col < s.Cols; col++ {
			if v := s.At(row, col); v > bestVal {
				bestVal = v
				best = Peak{Row: row, Col: col}
			}
		}
	}
	return best
}

// localMaxima returns every cell that is not exceeded by any of its (up to
// eight) neighbors and scores at least the threshold. Plateau cells are all
// reported; NMS collapses them afterwards.
func localMaxima(s *Surface, scoreThreshold float64) []Peak {
	var peaks []Peak
	for row := 0; row < s.Rows; row++ {
		for col := 0; col < s.Cols; col++ {
			v := s.At(row, col)
			if v < scoreThreshold {
				continue
			}
			if isLocalMaximum(s, row, col, v) {
				peaks = append(peaks, Peak{Row: row, Col: col})
			}
		}
	}
	return peaks
}

func isLocalMaximum(s *Surface, row, col int, v float64) bool {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := row+dr, col+dc
			if r < 0 || r >= s.Rows || c < 0 || c >= s.Cols {
				continue
			}
			if s.At(r, c) > v {
				return false
			}
		}
	}
	return true
}
