package matching

import (
	"errors"
	"math"
	"runtime"
	"sync"

	"github.com/MeKo-Tech/mtm/internal/mempool"
	"github.com/MeKo-Tech/mtm/internal/utils"
)

// ErrTemplateLargerThanImage is returned by Correlate when the template does
// not fit inside the search image along every axis.
var ErrTemplateLargerThanImage = errors.New("template is larger than the search image")

// integralPlane holds summed-area tables of a plane and its square, padded by
// one row and column of zeros. They give O(1) window sum and sum-of-squares
// queries, which is what keeps normalized correlation tractable without FFTs.
type integralPlane struct {
	sum   []float64
	sumSq []float64
	width int // padded width (plane width + 1)
}

func newIntegralPlane(p *utils.Plane) *integralPlane {
	w, h := p.Width+1, p.Height+1
	ip := &integralPlane{
		sum:   mempool.GetFloat64(w * h),
		sumSq: mempool.GetFloat64(w * h),
		width: w,
	}
	for y := 1; y < h; y++ {
		rowSum, rowSumSq := 0.0, 0.0
		for x := 1; x < w; x++ {
			v := p.At(x-1, y-1)
			rowSum += v
			rowSumSq += v * v
			ip.sum[y*w+x] = ip.sum[(y-1)*w+x] + rowSum
			ip.sumSq[y*w+x] = ip.sumSq[(y-1)*w+x] + rowSumSq
		}
	}
	return ip
}

// window returns the sum and sum of squares over the w x h window whose
// top-left corner is (x, y).
func (ip *integralPlane) window(x, y, w, h int) (sum, sumSq float64) {
	x1, y1 := x, y
	x2, y2 := x+w, y+h
	sum = ip.sum[y2*ip.width+x2] - ip.sum[y1*ip.width+x2] -
		ip.sum[y2*ip.width+x1] + ip.sum[y1*ip.width+x1]
	sumSq = ip.sumSq[y2*ip.width+x2] - ip.sumSq[y1*ip.width+x2] -
		ip.sumSq[y2*ip.width+x1] + ip.sumSq[y1*ip.width+x1]
	return sum, sumSq
}

// release hands the scratch tables back to the pool.
func (ip *integralPlane) release() {
	mempool.PutFloat64(ip.sum)
	mempool.PutFloat64(ip.sumSq)
	ip.sum, ip.sumSq = nil, nil
}

// Correlate slides the template over the image and computes the normalized
// cross-correlation score for every placement. The output has shape
// (imageHeight-templateHeight+1, imageWidth-templateWidth+1), degenerating to
// a single cell when the template matches the image size exactly. Scores lie
// in [-1, 1]; placements with zero variance on either side score 0.
func Correlate(img, tmpl *utils.Plane) (*Surface, error) {
	if tmpl.Width > img.Width || tmpl.Height > img.Height {
		return nil, ErrTemplateLargerThanImage
	}

	rows := img.Height - tmpl.Height + 1
	cols := img.Width - tmpl.Width + 1
	out := NewSurface(rows, cols)

	n := float64(tmpl.Width * tmpl.Height)
	var sumT, sumT2 float64
	for _, v := range tmpl.Pix {
		sumT += v
		sumT2 += v * v
	}
	meanT := sumT / n
	varT := sumT2/n - meanT*meanT
	stdT := 0.0
	if varT > 0 {
		stdT = math.Sqrt(varT)
	}

	integral := newIntegralPlane(img)
	defer integral.release()

	// Rows are distributed over workers; each goroutine owns whole rows so
	// assembly is deterministic.
	workers := runtime.GOMAXPROCS(0)
	if workers > rows {
		workers = rows
	}
	var wg sync.WaitGroup
	rowCh := make(chan int, rows)
	for r := 0; r < rows; r++ {
		rowCh <- r
	}
	close(rowCh)

	for _i := 0; _i < workers; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range rowCh {
				correlateRow(out, img, tmpl, integral, row, n, meanT, stdT)
			}
		}()
	}
	wg.Wait()

	return out, nil
}

func correlateRow(out *Surface, img, tmpl *utils.Plane, integral *integralPlane,
	row int, n, meanT, stdT float64,
) {
	for col := 0; col < out.Cols; col++ {
		sumI, sumI2 := integral.window(col, row, tmpl.Width, tmpl.Height)
		meanI := sumI / n
		varI := sumI2/n - meanI*meanI
		if varI <= 0 || stdT == 0 {
			continue
		}

		var dot float64
		for ty := 0; ty < tmpl.Height; ty++ {
			imgOff := (row+ty)*img.Width + col
			tmplOff := ty * tmpl.Width
			for tx := 0; tx < tmpl.Width; tx++ {
				dot += img.Pix[imgOff+tx] * tmpl.Pix[tmplOff+tx]
			}
		}

		numerator := dot - n*meanI*meanT
		denominator := n * math.Sqrt(varI) * stdT
		out.Set(row, col, numerator/denominator)
	}
}
