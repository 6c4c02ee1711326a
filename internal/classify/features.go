package classify

import (
	"image"

	"github.com/abhisek/rpscam/internal/frame"
)

// Features scales img to inputSize x inputSize and average-pools it into a
// grid x grid vector of luminance values in [0, 1], row-major.
func Features(img image.Image, inputSize, grid int) []float64 {
	scaled := frame.Preprocess(img, inputSize)
	out := make([]float64, grid*grid)

	for gy := 0; gy < grid; gy++ {
		y0, y1 := gy*inputSize/grid, (gy+1)*inputSize/grid
		for gx := 0; gx < grid; gx++ {
			x0, x1 := gx*inputSize/grid, (gx+1)*inputSize/grid

			var sum float64
			n := 0
			for y := y0; y < y1; y++ {
				row := scaled.Pix[y*scaled.Stride:]
				for x := x0; x < x1; x++ {
					p := row[x*4 : x*4+3]
					sum += (0.299*float64(p[0]) + 0.587*float64(p[1]) + 0.114*float64(p[2])) / 255
					n++
				}
			}
			if n > 0 {
				out[gy*grid+gx] = sum / float64(n)
			}
		}
	}
	return out
}
