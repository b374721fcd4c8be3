package preprocess

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Correction is capped so near-vertical artifacts (fold lines, barcodes)
// cannot rotate the page onto its side.
const maxSkewDegrees = 15.0

// detectSkewAngle estimates the dominant text-line angle in degrees by
// searching for the rotation that maximizes the variance of the horizontal
// ink-projection profile. Text rows aligned with the axis concentrate ink
// into few rows, which maximizes that variance.
//
// Returns ok=false when the raster carries too little ink to measure.
func detectSkewAngle(g *image.Gray) (float64, bool) {
	threshold := luminanceThreshold(g)
	w, h := g.Bounds().Dx(), g.Bounds().Dy()

	// Sample ink pixel coordinates with a stride that bounds the point count,
	// keeping the search cheap on large scans.
	stride := 1
	if n := w * h; n > 500_000 {
		stride = int(math.Sqrt(float64(n) / 500_000))
		if stride < 1 {
			stride = 1
		}
	}
	type pt struct{ x, y float64 }
	var points []pt
	for y := 0; y < h; y += stride {
		for x := 0; x < w; x += stride {
			if g.GrayAt(x, y).Y < threshold {
				points = append(points, pt{float64(x), float64(y)})
			}
		}
	}
	if len(points) < 32 {
		return 0, false
	}

	score := func(deg float64) float64 {
		rad := deg * math.Pi / 180
		sin, cos := math.Sin(rad), math.Cos(rad)
		rows := make(map[int]int, h)
		for _, p := range points {
			rows[int(p.y*cos-p.x*sin)]++
		}
		mean := float64(len(points)) / float64(len(rows))
		var variance float64
		for _, n := range rows {
			d := float64(n) - mean
			variance += d * d
		}
		return variance / float64(len(rows))
	}

	best, bestScore := 0.0, score(0)
	for deg := -maxSkewDegrees; deg <= maxSkewDegrees; deg += 0.5 {
		if s := score(deg); s > bestScore {
			best, bestScore = deg, s
		}
	}
	for deg := best - 0.4; deg <= best+0.4; deg += 0.1 {
		if math.Abs(deg) > maxSkewDegrees {
			continue
		}
		if s := score(deg); s > bestScore {
			best, bestScore = deg, s
		}
	}
	if math.Abs(best) < 0.1 {
		return 0, true
	}
	return best, true
}

// rotate rotates the raster by the given angle in degrees about its center,
// resampling bilinearly onto a white canvas of the same size.
func rotate(g *image.Gray, deg float64) *image.Gray {
	rad := deg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	cx, cy := float64(w)/2, float64(h)/2

	out := image.NewGray(g.Bounds())
	draw.Draw(out, out.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	m := f64.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}
	draw.BiLinear.Transform(out, m, g, g.Bounds(), draw.Over, nil)
	return out
}
