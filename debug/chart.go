package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	chartWidth    = 640
	rowHeight     = 28
	barMaxWidth   = 420
	labelGutter   = 140
	chartFontSize = 13
)

// RenderChart writes a horizontal bar chart of s.TopMoves to w as a PNG:
// one row per candidate move, bar length proportional to its visit share
// of the top candidate, and a text label giving UCI/N/Q/P.
func RenderChart(s Summary, w io.Writer) error {
	if len(s.TopMoves) == 0 {
		return renderEmpty(w)
	}

	height := rowHeight*len(s.TopMoves) + rowHeight/2
	img := image.NewRGBA(image.Rect(0, 0, chartWidth, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return err
	}
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(font)
	ctx.SetFontSize(chartFontSize)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.NewUniform(color.Black))

	maxVisits := float64(s.TopMoves[0].Visits)
	if maxVisits == 0 {
		maxVisits = 1
	}

	bar := image.NewUniform(color.RGBA{R: 0x2f, G: 0x6f, B: 0xb0, A: 0xff})
	for i, cand := range s.TopMoves {
		y := i*rowHeight + rowHeight/4
		barLen := int(float64(barMaxWidth) * float64(cand.Visits) / maxVisits)
		rect := image.Rect(labelGutter, y, labelGutter+barLen, y+rowHeight/2)
		draw.Draw(img, rect, bar, image.Point{}, draw.Src)

		label := candidateLabel(cand)
		pt := freetype.Pt(4, y+rowHeight/3+chartFontSize/2)
		if _, err := ctx.DrawString(label, pt); err != nil {
			return err
		}
	}

	return png.Encode(w, img)
}

func renderEmpty(w io.Writer) error {
	img := image.NewRGBA(image.Rect(0, 0, chartWidth, rowHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return png.Encode(w, img)
}

func candidateLabel(c Candidate) string {
	return fmt.Sprintf("%s N=%d Q=%.2f P=%.2f", c.UCI, c.Visits, c.Q, c.Prior)
}
