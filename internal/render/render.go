// Package render draws the 1200x630 frame images.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"net/url"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"longevity-frame/internal/domain"
)

const (
	Width  = 1200
	Height = 630
)

// textScale is how much the bitmap font is enlarged when composited.
const textScale = 4

var (
	olive      = mustHex("#6B8E23")
	ocean      = mustHex("#4682B4")
	terracotta = mustHex("#E07A5F")
	white      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	faded      = color.RGBA{R: 255, G: 255, B: 255, A: 200}
)

// fallbackPNG is a 1x1 transparent image served when rendering fails.
var fallbackPNG = func() []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	return buf.Bytes()
}()

// FallbackPNG returns the 1x1 placeholder image.
func FallbackPNG() []byte {
	return append([]byte(nil), fallbackPNG...)
}

// Renderer produces PNG bytes for an image reference.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render draws ref as a PNG.
func (r *Renderer) Render(ref domain.ImageRef) ([]byte, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, Width, Height))

	switch ref.Kind {
	case domain.ImageQuestion:
		gradient(canvas, olive, ocean)
		if ref.Total > 0 {
			progress := Width * clamp(ref.Num, 0, ref.Total) / ref.Total
			draw.Draw(canvas, image.Rect(0, 0, progress, 8), image.NewUniform(faded), image.Point{}, draw.Over)
		}
		text(canvas, fmt.Sprintf("Question %d of %d", ref.Num, ref.Total), 150, faded)
		lines := wrap(ref.Text, Width/(textScale*7)-4)
		for i, line := range lines {
			text(canvas, line, 260+i*70, white)
		}
	case domain.ImageResults, domain.ImageShare:
		info, ok := domain.LookupTier(ref.Tier)
		if !ok {
			info = domain.ClassifyScore(ref.Score)
		}
		gradient(canvas, olive, terracotta)
		badge := mustHex(info.BadgeColor)
		draw.Draw(canvas, image.Rect(Width/2-220, 330, Width/2+220, 420), image.NewUniform(badge), image.Point{}, draw.Src)
		heading := "Your Longevity Score"
		if ref.Kind == domain.ImageShare {
			heading = "My Longevity Score"
		}
		text(canvas, heading, 110, faded)
		text(canvas, fmt.Sprintf("%d/100", ref.Score), 230, white)
		label := ref.Badge
		if label == "" {
			label = info.Badge
		}
		text(canvas, label, 370, color.RGBA{A: 255})
		text(canvas, strings.ReplaceAll(string(info.Tier), "-", " "), 500, white)
	default:
		gradient(canvas, olive, terracotta)
		text(canvas, "What's Your Longevity Score?", 230, white)
		text(canvas, "Take the 2-minute assessment", 340, faded)
		text(canvas, "Tap to start", 440, faded)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Query encodes ref as image endpoint query parameters.
func Query(ref domain.ImageRef) url.Values {
	q := url.Values{}
	kind := ref.Kind
	if kind == "" {
		kind = domain.ImageInitial
	}
	q.Set("type", string(kind))
	switch kind {
	case domain.ImageQuestion:
		q.Set("num", strconv.Itoa(ref.Num))
		q.Set("total", strconv.Itoa(ref.Total))
		q.Set("text", ref.Text)
		q.Set("emoji", ref.Emoji)
	case domain.ImageResults, domain.ImageShare:
		q.Set("score", strconv.Itoa(ref.Score))
		q.Set("tier", string(ref.Tier))
		q.Set("badge", ref.Badge)
	}
	return q
}

// ParseQuery is the inverse of Query. Unknown types become the initial image
// and numbers that do not parse fall back to the defaults of a fresh quiz.
func ParseQuery(q url.Values) domain.ImageRef {
	ref := domain.ImageRef{Kind: domain.ImageKind(q.Get("type"))}
	switch ref.Kind {
	case domain.ImageQuestion:
		ref.Num = atoiDefault(q.Get("num"), 1)
		ref.Total = atoiDefault(q.Get("total"), 8)
		ref.Text = q.Get("text")
		ref.Emoji = q.Get("emoji")
	case domain.ImageResults, domain.ImageShare:
		ref.Score = clamp(atoiDefault(q.Get("score"), 0), 0, 100)
		ref.Tier = domain.Tier(q.Get("tier"))
		if !ref.Tier.Valid() {
			ref.Tier = domain.ClassifyScore(ref.Score).Tier
		}
		ref.Badge = q.Get("badge")
		if ref.Badge == "" {
			ref.Badge = domain.ClassifyScore(ref.Score).Badge
		}
	default:
		ref.Kind = domain.ImageInitial
	}
	return ref
}

func gradient(dst *image.RGBA, from, to color.RGBA) {
	b := dst.Bounds()
	span := b.Dx() + b.Dy()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			t := float64(x+y) / float64(span)
			dst.SetRGBA(x, y, color.RGBA{
				R: lerp(from.R, to.R, t),
				G: lerp(from.G, to.G, t),
				B: lerp(from.B, to.B, t),
				A: 255,
			})
		}
	}
}

// text draws s centered horizontally with its baseline near y. The bitmap
// face is drawn small and scaled up onto the canvas.
func text(dst *image.RGBA, s string, y int, c color.Color) {
	face := basicfont.Face7x13
	adv := font.MeasureString(face, s).Ceil()
	if adv == 0 {
		return
	}
	h := face.Metrics().Height.Ceil()
	small := image.NewRGBA(image.Rect(0, 0, adv, h))
	d := font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)

	w := adv * textScale
	x := (Width - w) / 2
	target := image.Rect(x, y-h*textScale/2, x+w, y+h*textScale/2)
	xdraw.ApproxBiLinear.Scale(dst, target, small, small.Bounds(), xdraw.Over, nil)
}

// wrap breaks s into lines of at most width runes on word boundaries.
func wrap(s string, width int) []string {
	words := strings.Fields(s)
	var (
		lines []string
		cur   string
	)
	for _, w := range words {
		switch {
		case cur == "":
			cur = w
		case len([]rune(cur))+1+len([]rune(w)) <= width:
			cur += " " + w
		default:
			lines = append(lines, cur)
			cur = w
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func mustHex(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
