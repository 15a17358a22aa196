package viz

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const upperHalf = "▀"

// Blocks renders img as rows of upper half blocks: each cell shows the top
// pixel in its foreground and the bottom pixel in its background. Runs of
// equal cells share one styled span.
func Blocks(img *image.RGBA) string {
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		var run int
		var style lipgloss.Style
		var prevTop, prevBot color.RGBA
		flush := func() {
			if run > 0 {
				sb.WriteString(style.Render(strings.Repeat(upperHalf, run)))
			}
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			top := img.RGBAAt(x, y)
			bot := top
			if y+1 < b.Max.Y {
				bot = img.RGBAAt(x, y+1)
			}
			if run > 0 && top == prevTop && bot == prevBot {
				run++
				continue
			}
			flush()
			style = lipgloss.NewStyle().
				Foreground(lipgloss.Color(rgbHex(top))).
				Background(lipgloss.Color(rgbHex(bot)))
			prevTop, prevBot, run = top, bot, 1
		}
		flush()
		sb.WriteByte('\n')
	}
	return sb.String()
}

func rgbHex(c color.RGBA) string {
	return hexColor(int(c.R), int(c.G), int(c.B))
}
