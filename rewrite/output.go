package rewrite

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// printer reports results on the console. Colors are only used when
// destination is a terminal.
type printer struct {
	w     io.Writer
	title lipgloss.Style
	done  lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:     w,
		title: r.NewStyle().Foreground(lipgloss.Color("4")),
		done:  r.NewStyle().Foreground(lipgloss.Color("2")),
	}
}

// result prints file name followed by rewritten stylesheet.
func (p *printer) result(path string, text []byte) error {
	_, err := fmt.Fprintf(p.w, "%s\n%s\n", p.title.Render(path), text)
	return err
}

func (p *printer) written(path string) error {
	_, err := fmt.Fprintf(p.w, "✨ Writing %s.\n", p.done.Render(path))
	return err
}
