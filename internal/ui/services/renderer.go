package services

import (
	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders assistant markdown for the terminal.
type MarkdownRenderer interface {
	Render(content string, width int) (string, error)
}

// GlamourRenderer implements MarkdownRenderer with glamour. Renderers
// are cached per width because glamour binds word wrap at construction.
type GlamourRenderer struct {
	renderers map[int]*glamour.TermRenderer
}

// NewGlamourRenderer creates a GlamourRenderer.
func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{renderers: make(map[int]*glamour.TermRenderer)}
}

// Render renders markdown wrapped to width.
func (g *GlamourRenderer) Render(content string, width int) (string, error) {
	if width < 20 {
		width = 20
	}

	r, ok := g.renderers[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		g.renderers[width] = r
	}

	return r.Render(content)
}
