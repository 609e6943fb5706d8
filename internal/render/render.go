// Package render draws a board snapshot to a PNG image: grid lines, placed
// platforms, preview footprints and socket connection state.
package render

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"

	"github.com/mivchik/platforge/internal/board"
	"github.com/mivchik/platforge/internal/grid"
	"github.com/mivchik/platforge/internal/socket"
)

// Scheme holds the palette. Colors are hex strings so a blueprint catalog
// can override them directly.
type Scheme struct {
	Background string
	GridLine   string
	Platform   string
	Preview    string
	Blocked    string
	Socket     string
	Connected  string
}

// DefaultScheme returns the built-in palette.
func DefaultScheme() Scheme {
	return Scheme{
		Background: "#1b1e23",
		GridLine:   "#2c313a",
		Platform:   "#8a9ba8",
		Preview:    "#b8a88a",
		Blocked:    "#b85c5c",
		Socket:     "#5c6670",
		Connected:  "#7dc47d",
	}
}

// Renderer rasterizes a registry's state.
type Renderer struct {
	reg    *board.Registry
	scheme Scheme
	// PixelsPerCell controls output resolution.
	PixelsPerCell int
	// KindColors overrides the platform fill per kind.
	KindColors map[string]string
}

// New creates a renderer with the default palette at 24 pixels per cell.
func New(reg *board.Registry) *Renderer {
	return &Renderer{
		reg:           reg,
		scheme:        DefaultScheme(),
		PixelsPerCell: 24,
		KindColors:    make(map[string]string),
	}
}

// SetScheme replaces the palette.
func (r *Renderer) SetScheme(s Scheme) { r.scheme = s }

// Image rasterizes the current board state.
func (r *Renderer) Image() (image.Image, error) {
	g := r.reg.Grid()
	px := r.PixelsPerCell
	if px <= 0 {
		return nil, fmt.Errorf("render: pixels per cell must be positive, got %d", px)
	}

	ctx := gg.NewContext(g.W()*px, g.H()*px)
	ctx.SetHexColor(r.scheme.Background)
	ctx.Clear()

	r.drawGridLines(ctx, g, px)
	for _, p := range r.reg.Platforms() {
		switch p.State() {
		case board.Registered:
			r.drawPlatform(ctx, p, px, r.kindColor(p.Kind))
		case board.PickedUp:
			r.drawPreview(ctx, p, px)
		}
	}
	for _, p := range r.reg.Platforms() {
		if p.State() == board.Registered {
			r.drawSockets(ctx, p, px)
		}
	}

	return ctx.Image(), nil
}

// SavePNG rasterizes the board and writes it to the given path.
func (r *Renderer) SavePNG(path string) error {
	im, err := r.Image()
	if err != nil {
		return err
	}
	ctx := gg.NewContextForImage(im)
	if err := ctx.SavePNG(path); err != nil {
		return fmt.Errorf("render: cannot save %s: %w", path, err)
	}
	return nil
}

func (r *Renderer) kindColor(kind string) string {
	if c, ok := r.KindColors[kind]; ok {
		return c
	}
	return r.scheme.Platform
}

func (r *Renderer) drawGridLines(ctx *gg.Context, g *grid.Grid, px int) {
	ctx.SetHexColor(r.scheme.GridLine)
	ctx.SetLineWidth(1)
	for x := 0; x <= g.W(); x++ {
		ctx.DrawLine(float64(x*px), 0, float64(x*px), float64(g.H()*px))
		ctx.Stroke()
	}
	for y := 0; y <= g.H(); y++ {
		ctx.DrawLine(0, float64(y*px), float64(g.W()*px), float64(y*px))
		ctx.Stroke()
	}
}

// cellRect returns the pixel rectangle of a cell. Image rows grow downward
// while the board's Y axis grows north, so Y is flipped.
func cellRect(g *grid.Grid, c grid.Coord, px int) (x, y, w, h float64) {
	return float64(c.X * px), float64((g.H() - 1 - c.Y) * px), float64(px), float64(px)
}

func (r *Renderer) drawPlatform(ctx *gg.Context, p *board.Platform, px int, color string) {
	g := r.reg.Grid()
	ctx.SetHexColor(color)
	for _, c := range p.Cells {
		x, y, w, h := cellRect(g, c, px)
		ctx.DrawRectangle(x+1, y+1, w-2, h-2)
		ctx.Fill()
	}
}

func (r *Renderer) drawPreview(ctx *gg.Context, p *board.Platform, px int) {
	g := r.reg.Grid()
	cells := r.reg.Resolver().ComputeCells(p.X, p.Z, p.Yaw, p.Footprint)
	check := r.reg.CanPlace(p, p.X, p.Z, p.Yaw)
	color := r.scheme.Preview
	if !check.OK {
		color = r.scheme.Blocked
	}
	ctx.SetHexColor(color)
	for _, c := range cells {
		x, y, w, h := cellRect(g, c, px)
		ctx.DrawRectangle(x+3, y+3, w-6, h-6)
		ctx.Stroke()
	}
}

func (r *Renderer) drawSockets(ctx *gg.Context, p *board.Platform, px int) {
	g := r.reg.Grid()
	ox, oz := g.Origin()
	for _, s := range p.Sockets {
		wx, wz := socket.WorldPos(s, p.X, p.Z, p.Yaw)
		sx := (wx - ox) / g.CellSize() * float64(px)
		sy := float64(g.H()*px) - (wz-oz)/g.CellSize()*float64(px)
		if s.Status == socket.Connected {
			ctx.SetHexColor(r.scheme.Connected)
		} else {
			ctx.SetHexColor(r.scheme.Socket)
		}
		ctx.DrawCircle(sx, sy, float64(px)/6)
		ctx.Fill()
	}
}
