package visualization

import (
	"bytes"
	"fmt"
	"html/template"
	"math"

	"github.com/nvandessel/neuropath/internal/network"
)

const (
	canvasSize = 640.0
	ringMargin = 90.0
)

type htmlNode struct {
	Key  string
	X, Y float64
}

type htmlEdge struct {
	X1, Y1, X2, Y2 float64
	Width          float64
	Label          string
	LX, LY         float64
}

// htmlTemplateData holds data passed to the HTML template.
type htmlTemplateData struct {
	Size  float64
	Nodes []htmlNode
	Edges []htmlEdge
}

// RenderHTML produces a self-contained HTML page with the network drawn as
// SVG. Neurons sit on a circle in key order.
func RenderHTML(snap network.Snapshot) ([]byte, error) {
	tmplBytes, err := templates.ReadFile("templates/graph.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("read HTML template: %w", err)
	}

	tmpl, err := template.New("graph").Parse(string(tmplBytes))
	if err != nil {
		return nil, fmt.Errorf("parse HTML template: %w", err)
	}

	data := layout(snap)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute HTML template: %w", err)
	}
	return buf.Bytes(), nil
}

func layout(snap network.Snapshot) htmlTemplateData {
	center := canvasSize / 2
	radius := center - ringMargin

	pos := make(map[string]htmlNode, len(snap.Nodes))
	nodes := make([]htmlNode, 0, len(snap.Nodes))
	for i, n := range snap.Nodes {
		x, y := center, center
		if len(snap.Nodes) > 1 {
			angle := 2*math.Pi*float64(i)/float64(len(snap.Nodes)) - math.Pi/2
			x = center + radius*math.Cos(angle)
			y = center + radius*math.Sin(angle)
		}
		hn := htmlNode{Key: n.Key, X: round2(x), Y: round2(y)}
		pos[n.Key] = hn
		nodes = append(nodes, hn)
	}

	edges := make([]htmlEdge, 0, len(snap.Edges))
	for _, e := range snap.Edges {
		a, okA := pos[e.A]
		b, okB := pos[e.B]
		if !okA || !okB {
			continue
		}
		edges = append(edges, htmlEdge{
			X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y,
			Width: round2(EdgeWidth(e.Weight)),
			Label: fmt.Sprintf("%.2f", e.Weight),
			LX:    round2((a.X + b.X) / 2),
			LY:    round2((a.Y + b.Y) / 2),
		})
	}

	return htmlTemplateData{Size: canvasSize, Nodes: nodes, Edges: edges}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
