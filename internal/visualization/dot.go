// Package visualization renders decision networks in various output formats
// and serves them over HTTP.
package visualization

import (
	"fmt"
	"math"
	"strings"

	"github.com/nvandessel/neuropath/internal/constants"
	"github.com/nvandessel/neuropath/internal/network"
)

// Format specifies the output format for graph rendering.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatDOT, FormatJSON, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (valid: dot, json, html)", s)
	}
}

// EdgeWidth maps a synapse weight to a drawn line width.
func EdgeWidth(weight float64) float64 {
	return math.Max(constants.MinEdgeWidth, weight*constants.EdgeWidthScale)
}

// RenderDOT produces an undirected Graphviz representation of the network.
// Line width follows EdgeWidth and every synapse is labelled with its weight.
func RenderDOT(snap network.Snapshot) string {
	var b strings.Builder
	b.WriteString("graph neuropath {\n")
	b.WriteString("  layout=neato;\n")
	b.WriteString("  overlap=false;\n")
	b.WriteString("  node [shape=ellipse, style=filled, fillcolor=lightblue, fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [color=gray40, fontname=\"Helvetica\", fontsize=10];\n\n")

	for _, n := range snap.Nodes {
		fmt.Fprintf(&b, "  %q;\n", n.Key)
	}

	if len(snap.Edges) > 0 {
		b.WriteString("\n")
	}
	for _, e := range snap.Edges {
		fmt.Fprintf(&b, "  %q -- %q [penwidth=%.2f, label=\"%.2f\"];\n",
			e.A, e.B, EdgeWidth(e.Weight), e.Weight)
	}

	b.WriteString("}\n")
	return b.String()
}

// RenderJSON produces a JSON-serializable graph for external consumers.
func RenderJSON(snap network.Snapshot) map[string]interface{} {
	jsonNodes := make([]map[string]interface{}, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		jsonNodes = append(jsonNodes, map[string]interface{}{
			"id":         n.Key,
			"activation": n.Activation,
		})
	}

	jsonEdges := make([]map[string]interface{}, 0, len(snap.Edges))
	for _, e := range snap.Edges {
		jsonEdges = append(jsonEdges, map[string]interface{}{
			"source": e.A,
			"target": e.B,
			"weight": e.Weight,
		})
	}

	return map[string]interface{}{
		"nodes":      jsonNodes,
		"edges":      jsonEdges,
		"node_count": len(jsonNodes),
		"edge_count": len(jsonEdges),
	}
}
