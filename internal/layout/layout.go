// Package layout computes canvas positions for IR nodes using a simple
// left-to-right layered (Sugiyama-inspired) placement: nodes are assigned a
// layer by longest path from the entry nodes, then centered within each
// layer column.
package layout

import "github.com/unitport/compiler/internal/ir"

const (
	NodeWidth  = 180.0
	NodeHeight = 110.0

	LogicWidth  = 240.0
	LogicHeight = 200.0

	ComparisonWidth  = 260.0
	ComparisonHeight = 170.0

	HGap = 100.0
	VGap = 50.0

	CanvasCenterX = 600.0
	CanvasCenterY = 400.0
)

// Layout assigns x/y/width/height to every node's UI, modifying the IR in
// place. Nodes without incoming edges seed layer 0; every reachable
// descendant gets the longest-path layer from any entry node.
func Layout(wf *ir.WorkflowIR) {
	if len(wf.Nodes) == 0 {
		return
	}

	outgoing := map[string][]string{}
	incoming := map[string][]string{}
	for _, n := range wf.Nodes {
		outgoing[n.ID] = nil
		incoming[n.ID] = nil
	}
	for _, e := range wf.Edges {
		if _, ok := outgoing[e.FromNode]; ok {
			outgoing[e.FromNode] = append(outgoing[e.FromNode], e.ToNode)
		}
		if _, ok := incoming[e.ToNode]; ok {
			incoming[e.ToNode] = append(incoming[e.ToNode], e.FromNode)
		}
	}

	layers := assignLayers(wf, outgoing, incoming)

	layerGroups := map[int][]*ir.IRNode{}
	maxLayer := 0
	for i := range wf.Nodes {
		n := &wf.Nodes[i]
		l := layers[n.ID]
		layerGroups[l] = append(layerGroups[l], n)
		if l > maxLayer {
			maxLayer = l
		}
	}
	numLayers := maxLayer + 1

	totalWidth := 0.0
	for i := 0; i < numLayers; i++ {
		maxW := NodeWidth
		for _, n := range layerGroups[i] {
			w, _ := nodeSize(n)
			if w > maxW {
				maxW = w
			}
		}
		if len(layerGroups[i]) == 0 {
			maxW = NodeWidth
		}
		totalWidth += maxW
	}
	if numLayers > 1 {
		totalWidth += HGap * float64(numLayers-1)
	}

	startX := CanvasCenterX - totalWidth/2
	currentX := startX

	for i := 0; i < numLayers; i++ {
		nodesInLayer := layerGroups[i]
		if len(nodesInLayer) == 0 {
			continue
		}

		layerMaxW := 0.0
		layerHeight := 0.0
		for _, n := range nodesInLayer {
			w, h := nodeSize(n)
			if w > layerMaxW {
				layerMaxW = w
			}
			layerHeight += h
		}
		if len(nodesInLayer) > 1 {
			layerHeight += VGap * float64(len(nodesInLayer)-1)
		}

		startY := CanvasCenterY - layerHeight/2
		currentY := startY

		for _, n := range nodesInLayer {
			w, h := nodeSize(n)
			x := currentX + (layerMaxW-w)/2
			y := currentY

			if n.UI == nil {
				n.UI = &ir.IRNodeUI{}
			}
			n.UI.X, n.UI.Y, n.UI.Width, n.UI.Height = x, y, w, h

			currentY += h + VGap
		}

		currentX += layerMaxW + HGap
	}
}

// assignLayers walks outgoing edges from every entry node (no incoming
// edges, or the first node if the graph has none) assigning each reachable
// node the MAXIMUM layer depth seen across all paths — a longest-path
// topological layering, not a shortest-path one.
func assignLayers(wf *ir.WorkflowIR, outgoing, incoming map[string][]string) map[string]int {
	layers := map[string]int{}

	var entryIDs []string
	for _, n := range wf.Nodes {
		if len(incoming[n.ID]) == 0 {
			entryIDs = append(entryIDs, n.ID)
		}
	}
	if len(entryIDs) == 0 && len(wf.Nodes) > 0 {
		entryIDs = []string{wf.Nodes[0].ID}
	}

	var assign func(nodeID string, layer int)
	assign = func(nodeID string, layer int) {
		if existing, ok := layers[nodeID]; ok && existing >= layer {
			return
		}
		layers[nodeID] = layer
		for _, target := range outgoing[nodeID] {
			assign(target, layer+1)
		}
	}

	for _, eid := range entryIDs {
		assign(eid, 0)
	}

	for _, n := range wf.Nodes {
		if _, ok := layers[n.ID]; !ok {
			layers[n.ID] = 0
		}
	}

	return layers
}

func nodeSize(n *ir.IRNode) (width, height float64) {
	switch n.Kind {
	case ir.KindLogic:
		return LogicWidth, LogicHeight
	case ir.KindComparison:
		return ComparisonWidth, ComparisonHeight
	default:
		return NodeWidth, NodeHeight
	}
}
