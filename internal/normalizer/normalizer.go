// Package normalizer produces a canonical form of a WorkflowIR for
// round-trip comparison: UI metadata stripped, nodes topologically sorted
// and renumbered, edges sorted, and parameter values coerced for
// loose equality.
package normalizer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/unitport/compiler/internal/ir"
)

// Normalize returns a canonical copy of wf. Name, variables, and source
// spans are dropped and ir_version is reset to the current version:
// normalization exists purely to compare graph shape and node semantics,
// not wire metadata.
func Normalize(wf *ir.WorkflowIR) *ir.WorkflowIR {
	normalized := &ir.WorkflowIR{IRVersion: ir.IRVersion, RobotType: wf.RobotType, Brand: wf.Brand}

	sortedNodes := topoSort(wf)

	idMap := map[string]string{}
	for idx, n := range sortedNodes {
		idMap[n.ID] = strconv.Itoa(idx)
	}

	for idx, n := range sortedNodes {
		normalized.AddNode(ir.IRNode{
			ID:         strconv.Itoa(idx),
			SchemaID:   n.SchemaID,
			Kind:       n.Kind,
			Params:     normalizeParams(n.Params),
			OpaqueCode: n.OpaqueCode,
		})
	}

	var normEdges []ir.IREdge
	for _, e := range wf.Edges {
		fromID, fromOK := idMap[e.FromNode]
		toID, toOK := idMap[e.ToNode]
		if fromOK && toOK {
			normEdges = append(normEdges, ir.IREdge{
				FromNode: fromID, FromPort: e.FromPort, ToNode: toID, ToPort: e.ToPort, EdgeType: e.EdgeType,
			})
		}
	}
	sort.Slice(normEdges, func(i, j int) bool {
		a, b := normEdges[i], normEdges[j]
		if a.FromNode != b.FromNode {
			return a.FromNode < b.FromNode
		}
		if a.FromPort != b.FromPort {
			return a.FromPort < b.FromPort
		}
		if a.ToNode != b.ToNode {
			return a.ToNode < b.ToNode
		}
		return a.ToPort < b.ToPort
	})
	for _, e := range normEdges {
		normalized.AddEdge(e)
	}

	return normalized
}

// Compare returns a 0.0-1.0 equivalence score between two IRs: 0.7 weight
// on node-shape similarity, 0.3 weight on edge-set Jaccard similarity.
func Compare(a, b *ir.WorkflowIR) float64 {
	normA := Normalize(a)
	normB := Normalize(b)

	if len(normA.Nodes) == 0 && len(normB.Nodes) == 0 {
		return 1.0
	}
	if len(normA.Nodes) == 0 || len(normB.Nodes) == 0 {
		return 0.0
	}

	nodeScore := compareNodes(normA.Nodes, normB.Nodes)
	edgeScore := compareEdges(normA.Edges, normB.Edges)
	return 0.7*nodeScore + 0.3*edgeScore
}

func compareNodes(a, b []ir.IRNode) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}

	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var matches float64
	for i := 0; i < minLen; i++ {
		na, nb := a[i], b[i]
		if na.Kind == nb.Kind && na.SchemaID == nb.SchemaID {
			matches += compareParams(na.Params, nb.Params)
		}
	}
	return matches / float64(maxLen)
}

func compareEdges(a, b []ir.IREdge) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}

	setA := edgeSet(a)
	setB := edgeSet(b)

	intersection := 0
	union := map[string]bool{}
	for k := range setA {
		union[k] = true
		if setB[k] {
			intersection++
		}
	}
	for k := range setB {
		union[k] = true
	}
	if len(union) == 0 {
		return 1.0
	}
	return float64(intersection) / float64(len(union))
}

func edgeSet(edges []ir.IREdge) map[string]bool {
	set := map[string]bool{}
	for _, e := range edges {
		set[fmt.Sprintf("%s|%s|%s|%s", e.FromNode, e.FromPort, e.ToNode, e.ToPort)] = true
	}
	return set
}

func compareParams(a, b map[string]ir.IRParam) float64 {
	allKeys := map[string]bool{}
	for k := range a {
		allKeys[k] = true
	}
	for k := range b {
		allKeys[k] = true
	}
	if len(allKeys) == 0 {
		return 1.0
	}

	var matches float64
	for key := range allKeys {
		pa, okA := a[key]
		pb, okB := b[key]
		if !okA || !okB {
			continue
		}
		va := normalizeValue(pa.Value)
		vb := normalizeValue(pb.Value)
		if fmt.Sprintf("%v", va) == fmt.Sprintf("%v", vb) && sameType(va, vb) {
			matches++
		} else if fmt.Sprintf("%v", va) == fmt.Sprintf("%v", vb) {
			matches += 0.8
		}
	}
	return matches / float64(len(allKeys))
}

func sameType(a, b any) bool {
	return fmt.Sprintf("%T", a) == fmt.Sprintf("%T", b)
}

func normalizeParams(params map[string]ir.IRParam) map[string]ir.IRParam {
	if params == nil {
		return nil
	}
	out := make(map[string]ir.IRParam, len(params))
	for k, p := range params {
		out[k] = ir.IRParam{Name: p.Name, Value: normalizeValue(p.Value), ParamType: p.ParamType}
	}
	return out
}

// normalizeValue coerces numeric-looking strings to numbers and otherwise
// lowercases/trims strings, so "Stand" and "stand " compare equal.
func normalizeValue(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	} else if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// topoSort runs Kahn's algorithm with a lexicographically-smallest-ID tie
// break, falling back to append order for any node left over from a cycle
// or disconnected component.
func topoSort(wf *ir.WorkflowIR) []ir.IRNode {
	outgoing := map[string][]string{}
	inDegree := map[string]int{}
	nodeByID := map[string]ir.IRNode{}

	for _, n := range wf.Nodes {
		outgoing[n.ID] = nil
		inDegree[n.ID] = 0
		nodeByID[n.ID] = n
	}
	for _, e := range wf.Edges {
		if _, ok := outgoing[e.FromNode]; !ok {
			continue
		}
		if _, ok := inDegree[e.ToNode]; !ok {
			continue
		}
		outgoing[e.FromNode] = append(outgoing[e.FromNode], e.ToNode)
		inDegree[e.ToNode]++
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	var result []ir.IRNode
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, nodeByID[id])

		targets := append([]string(nil), outgoing[id]...)
		sort.Strings(targets)
		for _, t := range targets {
			inDegree[t]--
			if inDegree[t] == 0 {
				queue = append(queue, t)
				sort.Strings(queue)
			}
		}
	}

	visited := map[string]bool{}
	for _, n := range result {
		visited[n.ID] = true
	}
	for _, n := range wf.Nodes {
		if !visited[n.ID] {
			result = append(result, n)
		}
	}

	return result
}
