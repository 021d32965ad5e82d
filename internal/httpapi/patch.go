package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/unitport/compiler/internal/lowering/canvastoir"
)

// patchOp is a single JSON-path write against a canvas graph document, used
// by the editor to autosave a field edit (drag a node, rename a variable)
// without re-sending the whole graph.
type patchOp struct {
	Path  string `json:"path" binding:"required"`
	Value any    `json:"value"`
}

type canvasPatchRequest struct {
	Graph     string    `json:"graph" binding:"required"` // raw canvas JSON document
	Ops       []patchOp `json:"ops" binding:"required"`
	RobotType string    `json:"robot_type"`
}

// handleCanvasPatch applies a batch of path/value writes to a raw canvas
// JSON document, then recompiles it through the normal canvas-to-IR path.
// Using gjson/sjson here avoids unmarshalling into CanvasGraph and back just
// to change one field, which matters for an editor issuing one patch per
// drag event.
func (s *Server) handleCanvasPatch(c *gin.Context) {
	var req canvasPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc := req.Graph
	for _, op := range req.Ops {
		if !gjson.Get(doc, op.Path).Exists() {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown path %q", op.Path)})
			return
		}
		updated, err := sjson.Set(doc, op.Path, op.Value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		doc = updated
	}

	var graph canvastoir.CanvasGraph
	if err := json.Unmarshal([]byte(doc), &graph); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := CompileCanvas(graph, req.RobotType)
	c.JSON(http.StatusOK, gin.H{"graph": doc, "compiled": result})
}
