package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/unitport/compiler/internal/adapter"
	"github.com/unitport/compiler/internal/ir"
	"github.com/unitport/compiler/internal/lowering/canvastoir"
	"github.com/unitport/compiler/internal/runtime"
	"github.com/unitport/compiler/internal/storage"
)

// Server wires the compiler pipeline, the runtime engine, and persistence
// into a gin router.
type Server struct {
	router  *gin.Engine
	engine  *runtime.Engine
	store   storage.Store
	hub     *Hub
	auth    *JWTAuth
	adapter adapter.RobotAdapter // optional; nil means simulation-only
}

func NewServer(store storage.Store, auth *JWTAuth, ad adapter.RobotAdapter) *Server {
	s := &Server{
		router:  gin.New(),
		engine:  runtime.NewEngine(),
		store:   store,
		hub:     NewHub(),
		auth:    auth,
		adapter: ad,
	}
	s.router.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() {
	v1 := s.router.Group("/v1")
	v1.Use(s.auth.middleware())

	v1.POST("/compile", s.handleCompile)
	v1.POST("/validate", s.handleValidate)
	v1.POST("/codegen", s.handleCodegen)
	v1.POST("/canvas-to-ir", s.handleCanvasToIR)
	v1.POST("/canvas-patch", s.handleCanvasPatch)
	v1.POST("/ir-to-canvas", s.handleIRToCanvas)
	v1.POST("/missions/:hash/execute", s.handleExecute)
	v1.GET("/executions/:id/stream", s.handleStream)

	s.router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
}

type sourceRequest struct {
	Source    string `json:"source" binding:"required"`
	RobotType string `json:"robot_type"`
}

func (s *Server) handleCompile(c *gin.Context) {
	var req sourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result := CompileSource(c.Request.Context(), req.Source, req.RobotType)
	if result.Mission != nil {
		hash, err := storage.Hash(result.Mission)
		if err == nil {
			rec := &storage.MissionRecord{ID: newMissionID(), Hash: hash, Mission: result.Mission, Diags: result.Diags}
			_ = s.store.SaveMission(c.Request.Context(), rec)
		}
	}
	c.JSON(http.StatusOK, result)
}

type missionRequest struct {
	Mission *ir.WorkflowIR `json:"mission" binding:"required"`
}

func (s *Server) handleValidate(c *gin.Context) {
	var req missionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"diagnostics": ValidateMission(req.Mission)})
}

func (s *Server) handleCodegen(c *gin.Context) {
	var req missionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GenerateCode(req.Mission))
}

func (s *Server) handleIRToCanvas(c *gin.Context) {
	var req missionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GenerateCanvas(req.Mission))
}

type canvasRequest struct {
	Graph     canvastoir.CanvasGraph `json:"graph" binding:"required"`
	RobotType string                 `json:"robot_type"`
}

func (s *Server) handleCanvasToIR(c *gin.Context) {
	var req canvasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, CompileCanvas(req.Graph, req.RobotType))
}

type executeRequest struct {
	Mission  *ir.WorkflowIR  `json:"mission" binding:"required"`
	Scenario runtime.Scenario `json:"scenario"`
}

func (s *Server) handleExecute(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result := s.engine.Run(c.Request.Context(), req.Mission, req.Scenario, s.adapter)
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleStream(c *gin.Context) {
	taskID := c.Param("id")
	s.hub.serveStream(c.Writer, c.Request, taskID)
}
