package handlers

import (
	"net/http"

	"github.com/getmentor/mentor-finder/internal/mcp"
	"github.com/getmentor/mentor-finder/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MCPHandler handles MCP (Model Context Protocol) requests
type MCPHandler struct {
	server *mcp.Server
}

func NewMCPHandler(server *mcp.Server) *MCPHandler {
	return &MCPHandler{server: server}
}

// HandleMCP handles incoming MCP JSON-RPC requests
func (h *MCPHandler) HandleMCP(c *gin.Context) {
	var req mcp.Request

	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("MCP invalid request format",
			zap.Error(err),
			zap.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusBadRequest, mcp.Response{
			JSONRPC: "2.0",
			Error: &mcp.RPCError{
				Code:    mcp.ParseError,
				Message: "Failed to parse JSON-RPC request",
			},
		})
		return
	}

	logger.Debug("MCP request received",
		zap.String("method", req.Method),
		zap.Any("id", req.ID),
	)

	response := h.server.HandleRequest(c.Request.Context(), viewerFrom(c), req)

	statusCode := http.StatusOK
	if response.Error != nil {
		switch response.Error.Code {
		case mcp.InvalidRequest, mcp.InvalidParams:
			statusCode = http.StatusBadRequest
		case mcp.MethodNotFound:
			statusCode = http.StatusNotFound
		default:
			statusCode = http.StatusInternalServerError
		}

		logger.Warn("MCP request error",
			zap.String("method", req.Method),
			zap.Int("error_code", response.Error.Code),
			zap.String("error_message", response.Error.Message),
		)
	}

	c.JSON(statusCode, response)
}
