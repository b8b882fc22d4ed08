package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/deppfellow/tutorial-service/internal/server"
	"github.com/labstack/echo/v4"
)

// DefaultStaticDir is where the docs assets live, relative to the working
// directory.
const DefaultStaticDir = "static"

// OpenAPIHandler serves the documentation UI and the OpenAPI document.
type OpenAPIHandler struct {
	Handler
	staticDir string
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler:   NewHandler(s),
		staticDir: DefaultStaticDir,
	}
}

// openAPIServer is one entry of the document's "servers" list.
type openAPIServer struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// ServeOpenAPIUI serves static/openapi.html uncached.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")

	templateBytes, err := os.ReadFile(filepath.Join(h.staticDir, "openapi.html"))
	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	if err := c.HTML(http.StatusOK, string(templateBytes)); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}

	return nil
}

// ServeOpenAPIDocument serves static/openapi.json with its "servers" replaced
// by openapi.dev_url and openapi.prod_url.
func (h *OpenAPIHandler) ServeOpenAPIDocument(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")

	raw, err := os.ReadFile(filepath.Join(h.staticDir, "openapi.json"))
	if err != nil {
		return fmt.Errorf("failed to read OpenAPI document: %w", err)
	}

	var document map[string]interface{}
	if err := json.Unmarshal(raw, &document); err != nil {
		return fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}

	if servers := h.servers(); len(servers) > 0 {
		document["servers"] = servers
	}

	return c.JSON(http.StatusOK, document)
}

func (h *OpenAPIHandler) servers() []openAPIServer {
	cfg := h.server.Config.OpenAPI

	var servers []openAPIServer
	if cfg.DevURL != "" {
		servers = append(servers, openAPIServer{URL: cfg.DevURL, Description: "Server URL in Development environment"})
	}
	if cfg.ProdURL != "" {
		servers = append(servers, openAPIServer{URL: cfg.ProdURL, Description: "Server URL in Production environment"})
	}
	return servers
}
