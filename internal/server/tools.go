package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func integerProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

// mapRefProps are shared by tools that accept either a registered map id or
// a file path.
func mapRefProps() map[string]interface{} {
	return map[string]interface{}{
		"id":   stringProp("Map id returned by map_load"),
		"path": stringProp("Absolute path to a map image or PDF (used when id is not given)"),
	}
}

func withProps(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Map records
		{
			Name:        "map_load",
			Description: "Load a scanned map (PNG, JPEG, TIFF, BMP, GIF or PDF) and register it for processing. Returns the map id and image metadata.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp("Absolute path to the map file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "map_list",
			Description: "List every registered map with its processing status.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Pipeline stages
		{
			Name:        "map_analyze",
			Description: "Detect the scale bar, legend, roads, water, buildings, green areas and text labels of a map. Returns the analysis result with every element in pixel coordinates.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": mapRefProps(),
			},
		},
		{
			Name:        "map_georeference",
			Description: "Estimate the pixel-to-geographic transform of a map from geocoded text labels. Falls back to the configured extent when fewer than four control points resolve.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProps(mapRefProps(), map[string]interface{}{
					"target_crs": stringProp("CRS of the returned bounds, e.g. EPSG:4326 (default from configuration)"),
				}),
			},
		},
		{
			Name:        "map_process",
			Description: "Run analysis and georeferencing on a loaded map as a background job. Poll map_status for progress and fetch the outcome with map_result.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id":         stringProp("Map id returned by map_load"),
					"target_crs": stringProp("CRS of the returned bounds (default from configuration)"),
					"enable_ai_analysis": map[string]interface{}{
						"type":        "boolean",
						"description": "Run feature analysis. Default true",
						"default":     true,
					},
					"enable_georeferencing": map[string]interface{}{
						"type":        "boolean",
						"description": "Run georeferencing (requires analysis). Default true",
						"default":     true,
					},
					"wait": map[string]interface{}{
						"type":        "boolean",
						"description": "Block until processing finishes. Default false",
						"default":     false,
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "map_status",
			Description: "Report the processing status, progress percentage and current step of a map.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": stringProp("Map id returned by map_load"),
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "map_result",
			Description: "Return the analysis and georeference results of a processed map.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": stringProp("Map id returned by map_load"),
				},
				"required": []string{"id"},
			},
		},

		// Export
		{
			Name:        "map_formats",
			Description: "List the export formats available for a processed map.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": stringProp("Map id returned by map_load"),
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "map_export",
			Description: "Export a processed map as GeoJSON features, an annotated PNG, or a PNG with world file and CRS sidecar.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": stringProp("Map id returned by map_load"),
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"geojson", "png", "world"},
						"description": "Export format",
					},
					"include_metadata": map[string]interface{}{
						"type":        "boolean",
						"description": "Add the processing summary to GeoJSON output. Default true",
						"default":     true,
					},
				},
				"required": []string{"id", "format"},
			},
		},

		// Measurement
		{
			Name:        "map_measure_distance",
			Description: "Measure the ground distance between two pixels of a georeferenced map. Geographic CRSs report meters along the great circle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": stringProp("Map id of a processed, georeferenced map"),
					"x1": integerProp("First point X"),
					"y1": integerProp("First point Y"),
					"x2": integerProp("Second point X"),
					"y2": integerProp("Second point Y"),
				},
				"required": []string{"id", "x1", "y1", "x2", "y2"},
			},
		},

		// Inspection
		{
			Name:        "map_edge_detect",
			Description: "Render the Canny edge map the scale, road and building detectors work on, as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProps(mapRefProps(), map[string]interface{}{
					"threshold_low": map[string]interface{}{
						"type":        "number",
						"description": "Hysteresis low threshold (default from configuration, 50)",
					},
					"threshold_high": map[string]interface{}{
						"type":        "number",
						"description": "Hysteresis high threshold (default from configuration, 150)",
					},
				}),
			},
		},
		{
			Name:        "map_sample_color",
			Description: "Get the color at a pixel in RGB, hex and OpenCV HSV units, and report whether it falls in the water or green area range.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProps(mapRefProps(), map[string]interface{}{
					"x": integerProp("X coordinate (0-based)"),
					"y": integerProp("Y coordinate (0-based)"),
				}),
				"required": []string{"x", "y"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
