// Package server implements the MCP (Model Context Protocol) server for map
// georeferencing.
//
// This package provides a JSON-RPC 2.0 server that exposes the analysis and
// georeferencing pipeline through the MCP protocol, so an MCP client can
// load a scanned map, detect its features and place it on the ground.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Map records:
//   - map_load: Register a map file and get its metadata
//   - map_list: List registered maps
//
// Pipeline:
//   - map_analyze: Detect features and text on a map
//   - map_georeference: Estimate the pixel-to-ground transform
//   - map_process: Run both stages as a background job
//   - map_status: Poll job progress
//   - map_result: Fetch the results of a processed map
//
// Export and measurement:
//   - map_formats: List available export formats
//   - map_export: Write GeoJSON, annotated PNG, or PNG with world file
//   - map_measure_distance: Ground distance between two pixels
//
// Inspection:
//   - map_edge_detect: Preview the edge map the detectors use
//   - map_sample_color: Sample a pixel against the water and green ranges
//
// # Map Records
//
// map_load registers the file in an in-memory store and returns its id.
// Records move from uploaded to processing to completed or failed; results
// live for the lifetime of the server process. Decoded images are cached by
// path.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	cfg, _ := config.FromEnv()
//	p := pipeline.New(cfg, engine, geocoder, transformer)
//	if err := server.New(cfg, p).Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
