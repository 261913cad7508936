// interfaces.go - Handler interface definitions
package api

import "github.com/labstack/echo/v4"

// MapHandler handles upload, processing and export of maps
type MapHandler interface {
	HandleUpload(c echo.Context) error
	HandleList(c echo.Context) error
	HandleDelete(c echo.Context) error
	HandleProcess(c echo.Context) error
	HandleStatus(c echo.Context) error
	HandleResult(c echo.Context) error
	HandleResultMsgpack(c echo.Context) error
	HandleFormats(c echo.Context) error
	HandleExport(c echo.Context) error
}

// HealthHandler handles health checks
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
