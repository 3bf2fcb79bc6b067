package restapi

import (
	"fmt"

	"github.com/labstack/echo/v4/middleware"
)

func (srv *Server) configureRoutes(enableWS bool) {
	srv.echo.GET("/", srv.Health)
	srv.echo.GET("/healthz", srv.Health)
	srv.echo.GET("/status", srv.status)
	srv.echo.POST(
		"/preconfBlocks",
		srv.preconfBlocks,
		middleware.BodyLimit(fmt.Sprintf("%dB", PreconfBlocksBodyLimitBytes)),
	)

	if enableWS {
		srv.echo.GET("/ws", srv.serveWS)
	}
}
