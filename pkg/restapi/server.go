// Package restapi exposes the operator-facing REST/WS surface over the
// running preconfirmation driver: `/status`, `/healthz`, `POST
// /preconfBlocks`, and an optional `/ws` end-of-sequencing feed. Transport
// details (routing, JWT, body limits) live entirely here; the driver's core
// logic is reached only through the restapi.API interface.
package restapi

import (
	"context"
	"net/http"
	"os"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/patrickmn/go-cache"

	echo "github.com/labstack/echo/v4"
)

// MaxCompressedTxListBytes bounds a single tx list's compressed size,
// matching the whitelist driver's importer limit (six blobs' worth).
const MaxCompressedTxListBytes = 131_072 * 6

// PreconfBlocksBodyLimitBytes accounts for JSON hex-encoding doubling the
// wire size of the tx list, plus headroom for the rest of the envelope.
const PreconfBlocksBodyLimitBytes = MaxCompressedTxListBytes*2 + 64*1024

// Server is the operator REST/WS server.
type Server struct {
	api   API
	echo  *echo.Echo
	cache *cache.Cache
}

// NewServerOpts configures a Server.
type NewServerOpts struct {
	API         API
	Echo        *echo.Echo
	CorsOrigins []string
	// JWTSecret, if non-empty, requires `Authorization: Bearer <jwt>` on
	// every route except the paths LogSkipper skips (/healthz, /metrics),
	// verified with HS256 signature only (no exp/nbf checks).
	JWTSecret []byte
	// EnableWS exposes GET /ws for end-of-sequencing notifications.
	EnableWS bool
}

func (opts NewServerOpts) Validate() error {
	if opts.Echo == nil {
		return ErrNoHTTPFramework
	}
	if opts.API == nil {
		return ErrNoAPI
	}
	return nil
}

// NewServer builds a Server and wires its middleware and routes.
func NewServer(opts NewServerOpts) (*Server, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	srv := &Server{
		api:   opts.API,
		echo:  opts.Echo,
		cache: cache.New(5*time.Minute, 10*time.Minute),
	}

	corsOrigins := opts.CorsOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"*"}
	}

	srv.configureMiddleware(corsOrigins, opts.JWTSecret)
	srv.configureRoutes(opts.EnableWS)

	return srv, nil
}

// Start starts the HTTP server.
func (srv *Server) Start(address string) error {
	return srv.echo.Start(address)
}

// Shutdown shuts down the HTTP server.
func (srv *Server) Shutdown(ctx context.Context) error {
	return srv.echo.Shutdown(ctx)
}

// ServeHTTP implements the `http.Handler` interface which serves HTTP requests.
func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	srv.echo.ServeHTTP(w, r)
}

// Health responds to liveness/readiness probes.
func (srv *Server) Health(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (srv *Server) returnError(c echo.Context, statusCode int, err error) error {
	return c.JSON(statusCode, map[string]string{"error": err.Error()})
}

func LogSkipper(c echo.Context) bool {
	switch c.Request().URL.Path {
	case "/healthz":
		return true
	case "/metrics":
		return true
	default:
		return false
	}
}

func (srv *Server) configureMiddleware(corsOrigins []string, jwtSecret []byte) {
	srv.echo.Use(middleware.RequestID())

	srv.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: LogSkipper,
		Format: `{"time":"${time_rfc3339_nano}","level":"INFO","message":{"id":"${id}","remote_ip":"${remote_ip}",` + //nolint:lll
			`"host":"${host}","method":"${method}","uri":"${uri}","user_agent":"${user_agent}",` + //nolint:lll
			`"response_status":${status},"error":"${error}","latency":${latency},"latency_human":"${latency_human}",` +
			`"bytes_in":${bytes_in},"bytes_out":${bytes_out}}}` + "\n",
		Output: os.Stdout,
	}))

	srv.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: corsOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost},
	}))

	if len(jwtSecret) > 0 {
		srv.echo.Use(echojwt.WithConfig(echojwt.Config{
			SigningKey:    jwtSecret,
			SigningMethod: "HS256",
			Skipper:       LogSkipper,
		}))
	}
}
