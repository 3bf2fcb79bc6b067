package restapi

import (
	"errors"
	"net/http"

	"github.com/taikoxyz/surge-preconf-client/driver/router"

	echo "github.com/labstack/echo/v4"
)

func (srv *Server) status(c echo.Context) error {
	status, err := srv.api.Status(c.Request().Context())
	if err != nil {
		return srv.returnError(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, status)
}

func (srv *Server) preconfBlocks(c echo.Context) error {
	req := new(PreconfBlocksRequest)
	if err := c.Bind(req); err != nil {
		return srv.returnError(c, http.StatusUnprocessableEntity, err)
	}

	if len(req.RawTxList) == 0 {
		return srv.returnError(c, http.StatusBadRequest, errors.New("require non empty raw transaction list"))
	}
	if len(req.RawTxList) > MaxCompressedTxListBytes {
		return srv.returnError(c, http.StatusBadRequest, errors.New("raw transaction list exceeds maximum compressed size"))
	}

	resp, err := srv.api.BuildPreconfBlock(c.Request().Context(), *req)
	if err != nil {
		return srv.returnError(c, srv.statusForBuildError(err), err)
	}

	return c.JSON(http.StatusOK, resp)
}

// statusForBuildError maps a driver-facing build error to the REST status
// code an operator should see: "not ready yet" conditions are a client-side
// retry signal (400), everything else is a server fault.
func (srv *Server) statusForBuildError(err error) int {
	if errors.Is(err, router.ErrPreconfIngressNotReady) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
