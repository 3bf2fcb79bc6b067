package restapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	status     Status
	statusErr  error
	buildResp  PreconfBlocksResponse
	buildErr   error
}

func (m *mockAPI) Status(ctx context.Context) (Status, error) { return m.status, m.statusErr }

func (m *mockAPI) BuildPreconfBlock(ctx context.Context, req PreconfBlocksRequest) (PreconfBlocksResponse, error) {
	return m.buildResp, m.buildErr
}

func (m *mockAPI) SubscribeEndOfSequencing() (<-chan EndOfSequencingNotification, func()) {
	ch := make(chan EndOfSequencingNotification)
	return ch, func() { close(ch) }
}

func newTestServer(t *testing.T, api API) *Server {
	t.Helper()
	srv, err := NewServer(NewServerOpts{API: api, Echo: echo.New()})
	require.NoError(t, err)
	return srv
}

func TestNewServerRequiresEcho(t *testing.T) {
	_, err := NewServer(NewServerOpts{API: &mockAPI{}})
	assert.ErrorIs(t, err, ErrNoHTTPFramework)
}

func TestNewServerRequiresAPI(t *testing.T) {
	_, err := NewServer(NewServerOpts{Echo: echo.New()})
	assert.ErrorIs(t, err, ErrNoAPI)
}

func TestHealthzReturnsOK(t *testing.T) {
	srv := newTestServer(t, &mockAPI{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusReturnsAPIValue(t *testing.T) {
	srv := newTestServer(t, &mockAPI{status: Status{TotalCached: 3}})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalCached":3`)
}

func TestPreconfBlocksRejectsEmptyTxList(t *testing.T) {
	srv := newTestServer(t, &mockAPI{})

	req := httptest.NewRequest(http.MethodPost, "/preconfBlocks", bytes.NewReader([]byte(`{"blockNumber":1}`)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreconfBlocksHappyPath(t *testing.T) {
	header := &types.Header{Number: common.Big1}
	srv := newTestServer(t, &mockAPI{buildResp: PreconfBlocksResponse{BlockHeader: header}})

	body := `{"blockNumber":1,"rawTxList":"AQID"}`
	req := httptest.NewRequest(http.MethodPost, "/preconfBlocks", bytes.NewReader([]byte(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
