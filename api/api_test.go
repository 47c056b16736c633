package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chadlanoway/Bottle-of-Rhumb/api/model"
	"github.com/chadlanoway/Bottle-of-Rhumb/hexgrid"
	"github.com/chadlanoway/Bottle-of-Rhumb/land"
	"github.com/chadlanoway/Bottle-of-Rhumb/latlon"
)

const testRes = 5

// testRouter serves a synthetic mask: one island at (0, -30) plus a
// continental-interior patch so calibration resolves to LAND mode.
func testRouter(t *testing.T) *mux.Router {
	t.Helper()
	grid := hexgrid.H3Grid{}
	island := latlon.LatLon{Lat: 0.0, Lon: -30.0}
	cells := grid.Disk(grid.CellAt(island, testRes), 6)
	cells = append(cells, grid.Disk(grid.CellAt(land.DefaultProbes.Interior, testRes), 3)...)

	store := land.NewStore("")
	store.SetMask(land.NewMask(cells, 1e-6))
	return InitServer(store, nil, 30*time.Second)
}

func postRoute(t *testing.T, router *mux.Router, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/route/api/v1/route", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/nav/-/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"Ok"}`, w.Body.String())
}

func TestRouteOpenOcean(t *testing.T) {
	router := testRouter(t)
	w := postRoute(t, router, model.Route{
		Waypoints: [][]float64{{-140.0, -35.0}, {-139.7, -35.3}},
		Params:    model.Params{Resolution: testRes},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var path model.Path
	require.NoError(t, json.NewDecoder(w.Body).Decode(&path))
	assert.Equal(t, "LineString", path.Type)
	require.GreaterOrEqual(t, len(path.Coordinates), 2)
	assert.InDelta(t, -140.0, path.Coordinates[0][0], 1e-9)
	assert.InDelta(t, -35.0, path.Coordinates[0][1], 1e-9)
	assert.Equal(t, 1, path.Summary.Tiers["chord"])
	assert.Empty(t, path.DockLegs)
}

func TestRouteAroundIsland(t *testing.T) {
	router := testRouter(t)
	w := postRoute(t, router, model.Route{
		Waypoints: [][]float64{{-30.0, 1.5}, {-30.0, -1.5}},
		Params:    model.Params{Resolution: testRes},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var path model.Path
	require.NoError(t, json.NewDecoder(w.Body).Decode(&path))
	assert.Equal(t, 1, path.Summary.Tiers["fine"])
	assert.Greater(t, path.Summary.Distance, 333e3)
}

func TestRouteUnservedMacroResolution(t *testing.T) {
	// the fixture mask only serves the fine resolution, so no macro oracle
	// can be built; with the expansion cap too small for the fine tier the
	// leg must fall through to the detour tier instead of dying in between
	router := testRouter(t)
	w := postRoute(t, router, model.Route{
		Waypoints: [][]float64{{-30.0, 1.5}, {-30.0, -1.5}},
		Params:    model.Params{Resolution: testRes, MaxExpansions: 10},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var path model.Path
	require.NoError(t, json.NewDecoder(w.Body).Decode(&path))
	assert.Equal(t, 1, path.Summary.Tiers["detour"])
}

func TestRouteTooFewWaypoints(t *testing.T) {
	router := testRouter(t)
	w := postRoute(t, router, model.Route{
		Waypoints: [][]float64{{-140.0, -35.0}},
		Params:    model.Params{Resolution: testRes},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var e model.Error
	require.NoError(t, json.NewDecoder(w.Body).Decode(&e))
	assert.NotEmpty(t, e.Error)
}

func TestRouteBadJSON(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/route/api/v1/route", bytes.NewBufferString("{nope"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouteBadLatitude(t *testing.T) {
	router := testRouter(t)
	w := postRoute(t, router, model.Route{
		Waypoints: [][]float64{{-140.0, -95.0}, {-139.7, -35.3}},
		Params:    model.Params{Resolution: testRes},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouteBadOverrideCell(t *testing.T) {
	router := testRouter(t)
	w := postRoute(t, router, model.Route{
		Waypoints: [][]float64{{-140.0, -35.0}, {-139.7, -35.3}},
		Params:    model.Params{Resolution: testRes, LandOverrides: []string{"not-a-cell"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouteMaskNotReady(t *testing.T) {
	router := InitServer(land.NewStore("/nonexistent/mask.bin"), nil, time.Second)
	w := postRoute(t, router, model.Route{
		Waypoints: [][]float64{{-140.0, -35.0}, {-139.7, -35.3}},
		Params:    model.Params{Resolution: testRes},
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouteUnservedResolution(t *testing.T) {
	router := testRouter(t)
	w := postRoute(t, router, model.Route{
		Waypoints: [][]float64{{-140.0, -35.0}, {-139.7, -35.3}},
		Params:    model.Params{Resolution: 9},
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCalibrationEndpoint(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/route/api/v1/calibration/5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var cal land.Calibration
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cal))
	assert.Equal(t, "LAND", cal.ModeName)
	assert.True(t, cal.InteriorHit)
	assert.False(t, cal.OceanHit)
	assert.False(t, cal.Ambiguous)
}

func TestLandEndpoint(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/route/api/v1/land/5/0.0/-30.0", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var probe struct {
		Cell    string `json:"cell"`
		Blocked bool   `json:"blocked"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&probe))
	assert.True(t, probe.Blocked)
	assert.NotEmpty(t, probe.Cell)

	req = httptest.NewRequest(http.MethodGet, "/route/api/v1/land/5/-20.0/-100.0", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&probe))
	assert.False(t, probe.Blocked)
}
