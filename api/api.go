package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/chadlanoway/Bottle-of-Rhumb/api/model"
	"github.com/chadlanoway/Bottle-of-Rhumb/hexgrid"
	"github.com/chadlanoway/Bottle-of-Rhumb/land"
	"github.com/chadlanoway/Bottle-of-Rhumb/latlon"
	"github.com/chadlanoway/Bottle-of-Rhumb/route"
	"github.com/chadlanoway/Bottle-of-Rhumb/xmpp"
)

type server struct {
	store   *land.Store
	grid    hexgrid.H3Grid
	x       *xmpp.Xmpp
	timeout time.Duration
}

func InitServer(store *land.Store, x *xmpp.Xmpp, timeout time.Duration) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)

	s := server{
		store:   store,
		x:       x,
		timeout: timeout,
	}

	api := router.PathPrefix("/").Subrouter()
	api.HandleFunc("/nav/-/healthz", s.healthz).Methods(http.MethodGet)

	apiV1 := router.PathPrefix("/route/api/v1").Subrouter()
	apiV1.HandleFunc("/route", s.route).Methods("POST")
	apiV1.HandleFunc("/calibration/{res}", s.calibration).Methods("GET")
	apiV1.HandleFunc("/land/{res}/{lat}/{lon}", s.land).Methods("GET")

	return router
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	type health struct {
		Status string `json:"status"`
	}

	json.NewEncoder(w).Encode(health{Status: "Ok"})
}

func (s *server) route(w http.ResponseWriter, req *http.Request) {
	fields := log.Fields{
		"action": "route",
	}
	if ip, err := getIp(req); err == nil {
		fields["IP"] = ip
	}
	requestLogger := log.WithFields(fields)

	var r model.Route
	if err := json.NewDecoder(req.Body).Decode(&r); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", route.ErrInvalidInput, err))
		return
	}

	waypoints, err := parseWaypoints(r.Waypoints)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	params, overrides, err := parseParams(r.Params)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	fine, macro, err := s.oracles(params, overrides)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	requestLogger.Infof("Route of %d waypoints at res %d, dilation %d", len(waypoints), fine.Resolution(), params.Dilation)

	ctx, cancel := context.WithTimeout(req.Context(), s.timeout)
	defer cancel()

	start := time.Now()
	result, err := route.Run(ctx, s.grid, fine, macro, waypoints, params, s.x)
	if err != nil {
		requestLogger.Warnf("Route failed after %s: %v", time.Since(start), err)
		writeError(w, errStatus(err), err)
		return
	}

	requestLogger.Infof("Route took %s (%d points)", time.Since(start), len(result.Path))

	json.NewEncoder(w).Encode(toPath(result))
}

// calibration reports how the mask polarity resolves at a resolution,
// mainly to diagnose ambiguous masks.
func (s *server) calibration(w http.ResponseWriter, req *http.Request) {
	res, err := strconv.Atoi(mux.Vars(req)["res"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	o, err := land.NewOracle(s.store.Mask(), s.grid, land.Config{Resolution: res})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	json.NewEncoder(w).Encode(o.Calibration())
}

// land probes a single point against the dilated oracle, for map debugging.
func (s *server) land(w http.ResponseWriter, req *http.Request) {
	res, err := strconv.Atoi(mux.Vars(req)["res"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	lat, err := strconv.ParseFloat(mux.Vars(req)["lat"], 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	lon, err := strconv.ParseFloat(mux.Vars(req)["lon"], 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	dilation := 0
	if d := req.URL.Query().Get("dilation"); d != "" {
		if dilation, err = strconv.Atoi(d); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	}

	o, err := land.NewOracle(s.store.Mask(), s.grid, land.Config{Resolution: res, Dilation: dilation})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	type result struct {
		Cell    string `json:"cell"`
		Blocked bool   `json:"blocked"`
	}
	cell := s.grid.CellAt(latlon.LatLon{Lat: lat, Lon: lon}, res)
	json.NewEncoder(w).Encode(result{
		Cell:    hexgrid.CellToString(cell),
		Blocked: o.IsBlocked(cell),
	})
}

// oracles builds the fine and macro terrain for one request. The macro
// oracle is optional: a mask built only for the fine resolution simply
// disables the skeleton tier. Its slot is typed as the Terrain interface so
// that "unavailable" is a true nil, not a typed-nil oracle pointer hiding
// inside a non-nil interface.
func (s *server) oracles(params route.Params, overrides map[hexgrid.Cell]bool) (fine *land.Oracle, macro route.Terrain, err error) {
	mask := s.store.Mask()

	fine, err = land.NewOracle(mask, s.grid, land.Config{
		Resolution: params.Resolution,
		Dilation:   params.Dilation,
		Overrides:  overrides,
	})
	if err != nil {
		return nil, nil, err
	}

	m, err := land.NewOracle(mask, s.grid, land.Config{
		Resolution: params.MacroResolution,
		Overrides:  overrides,
	})
	if err != nil {
		log.Debugf("No macro oracle at res %d: %v", params.MacroResolution, err)
		return fine, nil, nil
	}
	return fine, m, nil
}

func parseWaypoints(raw [][]float64) ([]latlon.LatLon, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 waypoints, got %d", route.ErrInvalidInput, len(raw))
	}
	waypoints := make([]latlon.LatLon, len(raw))
	for i, pair := range raw {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: waypoint %d has %d coordinates", route.ErrInvalidInput, i, len(pair))
		}
		lng, lat := pair[0], pair[1]
		if lat < -90 || lat > 90 {
			return nil, fmt.Errorf("%w: waypoint %d latitude %f out of range", route.ErrInvalidInput, i, lat)
		}
		waypoints[i] = latlon.LatLon{Lat: lat, Lon: latlon.NormalizeLon(lng)}
	}
	return waypoints, nil
}

func parseParams(p model.Params) (route.Params, map[hexgrid.Cell]bool, error) {
	params := route.Params{
		Resolution:      p.Resolution,
		MacroResolution: p.MacroResolution,
		Dilation:        p.Dilation,
		SampleSpacing:   p.SampleSpacing,
		CorridorStep:    p.CorridorStep,
		CorridorPadding: p.CorridorPadding,
		MaxExpansions:   p.MaxExpansions,
	}.WithDefaults()

	var overrides map[hexgrid.Cell]bool
	if len(p.LandOverrides) > 0 {
		overrides = make(map[hexgrid.Cell]bool, len(p.LandOverrides))
		for _, s := range p.LandOverrides {
			cell, ok := hexgrid.CellFromString(s)
			if !ok {
				return route.Params{}, nil, fmt.Errorf("%w: bad override cell '%s'", route.ErrInvalidInput, s)
			}
			overrides[cell] = true
		}
	}
	return params, overrides, nil
}

func toPath(result *route.Result) model.Path {
	path := model.Path{
		Type:        "LineString",
		Coordinates: make([][]float64, len(result.Path)),
		Summary:     result.Summary,
	}
	for i, p := range result.Path {
		path.Coordinates[i] = []float64{p.Lon, p.Lat}
	}
	for _, d := range result.DockLegs {
		path.DockLegs = append(path.DockLegs, model.DockLeg{
			Waypoint: d.Waypoint,
			From:     []float64{d.From.Lon, d.From.Lat},
			To:       []float64{d.To.Lon, d.To.Lat},
		})
	}
	return path
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, route.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, land.ErrMaskNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, route.ErrNoPathFound), errors.Is(err, route.ErrNoWaterNodeNear):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.Error{Error: err.Error()})
}

func getIp(r *http.Request) (string, error) {
	//Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}

	//Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		netIP := net.ParseIP(ip)
		if netIP != nil {
			return ip, nil
		}
	}

	//Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}
	return "", fmt.Errorf("No valid ip found")
}
