// Package api exposes the simulation kernel over HTTP: REST control and
// read endpoints plus a websocket playback feed. The kernel itself is
// single-threaded, so every handler serializes through one mutex.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/terminal-sim/terminal-sim/sim"
	"github.com/terminal-sim/terminal-sim/sim/trace"
)

// Server wires HTTP handlers to one engine instance.
type Server struct {
	mu     sync.Mutex
	engine *sim.Engine

	hub *wsHub
}

// New constructs the HTTP router wired to the engine.
func New(engine *sim.Engine) *Server {
	return &Server{engine: engine, hub: newWSHub()}
}

// Handler returns the chi router for the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/state", s.handleState)
	r.Get("/flights", s.handleFlights)
	r.Get("/history", s.handleHistory)
	r.Get("/arrivals", s.handleArrivals)

	r.Post("/step", s.handleStep)
	r.Post("/run-all", s.handleRunAll)
	r.Post("/rewind", s.handleRewind)
	r.Post("/fast-forward", s.handleFastForward)
	r.Post("/goto/{interval}", s.handleGoTo)

	r.Get("/ws", s.handleWS)

	return r
}

// stateView is the /state payload: playback position plus live occupancy.
type stateView struct {
	CurrentInterval    int   `json:"current_interval"`
	TotalIntervals     int   `json:"total_intervals"`
	MaxComputed        int   `json:"max_computed_interval"`
	CanRewind          bool  `json:"can_rewind"`
	CanFastForward     bool  `json:"can_fast_forward"`
	IntervalSeconds    int   `json:"interval_seconds"`
	TicketQueueSizes   []int `json:"ticket_queue_sizes"`
	CheckpointSizes    []int `json:"checkpoint_queue_sizes"`
	HoldRoomSizes      []int `json:"hold_room_sizes"`
	ServiceEndAbs      []int `json:"checkpoint_service_end_abs"`
	TicketQueuedTotal  int   `json:"ticket_queued_total"`
	CheckpointTotal    int   `json:"checkpoint_queued_total"`
	HoldRoomTotal      int   `json:"hold_room_total"`
}

func (s *Server) stateLocked() stateView {
	e := s.engine
	k := e.CurrentInterval()

	sizes := func(lines [][]*sim.Passenger) []int {
		out := make([]int, len(lines))
		for i, line := range lines {
			out[i] = len(line)
		}
		return out
	}

	return stateView{
		CurrentInterval:   k,
		TotalIntervals:    e.TotalIntervals(),
		MaxComputed:       e.MaxComputedInterval(),
		CanRewind:         e.CanRewind(),
		CanFastForward:    e.CanFastForward(),
		IntervalSeconds:   e.IntervalSeconds(),
		TicketQueueSizes:  sizes(e.TicketLines()),
		CheckpointSizes:   sizes(e.CheckpointLines()),
		HoldRoomSizes:     sizes(e.HoldRoomLines()),
		ServiceEndAbs:     e.CheckpointServiceEndAbs(),
		TicketQueuedTotal: e.TicketQueuedAtInterval(k),
		CheckpointTotal:   e.CheckpointQueuedAtInterval(k),
		HoldRoomTotal:     e.HoldRoomTotalAtInterval(k),
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	view := s.stateLocked()
	s.mu.Unlock()
	writeJSON(w, view)
}

// flightView is one /flights entry.
type flightView struct {
	Number          string `json:"number"`
	DepartureMinute int    `json:"departure_minute"`
	Seats           int    `json:"seats"`
	FillPercent     float64 `json:"fill_percent"`
	Shape           string `json:"shape"`
	Planned         int    `json:"planned"`
	ChosenHoldRoom  int    `json:"chosen_hold_room"`
	Spawned         int    `json:"spawned"`
	InHoldRoom      int    `json:"in_hold_room"`
	Departed        int    `json:"departed"`
	Missed          int    `json:"missed"`
}

func (s *Server) handleFlights(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	outcomes := s.engine.FlightOutcomes()
	views := make([]flightView, 0, len(outcomes))
	for _, o := range outcomes {
		views = append(views, flightView{
			Number:          o.Flight.Number,
			DepartureMinute: o.Flight.DepartureMinute,
			Seats:           o.Flight.Seats,
			FillPercent:     o.Flight.FillPercent,
			Shape:           string(o.Flight.Shape),
			Planned:         o.Planned,
			ChosenHoldRoom:  s.engine.ChosenHoldRoom(o.Flight),
			Spawned:         o.Spawned,
			InHoldRoom:      o.InHoldRoom,
			Departed:        o.Departed,
			Missed:          o.MissedPurged,
		})
	}
	s.mu.Unlock()
	writeJSON(w, views)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	records := make([]trace.IntervalRecord, 0, s.engine.RecordedIntervals())
	for k := 0; k < s.engine.RecordedIntervals(); k++ {
		records = append(records, s.engine.IntervalRecordAt(k))
	}
	s.mu.Unlock()
	writeJSON(w, records)
}

func (s *Server) handleArrivals(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make(map[string][]int)
	for _, f := range s.engine.Flights() {
		out[f.Number] = s.engine.ArrivalTable(f)
	}
	s.mu.Unlock()
	writeJSON(w, out)
}

// Control endpoints. Every mutation answers with the new state and pushes a
// frame to websocket subscribers.

func (s *Server) mutate(w http.ResponseWriter, op func(e *sim.Engine)) {
	s.mu.Lock()
	op(s.engine)
	view := s.stateLocked()
	frame := s.playbackFrameLocked()
	s.mu.Unlock()

	s.hub.broadcast(frame)
	writeJSON(w, view)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, func(e *sim.Engine) { e.ComputeNextInterval() })
}

func (s *Server) handleRunAll(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, func(e *sim.Engine) { e.RunAllIntervals() })
}

func (s *Server) handleRewind(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, func(e *sim.Engine) { e.RewindOneInterval() })
}

func (s *Server) handleFastForward(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, func(e *sim.Engine) { e.FastForwardOneInterval() })
}

func (s *Server) handleGoTo(w http.ResponseWriter, r *http.Request) {
	k, err := strconv.Atoi(chi.URLParam(r, "interval"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "interval must be an integer")
		return
	}
	s.mutate(w, func(e *sim.Engine) { e.GoToInterval(k) })
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
