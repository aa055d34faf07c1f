// Package internal exposes the side-channel read endpoints. They are
// plain HTTP lookups with no state-mutation semantics; the websocket
// protocol is the only write path.
package internal

import (
	"encoding/json"
	"log/slog"
	"net/http"
	goruntime "runtime"

	"github.com/samber/lo"

	"chat-relay/domain"
	"chat-relay/observability"
	"chat-relay/runtime"
)

type SideAPI struct {
	log        *slog.Logger
	identities *runtime.IdentityStore
	registry   *runtime.Registry
	stats      *observability.StatsRecorder
}

func NewSideAPI(log *slog.Logger, identities *runtime.IdentityStore, registry *runtime.Registry, stats *observability.StatsRecorder) *SideAPI {
	return &SideAPI{log: log, identities: identities, registry: registry, stats: stats}
}

// Register mounts the endpoints on mux.
func (a *SideAPI) Register(mux *http.ServeMux) {
	mux.HandleFunc("/random-username", a.randomUsername)
	mux.HandleFunc("/health", a.health)
	mux.HandleFunc("/rooms", a.rooms)
}

func (a *SideAPI) randomUsername(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, map[string]string{"username": a.identities.RandomName()})
}

type healthResponse struct {
	Status     string                   `json:"status"`
	Rooms      int                      `json:"rooms"`
	Goroutines int                      `json:"goroutines"`
	Stats      observability.RelayStats `json:"stats"`
}

func (a *SideAPI) health(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, healthResponse{
		Status:     "ok",
		Rooms:      len(a.registry.ListRoomIDs()),
		Goroutines: goruntime.NumGoroutine(),
		Stats:      a.stats.Snapshot(),
	})
}

type roomsResponse struct {
	Rooms []string `json:"rooms"`
}

func (a *SideAPI) rooms(w http.ResponseWriter, _ *http.Request) {
	ids := lo.Map(a.registry.ListRoomIDs(), func(id domain.RoomID, _ int) string {
		return string(id)
	})
	if ids == nil {
		ids = []string{}
	}
	a.writeJSON(w, roomsResponse{Rooms: ids})
}

func (a *SideAPI) writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.log.Warn("Response encoding failed", "error", err)
	}
}
