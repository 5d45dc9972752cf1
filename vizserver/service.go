// Package vizserver streams simulation frames to websocket watchers.
// The simulation loop publishes one JSON frame per step over go-notify;
// every connected watcher receives it wrapped in a framebatch message.
package vizserver

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	apphandler "github.com/snape/RVO2/vizserver/handler"
	"github.com/snape/RVO2/vizserver/types"
)

type VizService struct {
	addr   string
	vizsim *types.VizSim
}

func NewVizService(addr string, vizsim *types.VizSim) *VizService {
	return &VizService{
		addr:   addr,
		vizsim: vizsim,
	}
}

func (viz *VizService) ListenAndServe() error {
	logger := os.Stdout
	router := mux.NewRouter()

	router.Handle("/", handlers.CombinedLoggingHandler(logger,
		http.HandlerFunc(apphandler.Home(viz.vizsim)),
	)).Methods("GET")

	router.Handle("/ws", handlers.CombinedLoggingHandler(logger,
		http.HandlerFunc(apphandler.Websocket(viz.vizsim)),
	)).Methods("GET")

	log.Println("VIZ Listening on " + viz.addr)

	return http.ListenAndServe(viz.addr, router)
}
