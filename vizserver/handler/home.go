package handler

import (
	"encoding/json"
	"net/http"

	"github.com/snape/RVO2/vizserver/types"
)

type homeResponse struct {
	Id          string `json:"id"`
	NumWatchers int    `json:"numwatchers"`
	Websocket   string `json:"websocket"`
}

func Home(vizsim *types.VizSim) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		res := homeResponse{
			Id:          vizsim.GetId(),
			NumWatchers: vizsim.GetNumberWatchers(),
			Websocket:   "/ws",
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res)
	}
}
