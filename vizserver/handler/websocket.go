package handler

import (
	"log"
	"net/http"

	notify "github.com/bitly/go-notify"
	"github.com/gorilla/websocket"

	"github.com/snape/RVO2/common/utils"
	"github.com/snape/RVO2/vizserver/types"
)

type wsincomingmessage struct {
	messageType int
	p           []byte
	err         error
}

func Websocket(vizsim *types.VizSim) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {

		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		}

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Print("upgrade:", err)
			return
		}

		watcher := types.NewWatcher(c)
		vizsim.SetWatcher(watcher)

		defer func(c *websocket.Conn) {
			vizsim.RemoveWatcher(watcher.GetId())
			c.Close()
		}(c)

		clientclosedsocket := make(chan bool)
		c.SetCloseHandler(func(code int, text string) error {
			clientclosedsocket <- true
			return nil
		})

		// Listen to messages incoming from the viz client; mandatory to
		// notice when the websocket is closed client side.
		incomingmsg := make(chan wsincomingmessage)
		go func(client *websocket.Conn, ch chan wsincomingmessage) {
			messageType, p, err := client.ReadMessage()
			ch <- wsincomingmessage{messageType, p, err}
		}(c, incomingmsg)

		// Listen to frames coming from the simulation loop.
		vizmsgchan := make(chan interface{})
		notify.Start("viz:message:"+vizsim.GetId(), vizmsgchan)
		defer notify.Stop("viz:message:"+vizsim.GetId(), vizmsgchan)

		for {
			select {
			case <-clientclosedsocket:
				{
					return
				}
			case <-incomingmsg:
				{
					// Consumed and ignored; keep reading so the close
					// handler fires.
					go func(client *websocket.Conn, ch chan wsincomingmessage) {
						messageType, p, err := client.ReadMessage()
						ch <- wsincomingmessage{messageType, p, err}
					}(c, incomingmsg)
				}
			case vizmsg := <-vizmsgchan:
				{
					vizmsgString, ok := vizmsg.(string)
					utils.Assert(ok, "Failed to cast vizmessage into string")

					c.WriteMessage(websocket.TextMessage, []byte("{\"type\":\"framebatch\", \"data\": "+vizmsgString+"}"))
				}
			}
		}
	}
}
