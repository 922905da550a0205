package api

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/venkeey/viscanvas-sub000/internal/feed"
)

// NewRouter wires the canvas routes. hub may be nil to disable /ws.
func NewRouter(h *Handler, hub *feed.Hub, origins []string) http.Handler {
	r := mux.NewRouter()

	r.Use(Recovery)
	r.Use(Logger)

	r.HandleFunc("/health", h.Health).Methods("GET")

	r.HandleFunc("/objects", h.ListObjects).Methods("GET")
	r.HandleFunc("/objects", h.CreateObject).Methods("POST")
	r.HandleFunc("/objects/move", h.MoveObjects).Methods("POST")
	r.HandleFunc("/objects/{objectId}", h.GetObject).Methods("GET")
	r.HandleFunc("/objects/{objectId}", h.UpdateObject).Methods("PUT")
	r.HandleFunc("/objects/{objectId}", h.DeleteObject).Methods("DELETE")
	r.HandleFunc("/objects/{objectId}/move", h.MoveObject).Methods("POST")

	r.HandleFunc("/connectors", h.Connect).Methods("POST")

	r.HandleFunc("/selection", h.GetSelection).Methods("GET")
	r.HandleFunc("/selection", h.ClearSelection).Methods("DELETE")
	r.HandleFunc("/selection/objects", h.DeleteSelection).Methods("DELETE")
	r.HandleFunc("/selection/{objectId}", h.Select).Methods("POST")

	r.HandleFunc("/history/undo", h.Undo).Methods("POST")
	r.HandleFunc("/history/redo", h.Redo).Methods("POST")

	r.HandleFunc("/query", h.Query).Methods("GET")
	r.HandleFunc("/visible", h.Visible).Methods("GET")
	r.HandleFunc("/hit", h.HitTest).Methods("GET")

	r.HandleFunc("/view", h.GetView).Methods("GET")
	r.HandleFunc("/view", h.SetView).Methods("PUT")
	r.HandleFunc("/view/pan", h.Pan).Methods("POST")
	r.HandleFunc("/view/zoom", h.Zoom).Methods("POST")

	r.HandleFunc("/drawlist", h.DrawList).Methods("GET")

	r.HandleFunc("/snapshot", h.GetSnapshot).Methods("GET")
	r.HandleFunc("/snapshot", h.LoadSnapshot).Methods("PUT")
	r.HandleFunc("/snapshot", h.SaveSnapshot).Methods("POST")

	if hub != nil {
		r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			handleWebSocket(w, r, hub, origins)
		})
	}

	return CORS(origins)(r)
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *feed.Hub, origins []string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originHosts(origins),
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := feed.NewClient(hub, conn, clientID)

	if !hub.Register(client) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	client.Serve(r.Context())
}

// originHosts reduces configured origins to the host patterns the websocket
// handshake matches against.
func originHosts(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			out = append(out, "*")
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			out = append(out, o)
			continue
		}
		out = append(out, u.Host)
	}
	return out
}
