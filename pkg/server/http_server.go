package server

import (
	"net/http"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/mux"

	"github.com/vantagecrm/vantage/pkg/application"
)

func NewHTTPServer(app application.Application) *HTTPServer {
	return &HTTPServer{
		Controllers: app.Controllers(),
	}
}

// HTTPServer assembles the mux router from registered controllers. The
// application middleware stack is applied per controller subrouter, not
// here, so a request passes through it exactly once.
type HTTPServer struct {
	Controllers []application.Controller
}

func (s *HTTPServer) Router() *mux.Router {
	r := mux.NewRouter()
	for _, controller := range s.Controllers {
		controller.Register(r)
	}
	return r
}

func (s *HTTPServer) Handler() http.Handler {
	return gziphandler.GzipHandler(s.Router())
}

func (s *HTTPServer) Start(socketAddress string) error {
	return http.ListenAndServe(socketAddress, s.Handler())
}
