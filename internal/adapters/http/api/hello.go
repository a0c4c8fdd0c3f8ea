package api

import (
	"net/http"
)

// HelloMessage is the body of GET /hello.
const HelloMessage = "Hello World"

// HelloHandler handles hello requests.
type HelloHandler struct{}

// NewHelloHandler creates a new hello handler.
func NewHelloHandler() *HelloHandler {
	return &HelloHandler{}
}

// HandleHello handles GET /hello requests. The API key is not consulted.
func (h *HelloHandler) HandleHello(w http.ResponseWriter, r *http.Request) {
	writeText(w, r, http.StatusOK, HelloMessage)
}
