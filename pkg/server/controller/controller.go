package controller

import "github.com/fasthttp/router"

// HttpController attaches its route(s) to the provided router.
type HttpController interface {
	AddRoute(r *router.Router)
}
