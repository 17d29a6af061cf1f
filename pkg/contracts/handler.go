package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every domain HTTP handler so main can mount them
// on the shared router without knowing their routes.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
