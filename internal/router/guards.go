package router

import "github.com/gofiber/fiber/v2"

// guarded prepends a middleware chain to every route registered through it.
// Mounting the chain on a shared group prefix would apply it to sibling
// groups' routes too, so each route carries its own copy instead.
type guarded struct {
	fiber.Router
	chain []fiber.Handler
}

func withGuards(r fiber.Router, chain ...fiber.Handler) fiber.Router {
	return guarded{Router: r, chain: chain}
}

func (g guarded) compose(handlers []fiber.Handler) []fiber.Handler {
	return append(append([]fiber.Handler(nil), g.chain...), handlers...)
}

func (g guarded) Get(path string, handlers ...fiber.Handler) fiber.Router {
	return g.Router.Get(path, g.compose(handlers)...)
}

func (g guarded) Post(path string, handlers ...fiber.Handler) fiber.Router {
	return g.Router.Post(path, g.compose(handlers)...)
}

func (g guarded) Put(path string, handlers ...fiber.Handler) fiber.Router {
	return g.Router.Put(path, g.compose(handlers)...)
}

func (g guarded) Delete(path string, handlers ...fiber.Handler) fiber.Router {
	return g.Router.Delete(path, g.compose(handlers)...)
}
