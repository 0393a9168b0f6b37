package tgrouter

import (
	"errors"
	"math"
	"slices"

	"go.uber.org/zap"

	"stickerstreet/pkg/logger"
	"stickerstreet/pkg/tgrouter/interfaces"
)

const abortIndex int8 = math.MaxInt8 >> 1

type Middleware func(Handler) Handler

func (group *RouterGroup) combineMiddlewares(middlewares ...Middleware) []Middleware {
	finalSize := len(group.middlewares) + len(middlewares)
	if finalSize >= int(abortIndex) {
		panic("tgrouter: too many middlewares")
	}
	mergedMws := make([]Middleware, finalSize)
	copy(mergedMws, middlewares)
	copy(mergedMws[len(middlewares):], group.middlewares)
	return mergedMws
}

func (group *RouterGroup) Use(middleware ...Middleware) {
	group.middlewares = append(group.middlewares, middleware...)
}

// On registers handler for updates matching filter. Routes are tried in
// registration order and the first match wins.
func On[F FilterType](group *RouterGroup, filter Filter[F], handler Handler, mws ...Middleware) {
	mws = group.combineMiddlewares(mws...)
	for mw := range slices.Values(mws) {
		handler = mw(handler)
	}

	group.addRoute(newRoute(filter, handler))
}

// State loads the conversation state of the update into c.
func (group *RouterGroup) State(c *Ctx) {
	c.Context = group.logger.Context(c.Context)
	state, data, err := c.GetState()
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		group.logger.Error(c.Context, "failed to get state", zap.Error(err))
		return
	}

	if errors.Is(err, interfaces.ErrNotFound) {
		c.SetState("", nil)
		return
	}

	c.SetState(state, data)
}

func (group *RouterGroup) addRoute(route Route) {
	if !group.root {
		group.parent.addRoute(route)
	} else {
		group.routes = append(group.routes, route)
	}
}

type RouterGroup struct {
	parent      *RouterGroup
	routes      []Route
	root        bool
	middlewares []Middleware
	stateDB     interfaces.State
	logger      logger.Logger
}

// Group returns a child group that inherits the middlewares registered so far.
func (group *RouterGroup) Group() *RouterGroup {
	return &RouterGroup{
		parent:      group,
		root:        false,
		middlewares: slices.Clone(group.middlewares),
		logger:      group.logger,
		stateDB:     group.stateDB,
	}
}
