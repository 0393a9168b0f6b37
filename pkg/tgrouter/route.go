package tgrouter

// Route pairs a filter with the handler chain it guards.
type Route struct {
	filter   Filter[any]
	handlers Handler
	rtype    Type
}

type Type int

const (
	MessageRoute Type = iota + 1
	CommandRoute
	CallbackRoute
	// ConversationRoute needs the stored state before its filter runs.
	ConversationRoute
)

func (t Type) String() string {
	switch t {
	case CommandRoute:
		return "command"
	case CallbackRoute:
		return "callback"
	case ConversationRoute:
		return "conversation"
	default:
		return "message"
	}
}

func newRoute[F FilterType](filter Filter[F], handlers Handler) Route {
	r := Route{
		filter:   Filter[any](filter),
		handlers: handlers,
		rtype:    MessageRoute,
	}

	switch any(filter).(type) {
	case Filter[StateFilter]:
		r.rtype = ConversationRoute
	case Filter[CommandFilter]:
		r.rtype = CommandRoute
	case Filter[CallbackFilter]:
		r.rtype = CallbackRoute
	}

	return r
}
