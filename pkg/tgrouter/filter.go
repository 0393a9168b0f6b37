package tgrouter

import (
	"stickerstreet/pkg/tgrouter/callback"
)

type FilterType interface {
	MessageFilter | CommandFilter | StateFilter | CallbackFilter | any
}

type (
	MessageFilter  struct{}
	CommandFilter  struct{}
	StateFilter    struct{}
	CallbackFilter struct{}
)

type Filter[F FilterType] func(*Ctx) bool

func Message() Filter[MessageFilter] {
	return func(c *Ctx) bool {
		return c.update.Message != nil
	}
}

// Text matches plain text messages, commands excluded.
func Text() Filter[MessageFilter] {
	return func(c *Ctx) bool {
		return c.update.Message != nil && c.update.Message.Text != "" && !c.update.Message.IsCommand()
	}
}

func Command() Filter[CommandFilter] {
	return func(c *Ctx) bool {
		return c.update.Message != nil && c.update.Message.IsCommand()
	}
}

func Cmd(cmd string) Filter[CommandFilter] {
	return func(c *Ctx) bool {
		return c.update.Message != nil && c.update.Message.IsCommand() && c.update.Message.Command() == cmd
	}
}

func Callback(query string) Filter[CallbackFilter] {
	return func(c *Ctx) bool {
		if c.update.CallbackQuery == nil {
			return false
		}
		return callback.Query(c.update.CallbackQuery.Data) == query
	}
}

func State(name string) Filter[StateFilter] {
	return func(c *Ctx) bool {
		if c.update.Message == nil {
			return false
		}

		if c.state == nil {
			s, data, err := c.GetState()
			if err == nil {
				c.SetState(s, data)
			}
		}
		return c.StateName() == name
	}
}

func Any() Filter[any] {
	return func(c *Ctx) bool {
		return true
	}
}
