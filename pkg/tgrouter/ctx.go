package tgrouter

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"stickerstreet/pkg/tgrouter/interfaces"
)

type ctxState struct {
	stateName *string
	data      map[string]string
}

type Ctx struct {
	update   *tgbotapi.Update
	bot      *tgbotapi.BotAPI
	handlers Handler
	index    int8
	state    *ctxState
	stateDB  interfaces.State
	Context  context.Context
}

func (c *Ctx) reset() {
	c.handlers = nil
	c.index = -1
	c.state = nil
	c.Context = context.Background()
}

func (c *Ctx) Bot() *tgbotapi.BotAPI {
	return c.bot
}

func (c *Ctx) Update() *tgbotapi.Update {
	return c.update
}

// ChatID is the chat the update came from.
func (c *Ctx) ChatID() int64 {
	if chat := c.update.FromChat(); chat != nil {
		return chat.ID
	}
	return 0
}

// UserID is the sender of the update.
func (c *Ctx) UserID() int64 {
	if user := c.update.SentFrom(); user != nil {
		return user.ID
	}
	return c.ChatID()
}

func (c *Ctx) ids() (int, int) {
	return int(c.UserID()), int(c.ChatID())
}

func (c *Ctx) SetState(state string, data map[string]string) {
	if data == nil {
		data = make(map[string]string)
	}
	c.state = &ctxState{
		stateName: &state,
		data:      data,
	}
}

// StateName is the loaded conversation state, "" when there is none.
func (c *Ctx) StateName() string {
	if c.state == nil || c.state.stateName == nil {
		return ""
	}
	return *c.state.stateName
}

func (c *Ctx) UpdateState(state string, data map[string]string) error {
	c.SetState(state, data)
	user, chat := c.ids()
	return c.stateDB.Set(c.Context, user, chat, state, data)
}

func (c *Ctx) GetState() (string, map[string]string, error) {
	user, chat := c.ids()
	return c.stateDB.Get(c.Context, user, chat)
}

func (c *Ctx) ClearState() error {
	c.SetState("", nil)
	user, chat := c.ids()
	return c.stateDB.Delete(c.Context, user, chat)
}

func (c *Ctx) GetStateData(key string) (string, error) {
	user, chat := c.ids()
	return c.stateDB.GetData(c.Context, user, chat, key)
}

func (c *Ctx) UpdateStateData(m map[string]string) error {
	user, chat := c.ids()
	return c.stateDB.UpdateData(c.Context, user, chat, m)
}

// Send delivers a message unless the router runs without a bot.
func (c *Ctx) Send(msg tgbotapi.Chattable) error {
	if c.bot == nil {
		return nil
	}
	_, err := c.bot.Send(msg)
	return err
}

// Request calls a method that does not return a message.
func (c *Ctx) Request(req tgbotapi.Chattable) error {
	if c.bot == nil {
		return nil
	}
	_, err := c.bot.Request(req)
	return err
}

// Answer acknowledges a callback query.
func (c *Ctx) Answer(text string) {
	if c.update.CallbackQuery == nil {
		return
	}
	_ = c.Request(tgbotapi.NewCallback(c.update.CallbackQuery.ID, text))
}

func (c *Ctx) next() {
	c.index++
	c.handlers(c)
}
