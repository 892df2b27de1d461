// Package teletest provides in-memory fakes of telebot types for handler tests.
package teletest

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	tele "gopkg.in/telebot.v4"
)

// Sent is one outgoing message captured by Context or Bot.
type Sent struct {
	To    tele.Recipient
	What  any
	Opts  []any
	Reply bool
}

// Text returns the sent payload when it is a string.
func (s Sent) Text() string {
	str, _ := s.What.(string)
	return str
}

// Markup returns the reply markup attached to the message, if any.
func (s Sent) Markup() *tele.ReplyMarkup {
	for _, o := range s.Opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil {
				return v.ReplyMarkup
			}
		case *tele.ReplyMarkup:
			return v
		}
	}
	return nil
}

// Context is a fake tele.Context. Methods not overridden here panic through
// the nil embedded interface, which flags handlers that reach for more than
// the fake supports.
type Context struct {
	tele.Context

	Upd tele.Update
	Usr *tele.User
	Cht *tele.Chat

	// SendErr is returned by Send and Reply when set.
	SendErr error

	mu        sync.Mutex
	store     map[string]any
	sent      []Sent
	responded int
	answers   []*tele.QueryResponse
}

// Private returns a context for a text message in a private chat.
func Private(userID int64, text string) *Context {
	return Message(userID, userID, tele.ChatPrivate, text)
}

// Group returns a context for a text message in a supergroup.
func Group(userID, chatID int64, text string) *Context {
	return Message(userID, chatID, tele.ChatSuperGroup, text)
}

// Message builds a context around a text message.
func Message(userID, chatID int64, kind tele.ChatType, text string) *Context {
	user := &tele.User{ID: userID, FirstName: fmt.Sprintf("user%d", userID)}
	chat := &tele.Chat{ID: chatID, Type: kind}
	msg := &tele.Message{ID: 1, Sender: user, Chat: chat, Text: text}
	return &Context{
		Upd: tele.Update{ID: 1, Message: msg},
		Usr: user,
		Cht: chat,
	}
}

// WithDocument attaches a document to the message.
func (c *Context) WithDocument(name, mime string, size int64) *Context {
	c.Upd.Message.Document = &tele.Document{
		File:     tele.File{FileID: "file-" + name, FileSize: size},
		FileName: name,
		MIME:     mime,
	}
	c.Upd.Message.Text = ""
	return c
}

// Callback builds a context for an inline button press.
func Callback(userID, chatID int64, unique, data string) *Context {
	user := &tele.User{ID: userID}
	chat := &tele.Chat{ID: chatID, Type: tele.ChatSuperGroup}
	cb := &tele.Callback{
		ID:      "cb",
		Sender:  user,
		Unique:  unique,
		Data:    data,
		Message: &tele.Message{ID: 2, Chat: chat},
	}
	return &Context{Upd: tele.Update{ID: 2, Callback: cb}, Usr: user, Cht: chat}
}

// Query builds a context for an inline query.
func Query(userID int64, text string) *Context {
	user := &tele.User{ID: userID}
	return &Context{Upd: tele.Update{ID: 3, Query: &tele.Query{ID: "q", Sender: user, Text: text}}, Usr: user}
}

func (c *Context) Update() tele.Update { return c.Upd }
func (c *Context) Sender() *tele.User { return c.Usr }
func (c *Context) Chat() *tele.Chat { return c.Cht }
func (c *Context) Callback() *tele.Callback { return c.Upd.Callback }
func (c *Context) Query() *tele.Query { return c.Upd.Query }

func (c *Context) Message() *tele.Message {
	switch {
	case c.Upd.Message != nil:
		return c.Upd.Message
	case c.Upd.Callback != nil:
		return c.Upd.Callback.Message
	}
	return nil
}

func (c *Context) Text() string {
	m := c.Upd.Message
	if m == nil {
		return ""
	}
	if m.Caption != "" {
		return m.Caption
	}
	return m.Text
}

func (c *Context) Data() string {
	if c.Upd.Callback != nil {
		return c.Upd.Callback.Data
	}
	if c.Upd.Query != nil {
		return c.Upd.Query.Text
	}
	return ""
}

func (c *Context) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store[key]
}

func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = make(map[string]any)
	}
	c.store[key] = val
}

func (c *Context) Send(what any, opts ...any) error {
	return c.record(Sent{To: c.Cht, What: what, Opts: opts})
}

func (c *Context) Reply(what any, opts ...any) error {
	return c.record(Sent{To: c.Cht, What: what, Opts: opts, Reply: true})
}

func (c *Context) EditOrSend(what any, opts ...any) error {
	return c.record(Sent{To: c.Cht, What: what, Opts: opts})
}

func (c *Context) Notify(tele.ChatAction) error { return nil }

func (c *Context) Respond(resp ...*tele.CallbackResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responded++
	return nil
}

func (c *Context) Answer(resp *tele.QueryResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers = append(c.answers, resp)
	return nil
}

func (c *Context) record(s Sent) error {
	if c.SendErr != nil {
		return c.SendErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, s)
	return nil
}

// Sent returns every captured outgoing message.
func (c *Context) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.sent...)
}

// LastText returns the text of the most recent outgoing message.
func (c *Context) LastText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return ""
	}
	return c.sent[len(c.sent)-1].Text()
}

// Responded reports how many callback answers were sent.
func (c *Context) Responded() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.responded
}

// Answers returns inline query answers.
func (c *Context) Answers() []*tele.QueryResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*tele.QueryResponse(nil), c.answers...)
}

// Next returns a fresh context for a follow-up message from the same user in
// the same chat, so a whole conversation can be scripted.
func (c *Context) Next(text string) *Context {
	return Message(c.Usr.ID, c.Cht.ID, c.Cht.Type, text)
}

// Bot is a fake of the bot calls handlers make outside the current chat.
type Bot struct {
	mu      sync.Mutex
	sent    []Sent
	Files   map[string][]byte
	Admins  map[int64][]int64
	SendErr error
	FileErr error
}

func (b *Bot) Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error) {
	if b.SendErr != nil {
		return nil, b.SendErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, Sent{To: to, What: what, Opts: opts})
	return &tele.Message{ID: len(b.sent)}, nil
}

func (b *Bot) File(file *tele.File) (io.ReadCloser, error) {
	if b.FileErr != nil {
		return nil, b.FileErr
	}
	data, ok := b.Files[file.FileID]
	if !ok {
		return nil, fmt.Errorf("file %s not found", file.FileID)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *Bot) AdminsOf(chat *tele.Chat) ([]tele.ChatMember, error) {
	var out []tele.ChatMember
	for _, id := range b.Admins[chat.ID] {
		out = append(out, tele.ChatMember{User: &tele.User{ID: id}, Role: tele.Administrator})
	}
	return out, nil
}

// Sent returns messages sent through the bot.
func (b *Bot) Sent() []Sent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Sent(nil), b.sent...)
}
