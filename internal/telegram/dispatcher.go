package telegram

import (
	"context"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Dispatcher is the default handler given to the bot at construction time.
// The real pipeline needs the bot handle for outbound calls, and the bot needs
// a default handler up front, so the dispatcher breaks the cycle: it is
// registered first and bound to the pipeline once the pieces exist. Updates
// arriving before Bind are dropped.
type Dispatcher struct {
	mu      sync.RWMutex
	handler bot.HandlerFunc
}

// NewDispatcher constructs an unbound Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Bind installs the handler all subsequent updates are routed to.
func (d *Dispatcher) Bind(handler bot.HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handler = handler
}

// Handle forwards the update to the bound handler.
func (d *Dispatcher) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	d.mu.RLock()
	handler := d.handler
	d.mu.RUnlock()

	if handler == nil {
		return
	}

	handler(ctx, b, update)
}
