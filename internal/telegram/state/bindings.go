// Package state keeps the per-chat conversation state of the Telegram bot.
package state

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// Binding is the project a chat queries and the last search it ran
type Binding struct {
	ProjectID string
	LastQuery string
}

// Bindings maps chat IDs to their bound project. Entries expire after the
// configured TTL of inactivity; every write refreshes the expiration.
type Bindings struct {
	cache *cache.Cache
}

func NewBindings(ttl time.Duration) *Bindings {
	return &Bindings{
		cache: cache.New(ttl, ttl/2+time.Minute),
	}
}

// Bind attaches chatID to projectID and forgets the previous search
func (b *Bindings) Bind(chatID int64, projectID string) {
	b.cache.Set(key(chatID), Binding{ProjectID: projectID}, cache.DefaultExpiration)
}

// Get returns the binding of chatID
func (b *Bindings) Get(chatID int64) (Binding, bool) {
	v, ok := b.cache.Get(key(chatID))
	if !ok {
		return Binding{}, false
	}
	return v.(Binding), true
}

// SetLastQuery remembers the last search of a bound chat.
// It reports false when the chat has no project.
func (b *Bindings) SetLastQuery(chatID int64, query string) bool {
	binding, ok := b.Get(chatID)
	if !ok {
		return false
	}
	binding.LastQuery = query
	b.cache.Set(key(chatID), binding, cache.DefaultExpiration)
	return true
}

// Unbind removes the binding of chatID
func (b *Bindings) Unbind(chatID int64) {
	b.cache.Delete(key(chatID))
}

func key(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
