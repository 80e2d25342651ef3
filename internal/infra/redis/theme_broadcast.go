package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// ThemeEvent is published whenever a menu's appearance changes, so open
// storefront pages can restyle without a reload.
type ThemeEvent struct {
	Slug  string `json:"slug"`
	Theme string `json:"theme"`
}

// ThemeBroadcast fans theme changes out over redis pub/sub. Each menu gets its
// own channel so subscribers only see their shop's events.
type ThemeBroadcast struct {
	client RedisClient
	log    *zerolog.Logger
}

func NewThemeBroadcast(client RedisClient, logger *zerolog.Logger) *ThemeBroadcast {
	return &ThemeBroadcast{client: client, log: logger}
}

func themeChannel(slug string) string {
	return fmt.Sprintf("menu:events:%s", slug)
}

func (b *ThemeBroadcast) Publish(ctx context.Context, ev ThemeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, themeChannel(ev.Slug), payload); err != nil {
		b.log.Warn().Err(err).Str("slug", ev.Slug).Msg("theme broadcast failed")
		return err
	}
	return nil
}

// Subscribe yields theme events for one menu until ctx ends or the returned
// close func is called. Malformed payloads are dropped with a warning.
func (b *ThemeBroadcast) Subscribe(ctx context.Context, slug string) (<-chan ThemeEvent, func() error) {
	raw, closer := b.client.Subscribe(ctx, themeChannel(slug))
	out := make(chan ThemeEvent)
	go func() {
		defer close(out)
		for payload := range raw {
			var ev ThemeEvent
			if err := json.Unmarshal([]byte(payload), &ev); err != nil {
				b.log.Warn().Err(err).Str("slug", slug).Msg("bad theme event payload")
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, closer
}
