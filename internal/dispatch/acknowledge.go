package dispatch

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/branding"
	"github.com/VanZoel112/vzoelupgrade-sub000/internal/telegram"
)

const (
	ackFrames   = 5
	ackInterval = 400 * time.Millisecond
)

// acknowledge sends the "working" placeholder and starts cycling spinner
// frames on it. The returned cancel func stops pending edits; the pipeline
// calls it as soon as the handler returns, so a fast handler does not
// fight the spinner over the same message.
//
// A send failure is not fatal: the command simply runs without a
// placeholder.
func (p *Pipeline) acknowledge(ctx context.Context, msg *tgbotapi.Message) (*telegram.MessageRef, context.CancelFunc) {
	ref, err := p.app.Transport.ReplyMessage(ctx, msg.Chat.ID, msg.MessageID, branding.Loading(0, "Working"))
	if err != nil {
		p.log.Debug().Err(err).Int64("chat_id", msg.Chat.ID).Msg("could not send acknowledgement")
		return nil, nil
	}

	ackCtx, cancel := context.WithCancel(ctx)
	go func() {
		for i := 1; i <= ackFrames; i++ {
			select {
			case <-ackCtx.Done():
				return
			case <-time.After(ackInterval):
			}
			if err := p.app.Transport.EditMessage(ackCtx, ref, branding.Loading(i, "Working")); err != nil {
				return
			}
		}
	}()
	return &ref, cancel
}
