// Package bot wires the Telegram long-polling loop to the conversation
// controller.
package bot

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"cfbot/internal/handler"
	"cfbot/internal/model"
)

// workerIdle is how long a chat's worker sits without traffic before it
// exits and releases its channel. A later update recreates it.
const workerIdle = 5 * time.Minute

// Bot drains the update stream and fans events out to one worker goroutine
// per chat, so a single conversation is always handled in arrival order
// while distinct conversations interleave.
type Bot struct {
	api        *tgbotapi.BotAPI
	controller *handler.Controller
	log        *zap.Logger
	idle       time.Duration

	mu      sync.Mutex
	workers map[int64]chan handler.Incoming
	wg      sync.WaitGroup
}

func New(api *tgbotapi.BotAPI, controller *handler.Controller, log *zap.Logger) *Bot {
	return &Bot{
		api:        api,
		controller: controller,
		log:        log,
		idle:       workerIdle,
		workers:    make(map[int64]chan handler.Incoming),
	}
}

// Run blocks until ctx is cancelled, then stops polling and waits for
// in-flight handlers to finish.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.shutdown()
			return
		case update, ok := <-updates:
			if !ok {
				b.shutdown()
				return
			}
			in, ok := toIncoming(update)
			if !ok {
				continue
			}
			b.dispatch(ctx, in)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, in handler.Incoming) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.workers[in.ChatID]
	if !ok {
		ch = make(chan handler.Incoming, 16)
		b.workers[in.ChatID] = ch
		b.wg.Add(1)
		go b.worker(ctx, in.ChatID, ch)
	}

	// sending under the lock keeps the reap check honest: a worker only
	// exits once it holds the lock and sees an empty channel.
	select {
	case ch <- in:
	default:
		// the chat is flooding faster than its handlers complete
		b.log.Warn("dropping update for busy chat", zap.Int64("chat", in.ChatID))
	}
}

// worker handles one chat's events in order, then reaps itself after the
// chat has been quiet for the idle period.
func (b *Bot) worker(ctx context.Context, chatID int64, ch chan handler.Incoming) {
	defer b.wg.Done()

	idle := time.NewTimer(b.idle)
	defer idle.Stop()

	for {
		select {
		case in, ok := <-ch:
			if !ok {
				return
			}
			b.controller.Handle(ctx, in)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(b.idle)
		case <-idle.C:
			b.mu.Lock()
			if len(ch) > 0 {
				// an update raced in; keep serving
				b.mu.Unlock()
				idle.Reset(b.idle)
				continue
			}
			delete(b.workers, chatID)
			b.mu.Unlock()
			return
		}
	}
}

func (b *Bot) shutdown() {
	b.mu.Lock()
	for _, ch := range b.workers {
		close(ch)
	}
	b.mu.Unlock()
	b.wg.Wait()
}

// toIncoming flattens a raw update into the controller's event shape.
// Updates that are neither messages nor button presses are skipped.
func toIncoming(update tgbotapi.Update) (handler.Incoming, bool) {
	if cq := update.CallbackQuery; cq != nil && cq.Message != nil {
		return handler.Incoming{
			ChatID:   cq.Message.Chat.ID,
			From:     userInfo(cq.From),
			Callback: &handler.Callback{ID: cq.ID, Data: cq.Data},
		}, true
	}

	if msg := update.Message; msg != nil {
		in := handler.Incoming{
			ChatID: msg.Chat.ID,
			From:   userInfo(msg.From),
			Text:   msg.Text,
		}
		if msg.Document != nil {
			in.Document = &handler.Document{
				FileID:   msg.Document.FileID,
				FileName: msg.Document.FileName,
			}
		}
		return in, true
	}

	return handler.Incoming{}, false
}

func userInfo(u *tgbotapi.User) model.UserInfo {
	if u == nil {
		return model.UserInfo{}
	}
	return model.UserInfo{
		ID:        u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
