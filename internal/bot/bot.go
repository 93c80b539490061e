// Package bot wires the user-facing command handlers and conversational flows.
package bot

import (
	"context"
	"io"

	tg "github.com/avdave/steamwatch/core/telegram"
	"github.com/avdave/steamwatch/core/telegram/commands"
	"github.com/avdave/steamwatch/core/telegram/helpers"
	"github.com/avdave/steamwatch/core/telegram/keyboard"
	"github.com/avdave/steamwatch/core/telegram/state"
	"github.com/avdave/steamwatch/internal/pic"
	"github.com/avdave/steamwatch/internal/tracking"

	tele "gopkg.in/telebot.v4"
)

// Conversation states.
const (
	stateAwaitTrackLink    state.State = "awaiting_track_link"
	stateAwaitTrackComment state.State = "awaiting_track_comment"
	stateAwaitBanLink      state.State = "awaiting_ban_link"
	stateAwaitFriendLink   state.State = "awaiting_friend_link"
	stateAwaitQRLink       state.State = "awaiting_qr_link"
	stateAwaitQRPhoto      state.State = "awaiting_qr_photo"
)

const tempTargetKey = "target_id"

// Callback keys.
const (
	cbUntrack = "untrack"
	cbCancel  = "cancel"
)

// Menu button labels double as command aliases in the text router.
const (
	labelTrack  = "📡 Слежка"
	labelList   = "📋 Список"
	labelBan    = "🚫 Бан"
	labelFriend = "🤝 Заявка"
	labelQR     = "🔳 QR"
	labelQRCut  = "✂️ QR с фото"
	labelCancel = "❌ Отмена"
)

// Capturer takes a full-page screenshot of url and returns PNG bytes.
type Capturer interface {
	Capture(ctx context.Context, url string) ([]byte, error)
}

// botAPI is the slice of bot methods the flows call outside tele.Context.
type botAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
	File(file *tele.File) (io.ReadCloser, error)
}

// Deps carries everything the handlers operate on.
type Deps struct {
	Supervisor *tracking.Supervisor
	Store      tracking.Store
	Capturer   Capturer
	Assets     pic.Assets
	States     state.Manager
	Limit      int

	// API overrides the bot instance behind tele.Context; nil means c.Bot().
	API botAPI
}

// Bot groups the handler set.
type Bot struct {
	deps Deps
}

// New builds the handler set.
func New(deps Deps) *Bot {
	if deps.Limit <= 0 {
		deps.Limit = 10
	}
	return &Bot{deps: deps}
}

// Register binds commands, menu aliases and FSM state handlers to the registry.
func (b *Bot) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.handleStart,
		Description: "Главное меню",
	})
	reg.RegisterCommand("/track", commands.Command{
		Handler:     b.handleTrack,
		Description: "Следить за Steam профилем",
		Aliases:     []string{labelTrack},
	})
	reg.RegisterCommand("/list", commands.Command{
		Handler:     b.handleList,
		Description: "Список отслеживаемых профилей",
		Aliases:     []string{labelList},
	})
	reg.RegisterCommand("/ban", commands.Command{
		Handler:     b.handleBan,
		Description: "Скрин профиля с баном",
		Aliases:     []string{labelBan},
	})
	reg.RegisterCommand("/friend", commands.Command{
		Handler:     b.handleFriend,
		Description: "Скрин заявки в друзья",
		Aliases:     []string{labelFriend},
	})
	reg.RegisterCommand("/qr", commands.Command{
		Handler:     b.handleQR,
		Description: "QR-код для ссылки",
		Aliases:     []string{labelQR},
	})
	reg.RegisterCommand("/qrcut", commands.Command{
		Handler:     b.handleQRCut,
		Description: "Вырезать QR-код из фото",
		Aliases:     []string{labelQRCut},
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     b.handleCancel,
		Description: "Отменить текущее действие",
		Aliases:     []string{labelCancel},
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     b.handleStats,
		Description: "Статистика задач",
		AdminOnly:   true,
		Hidden:      true,
	})

	reg.RegisterCallback(cbUntrack, b.onUntrack)
	reg.RegisterCallback(cbCancel, b.handleCancel)

	s := b.deps.States
	s.RegisterHandler(stateAwaitTrackLink, b.onTrackLink)
	s.RegisterHandler(stateAwaitTrackComment, b.onTrackComment)
	s.RegisterHandler(stateAwaitBanLink, b.onImageLink(pic.BanScreen))
	s.RegisterHandler(stateAwaitFriendLink, b.onImageLink(pic.FriendRequest))
	s.RegisterHandler(stateAwaitQRLink, b.onQRLink)
	s.RegisterHandler(stateAwaitQRPhoto, b.onQRPhoto)

	reg.SetTextFallback(b.handleStart)
}

// FSMRouter exposes the state manager to the text router.
func (b *Bot) FSMRouter() state.Router {
	return state.Router{Manager: b.deps.States}
}

// api returns the bot backing c unless tests injected their own.
func (b *Bot) api(c tele.Context) botAPI {
	if b.deps.API != nil {
		return b.deps.API
	}
	return c.Bot()
}

func mainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{labelTrack, labelList},
		[]string{labelBan, labelFriend},
		[]string{labelQR, labelQRCut},
		[]string{labelCancel},
	)
}

func (b *Bot) handleStart(c tele.Context) error {
	b.deps.States.Clear(helpers.BuildContext(c), c.Sender().ID)
	return helpers.SendText(c, "Привет! Выбери действие в меню.",
		&tele.SendOptions{ReplyMarkup: mainMenu()})
}

func (b *Bot) handleCancel(c tele.Context) error {
	b.deps.States.Clear(helpers.BuildContext(c), c.Sender().ID)
	return helpers.SendText(c, "Отменено.",
		&tele.SendOptions{ReplyMarkup: mainMenu()})
}

func (b *Bot) handleStats(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	subs, err := b.deps.Store.ScanAll(ctx)
	if err != nil {
		return err
	}
	return helpers.SendText(c, statsText(b.deps.Supervisor.TaskCount(), len(subs)))
}
