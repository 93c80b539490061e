package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/avdave/steamwatch/core/telegram/callbacks"
	"github.com/avdave/steamwatch/core/telegram/helpers"
	"github.com/avdave/steamwatch/core/telegram/keyboard"
	"github.com/avdave/steamwatch/internal/steam"
	"github.com/avdave/steamwatch/internal/tracking"

	tele "gopkg.in/telebot.v4"
)

func (b *Bot) handleTrack(c tele.Context) error {
	b.deps.States.SetState(helpers.BuildContext(c), c.Sender().ID, stateAwaitTrackLink)
	return helpers.SendText(c,
		"Отправь ссылку на Steam профиль.\n"+
			"Повторная отправка отслеживаемого профиля останавливает слежку.")
}

func (b *Bot) onTrackLink(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID

	targetID, err := steam.ParseProfileURL(c.Text())
	if err != nil {
		return helpers.SendText(c,
			"Неверная ссылка. Нужна ссылка вида https://steamcommunity.com/profiles/<id>.")
	}

	res, err := b.deps.Supervisor.Toggle(ctx, userID, targetID)
	if errors.Is(err, tracking.ErrLimitExceeded) {
		b.deps.States.Clear(ctx, userID)
		return helpers.SendText(c,
			fmt.Sprintf("Лимит: не больше %d профилей одновременно.", b.deps.Limit))
	}
	if err != nil {
		b.deps.States.Clear(ctx, userID)
		return err
	}

	switch res {
	case tracking.ToggleStopped:
		b.deps.States.Clear(ctx, userID)
		return helpers.SendText(c, "Слежка за профилем остановлена.",
			&tele.SendOptions{ReplyMarkup: mainMenu()})
	default:
		b.deps.States.SetTemp(ctx, userID, tempTargetKey, targetID)
		b.deps.States.SetState(ctx, userID, stateAwaitTrackComment)
		return helpers.SendText(c, "Добавь комментарий к этому профилю (кто это).")
	}
}

func (b *Bot) onTrackComment(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID

	targetID := b.deps.States.TempString(ctx, userID, tempTargetKey)
	if targetID == "" {
		b.deps.States.Clear(ctx, userID)
		return helpers.SendText(c, "Сессия потерялась, начни заново: /track.")
	}

	comment := strings.TrimSpace(c.Text())
	if err := b.deps.Supervisor.Track(ctx, userID, targetID, comment); err != nil {
		b.deps.States.Clear(ctx, userID)
		return err
	}
	b.deps.States.Clear(ctx, userID)
	return helpers.SendText(c, "Слежка запущена. Сообщу, когда статус изменится.",
		&tele.SendOptions{ReplyMarkup: mainMenu()})
}

func (b *Bot) handleList(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	subs, err := b.deps.Store.ListFor(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return helpers.SendText(c, "Ты пока ни за кем не следишь. Жми /track.")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Отслеживаемые профили (%d/%d):\n", len(subs), b.deps.Limit))
	buttons := make([]keyboard.InlineBtn, 0, len(subs))
	for i, sub := range subs {
		mark := "🔴"
		if sub.LastStatus == steam.StatusOnline {
			mark = "🟢"
		}
		sb.WriteString(fmt.Sprintf("%d. %s «%s»\n%s\n",
			i+1, mark, sub.Comment, steam.ProfileURL(sub.TargetID)))
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   fmt.Sprintf("Остановить %d. «%s»", i+1, sub.Comment),
			Unique: cbUntrack,
			Data:   sub.TargetID,
		})
	}
	return helpers.SendText(c, sb.String(),
		&tele.SendOptions{ReplyMarkup: keyboard.InlineButtons(buttons)})
}

func (b *Bot) onUntrack(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	targetID := callbacks.CallbackPayload(c)
	if !steam.ValidProfileID(targetID) {
		return helpers.SendText(c, "Не понял, какой профиль остановить.")
	}

	res, err := b.deps.Supervisor.Toggle(ctx, c.Sender().ID, targetID)
	if err != nil || res != tracking.ToggleStopped {
		return helpers.SendText(c, "Этот профиль уже не отслеживается.")
	}
	return helpers.SendText(c, "Слежка за профилем остановлена.")
}

func statsText(tasks, rows int) string {
	return fmt.Sprintf("Задач: %d\nПодписок: %d", tasks, rows)
}
