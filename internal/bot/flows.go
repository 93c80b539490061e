package bot

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg" // Telegram re-encodes uploaded photos as JPEG.
	"image/png"
	"net/url"
	"strings"

	"github.com/avdave/steamwatch/core/telegram/helpers"
	"github.com/avdave/steamwatch/core/telegram/keyboard"
	"github.com/avdave/steamwatch/internal/pic"
	"github.com/avdave/steamwatch/internal/qr"
	"github.com/avdave/steamwatch/internal/steam"

	tele "gopkg.in/telebot.v4"
)

const (
	qrSize       = 250
	qrCutPadding = 20
)

func (b *Bot) handleBan(c tele.Context) error {
	b.deps.States.SetState(helpers.BuildContext(c), c.Sender().ID, stateAwaitBanLink)
	return helpers.SendText(c, "Отправь ссылку на Steam профиль для скрина с баном.",
		&tele.SendOptions{ReplyMarkup: keyboard.SingleCancelMarkup(cbCancel)})
}

func (b *Bot) handleFriend(c tele.Context) error {
	b.deps.States.SetState(helpers.BuildContext(c), c.Sender().ID, stateAwaitFriendLink)
	return helpers.SendText(c, "Отправь ссылку на Steam профиль для скрина заявки.",
		&tele.SendOptions{ReplyMarkup: keyboard.SingleCancelMarkup(cbCancel)})
}

func (b *Bot) handleQR(c tele.Context) error {
	b.deps.States.SetState(helpers.BuildContext(c), c.Sender().ID, stateAwaitQRLink)
	return helpers.SendText(c, "Отправь ссылку, для которой сделать QR-код.",
		&tele.SendOptions{ReplyMarkup: keyboard.SingleCancelMarkup(cbCancel)})
}

type composeFunc func(shot image.Image, a pic.Assets) image.Image

// onImageLink returns the FSM handler shared by the ban and friend-request
// flows; compose decides the final look.
func (b *Bot) onImageLink(compose composeFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := helpers.BuildContext(c)
		userID := c.Sender().ID

		targetID, err := steam.ParseProfileURL(c.Text())
		if err != nil {
			return helpers.SendText(c,
				"Неверная ссылка. Нужна ссылка вида https://steamcommunity.com/profiles/<id>.")
		}
		b.deps.States.Clear(ctx, userID)

		wait, _ := b.api(c).Send(c.Recipient(), "Обрабатываю...")
		if wait != nil {
			defer func() { _ = b.api(c).Delete(wait) }()
		}

		raw, err := b.deps.Capturer.Capture(ctx, steam.ProfileURL(targetID))
		if err != nil {
			return helpers.SendText(c, "Не получилось сделать скриншот, попробуй позже.")
		}
		src, err := png.Decode(bytes.NewReader(raw))
		if err != nil {
			return helpers.SendText(c, "Не получилось обработать скриншот.")
		}

		data, err := pic.EncodePNG(compose(src, b.deps.Assets))
		if err != nil {
			return err
		}

		photo := &tele.Photo{File: tele.FromReader(bytes.NewReader(data))}
		return helpers.SendPhoto(c, photo)
	}
}

func (b *Bot) handleQRCut(c tele.Context) error {
	b.deps.States.SetState(helpers.BuildContext(c), c.Sender().ID, stateAwaitQRPhoto)
	return helpers.SendText(c, "Отправь фото с QR-кодом, я вырежу его на прозрачном фоне.",
		&tele.SendOptions{ReplyMarkup: keyboard.SingleCancelMarkup(cbCancel)})
}

// onQRPhoto cuts the QR region out of an uploaded photo, whitespace turned
// transparent, and returns it as a document to dodge Telegram's re-compression.
func (b *Bot) onQRPhoto(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID

	msg := c.Message()
	if msg == nil || msg.Photo == nil {
		return helpers.SendText(c, "Жду фото с QR-кодом. Отмена: /cancel.")
	}
	b.deps.States.Clear(ctx, userID)

	rc, err := b.api(c).File(&msg.Photo.File)
	if err != nil {
		return helpers.SendText(c, "Не получилось скачать фото, попробуй ещё раз.")
	}
	defer rc.Close()

	src, _, err := image.Decode(rc)
	if err != nil {
		return helpers.SendText(c, "Не получилось открыть фото.")
	}

	region, err := qr.ExtractTransparent(src, qrCutPadding)
	if errors.Is(err, qr.ErrNoQR) {
		return helpers.SendText(c, "Не нашёл QR-код на фото.")
	}
	if err != nil {
		return err
	}

	data, err := pic.EncodePNG(region)
	if err != nil {
		return err
	}
	doc := &tele.Document{File: tele.FromReader(bytes.NewReader(data)), FileName: "qr.png"}
	return helpers.SendDocument(c, doc)
}

func (b *Bot) onQRLink(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID

	link := strings.TrimSpace(c.Text())
	if u, err := url.Parse(link); err != nil || u.Scheme == "" || u.Host == "" {
		return helpers.SendText(c, "Это не похоже на ссылку, отправь полный URL.")
	}
	b.deps.States.Clear(ctx, userID)

	img, err := qr.Generate(link, qrSize)
	if err != nil {
		return helpers.SendText(c, "Не получилось сгенерировать QR-код.")
	}
	data, err := pic.EncodePNG(img)
	if err != nil {
		return err
	}
	return helpers.SendPhoto(c, &tele.Photo{File: tele.FromReader(bytes.NewReader(data))})
}
