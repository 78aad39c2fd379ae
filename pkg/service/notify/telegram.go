package notify

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/slotwatch/pkg/domain/model"
	"github.com/secmon-lab/slotwatch/pkg/domain/types"
)

type telegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID string
}

func newTelegram(params map[string]string) (*telegramNotifier, error) {
	token, err := requireParam(params, types.ChannelTelegram, "token")
	if err != nil {
		return nil, err
	}
	chatID, err := requireParam(params, types.ChannelTelegram, "chat_id")
	if err != nil {
		return nil, err
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize the telegram bot", goerr.T(types.TagNotify))
	}

	return &telegramNotifier{bot: bot, chatID: chatID}, nil
}

func (x *telegramNotifier) Kind() types.ChannelKind {
	return types.ChannelTelegram
}

func (x *telegramNotifier) Notify(_ context.Context, notice model.SlotNotice) error {
	text := telegramText(notice)

	var msg tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(x.chatID, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(id, text)
	} else {
		msg = tgbotapi.NewMessageToChannel(x.chatID, text)
	}
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := x.bot.Send(msg); err != nil {
		return goerr.Wrap(err, "failed to send the telegram message",
			goerr.V("chat_id", x.chatID), goerr.T(types.TagNotify))
	}
	return nil
}

func telegramText(n model.SlotNotice) string {
	return fmt.Sprintf("Slot found for <b>%s</b> project:\n<b>%s</b> at <b>%s</b>",
		n.Project, n.DateLabel(), n.TimeLabel())
}
