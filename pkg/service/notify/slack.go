package notify

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/secmon-lab/slotwatch/pkg/domain/model"
	"github.com/secmon-lab/slotwatch/pkg/domain/types"
)

type slackNotifier struct {
	api     *slack.Client
	channel string
}

func newSlack(params map[string]string) (*slackNotifier, error) {
	token, err := requireParam(params, types.ChannelSlack, "token")
	if err != nil {
		return nil, err
	}
	channel, err := requireParam(params, types.ChannelSlack, "channel")
	if err != nil {
		return nil, err
	}

	return &slackNotifier{api: slack.New(token), channel: channel}, nil
}

func (x *slackNotifier) Kind() types.ChannelKind {
	return types.ChannelSlack
}

func (x *slackNotifier) Notify(ctx context.Context, notice model.SlotNotice) error {
	_, _, err := x.api.PostMessageContext(ctx, x.channel,
		slack.MsgOptionText(slackText(notice), false))
	if err != nil {
		return goerr.Wrap(err, "failed to post the slack message",
			goerr.V("channel", x.channel), goerr.T(types.TagNotify))
	}
	return nil
}

func slackText(n model.SlotNotice) string {
	return fmt.Sprintf("Slot found for *%s* project:\n*%s* at *%s*",
		n.Project, n.DateLabel(), n.TimeLabel())
}
