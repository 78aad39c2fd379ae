// Package notify delivers slot notices to the operator's messaging channel.
// One channel kind is active per configuration; delivery has no retry.
package notify

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/slotwatch/pkg/domain/interfaces"
	"github.com/secmon-lab/slotwatch/pkg/domain/model"
	"github.com/secmon-lab/slotwatch/pkg/domain/types"
)

// New builds the notifier matching the configured channel kind
func New(cfg *model.ChannelConfig) (interfaces.Notifier, error) {
	if cfg == nil {
		return nil, goerr.New("no notification channel configured", goerr.T(types.TagConfig))
	}

	switch cfg.Kind {
	case types.ChannelTelegram:
		return newTelegram(cfg.Params)
	case types.ChannelSlack:
		return newSlack(cfg.Params)
	default:
		return nil, goerr.New("unknown notification channel kind",
			goerr.V("kind", cfg.Kind), goerr.T(types.TagConfig))
	}
}

func requireParam(params map[string]string, kind types.ChannelKind, key string) (string, error) {
	v := params[key]
	if v == "" {
		return "", goerr.New("missing notification channel parameter",
			goerr.V("kind", kind), goerr.V("param", key), goerr.T(types.TagConfig))
	}
	return v, nil
}
