package types

// ChannelKind identifies a notification channel implementation
type ChannelKind string

const (
	// ChannelTelegram delivers through a Telegram bot
	ChannelTelegram ChannelKind = "telegram"
	// ChannelSlack delivers through a Slack bot token
	ChannelSlack ChannelKind = "slack"
)

// AllChannelKinds returns all supported channel kinds
func AllChannelKinds() []ChannelKind {
	return []ChannelKind{
		ChannelTelegram,
		ChannelSlack,
	}
}

// IsValid checks if the channel kind is supported
func (x ChannelKind) IsValid() bool {
	switch x {
	case ChannelTelegram, ChannelSlack:
		return true
	default:
		return false
	}
}

// String returns the string representation of the channel kind
func (x ChannelKind) String() string {
	return string(x)
}

var channelParams = map[ChannelKind][]string{
	ChannelTelegram: {"token", "chat_id"},
	ChannelSlack:    {"token", "channel"},
}

// Params returns the parameter keys recognized by the channel kind
func (x ChannelKind) Params() []string {
	return channelParams[x]
}

// HasParam checks if the given parameter key is recognized by the channel kind
func (x ChannelKind) HasParam(key string) bool {
	for _, p := range channelParams[x] {
		if p == key {
			return true
		}
	}
	return false
}
