package notify

// Message formatters exposed for tests
var (
	TelegramText = telegramText
	SlackText    = slackText
)
