package model

// BotCommand is the closed set of text commands the bot understands.
type BotCommand int

const (
	CommandUnrecognized BotCommand = iota
	CommandHelp
	CommandToday
	CommandGoals
	CommandTip
)

func (c BotCommand) String() string {
	switch c {
	case CommandHelp:
		return "help"
	case CommandToday:
		return "today"
	case CommandGoals:
		return "goals"
	case CommandTip:
		return "tip"
	default:
		return "unrecognized"
	}
}
