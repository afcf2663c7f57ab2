package keepalive

import (
	"context"
	"fmt"

	"github.com/Soypete/star-interview-bot/logging"
	"github.com/bwmarrin/discordgo"
)

// Alerter defines the interface for sending alerts
type Alerter interface {
	SendAlert(ctx context.Context, dependency string, message string) error
}

// LogAlerter writes alerts to the logger. Used when no alert channel is configured.
type LogAlerter struct {
	Logger *logging.Logger
}

func (l LogAlerter) SendAlert(_ context.Context, dependency string, message string) error {
	l.Logger.Error("dependency alert", "dependency", dependency, "message", message)
	return nil
}

type channelSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAlerter posts alerts to an operator channel using the bot's own session.
type DiscordAlerter struct {
	sender    channelSender
	channelID string
	logger    *logging.Logger
}

func NewDiscordAlerter(session *discordgo.Session, channelID string, logger *logging.Logger) *DiscordAlerter {
	return &DiscordAlerter{sender: session, channelID: channelID, logger: logger}
}

// SendAlert sends an alert message to the configured Discord channel
func (da *DiscordAlerter) SendAlert(_ context.Context, dependency string, message string) error {
	_, err := da.sender.ChannelMessageSend(da.channelID, fmt.Sprintf("**Alert:** %s", message))
	if err != nil {
		da.logger.Error("failed to send Discord alert", "error", err.Error(), "dependency", dependency, "channelID", da.channelID)
		return fmt.Errorf("failed to send Discord message: %w", err)
	}
	da.logger.Info("Discord alert sent", "dependency", dependency, "channelID", da.channelID)
	return nil
}
