package discord

import (
	"context"
	"strings"

	"github.com/Soypete/star-interview-bot/interview"
	"github.com/Soypete/star-interview-bot/metrics"
	"github.com/bwmarrin/discordgo"
)

// interactionUser returns the invoking user for guild and direct message interactions.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// handleInteraction defers the response right away, then runs the command on the user's queue
// and fills in the deferred response. Extra segments go out as follow-ups.
func (c *Client) handleInteraction(s messenger, name string, act action, i *discordgo.InteractionCreate) {
	metrics.DiscordMessageRecieved.Add(1)
	user := interactionUser(i)
	if user == nil {
		c.logger.Error("interaction has no user", "command", name, "interactionID", i.ID)
		return
	}
	logger := c.logger.WithUser(user.ID).WithCommand(name)

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		logger.Error("error deferring interaction response", "error", err.Error())
		metrics.DiscordMessageSendError.Add(1)
		return
	}

	err = c.queue.Submit(user.ID, func(ctx context.Context) {
		c.sendInteractionReply(s, i.Interaction, act(ctx, user.ID), name)
	})
	if err != nil {
		logger.Warn("could not queue command", "error", err.Error())
		c.sendInteractionReply(s, i.Interaction, interview.Text(interview.MsgServiceUnavailable), name)
	}
}

func (c *Client) sendInteractionReply(s messenger, interaction *discordgo.Interaction, reply interview.Reply, name string) {
	segments := renderReply(reply, c.messageLimit)
	if len(segments) == 0 {
		segments = []string{"✅"}
	}

	first := segments[0]
	if _, err := s.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{Content: &first}); err != nil {
		c.logger.Error("error editing interaction response", "command", name, "error", err.Error())
		metrics.DiscordMessageSendError.Add(1)
		return
	}
	metrics.DiscordMessageSent.Add(1)

	for _, segment := range segments[1:] {
		if _, err := s.FollowupMessageCreate(interaction, true, &discordgo.WebhookParams{Content: segment}); err != nil {
			c.logger.Error("error sending follow up message", "command", name, "error", err.Error())
			metrics.DiscordMessageSendError.Add(1)
			return
		}
		metrics.DiscordMessageSent.Add(1)
	}
}

// parseCommand recognises text commands like "/next". The command name is returned
// without the slash; ok is false for text that is not a command.
func parseCommand(content string) (name string, ok bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "/") {
		return "", false
	}
	fields := strings.Fields(content[1:])
	if len(fields) == 0 {
		return "", true
	}
	return strings.ToLower(fields[0]), true
}

// handleMessage runs text commands and treats any other text as an answer to the open question.
func (c *Client) handleMessage(s messenger, botID string, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == botID {
		return
	}
	if strings.TrimSpace(m.Content) == "" {
		return
	}
	metrics.DiscordMessageRecieved.Add(1)

	userID := m.Author.ID
	channelID := m.ChannelID

	var job func(ctx context.Context) interview.Reply
	if name, isCommand := parseCommand(m.Content); isCommand {
		act, known := c.actions()[name]
		if !known {
			return
		}
		job = func(ctx context.Context) interview.Reply { return act(ctx, userID) }
	} else {
		text := m.Content
		job = func(ctx context.Context) interview.Reply { return c.interviewer.SubmitAnswer(ctx, userID, text) }
	}

	err := c.queue.Submit(userID, func(ctx context.Context) {
		c.sendChannelReply(s, channelID, job(ctx))
	})
	if err != nil {
		c.logger.WithUser(userID).Warn("could not queue message", "error", err.Error())
	}
}

func (c *Client) sendChannelReply(s messenger, channelID string, reply interview.Reply) {
	for _, segment := range renderReply(reply, c.messageLimit) {
		if _, err := s.ChannelMessageSend(channelID, segment); err != nil {
			c.logger.Error("error sending message to channel", "error", err.Error(), "channelID", channelID)
			metrics.DiscordMessageSendError.Add(1)
			return
		}
		metrics.DiscordMessageSent.Add(1)
	}
}
