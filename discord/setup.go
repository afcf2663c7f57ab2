package discord

import (
	"context"
	"fmt"

	"github.com/Soypete/star-interview-bot/interview"
	"github.com/Soypete/star-interview-bot/logging"
	"github.com/Soypete/star-interview-bot/messagequeue"
	"github.com/bwmarrin/discordgo"
)

// Interviewer runs the practice commands. interview.Manager implements it.
type Interviewer interface {
	Start(ctx context.Context, userID string) interview.Reply
	Next(ctx context.Context, userID string) interview.Reply
	Hint(ctx context.Context, userID string) interview.Reply
	Skip(ctx context.Context, userID string) interview.Reply
	SampleAnswer(ctx context.Context, userID string) interview.Reply
	Resources(ctx context.Context, userID string) interview.Reply
	Summary(ctx context.Context, userID string) interview.Reply
	SubmitAnswer(ctx context.Context, userID, text string) interview.Reply
}

// messenger is the part of *discordgo.Session the handlers send through.
type messenger interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Client struct {
	Session      *discordgo.Session
	interviewer  Interviewer
	queue        *messagequeue.Queue
	logger       *logging.Logger
	messageLimit int
}

// NewClient builds a client without connecting. A limit of zero uses MessageLimit.
func NewClient(interviewer Interviewer, queue *messagequeue.Queue, limit int, logger *logging.Logger) *Client {
	if limit <= 0 {
		limit = MessageLimit
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		interviewer:  interviewer,
		queue:        queue,
		logger:       logger,
		messageLimit: limit,
	}
}

// Setup connects the bot to discord, registers the slash commands and the message handler.
func Setup(authToken string, interviewer Interviewer, queue *messagequeue.Queue, limit int, logger *logging.Logger) (*Client, error) {
	if authToken == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}
	session, err := discordgo.New("Bot " + authToken)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	c := NewClient(interviewer, queue, limit, logger)
	c.Session = session

	commandHandlers := c.MakeCommandHandlers()
	session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := commandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})
	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		c.handleMessage(s, s.State.User.ID, m)
	})

	// opens websocket connection
	err = session.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening connection to discord: %w", err)
	}
	if err := c.registerCommands(session.State.User.ID, session); err != nil {
		if closeErr := session.Close(); closeErr != nil {
			c.logger.Warn("error closing discord session", "error", closeErr.Error())
		}
		return nil, err
	}

	c.logger.Info("connected to discord", "botUser", session.State.User.Username)
	return c, nil
}

type commandCreator interface {
	ApplicationCommandCreate(appID string, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
}

// registerCommands creates every slash command globally for the bot application.
func (c *Client) registerCommands(appID string, creator commandCreator) error {
	commands := AddCommands()
	for _, v := range commands {
		if _, err := creator.ApplicationCommandCreate(appID, "", v); err != nil {
			return fmt.Errorf("error creating command %s: %w", v.Name, err)
		}
	}
	c.logger.Info("registered slash commands", "commands", len(commands))
	return nil
}

// Close disconnects from discord.
func (c *Client) Close() error {
	if c.Session == nil {
		return nil
	}
	return c.Session.Close()
}
