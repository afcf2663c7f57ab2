package discord

import (
	"context"

	"github.com/Soypete/star-interview-bot/interview"
	"github.com/bwmarrin/discordgo"
)

const helpText = `**STAR interview practice**
/start - draw 10 skills and begin a new session
/next - get the next question
/hint - one tip for the current question
/skip - skip to the following skill
/answer - see a sample STAR answer
/info - recommended learning resources
/progress - how far you are in the session
Reply with plain text to have your answer evaluated.`

type action func(ctx context.Context, userID string) interview.Reply

// AddCommands returns the slash commands the bot registers.
func AddCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{Name: "start", Description: "Start a new practice session with 10 random skills"},
		{Name: "next", Description: "Get the next STAR interview question"},
		{Name: "hint", Description: "Get a short tip for the current question"},
		{Name: "skip", Description: "Skip the current skill and get the next question"},
		{Name: "answer", Description: "See a sample STAR answer for the current question"},
		{Name: "info", Description: "Get learning resources for the current skill"},
		{Name: "progress", Description: "Show your progress in the current session"},
		{Name: "help", Description: "How to use the interview practice bot"},
	}
}

// actions maps command names to the interview operation they run.
func (c *Client) actions() map[string]action {
	return map[string]action{
		"start":    c.interviewer.Start,
		"next":     c.interviewer.Next,
		"hint":     c.interviewer.Hint,
		"skip":     c.interviewer.Skip,
		"answer":   c.interviewer.SampleAnswer,
		"info":     c.interviewer.Resources,
		"progress": c.interviewer.Summary,
		"help": func(context.Context, string) interview.Reply {
			return interview.Text(helpText)
		},
	}
}

// MakeCommandHandlers returns a map of command names to their respective functions
func (c *Client) MakeCommandHandlers() map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	handlers := make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate))
	for name, act := range c.actions() {
		name, act := name, act
		handlers[name] = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			c.handleInteraction(s, name, act, i)
		}
	}
	return handlers
}
