package interview

// Fixed texts sent to the user.
const (
	MsgSessionStarted     = "🚀 Session initialized! Ready to practice your interview skills. Type /next to get your first question."
	MsgSessionMissing     = "❗ Please start a session using /start"
	MsgQuestionMissing    = "❗ Use /next to get a question first"
	MsgHintAlreadyShown   = "ℹ️ Hint already shown for this question. Use /next to get a new one."
	MsgServiceUnavailable = "⚠️ The interview service is unavailable right now. Please try the same command again."
)

// Headers put in front of generated text that fits in one message.
const (
	HeaderQuestion     = "**Question:**\n"
	HeaderHint         = "💡 **Hint:**\n"
	HeaderSampleAnswer = "📘 **Sample Answer:**\n"
	HeaderResources    = "📚 **Recommended Resources:**\n"
	HeaderFeedback     = "📊 **Feedback:**\n"
)

// Message is one logical reply. Header is only used when Body fits in a single transport message.
type Message struct {
	Header string
	Body   string
}

// Reply is what a command produces, in send order. An empty Reply means nothing is sent.
type Reply struct {
	Messages []Message
}

// Text builds a reply holding a single fixed message.
func Text(body string) Reply {
	return Reply{Messages: []Message{{Body: body}}}
}

func generated(header, body string) Reply {
	return Reply{Messages: []Message{{Header: header, Body: body}}}
}

// Empty reports whether the reply has nothing to send.
func (r Reply) Empty() bool {
	return len(r.Messages) == 0
}
