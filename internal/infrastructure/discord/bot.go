package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"CompetitorBot/internal/config"
	"CompetitorBot/internal/domain"
	"CompetitorBot/internal/ports"
	"CompetitorBot/internal/usecase"
)

// User-facing replies. Every caught failure maps onto one of these; the bot
// never goes silent on an error.
const (
	msgNoSources = "I couldn't gather sources right now. Please try again in a minute or rephrase your question."
	msgFailure   = "Something went wrong while researching or generating the answer."
	msgTimeout   = "That one took too long to research. Try a narrower, more specific question."
	msgReset     = "Conversation context cleared. Your next question starts fresh."
	msgNoReset   = "There was no conversation context to clear."

	helpText = "Ask me about Red Hat OpenShift Virtualization and its competitors.\n" +
		"`/ask question:<text>` - research competitors and answer with sources\n" +
		"`/reset` - forget this channel's conversation context\n" +
		"`/help` - this message\n" +
		"You can also prefix a normal message with the ask prefix."
)

// BotDeps wires the chat adapter.
type BotDeps struct {
	Config          config.DiscordConfig
	Gatherer        ports.Gatherer
	Orchestrator    ports.Orchestrator
	Threads         ports.ThreadRegistry
	ResearchEnabled bool
	Logger          *slog.Logger
}

// Bot is the Discord-facing adapter: slash commands, a prefix trigger, and
// chunked delivery of answers.
type Bot struct {
	session         *discordgo.Session
	guildID         string
	prefix          string
	gatherer        ports.Gatherer
	orchestrator    ports.Orchestrator
	threads         ports.ThreadRegistry
	researchEnabled bool
	logger          *slog.Logger

	ctx context.Context
}

// New builds the bot and its Discord session without opening it.
func New(deps BotDeps) (*Bot, error) {
	session, err := discordgo.New("Bot " + deps.Config.Token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	prefix := strings.TrimSpace(deps.Config.Prefix)
	if prefix == "" {
		prefix = "!ask"
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Bot{
		session:         session,
		guildID:         deps.Config.GuildID,
		prefix:          prefix,
		gatherer:        deps.Gatherer,
		orchestrator:    deps.Orchestrator,
		threads:         deps.Threads,
		researchEnabled: deps.ResearchEnabled,
		logger:          logger,
	}, nil
}

// Start registers handlers and opens the gateway session. The session closes
// when ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteraction)
	b.session.AddHandler(b.onMessage)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}

	go func() {
		<-ctx.Done()
		_ = b.session.Close()
	}()

	return nil
}

// Stop closes the gateway session.
func (b *Bot) Stop() {
	_ = b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("logged in", "user", r.User.Username)
	if err := b.registerCommands(s); err != nil {
		b.logger.Error("register commands failed", "error", err)
	}
}

func (b *Bot) registerCommands(s *discordgo.Session) error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "ask",
			Description: "Ask about OpenShift Virtualization and competitors",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "question",
					Description: "What do you want to know?",
					Required:    true,
				},
			},
		},
		{Name: "reset", Description: "Forget this channel's conversation context"},
		{Name: "help", Description: "Show what this bot can do"},
	}

	for _, cmd := range commands {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, b.guildID, cmd); err != nil {
			return fmt.Errorf("register /%s: %w", cmd.Name, err)
		}
	}
	return nil
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "ask":
		b.handleAsk(s, i)
	case "reset":
		b.handleReset(s, i)
	case "help":
		b.respondNow(s, i, helpText)
	}
}

func (b *Bot) handleAsk(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		b.logger.Error("ask ack failed", "error", err)
		return
	}

	var question string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "question" {
			question = opt.StringValue()
			break
		}
	}

	// the poll loop blocks for up to the run timeout; keep it off the
	// gateway event path
	go func() {
		answer, userErr := b.answer(i.ChannelID, question)
		if userErr != "" {
			b.editResponse(s, i.Interaction, userErr)
			return
		}
		b.sendChunksInteraction(s, i.Interaction, i.ChannelID, answer)
	}()
}

func (b *Bot) handleReset(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if b.threads.Reset(i.ChannelID) {
		b.respondNow(s, i, msgReset)
		return
	}
	b.respondNow(s, i, msgNoReset)
}

// onMessage implements the prefix trigger: "<prefix> question" behaves like
// /ask, replying with plain channel messages.
func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, b.prefix) {
		return
	}
	question := strings.TrimSpace(strings.TrimPrefix(m.Content, b.prefix))
	if question == "" {
		return
	}

	go func() {
		answer, userErr := b.answer(m.ChannelID, question)
		if userErr != "" {
			if _, err := s.ChannelMessageSend(m.ChannelID, userErr); err != nil {
				b.logger.Error("reply send failed", "channel", m.ChannelID, "error", err)
			}
			return
		}
		for _, chunk := range splitMessage(answer, maxChunkChars) {
			if _, err := s.ChannelMessageSend(m.ChannelID, chunk); err != nil {
				b.logger.Error("chunk send failed", "channel", m.ChannelID, "error", err)
				return
			}
		}
	}()
}

// answer runs the full pipeline for one question and returns either the
// reply text or the user-facing error message.
func (b *Bot) answer(channelID, question string) (answer, userErr string) {
	logger := b.logger.With("channel", channelID, "interaction", uuid.NewString())
	ctx := b.runContext()

	var docs []domain.ResearchDocument
	if b.researchEnabled {
		docs = b.gatherer.Gather(ctx, question)
		if len(docs) == 0 {
			logger.Warn("no usable sources gathered")
			return "", msgNoSources
		}
	}

	threadID, err := b.threads.GetOrCreate(ctx, channelID)
	if err != nil {
		logger.Error("thread lookup failed", "error", err)
		return "", msgFailure
	}

	text, err := b.orchestrator.Answer(ctx, threadID, question, docs)
	if err != nil {
		var runErr *usecase.RunFailureError
		switch {
		case errors.Is(err, usecase.ErrRunTimeout):
			logger.Error("assistant run timed out", "thread", threadID)
			return "", msgTimeout
		case errors.As(err, &runErr):
			logger.Error("assistant run failed", "thread", threadID, "status", runErr.Status)
			return "", msgFailure
		default:
			logger.Error("answer failed", "thread", threadID, "error", err)
			return "", msgFailure
		}
	}

	logger.Info("question answered", "thread", threadID, "documents", len(docs), "chars", len(text))
	return text, ""
}

func (b *Bot) runContext() context.Context {
	if b.ctx != nil {
		return b.ctx
	}
	return context.Background()
}

// sendChunksInteraction delivers the first chunk as the deferred response
// edit and the rest as follow-up channel messages.
func (b *Bot) sendChunksInteraction(s *discordgo.Session, interaction *discordgo.Interaction, channelID, answer string) {
	chunks := splitMessage(answer, maxChunkChars)
	if len(chunks) == 0 {
		return
	}

	b.editResponse(s, interaction, chunks[0])
	for _, chunk := range chunks[1:] {
		if _, err := s.ChannelMessageSend(channelID, chunk); err != nil {
			b.logger.Error("follow-up send failed", "channel", channelID, "error", err)
			return
		}
	}
}

func (b *Bot) respondNow(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		b.logger.Error("interaction respond failed", "error", err)
	}
}

func (b *Bot) editResponse(s *discordgo.Session, interaction *discordgo.Interaction, content string) {
	if _, err := s.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		b.logger.Error("response edit failed", "error", err)
	}
}
