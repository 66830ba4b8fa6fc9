package bot

import (
	"context"
	"fmt"
	"time"

	"frostmod/internal/classifier"
	"frostmod/internal/config"
	"frostmod/internal/cooldown"
	"frostmod/internal/eventlog"
	"frostmod/internal/inference"
	"frostmod/internal/moderation"
	"frostmod/internal/mute"
	"frostmod/internal/search"
	"frostmod/internal/settings"
	"frostmod/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	colorAction  = 0x5865F2
	colorWarning = 0xF59E0B
	colorError   = 0xEF4444
)

type Bot struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *storage.Store
	settings  *settings.Store
	gate      *cooldown.Gate
	events    *eventlog.Logger
	inference *inference.Client
	search    *search.Client
	engine    *moderation.Engine
	mutes     *mute.Scheduler
	session   *discordgo.Session
	startedAt time.Time
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, settingsStore *settings.Store, cls classifier.Classifier, gateScoped bool, gate *cooldown.Gate, events *eventlog.Logger, inferenceClient *inference.Client, searchClient *search.Client) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	b := &Bot{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		settings:  settingsStore,
		gate:      gate,
		events:    events,
		inference: inferenceClient,
		search:    searchClient,
		session:   session,
		startedAt: time.Now(),
	}

	engineCfg := moderation.Config{
		AutoWarnScore:  cfg.Moderation.AutoWarnScore,
		NoticeLifetime: time.Duration(cfg.Moderation.NoticeLifetimeSeconds) * time.Second,
	}
	b.engine = moderation.New(engineCfg, settingsStore, cls, gate, gateScoped, store, events, b, logger)
	b.mutes = mute.NewScheduler(store, b, events, logger)

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onGuildMemberRemove)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	if err := b.registerCommands(); err != nil {
		return err
	}

	// Fire overdue unmutes and re-arm pending ones left over from a
	// previous run.
	if err := b.mutes.Rescan(context.Background(), b.mutedRoleFor); err != nil {
		b.logger.Warn("mute rescan failed", zap.Error(err))
	}

	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	b.mutes.Stop()
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) mutedRoleFor(ctx context.Context, guildID string) string {
	current, found, err := b.settings.Get(ctx, guildID)
	if err != nil || !found {
		return ""
	}
	return current.MutedRoleID
}

// DeleteMessage implements the gateway surface the moderation engine acts
// through.
func (b *Bot) DeleteMessage(channelID, messageID string) error {
	return b.session.ChannelMessageDelete(channelID, messageID)
}

func (b *Bot) SendNotice(channelID, content string) (string, error) {
	msg, err := b.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (b *Bot) SendLog(channelID string, entry eventlog.Entry) error {
	embed := &discordgo.MessageEmbed{
		Title:       "Moderation Log",
		Description: entry.Detail,
		Color:       colorWarning,
		Timestamp:   entry.CreatedAt.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: "<@" + entry.UserID + ">", Inline: true},
			{Name: "Channel", Value: "<#" + entry.ChannelID + ">", Inline: true},
			{Name: "Event", Value: entry.Kind, Inline: true},
		},
	}
	_, err := b.session.ChannelMessageSendEmbed(channelID, embed)
	return err
}

func (b *Bot) ChannelExists(channelID string) bool {
	if _, err := b.session.State.Channel(channelID); err == nil {
		return true
	}
	_, err := b.session.Channel(channelID)
	return err == nil
}

// MemberExists implements the role surface the mute scheduler acts through.
func (b *Bot) MemberExists(guildID, userID string) bool {
	_, err := b.member(guildID, userID)
	return err == nil
}

func (b *Bot) MemberHasRole(guildID, userID, roleID string) (bool, error) {
	member, err := b.member(guildID, userID)
	if err != nil {
		return false, err
	}
	for _, id := range member.Roles {
		if id == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (b *Bot) AddRole(guildID, userID, roleID string) error {
	return b.session.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (b *Bot) RemoveRole(guildID, userID, roleID string) error {
	return b.session.GuildMemberRoleRemove(guildID, userID, roleID)
}

func (b *Bot) member(guildID, userID string) (*discordgo.Member, error) {
	if member, err := b.session.State.Member(guildID, userID); err == nil {
		return member, nil
	}
	return b.session.GuildMember(guildID, userID)
}

func (b *Bot) respond(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
}

func (b *Bot) respondEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	if embed == nil {
		b.respond(session, interaction, "No response available.", ephemeral)
		return
	}
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  flags,
		},
	})
}

func (b *Bot) commandEmbed(title, description string, color int, fields []*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields:      fields,
	}
}

func (b *Bot) guildSettings(ctx context.Context, guildID string) storage.GuildSettings {
	current, found, err := b.settings.Get(ctx, guildID)
	if err != nil {
		b.logger.Warn("settings read failed", zap.String("guild_id", guildID), zap.Error(err))
	}
	if !found {
		return storage.GuildSettings{GuildID: guildID}
	}
	return current
}

func (b *Bot) saveSettings(ctx context.Context, updated storage.GuildSettings) error {
	if err := b.settings.Upsert(ctx, updated); err != nil {
		return err
	}
	b.settings.Invalidate(updated.GuildID)
	return nil
}

func userTag(user *discordgo.User) string {
	if user == nil {
		return ""
	}
	if user.Discriminator != "" && user.Discriminator != "0" {
		return user.Username + "#" + user.Discriminator
	}
	return user.Username
}

func (b *Bot) logsChannelNotify(ctx context.Context, guildID string, entry eventlog.Entry) {
	current := b.guildSettings(ctx, guildID)
	if current.LogsChannelID == "" || !b.ChannelExists(current.LogsChannelID) {
		return
	}
	if err := b.SendLog(current.LogsChannelID, entry); err != nil {
		b.logger.Debug("logs channel delivery failed", zap.String("guild_id", guildID), zap.Error(err))
	}
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
