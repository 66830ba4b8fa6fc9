package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"frostmod/internal/eventlog"
	"frostmod/internal/moderation"
	"frostmod/internal/mute"
	"frostmod/internal/search"
	"frostmod/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const defaultWelcomeTemplate = "Welcome {user}! You are member #{memberCount}."

// factPassage is the context paragraph the question answering model reads
// from when handling /ask.
const factPassage = "FrostMod is a moderation bot for Discord servers. It filters harmful messages, " +
	"warns and mutes members, welcomes new arrivals, and keeps a log of moderation activity. " +
	"It can also search the web and analyze the tone of a message. " +
	"Server managers configure it with slash commands such as /filter, /welcome, and /mutedrole."

type commandHandler func(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption)

type command struct {
	requiresManage bool
	handler        commandHandler
}

func (b *Bot) commandTable() map[string]command {
	return map[string]command{
		"help":        {handler: b.handleHelp},
		"status":      {handler: b.handleStatus},
		"welcome":     {requiresManage: true, handler: b.handleWelcome},
		"wmessage":    {requiresManage: true, handler: b.handleWelcomeMessage},
		"joinrole":    {requiresManage: true, handler: b.handleJoinRole},
		"ignorelinks": {requiresManage: true, handler: b.handleIgnoreChannel},
		"filter":      {requiresManage: true, handler: b.handleFilter},
		"logs":        {requiresManage: true, handler: b.handleLogs},
		"mutedrole":   {requiresManage: true, handler: b.handleMutedRole},
		"warn":        {requiresManage: true, handler: b.handleWarn},
		"mute":        {requiresManage: true, handler: b.handleMute},
		"ask":         {handler: b.handleAsk},
		"search":      {handler: b.handleSearch},
		"analyze":     {handler: b.handleAnalyze},
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.engine.SetSelfID(session.State.User.ID)
	_ = session.UpdateGameStatus(0, "over this server | /help")
	b.logger.Info("discord ready", zap.String("user", session.State.User.Username))
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.GuildID == "" {
		return
	}

	ctx := context.Background()
	_, err := b.engine.HandleMessage(ctx, moderation.Message{
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		MessageID: msg.ID,
		AuthorID:  msg.Author.ID,
		AuthorTag: userTag(msg.Author),
		AuthorBot: msg.Author.Bot,
		Content:   msg.Content,
	})
	if err != nil {
		b.logger.Warn("message handling failed", zap.String("guild_id", msg.GuildID), zap.Error(err))
	}
}

func (b *Bot) onGuildMemberAdd(session *discordgo.Session, event *discordgo.GuildMemberAdd) {
	if event.GuildID == "" || event.User == nil {
		return
	}
	ctx := context.Background()
	current := b.guildSettings(ctx, event.GuildID)

	serverName := event.GuildID
	memberCount := 0
	if guild, err := session.State.Guild(event.GuildID); err == nil {
		serverName = guild.Name
		memberCount = guild.MemberCount
	}

	if current.WelcomeChannelID != "" {
		template := current.WelcomeMessage
		if template == "" {
			template = defaultWelcomeTemplate
		}
		content := strings.ReplaceAll(template, "{user}", event.User.Mention())
		content = strings.ReplaceAll(content, "{memberCount}", fmt.Sprintf("%d", memberCount))
		if _, err := session.ChannelMessageSend(current.WelcomeChannelID, content); err != nil {
			b.logger.Debug("welcome message failed", zap.String("guild_id", event.GuildID), zap.Error(err))
		}
	}

	if current.AutoRoleID != "" {
		if err := session.GuildMemberRoleAdd(event.GuildID, event.User.ID, current.AutoRoleID); err != nil {
			b.logger.Warn("join role assignment failed", zap.String("guild_id", event.GuildID), zap.String("user_id", event.User.ID), zap.Error(err))
		}
	}

	now := time.Now()
	if err := b.store.AddMemberJoin(ctx, storage.MemberEvent{
		GuildID:    event.GuildID,
		UserID:     event.User.ID,
		Username:   userTag(event.User),
		ServerName: serverName,
		CreatedAt:  now,
	}); err != nil {
		b.logger.Warn("member join record failed", zap.Error(err))
	}

	entry := eventlog.Entry{
		GuildID:   event.GuildID,
		UserID:    event.User.ID,
		Username:  userTag(event.User),
		Kind:      eventlog.KindMemberJoined,
		Detail:    fmt.Sprintf("member_count=%d", memberCount),
		CreatedAt: now,
	}
	b.events.Log(ctx, entry)
	b.logsChannelNotify(ctx, event.GuildID, entry)
}

func (b *Bot) onGuildMemberRemove(session *discordgo.Session, event *discordgo.GuildMemberRemove) {
	if event.GuildID == "" || event.User == nil {
		return
	}
	ctx := context.Background()

	serverName := event.GuildID
	if guild, err := session.State.Guild(event.GuildID); err == nil {
		serverName = guild.Name
	}

	now := time.Now()
	if err := b.store.AddMemberLeave(ctx, storage.MemberEvent{
		GuildID:    event.GuildID,
		UserID:     event.User.ID,
		Username:   userTag(event.User),
		ServerName: serverName,
		CreatedAt:  now,
	}); err != nil {
		b.logger.Warn("member leave record failed", zap.Error(err))
	}

	entry := eventlog.Entry{
		GuildID:   event.GuildID,
		UserID:    event.User.ID,
		Username:  userTag(event.User),
		Kind:      eventlog.KindMemberLeft,
		CreatedAt: now,
	}
	b.events.Log(ctx, entry)
	b.logsChannelNotify(ctx, event.GuildID, entry)
}

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := interaction.ApplicationCommandData()
	cmd, ok := b.commandTable()[data.Name]
	if !ok {
		return
	}

	if interaction.GuildID == "" {
		b.respond(session, interaction, "This command only works inside a server.", true)
		return
	}
	if interaction.Member == nil || interaction.Member.User == nil {
		return
	}

	if cmd.requiresManage && interaction.Member.Permissions&discordgo.PermissionManageServer == 0 {
		b.logger.Debug("command rejected",
			zap.String("command", data.Name),
			zap.String("user_id", interaction.Member.User.ID),
			zap.Error(moderation.ErrPermissionDenied))
		b.respond(session, interaction, "You need the Manage Server permission to use this command.", true)
		return
	}

	subject := interaction.GuildID + ":" + interaction.Member.User.ID
	if result := b.gate.TryAcquire(data.Name, subject); !result.Allowed {
		b.respond(session, interaction, fmt.Sprintf("Please wait %.1f more seconds before using /%s again.", result.RetryAfter, data.Name), true)
		return
	}

	cmd.handler(context.Background(), session, interaction, data.Options)
}

func (b *Bot) handleHelp(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	fields := []*discordgo.MessageEmbedField{
		{Name: "/filter", Value: "Set the content filter level (light, moderate, strict, off)."},
		{Name: "/warn", Value: "Warn a member."},
		{Name: "/mute", Value: "Mute a member, optionally for a number of minutes."},
		{Name: "/mutedrole", Value: "Set the role applied to muted members."},
		{Name: "/logs", Value: "Set the moderation log channel."},
		{Name: "/ignorelinks", Value: "Exempt a channel from the content filter."},
		{Name: "/welcome", Value: "Set the welcome channel."},
		{Name: "/wmessage", Value: "Set the welcome message template."},
		{Name: "/joinrole", Value: "Set the role granted to new members."},
		{Name: "/status", Value: "Show bot status and recent activity."},
		{Name: "/ask", Value: "Ask the bot a question."},
		{Name: "/search", Value: "Search the web."},
		{Name: "/analyze", Value: "Analyze the tone of a message."},
	}
	b.respondEmbed(session, interaction, b.commandEmbed("FrostMod Commands", "Configuration commands require the Manage Server permission.", colorAction, fields), true)
}

func (b *Bot) handleStatus(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	report, err := b.events.Report(ctx, interaction.GuildID, time.Now().Add(-24*time.Hour))
	if err != nil {
		b.logger.Warn("status report failed", zap.Error(err))
		report = map[string]int{}
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Ping", Value: fmt.Sprintf("%dms", session.HeartbeatLatency().Milliseconds()), Inline: true},
		{Name: "Uptime", Value: formatUptime(time.Since(b.startedAt)), Inline: true},
		{Name: "Servers", Value: fmt.Sprintf("%d", len(session.State.Guilds)), Inline: true},
		{Name: "Filtered (24h)", Value: fmt.Sprintf("%d", report[eventlog.KindMessageFiltered]), Inline: true},
		{Name: "Warned (24h)", Value: fmt.Sprintf("%d", report[eventlog.KindUserWarned]), Inline: true},
		{Name: "Muted (24h)", Value: fmt.Sprintf("%d", report[eventlog.KindUserMuted]), Inline: true},
		{Name: "Joins (24h)", Value: fmt.Sprintf("%d", report[eventlog.KindMemberJoined]), Inline: true},
		{Name: "Leaves (24h)", Value: fmt.Sprintf("%d", report[eventlog.KindMemberLeft]), Inline: true},
	}
	b.respondEmbed(session, interaction, b.commandEmbed("FrostMod Status", "Activity over the last 24 hours.", colorAction, fields), true)
}

func (b *Bot) handleWelcome(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	channel := optChannel(session, options, "channel")
	if channel == nil {
		b.respond(session, interaction, "Could not resolve that channel.", true)
		return
	}
	current := b.guildSettings(ctx, interaction.GuildID)
	current.WelcomeChannelID = channel.ID
	if err := b.saveSettings(ctx, current); err != nil {
		b.logger.Warn("welcome channel update failed", zap.Error(err))
		b.respond(session, interaction, "Could not save the welcome channel.", true)
		return
	}
	b.respond(session, interaction, "Welcome channel set to <#"+channel.ID+">.", true)
}

func (b *Bot) handleWelcomeMessage(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	message := optString(options, "message")
	if message == "" {
		b.respond(session, interaction, "The welcome message cannot be empty.", true)
		return
	}
	current := b.guildSettings(ctx, interaction.GuildID)
	current.WelcomeMessage = message
	if err := b.saveSettings(ctx, current); err != nil {
		b.logger.Warn("welcome message update failed", zap.Error(err))
		b.respond(session, interaction, "Could not save the welcome message.", true)
		return
	}
	b.respond(session, interaction, "Welcome message updated.", true)
}

func (b *Bot) handleJoinRole(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	role := optRole(session, interaction.GuildID, options, "role")
	if role == nil {
		b.respond(session, interaction, "Could not resolve that role.", true)
		return
	}
	current := b.guildSettings(ctx, interaction.GuildID)
	current.AutoRoleID = role.ID
	if err := b.saveSettings(ctx, current); err != nil {
		b.logger.Warn("join role update failed", zap.Error(err))
		b.respond(session, interaction, "Could not save the join role.", true)
		return
	}
	b.respond(session, interaction, "New members will receive the "+role.Name+" role.", true)
}

func (b *Bot) handleIgnoreChannel(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	channel := optChannel(session, options, "channel")
	if channel == nil {
		b.respond(session, interaction, "Could not resolve that channel.", true)
		return
	}
	current := b.guildSettings(ctx, interaction.GuildID)
	current.IgnoredChannelID = channel.ID
	if err := b.saveSettings(ctx, current); err != nil {
		b.logger.Warn("ignored channel update failed", zap.Error(err))
		b.respond(session, interaction, "Could not save the ignored channel.", true)
		return
	}
	b.respond(session, interaction, "The content filter will skip <#"+channel.ID+">.", true)
}

func (b *Bot) handleFilter(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	level := optString(options, "level")
	current := b.guildSettings(ctx, interaction.GuildID)
	if level == "off" {
		current.FilterLevel = ""
	} else {
		current.FilterLevel = level
	}
	if err := b.saveSettings(ctx, current); err != nil {
		b.logger.Warn("filter level update failed", zap.Error(err))
		b.respond(session, interaction, "Could not save the filter level.", true)
		return
	}
	if level == "off" {
		b.respond(session, interaction, "Content filtering disabled.", true)
		return
	}
	b.respond(session, interaction, "Content filter set to "+level+".", true)
}

func (b *Bot) handleLogs(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	channel := optChannel(session, options, "channel")
	if channel == nil {
		b.respond(session, interaction, "Could not resolve that channel.", true)
		return
	}
	current := b.guildSettings(ctx, interaction.GuildID)
	current.LogsChannelID = channel.ID
	if err := b.saveSettings(ctx, current); err != nil {
		b.logger.Warn("logs channel update failed", zap.Error(err))
		b.respond(session, interaction, "Could not save the log channel.", true)
		return
	}
	b.respond(session, interaction, "Moderation logs will be sent to <#"+channel.ID+">.", true)
}

func (b *Bot) handleMutedRole(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	role := optRole(session, interaction.GuildID, options, "role")
	if role == nil {
		b.respond(session, interaction, "Could not resolve that role.", true)
		return
	}
	current := b.guildSettings(ctx, interaction.GuildID)
	current.MutedRoleID = role.ID
	if err := b.saveSettings(ctx, current); err != nil {
		b.logger.Warn("muted role update failed", zap.Error(err))
		b.respond(session, interaction, "Could not save the muted role.", true)
		return
	}
	b.respond(session, interaction, "Muted members will receive the "+role.Name+" role.", true)
}

func (b *Bot) handleWarn(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	target := optUser(session, options, "user")
	if target == nil {
		b.respond(session, interaction, "Could not resolve that member.", true)
		return
	}
	reason := optString(options, "reason")
	if reason == "" {
		reason = "No reason provided"
	}

	now := time.Now()
	if err := b.store.AddWarn(ctx, storage.WarnRecord{
		GuildID:   interaction.GuildID,
		UserID:    target.ID,
		Username:  userTag(target),
		Reason:    reason,
		WarnedBy:  interaction.Member.User.ID,
		CreatedAt: now,
	}); err != nil {
		b.logger.Warn("warn record failed", zap.Error(err))
		b.respond(session, interaction, "Could not record the warning.", true)
		return
	}

	entry := eventlog.Entry{
		GuildID:   interaction.GuildID,
		UserID:    target.ID,
		Username:  userTag(target),
		ChannelID: interaction.ChannelID,
		Kind:      eventlog.KindUserWarned,
		Detail:    fmt.Sprintf("by=%s reason=%q", interaction.Member.User.ID, reason),
		CreatedAt: now,
	}
	b.events.Log(ctx, entry)
	b.logsChannelNotify(ctx, interaction.GuildID, entry)

	total := ""
	if warns, err := b.store.ListWarns(ctx, interaction.GuildID, target.ID); err == nil {
		total = fmt.Sprintf(" They now have %d warning(s).", len(warns))
	}
	b.respond(session, interaction, fmt.Sprintf("%s has been warned: %s.%s", target.Mention(), reason, total), false)
}

func (b *Bot) handleMute(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	target := optUser(session, options, "user")
	if target == nil {
		b.respond(session, interaction, "Could not resolve that member.", true)
		return
	}
	minutes := int(optInt(options, "minutes"))
	reason := optString(options, "reason")
	if reason == "" {
		reason = "No reason provided"
	}

	current := b.guildSettings(ctx, interaction.GuildID)
	err := b.mutes.Mute(ctx, mute.Request{
		GuildID:         interaction.GuildID,
		TargetID:        target.ID,
		TargetTag:       userTag(target),
		MutedBy:         interaction.Member.User.ID,
		Reason:          reason,
		DurationMinutes: minutes,
		MutedRoleID:     current.MutedRoleID,
	})
	switch {
	case err == nil:
	case errors.Is(err, moderation.ErrConfigMissing):
		b.respond(session, interaction, "No muted role is configured. Set one with /mutedrole.", true)
		return
	case errors.Is(err, moderation.ErrTargetNotFound):
		b.respond(session, interaction, "That member is not in this server.", true)
		return
	case errors.Is(err, moderation.ErrAlreadyMuted):
		b.respond(session, interaction, "That member is already muted.", true)
		return
	case errors.Is(err, moderation.ErrOperationFailed):
		b.respond(session, interaction, "Could not apply the muted role. Check the bot's role position.", true)
		return
	default:
		b.logger.Warn("mute failed", zap.Error(err))
		b.respond(session, interaction, "The mute could not be completed.", true)
		return
	}

	b.logsChannelNotify(ctx, interaction.GuildID, eventlog.Entry{
		GuildID:   interaction.GuildID,
		UserID:    target.ID,
		Username:  userTag(target),
		ChannelID: interaction.ChannelID,
		Kind:      eventlog.KindUserMuted,
		Detail:    fmt.Sprintf("by=%s reason=%q minutes=%d", interaction.Member.User.ID, reason, minutes),
		CreatedAt: time.Now(),
	})

	if minutes > 0 {
		b.respond(session, interaction, fmt.Sprintf("%s has been muted for %d minute(s): %s.", target.Mention(), minutes, reason), false)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("%s has been muted: %s.", target.Mention(), reason), false)
}

func (b *Bot) handleAsk(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if b.inference == nil {
		b.respond(session, interaction, "Question answering is not configured.", true)
		return
	}
	question := optString(options, "question")
	if question == "" {
		b.respond(session, interaction, "Ask me something first.", true)
		return
	}

	b.respondDeferred(session, interaction)
	answer, err := b.inference.AnswerQuestion(ctx, question, factPassage)
	if err != nil {
		b.logger.Warn("question answering failed", zap.Error(fmt.Errorf("%w: %v", moderation.ErrCollaboratorUnavailable, err)))
		b.followup(session, interaction, "I couldn't come up with an answer to that.")
		return
	}
	if answer == "" {
		b.followup(session, interaction, "I couldn't come up with an answer to that.")
		return
	}
	b.followupEmbed(session, interaction, b.commandEmbed("Answer", answer, colorAction, []*discordgo.MessageEmbedField{
		{Name: "Question", Value: question},
	}))
}

func (b *Bot) handleSearch(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if b.search == nil {
		b.respond(session, interaction, "Web search is not configured.", true)
		return
	}
	query := optString(options, "query")
	if query == "" {
		b.respond(session, interaction, "Give me something to search for.", true)
		return
	}

	b.respondDeferred(session, interaction)
	results, err := b.search.Search(ctx, query)
	if err != nil {
		b.logger.Warn("search failed", zap.String("query", query), zap.Error(fmt.Errorf("%w: %v", moderation.ErrCollaboratorUnavailable, err)))
		b.followup(session, interaction, "The search failed. Try again later.")
		return
	}
	if len(results) == 0 {
		b.followup(session, interaction, "No results found for that query.")
		return
	}

	if answer, ok := search.Extract(query, results); ok {
		fields := []*discordgo.MessageEmbedField{}
		if answer.Additional != "" {
			fields = append(fields, &discordgo.MessageEmbedField{Name: "More", Value: answer.Additional})
		}
		if answer.Source != "" {
			fields = append(fields, &discordgo.MessageEmbedField{Name: "Source", Value: answer.Source, Inline: true})
		}
		b.followupEmbed(session, interaction, b.commandEmbed("Search: "+query, answer.Text, colorAction, fields))
		return
	}

	fields := make([]*discordgo.MessageEmbedField, 0, 3)
	for i, result := range results {
		if i >= 3 {
			break
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: result.Title, Value: result.URL})
	}
	b.followupEmbed(session, interaction, b.commandEmbed("Search: "+query, "Top results.", colorAction, fields))
}

func (b *Bot) handleAnalyze(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if b.inference == nil {
		b.respond(session, interaction, "Message analysis is not configured.", true)
		return
	}
	text := optString(options, "text")
	if text == "" {
		b.respond(session, interaction, "Give me some text to analyze.", true)
		return
	}

	b.respondDeferred(session, interaction)
	toxLabel, toxScore, toxErr := b.inference.ClassifyToxicity(ctx, text)
	sentLabel, sentScore, sentErr := b.inference.ClassifySentiment(ctx, text)
	if toxErr != nil && sentErr != nil {
		b.logger.Warn("analysis failed", zap.Error(fmt.Errorf("%w: %v", moderation.ErrCollaboratorUnavailable, toxErr)))
		b.followup(session, interaction, "Analysis is unavailable right now.")
		return
	}

	fields := []*discordgo.MessageEmbedField{}
	if toxErr == nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Toxicity", Value: fmt.Sprintf("%s (%.0f%%)", toxLabel, toxScore*100), Inline: true})
	}
	if sentErr == nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Sentiment", Value: fmt.Sprintf("%s (%.0f%%)", sentLabel, sentScore*100), Inline: true})
	}
	b.followupEmbed(session, interaction, b.commandEmbed("Analysis", text, colorAction, fields))
}

func (b *Bot) respondDeferred(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

func (b *Bot) followup(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string) {
	_, _ = session.FollowupMessageCreate(interaction.Interaction, true, &discordgo.WebhookParams{Content: content})
}

func (b *Bot) followupEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	_, _ = session.FollowupMessageCreate(interaction.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
}

func optString(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}

func optInt(options []*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	for _, opt := range options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionInteger {
			return opt.IntValue()
		}
	}
	return 0
}

func optChannel(session *discordgo.Session, options []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.Channel {
	for _, opt := range options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionChannel {
			return opt.ChannelValue(session)
		}
	}
	return nil
}

func optRole(session *discordgo.Session, guildID string, options []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.Role {
	for _, opt := range options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionRole {
			return opt.RoleValue(session, guildID)
		}
	}
	return nil
}

func optUser(session *discordgo.Session, options []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.User {
	for _, opt := range options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionUser {
			return opt.UserValue(session)
		}
	}
	return nil
}
