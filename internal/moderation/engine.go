// Package moderation decides what happens to a message: delete it, warn the
// author, log it, or nothing. All policy lives in the guild settings row;
// the engine itself is stateless across messages.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"frostmod/internal/classifier"
	"frostmod/internal/cooldown"
	"frostmod/internal/eventlog"
	"frostmod/internal/settings"
	"frostmod/internal/storage"

	"go.uber.org/zap"
)

// defaultAutoWarnScore is the high-confidence toxicity above which a warn
// record is written regardless of the delete decision.
const defaultAutoWarnScore = 0.9

// defaultNoticeLifetime is how long the in-channel removal notice stays up.
const defaultNoticeLifetime = 5 * time.Second

const systemActor = "system"

// Config carries the tunable engine thresholds. Zero values select the
// defaults.
type Config struct {
	AutoWarnScore  float64
	NoticeLifetime time.Duration
}

// classifyScope is the cooldown bucket guarding external classification.
const classifyScope = "message_analysis"

// Gateway is the narrow Discord surface the engine needs. The bot session
// implements it; tests use fakes.
type Gateway interface {
	DeleteMessage(channelID, messageID string) error
	SendNotice(channelID, content string) (messageID string, err error)
	SendLog(channelID string, entry eventlog.Entry) error
	ChannelExists(channelID string) bool
}

type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realClock struct{}

type realTimer struct{ t *time.Timer }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{t: time.AfterFunc(d, f)}
}

func (t realTimer) Stop() bool { return t.t.Stop() }

// Message is the slice of a gateway message event the engine cares about.
type Message struct {
	GuildID   string
	ChannelID string
	MessageID string
	AuthorID  string
	AuthorTag string
	AuthorBot bool
	Content   string
}

// Action reports what the engine did, for observability and tests.
type Action struct {
	Deleted bool
	Warned  bool
	Logged  bool
}

type Engine struct {
	settings       *settings.Store
	classifier     classifier.Classifier
	gate           *cooldown.Gate
	gateScoped     bool
	store          *storage.Store
	events         *eventlog.Logger
	gateway        Gateway
	clock          Clock
	logger         *zap.Logger
	selfID         string
	autoWarnScore  float64
	noticeLifetime time.Duration
}

// New builds the engine. gateScoped enables the classification cooldown and
// should be set when the classifier performs external calls.
func New(cfg Config, settingsStore *settings.Store, cls classifier.Classifier, gate *cooldown.Gate, gateScoped bool, store *storage.Store, events *eventlog.Logger, gateway Gateway, logger *zap.Logger) *Engine {
	if cfg.AutoWarnScore <= 0 {
		cfg.AutoWarnScore = defaultAutoWarnScore
	}
	if cfg.NoticeLifetime <= 0 {
		cfg.NoticeLifetime = defaultNoticeLifetime
	}
	return &Engine{
		settings:       settingsStore,
		classifier:     cls,
		gate:           gate,
		gateScoped:     gateScoped,
		store:          store,
		events:         events,
		gateway:        gateway,
		clock:          realClock{},
		logger:         logger,
		autoWarnScore:  cfg.AutoWarnScore,
		noticeLifetime: cfg.NoticeLifetime,
	}
}

func (e *Engine) WithClock(clock Clock) {
	e.clock = clock
}

// SetSelfID records the bot's own user ID so its messages are never
// moderated. Called once the session is ready.
func (e *Engine) SetSelfID(id string) {
	e.selfID = id
}

// HandleMessage runs the per-message decision. It returns an error only for
// contract violations; collaborator failures degrade to no-ops.
func (e *Engine) HandleMessage(ctx context.Context, msg Message) (Action, error) {
	if msg.GuildID == "" || msg.MessageID == "" {
		return Action{}, errors.New("moderation: message missing guild or message id")
	}
	if msg.AuthorBot || (e.selfID != "" && msg.AuthorID == e.selfID) {
		return Action{}, nil
	}

	policy, found, err := e.settings.Get(ctx, msg.GuildID)
	if err != nil {
		e.logger.Warn("settings read failed", zap.String("guild_id", msg.GuildID), zap.Error(err))
		return Action{}, nil
	}
	if !found || policy.FilterLevel == "" {
		return Action{}, nil
	}
	if policy.IgnoredChannelID != "" && msg.ChannelID == policy.IgnoredChannelID {
		return Action{}, nil
	}

	// Load shedding for expensive classification: over the limit, the
	// message is silently skipped rather than rejected to the user.
	if e.gateScoped {
		if result := e.gate.TryAcquire(classifyScope, msg.AuthorID); !result.Allowed {
			return Action{}, nil
		}
	}

	verdict := e.classifier.Evaluate(ctx, msg.Content, policy.FilterLevel)
	if verdict.Unknown {
		// Fail open: an unavailable scorer never blocks a message.
		return Action{}, nil
	}

	action := Action{
		Deleted: verdict.Severity >= deleteThreshold(policy.FilterLevel),
		Warned:  verdict.ScoreKnown && verdict.Score > e.autoWarnScore,
	}
	if !action.Deleted && !action.Warned {
		return Action{}, nil
	}

	// Side effects are each best-effort; one failing must not stop the rest.
	if action.Deleted {
		e.deleteMessage(msg)
		e.sendNotice(msg)
	}
	if action.Warned {
		action.Warned = e.recordAutoWarn(ctx, msg, verdict)
	}
	action.Logged = e.notifyLogsChannel(ctx, policy, msg, verdict, action)

	e.events.Log(ctx, eventlog.Entry{
		GuildID:   msg.GuildID,
		UserID:    msg.AuthorID,
		Username:  msg.AuthorTag,
		ChannelID: msg.ChannelID,
		Kind:      eventlog.KindMessageFiltered,
		Detail:    fmt.Sprintf("severity=%s reason=%q deleted=%t warned=%t", verdict.Severity, verdict.Reason, action.Deleted, action.Warned),
		CreatedAt: e.clock.Now(),
	})
	return action, nil
}

// deleteThreshold is the severity at or above which a level deletes.
func deleteThreshold(filterLevel string) classifier.Severity {
	switch filterLevel {
	case "strict":
		return classifier.SeverityLow
	case "moderate":
		return classifier.SeverityMedium
	default:
		return classifier.SeverityHigh
	}
}

func (e *Engine) deleteMessage(msg Message) {
	if err := e.gateway.DeleteMessage(msg.ChannelID, msg.MessageID); err != nil {
		// Already-deleted messages are not a failure worth surfacing.
		e.logger.Debug("message delete failed", zap.String("message_id", msg.MessageID), zap.Error(err))
	}
}

func (e *Engine) sendNotice(msg Message) {
	content := fmt.Sprintf("<@%s>, your message was removed for containing inappropriate content.", msg.AuthorID)
	noticeID, err := e.gateway.SendNotice(msg.ChannelID, content)
	if err != nil || noticeID == "" {
		return
	}
	channelID := msg.ChannelID
	e.clock.AfterFunc(e.noticeLifetime, func() {
		_ = e.gateway.DeleteMessage(channelID, noticeID)
	})
}

func (e *Engine) recordAutoWarn(ctx context.Context, msg Message, verdict classifier.Verdict) bool {
	err := e.store.AddWarn(ctx, storage.WarnRecord{
		GuildID:   msg.GuildID,
		UserID:    msg.AuthorID,
		Username:  msg.AuthorTag,
		Reason:    verdict.Reason,
		WarnedBy:  systemActor,
		CreatedAt: e.clock.Now(),
	})
	if err != nil {
		e.logger.Warn("auto-warn write failed", zap.String("user_id", msg.AuthorID), zap.Error(err))
		return false
	}
	return true
}

func (e *Engine) notifyLogsChannel(ctx context.Context, policy storage.GuildSettings, msg Message, verdict classifier.Verdict, action Action) bool {
	if policy.LogsChannelID == "" || !e.gateway.ChannelExists(policy.LogsChannelID) {
		return false
	}
	entry := eventlog.Entry{
		GuildID:   msg.GuildID,
		UserID:    msg.AuthorID,
		Username:  msg.AuthorTag,
		ChannelID: msg.ChannelID,
		Kind:      eventlog.KindMessageFiltered,
		Detail:    fmt.Sprintf("severity=%s reason=%q deleted=%t warned=%t", verdict.Severity, verdict.Reason, action.Deleted, action.Warned),
		CreatedAt: e.clock.Now(),
	}
	if err := e.gateway.SendLog(policy.LogsChannelID, entry); err != nil {
		e.logger.Warn("logs channel send failed", zap.String("channel_id", policy.LogsChannelID), zap.Error(err))
		return false
	}
	return true
}
