package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/slotwatch/pkg/domain/interfaces"
	"github.com/secmon-lab/slotwatch/pkg/domain/model"
	"github.com/secmon-lab/slotwatch/pkg/repository/memory"
	"github.com/secmon-lab/slotwatch/pkg/service/intra"
	"github.com/secmon-lab/slotwatch/pkg/service/notify"
	"github.com/secmon-lab/slotwatch/pkg/utils/logging"
)

// IntraFactory builds an authenticated intra session for the given config
type IntraFactory func(ctx context.Context, cfg *model.Config) (interfaces.IntraClient, error)

// NotifierFactory builds the notifier for the configured channel
type NotifierFactory func(cfg *model.ChannelConfig) (interfaces.Notifier, error)

// Checker is the polling loop: it keeps the configuration fresh, holds one
// authenticated session, queries tracked projects in order, filters findings
// against the availability window, deduplicates, and dispatches notifications.
type Checker struct {
	configPath string

	cfg      *model.Config
	session  interfaces.IntraClient
	notifier interfaces.Notifier
	sent     interfaces.SentStore

	newIntra    IntraFactory
	newNotifier NotifierFactory
}

// Option is a functional option for Checker configuration
type Option func(*Checker)

// WithIntraFactory replaces how intra sessions are established
func WithIntraFactory(f IntraFactory) Option {
	return func(x *Checker) {
		x.newIntra = f
	}
}

// WithNotifierFactory replaces how notifiers are built
func WithNotifierFactory(f NotifierFactory) Option {
	return func(x *Checker) {
		x.newNotifier = f
	}
}

// WithSentStore replaces the duplicate-suppression store
func WithSentStore(s interfaces.SentStore) Option {
	return func(x *Checker) {
		x.sent = s
	}
}

// New creates a Checker reading its configuration from configPath
func New(configPath string, opts ...Option) *Checker {
	x := &Checker{
		configPath: configPath,
		sent:       memory.NewSentStore(),
		newIntra: func(ctx context.Context, cfg *model.Config) (interfaces.IntraClient, error) {
			return intra.New(ctx, cfg.Login, cfg.Password)
		},
		newNotifier: notify.New,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Run executes the polling loop until a fatal error or context cancellation.
// Context cancellation is a clean shutdown, not an error.
func (x *Checker) Run(ctx context.Context) error {
	cfg, err := model.LoadConfig(x.configPath)
	if err != nil {
		return err
	}
	x.reset(cfg)

	logger := logging.From(ctx)
	logger.Info("checking for available slots", "config", cfg)

	for {
		if err := x.cycle(ctx); err != nil {
			x.teardown()
			return err
		}

		select {
		case <-ctx.Done():
			logger.Info("slot watcher stopping")
			x.teardown()
			return nil
		case <-time.After(x.cfg.Refresh):
		}
	}
}

// cycle runs one polling round. The staleness check comes first so an
// operator can change tracked projects or the window without a restart.
func (x *Checker) cycle(ctx context.Context) error {
	if x.cfg.Stale() {
		logging.From(ctx).Info("configuration file has changed, reloading", "path", x.configPath)
		cfg, err := model.LoadConfig(x.configPath)
		if err != nil {
			return err
		}
		x.reset(cfg)
	}

	if err := x.ensureSession(ctx); err != nil {
		return err
	}

	for _, project := range x.cfg.Projects {
		slots, err := x.session.QuerySlots(ctx, project, x.cfg.Start, x.cfg.End)
		if err != nil {
			return err
		}
		for _, slot := range slots {
			x.evaluate(ctx, project, slot)
		}
	}

	return nil
}

// reset installs a freshly loaded configuration. This is a full state reset:
// the sent-set is discarded and the notifier is rebuilt; the session is
// replaced lazily by ensureSession if the credentials changed.
func (x *Checker) reset(cfg *model.Config) {
	x.cfg = cfg
	x.notifier = nil
	x.sent.Reset()
}

func (x *Checker) teardown() {
	if x.session != nil {
		x.session.Close()
		x.session = nil
	}
}

// ensureSession establishes an intra session on first use and re-establishes
// it when the configured credentials change.
func (x *Checker) ensureSession(ctx context.Context) error {
	if x.session != nil {
		login, password := x.session.Credentials()
		if login == x.cfg.Login && password == x.cfg.Password {
			return nil
		}
		logging.From(ctx).Info("intra credentials changed, reconnecting", "login", x.cfg.Login)
		x.teardown()
	}

	session, err := x.newIntra(ctx, x.cfg)
	if err != nil {
		return err
	}
	x.session = session
	return nil
}

// evaluate decides the fate of one discovered slot: filtered out, suppressed
// as a duplicate, or dispatched. A delivery failure is logged and the round
// continues; losing one notification must not stop monitoring.
func (x *Checker) evaluate(ctx context.Context, project string, slot model.Slot) {
	logger := logging.From(ctx)

	at, err := slot.StartTime()
	if err != nil {
		logger.Warn("skipping slot with unparsable start time",
			"project", project, "slot", slot.Raw, "error", err.Error())
		return
	}

	logger.Info("found slot for project",
		"project", project,
		"date", at.Format("02/01/2006"),
		"time", at.Format("15:04"),
		"slot", slot.Raw)

	if !x.cfg.Window.Contains(at) {
		logger.Info("slot is not in the disponibility range, not sending",
			"project", project, "time", at.Format("15:04"), "window", x.cfg.Window.String())
		return
	}

	if x.cfg.AvoidSpam && x.sent.Seen(slot.ID) {
		logger.Info("slot details already sent once, avoiding spam",
			"project", project, "id", slot.ID)
		return
	}

	notifier, err := x.ensureNotifier()
	if err != nil {
		logger.Error("failed to set up the notification channel", "error", err.Error())
		return
	}
	if notifier == nil {
		logger.Debug("no notification channel configured, not sending",
			"project", project, "id", slot.ID)
		return
	}

	notice := model.SlotNotice{Project: project, At: at}
	if err := notifier.Notify(ctx, notice); err != nil {
		logger.Error("failed to send the slot notification",
			"channel", notifier.Kind(), "id", slot.ID, "error", err.Error())
		return
	}

	logger.Info("slot notification sent", "channel", notifier.Kind(), "project", project, "id", slot.ID)
	x.sent.MarkSent(slot.ID)
}

func (x *Checker) ensureNotifier() (interfaces.Notifier, error) {
	if x.cfg.Channel == nil {
		return nil, nil
	}
	if x.notifier == nil {
		notifier, err := x.newNotifier(x.cfg.Channel)
		if err != nil {
			return nil, err
		}
		x.notifier = notifier
	}
	return x.notifier, nil
}
