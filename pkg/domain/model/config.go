package model

import (
	"log/slog"
	"os"
	"regexp"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/slotwatch/pkg/domain/types"
	"github.com/secmon-lab/slotwatch/pkg/utils/logging"
	"gopkg.in/yaml.v3"
)

// Defaults applied when the configuration file omits optional fields
const (
	DefaultRefresh       = 30 * time.Second
	DefaultCheckRange    = 7
	DefaultDisponibility = "00:00-23:59"
)

// ChannelConfig describes the notification channel chosen by the operator
type ChannelConfig struct {
	Kind   types.ChannelKind
	Params map[string]string
}

// Config is a validated, immutable snapshot of the operator's configuration
// file. It is replaced whole on reload, never partially mutated.
type Config struct {
	Login     string
	Password  string
	Projects  []string
	Channel   *ChannelConfig
	Refresh   time.Duration
	Start     time.Time
	End       time.Time
	Window    TimeWindow
	AvoidSpam bool

	// Path and MTime identify the source file and its state at load time,
	// used for staleness detection.
	Path  string
	MTime time.Time
}

// LogValue exposes the configuration for structured logging without the secret
func (c *Config) LogValue() slog.Value {
	channel := "none"
	if c.Channel != nil {
		channel = c.Channel.Kind.String()
	}
	return slog.GroupValue(
		slog.String("login", c.Login),
		slog.Int("password.len", len(c.Password)),
		slog.Any("projects", c.Projects),
		slog.String("channel", channel),
		slog.Duration("refresh", c.Refresh),
		slog.String("window", c.Window.String()),
		slog.Bool("avoid_spam", c.AvoidSpam),
	)
}

type rawConfig struct {
	Login         string                       `yaml:"login"`
	Password      string                       `yaml:"password"`
	Projects      []string                     `yaml:"projects"`
	Send          map[string]map[string]string `yaml:"send"`
	Refresh       *int                         `yaml:"refresh"`
	CheckRange    *int                         `yaml:"check_range"`
	Disponibility *string                      `yaml:"disponibility"`
	AvoidSpam     bool                         `yaml:"avoid_spam"`
}

func (r *rawConfig) validate() error {
	if r.Login == "" {
		return goerr.New("login is required", goerr.T(types.TagConfig))
	}
	if r.Password == "" {
		return goerr.New("password is required", goerr.T(types.TagConfig))
	}
	if len(r.Projects) == 0 {
		return goerr.New("at least one project is required", goerr.T(types.TagConfig))
	}
	for i, p := range r.Projects {
		if p == "" {
			return goerr.New("project name must not be empty", goerr.V("index", i), goerr.T(types.TagConfig))
		}
	}

	if len(r.Send) > 1 {
		return goerr.New("only one notification channel may be configured",
			goerr.V("count", len(r.Send)), goerr.T(types.TagConfig))
	}
	for kind, params := range r.Send {
		k := types.ChannelKind(kind)
		if !k.IsValid() {
			return goerr.New("unknown notification channel kind",
				goerr.V("kind", kind), goerr.V("known", types.AllChannelKinds()), goerr.T(types.TagConfig))
		}
		for key := range params {
			if !k.HasParam(key) {
				return goerr.New("unknown notification channel parameter",
					goerr.V("kind", kind), goerr.V("param", key), goerr.V("known", k.Params()), goerr.T(types.TagConfig))
			}
		}
	}

	if r.Refresh != nil && *r.Refresh <= 0 {
		return goerr.New("refresh must be a positive number of seconds",
			goerr.V("refresh", *r.Refresh), goerr.T(types.TagConfig))
	}
	if r.CheckRange != nil && *r.CheckRange <= 0 {
		return goerr.New("check_range must be a positive number of days",
			goerr.V("check_range", *r.CheckRange), goerr.T(types.TagConfig))
	}

	return nil
}

// LoadConfig reads, parses and validates the configuration file. The lookahead
// range starts today and ends today plus check_range days. A malformed
// disponibility degrades to a disabled window instead of failing the load.
func LoadConfig(path string) (*Config, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, goerr.Wrap(err, "configuration file is not accessible",
			goerr.V("path", path), goerr.T(types.TagConfig))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read configuration file",
			goerr.V("path", path), goerr.T(types.TagConfig))
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, goerr.Wrap(err, "failed to parse configuration file",
			goerr.V("path", path), goerr.T(types.TagConfig))
	}
	if err := raw.validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid configuration file", goerr.V("path", path))
	}

	refresh := DefaultRefresh
	if raw.Refresh != nil {
		refresh = time.Duration(*raw.Refresh) * time.Second
	}
	checkRange := DefaultCheckRange
	if raw.CheckRange != nil {
		checkRange = *raw.CheckRange
	}
	disponibility := DefaultDisponibility
	if raw.Disponibility != nil {
		disponibility = *raw.Disponibility
	}

	window, err := ParseTimeWindow(disponibility)
	if err != nil {
		logging.Default().Error("disponibility hours are not valid, no slot will pass the filter",
			"disponibility", disponibility, "error", err.Error())
		window = TimeWindow{}
	}

	var channel *ChannelConfig
	for kind, params := range raw.Send {
		channel = &ChannelConfig{Kind: types.ChannelKind(kind), Params: params}
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	return &Config{
		Login:     raw.Login,
		Password:  raw.Password,
		Projects:  raw.Projects,
		Channel:   channel,
		Refresh:   refresh,
		Start:     start,
		End:       start.AddDate(0, 0, checkRange),
		Window:    window,
		AvoidSpam: raw.AvoidSpam,
		Path:      path,
		MTime:     fi.ModTime(),
	}, nil
}

// Stale reports whether the source file changed since this Config was loaded.
// A stat failure is logged and treated as not stale so that a transient
// filesystem error does not tear down the running loop.
func (c *Config) Stale() bool {
	fi, err := os.Stat(c.Path)
	if err != nil {
		logging.Default().Warn("failed to stat configuration file", "path", c.Path, "error", err.Error())
		return false
	}
	return fi.ModTime().After(c.MTime)
}

var windowPattern = regexp.MustCompile(`^([0-9]{2}:[0-9]{2})-([0-9]{2}:[0-9]{2})$`)

// TimeWindow is a daily time-of-day availability window. The zero value is a
// disabled window that no slot ever passes.
type TimeWindow struct {
	start   time.Duration
	end     time.Duration
	enabled bool
}

// NewTimeWindow builds an enabled window from offsets since midnight
func NewTimeWindow(start, end time.Duration) TimeWindow {
	return TimeWindow{start: start, end: end, enabled: true}
}

// ParseTimeWindow parses a "HH:MM-HH:MM" availability window
func ParseTimeWindow(s string) (TimeWindow, error) {
	m := windowPattern.FindStringSubmatch(s)
	if m == nil {
		return TimeWindow{}, goerr.New("disponibility must be formatted as HH:MM-HH:MM", goerr.V("disponibility", s))
	}

	start, err := time.Parse("15:04", m[1])
	if err != nil {
		return TimeWindow{}, goerr.Wrap(err, "invalid disponibility start", goerr.V("start", m[1]))
	}
	end, err := time.Parse("15:04", m[2])
	if err != nil {
		return TimeWindow{}, goerr.Wrap(err, "invalid disponibility end", goerr.V("end", m[2]))
	}

	return NewTimeWindow(sinceMidnight(start), sinceMidnight(end)), nil
}

func sinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
}

// Contains reports whether the time-of-day of t falls strictly inside the
// window. Both boundaries are exclusive: a slot exactly at the window start
// or end is not notifiable.
func (w TimeWindow) Contains(t time.Time) bool {
	if !w.enabled {
		return false
	}
	d := sinceMidnight(t)
	return d > w.start && d < w.end
}

// Enabled reports whether the window can ever pass a slot
func (w TimeWindow) Enabled() bool {
	return w.enabled
}

// String renders the window in the configuration file format
func (w TimeWindow) String() string {
	if !w.enabled {
		return "disabled"
	}
	format := func(d time.Duration) string {
		return time.Date(0, 1, 1, int(d/time.Hour), int(d%time.Hour/time.Minute), 0, 0, time.UTC).Format("15:04")
	}
	return format(w.start) + "-" + format(w.end)
}
