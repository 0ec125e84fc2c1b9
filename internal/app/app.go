package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"autoselfcontrol/internal/config"
	"autoselfcontrol/internal/journal"
	"autoselfcontrol/internal/launchd"
	"autoselfcontrol/internal/selfcontrol"
	"autoselfcontrol/internal/sysuser"
	logx "autoselfcontrol/pkg/logx"
)

// ErrAlreadyRunning means a SelfControl block is active right now.
// SelfControl refuses to stack blocks, so the current pass is abandoned.
var ErrAlreadyRunning = errors.New("SelfControl is already running")

// Controller drives the SelfControl binary for one user.
type Controller interface {
	IsRunning(ctx context.Context) (bool, error)
	Start(ctx context.Context, blocklistPath, until string) error
}

// Installer manages the launchd job.
type Installer interface {
	Install(ctx context.Context, job launchd.Job) error
	Uninstall(ctx context.Context) error
	Installed() bool
	Loaded(ctx context.Context) (bool, error)
}

// Deps are the app's collaborators. Zero fields get the real
// implementations; tests swap in fakes.
type Deps struct {
	Log       logx.Logger
	Installer Installer
	Journal   journal.Store

	NewController func(appPath, uid string, log logx.Logger) Controller
	UserExists    func(ctx context.Context, username string) (bool, error)
	LookupUID     func(username string) (string, error)
	Executable    func() (string, error)
	EUID          func() int
	Now           func() time.Time
	Out           io.Writer
}

// App ties the scheduling core to launchd, SelfControl and the journal.
// One App serves one settings directory.
type App struct {
	dir  string
	deps Deps

	log         logx.Logger
	logs        *logx.Service
	injectedLog bool

	inst Installer

	// passMu serializes scheduling passes; in watch mode a cron firing
	// and a config reload can race for the blocklist file.
	passMu sync.Mutex
}

func New(dir string, deps Deps) *App {
	injected := !deps.Log.IsZero()
	if !injected {
		deps.Log = logx.NewConsole("INFO")
	}
	if deps.NewController == nil {
		deps.NewController = func(appPath, uid string, log logx.Logger) Controller {
			return selfcontrol.NewRunner(appPath, uid, log)
		}
	}
	if deps.UserExists == nil {
		deps.UserExists = sysuser.Exists
	}
	if deps.LookupUID == nil {
		deps.LookupUID = sysuser.UID
	}
	if deps.Executable == nil {
		deps.Executable = executablePath
	}
	if deps.EUID == nil {
		deps.EUID = os.Geteuid
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Out == nil {
		deps.Out = logx.Stdout()
	}

	return &App{
		dir:         dir,
		deps:        deps,
		log:         deps.Log.With(logx.String("comp", "app")),
		injectedLog: injected,
	}
}

// Close releases logging sinks. Call once, after the selected operation
// returned.
func (a *App) Close() error {
	if a.logs != nil {
		return a.logs.Close()
	}
	return nil
}

// ExitCode maps an operation result to the process exit code: 0 for
// success or a normal no-op, 2 when SelfControl is already running, 1
// for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrAlreadyRunning):
		return 2
	default:
		return 1
	}
}

func (a *App) configPath() string    { return filepath.Join(a.dir, "config.json") }
func (a *App) runConfigPath() string { return filepath.Join(a.dir, "run_config.json") }
func (a *App) blocklistPath() string { return filepath.Join(a.dir, "blocklist") }

func (a *App) requireRoot() error {
	if a.deps.EUID() != 0 {
		return errors.New("auto-selfcontrol must run with elevated rights, e.g. sudo auto-selfcontrol")
	}
	return nil
}

// applyLogging reconfigures the log sinks from config. The first call
// replaces the bootstrap console logger with the full service; later
// calls only Apply() the new sink settings.
func (a *App) applyLogging(cfg *config.Config) {
	if a.injectedLog {
		return
	}
	lc := toLogxConfig(cfg.Logging)
	if a.logs != nil {
		a.logs.Apply(lc)
		return
	}
	svc, root := logx.New(lc)
	a.logs = svc
	a.log = root.With(logx.String("comp", "app"))
}

func toLogxConfig(lc config.LoggingConfig) logx.Config {
	sys := lc.SyslogSettings()
	return logx.Config{
		Level:   lc.Level,
		Console: lc.ConsoleEnabled(),
		File: logx.FileConfig{
			Enabled: lc.File.Enabled,
			Path:    lc.File.Path,
		},
		Syslog: logx.SyslogConfig{
			Enabled:    sys.Enabled,
			Tag:        sys.Tag,
			MinLevel:   sys.MinLevel,
			RatePerSec: sys.RatePerSec,
		},
	}
}

// checkEnvironment verifies the parts of the config that reference the
// outside world: the macOS account and the SelfControl bundle.
func (a *App) checkEnvironment(ctx context.Context, cfg *config.Config) error {
	ok, err := a.deps.UserExists(ctx, cfg.Username)
	if err != nil {
		return fmt.Errorf("look up username %q: %w", cfg.Username, err)
	}
	if !ok {
		return fmt.Errorf("username %q unknown; use your macOS account name (`whoami` prints it)", cfg.Username)
	}
	if _, err := os.Stat(cfg.SelfControlPath); err != nil {
		return fmt.Errorf("selfcontrol-path %q does not point to SelfControl; use an absolute path including the .app extension, e.g. /Applications/SelfControl.app", cfg.SelfControlPath)
	}
	if len(cfg.HostBlacklist) == 0 {
		a.log.Warn("host-blacklist is empty; SelfControl will fall back to its own blacklist, which is not recommended")
	}
	return nil
}

func (a *App) controller(cfg *config.Config) (Controller, error) {
	uid, err := a.deps.LookupUID(cfg.Username)
	if err != nil {
		return nil, fmt.Errorf("resolve uid for %q: %w", cfg.Username, err)
	}
	return a.deps.NewController(cfg.SelfControlPath, uid, a.log), nil
}

func (a *App) installer() Installer {
	if a.deps.Installer != nil {
		return a.deps.Installer
	}
	if a.inst == nil {
		a.inst = launchd.NewInstaller(a.log)
	}
	return a.inst
}

// journalFor opens the configured journal. The close func is a no-op
// when the journal is injected or disabled.
func (a *App) journalFor(cfg *config.Config) (journal.Store, func()) {
	nop := func() {}
	if a.deps.Journal != nil {
		return a.deps.Journal, nop
	}
	if cfg == nil || cfg.Journal == nil {
		return nil, nop
	}
	busy, err := config.ParseDurationField("journal.busy_timeout", cfg.Journal.BusyTimeout)
	if err != nil {
		a.log.Warn("journal config invalid", logx.Err(err))
		return nil, nop
	}
	path := cfg.Journal.Path
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(a.dir, path)
	}
	st, err := journal.Open(journal.Config{
		Driver:      cfg.Journal.Driver,
		Path:        path,
		BusyTimeout: busy,
	}, a.log.With(logx.String("comp", "journal")))
	if err != nil {
		a.log.Warn("journal unavailable", logx.Err(err))
		return nil, nop
	}
	if st == nil {
		return nil, nop
	}
	return st, func() { _ = st.Close() }
}

// record appends a journal entry best-effort. The journal must never
// fail a scheduling pass, so errors only warn. A fresh context keeps
// the append alive through shutdown.
func (a *App) record(jr journal.Store, e journal.Entry) {
	if jr == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := jr.Append(ctx, e); err != nil {
		a.log.Warn("journal append failed", logx.Err(err))
	}
}

func (a *App) installJob(ctx context.Context, cfg *config.Config) error {
	bin, err := a.deps.Executable()
	if err != nil {
		return fmt.Errorf("resolve own binary path: %w", err)
	}
	return a.installer().Install(ctx, launchd.NewJob(bin, a.dir, cfg.BlockSchedules))
}

// saveRunConfig freezes the validated config next to the blocklist so
// launchd-triggered runs don't depend on the editable config.json.
func (a *App) saveRunConfig(cfg *config.Config) error {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return err
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	a.log.Info("saving run configuration", logx.String("path", a.runConfigPath()))
	return os.WriteFile(a.runConfigPath(), b, 0o644)
}

func executablePath() (string, error) {
	p, err := os.Executable()
	if err != nil {
		return "", err
	}
	if rp, err := filepath.EvalSymlinks(p); err == nil {
		return rp, nil
	}
	return p, nil
}
