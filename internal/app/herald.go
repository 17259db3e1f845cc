package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/nocwatch/herald/internal/certs"
	"github.com/nocwatch/herald/internal/commands"
	"github.com/nocwatch/herald/internal/config"
	"github.com/nocwatch/herald/internal/irc"
	"github.com/nocwatch/herald/internal/logger"
	"github.com/nocwatch/herald/internal/markers"
	"github.com/nocwatch/herald/internal/sched"
	"github.com/nocwatch/herald/internal/stats"
	"github.com/nocwatch/herald/pkg/fetch"
	"github.com/nocwatch/herald/pkg/notify"
	"github.com/nocwatch/herald/pkg/sources"
)

// Herald represents the bot runtime. It wires the source registry, marker
// store, transport session, per-source schedulers, and the command
// dispatcher, and handles graceful shutdown.
type Herald struct {
	cfg        *config.Config
	registry   *sources.Registry
	store      markers.Store
	client     *irc.Client
	dispatcher *commands.Dispatcher
	fanout     *notify.Fanout
	fetcher    fetch.Fetcher
	stats      *stats.Stats
	nickserv   string
	log        logger.Logger

	readyOnce sync.Once
}

// NewHerald builds a herald runtime from config. Misconfiguration (unknown
// source id, unparseable certificate bundle) fails here, before any
// connection is attempted.
func NewHerald(ctx context.Context, cfg *config.Config, log logger.Logger) (*Herald, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	registry, err := sources.LoadRegistry(cfg.SourcesFile, sources.BuiltinAdapters()...)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	log.InfoObj("sources registry loaded", "sources_meta", map[string]any{
		"count": len(registry.IDs()),
		"ids":   registry.IDs(),
	})

	storePath := cfg.MarkerDir
	if cfg.MarkerStore == "bbolt" {
		storePath = cfg.MarkerDBPath
	}
	store, err := markers.NewStore(cfg.MarkerStore, storePath, markers.Options{TTL: cfg.MarkerTTL})
	if err != nil {
		return nil, fmt.Errorf("init marker store: %w", err)
	}
	log.InfoObj("marker store initialized", "marker_config", map[string]any{
		"type":      cfg.MarkerStore,
		"path":      storePath,
		"ttl_hours": int(cfg.MarkerTTL.Hours()),
	})

	var clientCert *tls.Certificate
	if cfg.CertBundleFile != "" {
		bundle, err := certs.LoadBundle(cfg.CertBundleFile)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("extract certificate bundle: %w", err)
		}
		cert, err := bundle.Certificate()
		if err != nil {
			store.Close()
			return nil, err
		}
		clientCert = &cert
	}

	nickserv := cfg.NickServPassword
	if nickserv == "" && clientCert == nil {
		nickserv, err = promptSecret("NickServ password (empty to skip): ")
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("prompt credential: %w", err)
		}
	}

	client, err := irc.New(irc.Options{
		Server:         cfg.IRCServer,
		Nick:           cfg.IRCNick,
		TLS:            cfg.IRCTLS,
		ClientCert:     clientCert,
		ServerPassword: cfg.ServerPassword,
	}, log)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build irc client: %w", err)
	}

	var fanout *notify.Fanout
	if cfg.NotifiersFile != "" {
		sinkReg, err := notify.LoadRegistry(cfg.NotifiersFile)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("load notifiers registry: %w", err)
		}
		sinks, err := notify.BuildAll(ctx, notify.DefaultRegistry(), sinkReg.Enabled(), log)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("build notifier sinks: %w", err)
		}
		fanout = notify.NewFanout(sinks, log)
		log.InfoObj("notifier sinks loaded", "notify_meta", map[string]any{
			"count": fanout.Size(),
		})
	}

	st := stats.New()

	dispatcher := commands.NewDispatcher(cfg.Trigger, cfg.IRCNick, cfg.ReplyDelay, client, log)
	dispatcher.Register(commands.Status(st))
	dispatcher.Register(commands.Sources(registry))
	dispatcher.Register(commands.Help(dispatcher))

	return &Herald{
		cfg:        cfg,
		registry:   registry,
		store:      store,
		client:     client,
		dispatcher: dispatcher,
		fanout:     fanout,
		fetcher:    fetch.New(0),
		stats:      st,
		nickserv:   nickserv,
		log:        log,
	}, nil
}

// Run connects, starts the per-source poll loops once the session is
// registered, and blocks until the context is cancelled. Shutdown parts the
// channel with a bounded grace period and never hangs.
func (h *Herald) Run(ctx context.Context) error {
	if h == nil || h.client == nil {
		return fmt.Errorf("herald is not initialized")
	}
	defer h.closeStore()

	h.client.OnReady(func() {
		h.log.InfoObj("session registered", "irc_state", map[string]any{
			"server":  h.cfg.IRCServer,
			"nick":    h.cfg.IRCNick,
			"channel": h.cfg.IRCChannel,
		})
		h.client.Identify(h.nickserv)
		h.client.Join(h.cfg.IRCChannel)
		// Schedulers start once; a server reconnect refires the ready event
		// but must not double the poll loops.
		h.readyOnce.Do(func() { h.startSchedulers(ctx) })
	})

	h.client.OnMessage(func(msg irc.Message) {
		go h.dispatcher.Handle(ctx, msg.Sender, msg.Target, msg.Text)
	})

	if err := h.client.Connect(); err != nil {
		return err
	}

	<-ctx.Done()
	h.log.InfoObj("herald shutting down", "reason", ctx.Err().Error())
	h.client.Close(h.cfg.IRCChannel, h.cfg.ShutdownGrace)
	return nil
}

// startSchedulers launches one independent poll loop per configured source.
func (h *Herald) startSchedulers(ctx context.Context) {
	all := h.registry.All()
	if len(all) == 0 {
		h.log.WarnObj("no sources configured; herald idle", "sources_file", h.cfg.SourcesFile)
		return
	}

	var mirror sched.Mirror
	if h.fanout != nil && h.fanout.Size() > 0 {
		mirror = h.fanout
	}

	for _, src := range all {
		s := sched.New(sched.Options{
			Source:          src,
			Fetcher:         h.fetcher,
			Store:           h.store,
			Sender:          h.client,
			Channel:         h.cfg.IRCChannel,
			AnnounceDelay:   h.cfg.AnnounceDelay,
			DefaultInterval: h.cfg.DefaultPollInterval,
			Stats:           h.stats,
			Mirror:          mirror,
			Log:             h.log,
		})
		go s.Run(ctx)
	}
	h.log.InfoObj("schedulers started", "scheduler_meta", map[string]any{
		"sources_count": len(all),
		"default_poll":  h.cfg.DefaultPollInterval.String(),
	})
}

// closeStore safely closes the marker store, logging any errors encountered.
func (h *Herald) closeStore() {
	if h == nil || h.store == nil {
		return
	}
	if err := h.store.Close(); err != nil {
		h.log.ErrorObj("marker store close failed", "error", err)
	}
}

// promptSecret asks the operator for a credential once at startup. A
// non-terminal stdin (service deployment) skips the prompt.
func promptSecret(msg string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}

	fmt.Fprint(os.Stderr, msg)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}
