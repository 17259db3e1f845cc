package irc

import (
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	ircevent "github.com/thoj/go-ircevent"

	"github.com/nocwatch/herald/internal/logger"
)

// Package irc wraps the IRC transport behind the narrow surface the pipeline
// needs: connect, send, join/part, and ready/message events.

// Message is one inbound chat line.
type Message struct {
	Sender string
	Target string
	Text   string
}

// Options holds the connection parameters.
type Options struct {
	Server         string // host:port
	Nick           string
	TLS            bool
	ClientCert     *tls.Certificate // mutual-TLS identity, optional
	ServerPassword string
}

// Client is a live IRC session.
type Client struct {
	conn   *ircevent.Connection
	server string
	nick   string
	log    logger.Logger
	done   chan struct{}
}

// New builds a client; Connect must be called before any send.
func New(opts Options, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.NopLogger{}
	}
	if strings.TrimSpace(opts.Server) == "" {
		return nil, fmt.Errorf("irc server must not be empty")
	}
	if strings.TrimSpace(opts.Nick) == "" {
		return nil, fmt.Errorf("irc nick must not be empty")
	}

	conn := ircevent.IRC(opts.Nick, opts.Nick)
	conn.QuitMessage = "herald going down"
	if opts.ServerPassword != "" {
		conn.Password = opts.ServerPassword
	}

	if opts.TLS {
		host, _, err := net.SplitHostPort(opts.Server)
		if err != nil {
			return nil, fmt.Errorf("parse irc server address: %w", err)
		}
		tlsCfg := &tls.Config{ServerName: host}
		if opts.ClientCert != nil {
			tlsCfg.Certificates = []tls.Certificate{*opts.ClientCert}
		}
		conn.UseTLS = true
		conn.TLSConfig = tlsCfg
	}

	return &Client{
		conn:   conn,
		server: opts.Server,
		nick:   opts.Nick,
		log:    log,
		done:   make(chan struct{}),
	}, nil
}

// Nick returns the session's own nick, used to detect direct messages.
func (c *Client) Nick() string { return c.nick }

// OnReady registers a handler for the registration-complete event.
func (c *Client) OnReady(fn func()) {
	c.conn.AddCallback("001", func(*ircevent.Event) { fn() })
}

// OnMessage registers a handler for inbound PRIVMSG lines.
func (c *Client) OnMessage(fn func(msg Message)) {
	c.conn.AddCallback("PRIVMSG", func(e *ircevent.Event) {
		if len(e.Arguments) == 0 {
			return
		}
		fn(Message{
			Sender: e.Nick,
			Target: e.Arguments[0],
			Text:   e.Message(),
		})
	})
}

// Connect dials the server and starts the event loop in the background.
func (c *Client) Connect() error {
	if err := c.conn.Connect(c.server); err != nil {
		return fmt.Errorf("connect to %s: %w", c.server, err)
	}
	go func() {
		c.conn.Loop()
		close(c.done)
	}()
	return nil
}

// Send delivers one line to a channel or nick.
func (c *Client) Send(target, line string) {
	c.conn.Privmsg(target, line)
}

// Join enters the channel.
func (c *Client) Join(channel string) {
	c.conn.Join(channel)
}

// Part leaves the channel.
func (c *Client) Part(channel string) {
	c.conn.Part(channel)
}

// Identify performs the optional post-registration NickServ authentication.
func (c *Client) Identify(password string) {
	if password == "" {
		return
	}
	c.conn.Privmsg("NickServ", "IDENTIFY "+password)
}

// Close parts the channel and quits, waiting at most grace for the event
// loop to drain. Shutdown never hangs: when the grace period lapses the
// connection is torn down regardless.
func (c *Client) Close(channel string, grace time.Duration) {
	if channel != "" {
		c.conn.Part(channel)
	}
	c.conn.Quit()

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-c.done:
	case <-timer.C:
		c.log.WarnObj("irc shutdown grace period lapsed", "irc_shutdown", map[string]any{
			"grace": grace.String(),
		})
		c.conn.Disconnect()
	}
}
