package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/text/language"

	"github.com/kbukum/errkit/encryption"
	"github.com/kbukum/errkit/httpclient"
	"github.com/kbukum/errkit/logger"
	"github.com/kbukum/errkit/resilience"
	"github.com/kbukum/errkit/security"
	"github.com/kbukum/errkit/tokenstore"
	"github.com/kbukum/errkit/version"
)

const appName = "apiprobe"

// CLI is the root command with global flags.
type CLI struct {
	BaseURL   string           `name:"base-url" env:"APIPROBE_BASE_URL" default:"http://localhost:8080/api/v1" help:"API base URL."`
	Language  string           `short:"l" env:"APIPROBE_LANG" default:"en" help:"Language of fixed messages (en, tr)."`
	TokenFile string           `name:"token-file" env:"APIPROBE_TOKEN_FILE" help:"Token file. Defaults to the user config directory."`
	Redis     string           `name:"redis" env:"APIPROBE_REDIS" help:"Keep the token in Redis at this address instead of a file."`
	TokenKey  string           `name:"token-key" env:"APIPROBE_TOKEN_KEY" help:"Passphrase that encrypts the stored token."`
	Timeout   time.Duration    `default:"10s" help:"Per-attempt request timeout."`
	Retries   int              `default:"0" help:"Retries for transient failures."`
	CAFile    string           `name:"ca-file" type:"existingfile" help:"PEM bundle to trust instead of the system roots."`
	Insecure  bool             `help:"Skip server certificate verification."`
	Verbose   bool             `short:"v" help:"Print error details and debug logs."`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit."`

	Login  LoginCmd  `cmd:"" help:"Sign in and store the access token."`
	Get    GetCmd    `cmd:"" help:"GET a path and print the response data."`
	Create CreateCmd `cmd:"" help:"Create an article."`
	Logout LogoutCmd `cmd:"" help:"Forget the stored token."`
}

// runtime is what every command runs against.
type runtime struct {
	client *httpclient.Client
	store  tokenstore.Store
	log    *logger.Logger
	out    io.Writer
	errOut io.Writer
	closer func() error
}

func (c *CLI) runtime(out, errOut io.Writer) (*runtime, error) {
	level := "warn"
	if c.Verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(errOut, &logger.Config{Level: level, Format: "console"}, appName)

	store, closer, err := c.openStore(log)
	if err != nil {
		return nil, err
	}
	if c.TokenKey != "" {
		enc, err := encryption.New(c.TokenKey)
		if err != nil {
			_ = closer()
			return nil, err
		}
		store = tokenstore.NewEncrypted(store, enc)
	}

	tag, err := language.Parse(c.Language)
	if err != nil {
		tag = language.English
	}

	cfg := httpclient.Config{
		BaseURL: c.BaseURL,
		Timeout: c.Timeout,
		Headers: map[string]string{"User-Agent": version.UserAgent(appName)},
	}
	if c.CAFile != "" || c.Insecure {
		cfg.TLS = &security.TLSConfig{CAFile: c.CAFile, SkipVerify: c.Insecure}
	}
	if c.Retries > 0 {
		retry := resilience.DefaultRetryConfig()
		retry.MaxAttempts = c.Retries + 1
		cfg.Retry = &retry
	}

	client, err := httpclient.NewClient(cfg, store,
		httpclient.WithLanguage(tag),
		httpclient.WithLogger(log),
		httpclient.WithNavigator(httpclient.NewLogNavigator(log)),
	)
	if err != nil {
		_ = closer()
		return nil, err
	}
	return &runtime{client: client, store: store, log: log, out: out, errOut: errOut, closer: closer}, nil
}

func (c *CLI) openStore(log *logger.Logger) (tokenstore.Store, func() error, error) {
	noop := func() error { return nil }
	if c.Redis != "" {
		ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
		defer cancel()
		rs, err := tokenstore.NewRedis(ctx, tokenstore.RedisConfig{Addr: c.Redis, Key: appName}, log)
		if err != nil {
			return nil, nil, err
		}
		return rs, rs.Close, nil
	}

	path := c.TokenFile
	if path == "" {
		var err error
		if path, err = tokenstore.DefaultPath(appName); err != nil {
			return nil, nil, err
		}
	}
	return tokenstore.NewFile(path), noop, nil
}

func (r *runtime) close() {
	if r.closer != nil {
		_ = r.closer()
	}
}

// printError prints the normalized message, and with verbose the rule,
// status and cause.
func printError(w io.Writer, err error, verbose bool) {
	var he *httpclient.Error
	if !errors.As(err, &he) {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	if verbose {
		fmt.Fprintf(w, "error: %+v\n", he)
	} else {
		fmt.Fprintf(w, "error: %s\n", he.Message)
	}
	for _, field := range he.FieldErrors.Fields() {
		for _, msg := range he.FieldErrors.Get(field) {
			fmt.Fprintf(w, "  %s: %s\n", field, msg)
		}
	}
}
