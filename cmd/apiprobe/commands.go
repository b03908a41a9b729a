package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kbukum/errkit/httpclient"
)

// LoginCmd implements 'login'.
type LoginCmd struct {
	Email    string `short:"e" required:"" help:"Account email."`
	Password string `short:"p" required:"" env:"APIPROBE_PASSWORD" help:"Account password."`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (l *LoginCmd) Run(rt *runtime) error {
	ctx := context.Background()
	env, err := httpclient.Post[tokenResponse](rt.client, ctx, "/login", map[string]string{
		"email":    l.Email,
		"password": l.Password,
	})
	if err != nil {
		return err
	}
	if err := rt.store.Set(ctx, env.Data.AccessToken); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	fmt.Fprintf(rt.out, "Signed in as %s (token valid for %ds)\n", l.Email, env.Data.ExpiresIn)
	return nil
}

// GetCmd implements 'get'.
type GetCmd struct {
	Path    string `arg:"" help:"Path relative to the base URL, e.g. /articles."`
	Page    int    `help:"Page number."`
	PerPage int    `name:"per-page" help:"Items per page."`
}

func (g *GetCmd) Run(rt *runtime) error {
	var opts []httpclient.RequestOption
	if g.Page > 0 {
		opts = append(opts, httpclient.WithQueryParam("page", fmt.Sprint(g.Page)))
	}
	if g.PerPage > 0 {
		opts = append(opts, httpclient.WithQueryParam("per_page", fmt.Sprint(g.PerPage)))
	}
	env, err := httpclient.Get[json.RawMessage](rt.client, context.Background(), g.Path, opts...)
	if err != nil {
		return err
	}
	return printEnvelope(rt, env)
}

// CreateCmd implements 'create'.
type CreateCmd struct {
	Title string `short:"t" required:"" help:"Article title."`
	Body  string `short:"b" required:"" help:"Article body."`
	Slug  string `help:"Explicit slug. Derived from the title when empty."`
}

func (c *CreateCmd) Run(rt *runtime) error {
	body := map[string]string{"title": c.Title, "body": c.Body}
	if c.Slug != "" {
		body["slug"] = c.Slug
	}
	env, err := httpclient.Post[json.RawMessage](rt.client, context.Background(), "/articles", body)
	if err != nil {
		return err
	}
	return printEnvelope(rt, env)
}

// LogoutCmd implements 'logout'.
type LogoutCmd struct{}

func (LogoutCmd) Run(rt *runtime) error {
	if err := rt.store.Clear(context.Background()); err != nil {
		return err
	}
	fmt.Fprintln(rt.out, "Signed out")
	return nil
}

func printEnvelope(rt *runtime, env *httpclient.Envelope[json.RawMessage]) error {
	out := map[string]any{"data": env.Data}
	if env.Meta != nil {
		out["meta"] = env.Meta
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(rt.out, string(b))
	return nil
}
