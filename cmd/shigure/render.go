package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/eringen/shigure"
	"github.com/eringen/shigure/internal/config"
	"github.com/eringen/shigure/issues"
	"github.com/eringen/shigure/markdown"
	"github.com/eringen/shigure/post"
)

func newRenderCmd() *cobra.Command {
	var terminal bool
	cmd := &cobra.Command{
		Use:   "render <number>",
		Short: "Render one post as HTML, or preview it in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid post number %q", args[0])
			}
			e := getEnv(cmd)
			p, err := loadPost(cmd.Context(), e.cfg, number)
			if err != nil {
				return err
			}
			if terminal {
				return writeTerminal(cmd.OutOrStdout(), p)
			}
			var opts []markdown.Option
			opts = append(opts, markdown.WithStyle(e.cfg.Site.HighlightStyle))
			if e.cfg.Site.SanitizeHTML {
				opts = append(opts, markdown.WithSanitizer(markdown.SanitizePolicy()))
			}
			r, err := post.NewRenderer(markdown.New(opts...)).Render(p)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), r.HTML)
			return err
		},
	}
	cmd.Flags().BoolVar(&terminal, "terminal", false, "pretty-print the markdown instead of emitting HTML")
	return cmd
}

// loadPost reads the post from the local mirror, falling back to the API.
// A missing mirror is not created.
func loadPost(ctx context.Context, cfg config.Config, number int) (post.Post, error) {
	if _, err := os.Stat(cfg.Site.DatabasePath); err == nil {
		store, err := shigure.NewStore(cfg.Site.DatabasePath)
		if err != nil {
			return post.Post{}, err
		}
		defer store.Close()
		p, err := store.GetPost(number)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, shigure.ErrNotFound) {
			return post.Post{}, err
		}
	}
	if cfg.Site.GitHubOwner == "" || cfg.Site.GitHubRepo == "" {
		return post.Post{}, fmt.Errorf("post %d is not mirrored and github.owner/github.repo are not set", number)
	}
	var opts []issues.Option
	if cfg.Site.GitHubAPI != "" {
		opts = append(opts, issues.WithBaseURL(cfg.Site.GitHubAPI))
	}
	is, err := issues.New(cfg.Site.GitHubOwner, cfg.Site.GitHubRepo, cfg.Site.GitHubToken, opts...).GetIssue(ctx, number)
	if err != nil {
		return post.Post{}, err
	}
	return is.Post(), nil
}

// writeTerminal previews the post's header and markdown content with glamour.
func writeTerminal(w io.Writer, p post.Post) error {
	cover, err := post.Cover(p.Body)
	if err != nil {
		return err
	}
	tags := strings.Join(post.TagNames(p.Labels), ", ")
	if tags == "" {
		tags = "-"
	}
	md := fmt.Sprintf("# %s\n\n> **%s** | **%s** | %s\n>\n> ![cover](%s)\n\n---\n\n%s\n",
		p.Title, post.DateDisplay(p.CreatedAt), post.Category(p.Milestone), tags,
		cover, strings.TrimSpace(post.Content(p.Body, cover)))

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
