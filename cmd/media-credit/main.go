package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mediacredit "github.com/goliatone/go-media-credit"
	"github.com/goliatone/go-media-credit/internal/authors"
	"github.com/goliatone/go-media-credit/internal/media"
	"github.com/goliatone/go-media-credit/internal/shortcode"
)

var moduleBuilder = buildModule

func buildModule(configPath string) (*mediacredit.Module, error) {
	cfg := mediacredit.DefaultConfig()
	if configPath != "" {
		loaded, err := mediacredit.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	return mediacredit.New(cfg)
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "media-credit",
		Short: "Maintain and render media-credit shortcodes in post content",
		Long: `media-credit rewrites the [media-credit] shortcode wrapping an image
so it reflects the image's current credit, and expands stored shortcodes
into display HTML.`,
		SilenceUsage: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.PersistentFlags().String("config", "", "TOML configuration file")

	root.AddCommand(newUpdateCmd(), newRenderCmd(), newServeCmd())
	return root
}

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [FILE|-]",
		Short: "Rewrite the credit of one image and print the content",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attachmentID, _ := cmd.Flags().GetInt64("attachment-id")
			attachmentURL, _ := cmd.Flags().GetString("attachment-url")
			authorID, _ := cmd.Flags().GetInt64("author-id")
			freeform, _ := cmd.Flags().GetString("freeform")
			link, _ := cmd.Flags().GetString("link")
			nofollow, _ := cmd.Flags().GetBool("nofollow")

			if attachmentID <= 0 {
				return fmt.Errorf("--attachment-id must be a positive integer")
			}
			if authorID == 0 && strings.TrimSpace(freeform) == "" {
				return fmt.Errorf("one of --author-id or --freeform is required")
			}
			if err := shortcode.NewSanitizer().ValidateURL(link); err != nil {
				return fmt.Errorf("--link: %w", err)
			}

			content, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			module, err := moduleFor(cmd)
			if err != nil {
				return err
			}
			defer module.Close()

			ctx := cmd.Context()
			if _, err := module.Media().Register(ctx, media.RegisterInput{
				AttachmentID: attachmentID,
				URL:          attachmentURL,
			}); err != nil {
				return fmt.Errorf("register attachment: %w", err)
			}

			updated := module.UpdateCredit(ctx, content, attachmentID, mediacredit.CreditUpdate{
				AuthorID: authorID,
				Freeform: freeform,
				URL:      link,
				Nofollow: nofollow,
			})
			_, err = io.WriteString(cmd.OutOrStdout(), updated)
			return err
		},
	}
	cmd.Flags().Int64("attachment-id", 0, "Attachment whose credit is rewritten")
	cmd.Flags().String("attachment-url", "", "URL of the attachment's original file")
	cmd.Flags().Int64("author-id", 0, "Registered author credited for the image")
	cmd.Flags().String("freeform", "", "Free-text credit used when no author id is given")
	cmd.Flags().String("link", "", "URL the credit links to")
	cmd.Flags().Bool("nofollow", false, "Mark the credit link rel=nofollow")
	_ = cmd.MarkFlagRequired("attachment-id")
	_ = cmd.MarkFlagRequired("attachment-url")
	cmd.MarkFlagsMutuallyExclusive("author-id", "freeform")
	return cmd
}

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [FILE|-]",
		Short: "Expand credit and caption shortcodes into HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			module, err := moduleFor(cmd)
			if err != nil {
				return err
			}
			defer module.Close()

			renderer := module.Renderer()
			if renderer == nil {
				return fmt.Errorf("rendering is disabled in the configuration")
			}

			specs, _ := cmd.Flags().GetStringArray("author")
			for _, spec := range specs {
				input, err := parseAuthor(spec)
				if err != nil {
					return err
				}
				if _, err := module.Authors().Upsert(cmd.Context(), input); err != nil {
					return fmt.Errorf("register author %d: %w", input.AuthorID, err)
				}
			}

			html, err := renderer.Render(cmd.Context(), content)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), html)
			return err
		},
	}
	cmd.Flags().StringArray("author", nil, `Author shown for id credits, as "ID=Display Name" or "ID=Display Name|URL"`)
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the credit HTTP endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			module, err := moduleFor(cmd)
			if err != nil {
				return err
			}
			defer module.Close()

			handler, err := module.HTTPHandler()
			if err != nil {
				return err
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = server.Shutdown(shutdown)
			}()

			log.Printf("media-credit listening on %s", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	return cmd
}

func moduleFor(cmd *cobra.Command) (*mediacredit.Module, error) {
	path, _ := cmd.Flags().GetString("config")
	module, err := moduleBuilder(path)
	if err != nil {
		return nil, fmt.Errorf("bootstrap module: %w", err)
	}
	return module, nil
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(raw), nil
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func parseAuthor(spec string) (authors.UpsertInput, error) {
	idPart, rest, ok := strings.Cut(spec, "=")
	if !ok {
		return authors.UpsertInput{}, fmt.Errorf("author %q: expected ID=Display Name", spec)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
	if err != nil || id <= 0 {
		return authors.UpsertInput{}, fmt.Errorf("author %q: id must be a positive integer", spec)
	}
	name, url, _ := strings.Cut(rest, "|")
	return authors.UpsertInput{
		AuthorID:    id,
		DisplayName: strings.TrimSpace(name),
		URL:         strings.TrimSpace(url),
	}, nil
}
