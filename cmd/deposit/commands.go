package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/docopt/docopt-go"

	deposit "github.com/goliatone/go-deposit"
	"github.com/goliatone/go-deposit/internal/schemaloader"
	"github.com/goliatone/go-deposit/pkg/binder"
	"github.com/goliatone/go-deposit/pkg/blob"
	"github.com/goliatone/go-deposit/pkg/config"
	"github.com/goliatone/go-deposit/pkg/editor/prompt"
	"github.com/goliatone/go-deposit/pkg/logging"
	"github.com/goliatone/go-deposit/pkg/markup"
	"github.com/goliatone/go-deposit/pkg/session"
	"github.com/goliatone/go-deposit/pkg/transport"
)

// encode reads JSON from the argument or stdin and prints its blob.
func encode(opts docopt.Opts) error {
	raw, err := argOrStdin(opts, "<json>")
	if err != nil {
		return err
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return fmt.Errorf("encode: invalid JSON: %w", err)
	}
	out, err := blob.Encode(value)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// decode prints the JSON held by a blob.
func decode(opts docopt.Opts) error {
	raw, err := argOrStdin(opts, "<blob>")
	if err != nil {
		return err
	}
	value, err := deposit.Decode(raw)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// edit prompts for every region of the page and writes the updated page.
func edit(opts docopt.Opts) error {
	env, err := setup(opts)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loader := schemaloader.New(env.cfg.LoaderOptions())
	factory := prompt.NewFactory(prompt.WithLoader(loader), prompt.WithLogger(env.logger))
	b := binder.New(loader, factory,
		binder.WithEditorOptions(env.cfg.EditorOptions()),
		binder.WithLogger(env.logger),
	)

	regions := env.regions()
	if len(regions) == 0 {
		return errors.New("edit: no matching regions in page")
	}
	bindings, err := b.AttachAll(ctx, regions...)
	if err != nil {
		return err
	}
	for _, binding := range bindings {
		ed, ok := binding.Editor().(*prompt.Editor)
		if !ok {
			continue
		}
		if err := ed.Edit(ctx); err != nil {
			return fmt.Errorf("edit region %q: %w", binding.ID(), err)
		}
		if err := binding.Err(); err != nil {
			return err
		}
	}

	out := io.Writer(os.Stdout)
	if path, _ := opts.String("--out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return env.page.Render(out)
}

// save sends the page record, or the record of --region, with PUT.
func save(opts docopt.Opts) error {
	return runAction(opts, func(ctrl *session.Controller, env *environment) error {
		if id, _ := opts.String("--region"); id != "" {
			regions := env.regions()
			if len(regions) == 0 {
				return fmt.Errorf("save: region %q not found", id)
			}
			rec, err := blob.DecodeRecord(regions[0].BlobText())
			if err != nil {
				return fmt.Errorf("save: region %q: %w", id, err)
			}
			ctrl.UpdateModel(rec)
		}
		return ctrl.Save()
	})
}

// remove deletes the page record.
func remove(opts docopt.Opts) error {
	return runAction(opts, func(ctrl *session.Controller, _ *environment) error {
		return ctrl.Delete()
	})
}

func runAction(opts docopt.Opts, act func(*session.Controller, *environment) error) error {
	env, err := setup(opts)
	if err != nil {
		return err
	}
	sig, err := env.page.Session()
	if err != nil {
		return err
	}

	client := transport.NewHTTPClient(env.cfg.TransportOptions(env.logger)...)
	ctrl := deposit.NewSession(client,
		session.WithLogger(env.logger),
		session.WithMessages(env.cfg.SessionMessages()),
	)
	defer ctrl.Close()

	ctrl.Broadcast(sig)
	ctrl.Wait()
	if err := ctrl.State().FetchErr; err != nil {
		return err
	}
	if err := act(ctrl, env); err != nil {
		return err
	}
	ctrl.Wait()

	ui := ctrl.State().UI
	status, err := markup.NewRenderer(env.cfg.MarkupOptions()...).RenderStatus(ui)
	if err != nil {
		return err
	}
	fmt.Print(status)
	if ui.Error != nil {
		return ui.Error
	}
	return nil
}

type environment struct {
	cfg    config.Config
	logger logging.Logger
	page   *markup.Page
	region string
}

func setup(opts docopt.Opts) (*environment, error) {
	path, _ := opts.String("--config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	pagePath, _ := opts.String("<page>")
	f, err := os.Open(pagePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	page, err := markup.Parse(f, cfg.MarkupOptions()...)
	if err != nil {
		return nil, err
	}
	region, _ := opts.String("--region")
	return &environment{
		cfg:    cfg,
		logger: logging.Glog(),
		page:   page,
		region: strings.TrimSpace(region),
	}, nil
}

// regions returns the page regions, narrowed to --region when given.
func (e *environment) regions() []binder.Region {
	all := e.page.BinderRegions()
	if e.region == "" {
		return all
	}
	for _, region := range all {
		if region.ID() == e.region {
			return []binder.Region{region}
		}
	}
	return nil
}

func argOrStdin(opts docopt.Opts, key string) (string, error) {
	if value, _ := opts.String(key); value != "" {
		return value, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
