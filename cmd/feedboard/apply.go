package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/bakkerme/feedboard/internal/application"
	"github.com/bakkerme/feedboard/internal/config"
	"github.com/bakkerme/feedboard/internal/core"
	"github.com/bakkerme/feedboard/internal/outputs/email/smtp"
)

// applicationForm is the YAML shape read by --form.
type applicationForm struct {
	Parent   application.Parent  `yaml:"parent"`
	Children []application.Child `yaml:"children"`
}

func applyCmd() *cli.Command {
	return &cli.Command{
		Name:  "apply",
		Usage: "Compose the parent council application message",
		Description: `Builds the application message from a form file and prints the body
and the mailto link. With --send the message is delivered via SMTP using the
SMTP_* environment variables.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "form",
				Usage:    "YAML file with parent and children",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "first",
				Usage: "Parent first name, overrides the form",
			},
			&cli.StringFlag{
				Name:  "last",
				Usage: "Parent last name, overrides the form",
			},
			&cli.BoolFlag{
				Name:  "send",
				Usage: "Send via SMTP instead of printing the mailto link",
			},
			&cli.StringFlag{
				Name:    "from",
				Usage:   "Sender address for --send (default: the SMTP user)",
				EnvVars: []string{"APPLICATION_FROM"},
			},
		},
		Action: func(c *cli.Context) error {
			ctx, rt, err := setup(c)
			if err != nil {
				return err
			}
			defer rt.close()

			cfg, err := loadOptionalDocument(c)
			if err != nil {
				return err
			}
			tmpl, from := application.DefaultTemplate(), c.String("from")
			if cfg != nil {
				tmpl = tmpl.Merge(templateFromConfig(cfg.Application), len(cfg.Application.Intro) > 0, len(cfg.Application.Closing) > 0)
				if from == "" {
					from = cfg.Application.From
				}
				if cfg.Application.OverrideURL != "" {
					tmpl = application.LoadTemplate(ctx, rt.fetcher(), tmpl, cfg.Application.OverrideURL)
				}
			}

			form, err := readForm(c.String("form"), tmpl)
			if err != nil {
				return err
			}
			if c.IsSet("first") {
				form.Parent.First = c.String("first")
			}
			if c.IsSet("last") {
				form.Parent.Last = c.String("last")
			}

			if !c.Bool("send") {
				w := c.App.Writer
				fmt.Fprintln(w, form.Body())
				fmt.Fprintln(w)
				fmt.Fprintln(w, form.MailtoHref())
				if !form.Valid() {
					return cli.Exit(form.Hint(), 1)
				}
				return nil
			}

			if err := smtp.ValidateConfig(rt.env.SMTP); err != nil {
				return err
			}
			if err := form.Send(ctx, smtp.NewSender(rt.env.SMTP), from); err != nil {
				if errors.Is(err, application.ErrIncomplete) {
					return cli.Exit(form.Hint(), 1)
				}
				return err
			}
			core.LoggerFromContext(ctx).Info("application sent", "to", form.Template().To)
			return nil
		},
	}
}

func templateFromConfig(a config.ApplicationConfig) application.Template {
	return application.Template{To: a.To, Subject: a.Subject, Intro: a.Intro, Closing: a.Closing}
}

func readForm(path string, tmpl application.Template) (*application.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form: %w", err)
	}
	var in applicationForm
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}
	form := application.NewForm(tmpl)
	form.Parent = in.Parent
	for i, child := range in.Children {
		if i == 0 {
			if err := form.SetChild(0, child); err != nil {
				return nil, err
			}
			continue
		}
		form.AddChild(child)
	}
	return form, nil
}
