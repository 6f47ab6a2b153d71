package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alpn-software/portfolio-client/internal/app"
	"github.com/alpn-software/portfolio-client/pkg/publicapi"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, c *app.Console, args []string, out io.Writer) error
}

var commands = []command{
	{name: "cv", usage: "download the resume (--format pdf|json)", run: runCV},
	{name: "contact", usage: "submit the contact form (--email, --name, --message)", run: runContact},
	{name: "health", usage: "check API health", run: runHealth},
	{name: "version", usage: "print the API version", run: runVersion},
	{name: "history", usage: "list journaled contact submissions", run: runHistory},
}

var errUsage = errors.New("usage")

func usage() string {
	var b strings.Builder
	b.WriteString("usage: alpnctl <command> [flags]\n\ncommands:\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "  %-8s %s\n", c.name, c.usage)
	}
	return b.String()
}

func splitCommand(args []string) (command, []string, error) {
	if len(args) == 0 {
		return command{}, nil, fmt.Errorf("%w: missing command\n%s", errUsage, usage())
	}
	for _, c := range commands {
		if c.name == args[0] {
			return c, args[1:], nil
		}
	}
	return command{}, nil, fmt.Errorf("%w: unknown command %q\n%s", errUsage, args[0], usage())
}

type cvOptions struct {
	format   string
	out      string
	decode   bool
	encoding string
}

func parseCVFlags(args []string) (cvOptions, error) {
	opts := cvOptions{}
	fs := pflag.NewFlagSet("cv", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVarP(&opts.format, "format", "f", publicapi.FormatPDF, "resume format sent to the API")
	fs.StringVarP(&opts.out, "out", "o", "", "write output to file instead of stdout")
	fs.BoolVar(&opts.decode, "decode", false, "unpack the data envelope (pdf bytes or json document)")
	fs.StringVar(&opts.encoding, "encoding", "json", "rendering for decoded json resumes: json|yaml")
	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("%w: cv: %v", errUsage, err)
	}
	opts.encoding = strings.ToLower(strings.TrimSpace(opts.encoding))
	if opts.encoding != "json" && opts.encoding != "yaml" {
		return opts, fmt.Errorf("%w: cv: unsupported encoding %q", errUsage, opts.encoding)
	}
	return opts, nil
}

func runCV(ctx context.Context, c *app.Console, args []string, out io.Writer) error {
	opts, err := parseCVFlags(args)
	if err != nil {
		return err
	}

	res, err := c.FetchResume(ctx, app.ResumeRequest{Format: opts.format, Decode: opts.decode})
	if err != nil {
		return err
	}

	payload := res.Response.Body()
	if res.Resume != nil {
		payload, err = renderResume(*res.Resume, opts.encoding)
		if err != nil {
			return err
		}
	}

	if opts.out == "" {
		_, err = out.Write(payload)
		return err
	}
	if err := os.WriteFile(opts.out, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}
	fmt.Fprintf(out, "wrote %d bytes to %s\n", len(payload), opts.out)
	return nil
}

func renderResume(r publicapi.Resume, encoding string) ([]byte, error) {
	if r.PDF != nil {
		return r.PDF, nil
	}
	if encoding == "yaml" {
		return yaml.Marshal(r.Document)
	}
	return json.MarshalIndent(r.Document, "", "  ")
}

// parseContactFlags only sets fields whose flags were given, so unset fields stay absent.
func parseContactFlags(args []string) (publicapi.ContactData, error) {
	fs := pflag.NewFlagSet("contact", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "sender email")
	name := fs.String("name", "", "sender name")
	message := fs.String("message", "", "message body")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: contact: %v", errUsage, err)
	}

	data := publicapi.ContactData{}
	if fs.Changed("email") {
		data[publicapi.FieldEmail] = *email
	}
	if fs.Changed("name") {
		data[publicapi.FieldName] = *name
	}
	if fs.Changed("message") {
		data[publicapi.FieldMessage] = *message
	}
	return data, nil
}

func runContact(ctx context.Context, c *app.Console, args []string, out io.Writer) error {
	data, err := parseContactFlags(args)
	if err != nil {
		return err
	}

	sub, err := c.SubmitContact(ctx, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "submitted (status %d, id %s)\n", sub.StatusCode, sub.RequestID)
	return nil
}

func runHealth(ctx context.Context, c *app.Console, _ []string, out io.Writer) error {
	resp, err := c.Health(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, strings.TrimSpace(string(resp.Body())))
	return err
}

func runVersion(ctx context.Context, c *app.Console, _ []string, out io.Writer) error {
	resp, err := c.Version(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, strings.TrimSpace(string(resp.Body())))
	return err
}

func runHistory(_ context.Context, c *app.Console, _ []string, out io.Writer) error {
	subs, err := c.History()
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		_, err = fmt.Fprintln(out, "no submissions recorded")
		return err
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(subs); err != nil {
		return err
	}
	return enc.Close()
}
