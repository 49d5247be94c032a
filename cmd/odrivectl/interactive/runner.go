// Package interactive provides the odrivectl command set and its
// interactive shell.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/odrive-host/odrive-go/pkg/inspect"
	"github.com/odrive-host/odrive-go/pkg/odrive"
)

// ErrUnknownCommand is returned by Execute for a command it does not know.
var ErrUnknownCommand = errors.New("unknown command")

// ErrUsage indicates missing or extra command arguments.
var ErrUsage = errors.New("usage")

// ReloadFunc downloads the schema again and installs it on the session.
type ReloadFunc func(ctx context.Context) error

// Runner executes odrivectl commands against a session.
type Runner struct {
	session   *odrive.Session
	formatter *inspect.Formatter
	reload    ReloadFunc
}

// NewRunner creates a runner. reload may be nil, in which case the
// session downloads the schema itself.
func NewRunner(session *odrive.Session, reload ReloadFunc) *Runner {
	if reload == nil {
		reload = func(ctx context.Context) error {
			_, err := session.LoadSchema(ctx)
			return err
		}
	}
	return &Runner{
		session:   session,
		formatter: inspect.NewFormatter(),
		reload:    reload,
	}
}

// Execute runs one command and writes its output to w.
func (r *Runner) Execute(ctx context.Context, w io.Writer, cmd string, args []string) error {
	switch strings.ToLower(cmd) {
	case "tree", "ls":
		return r.cmdTree(w, args)
	case "info", "i":
		return r.cmdInfo(w, args)
	case "read", "r":
		return r.cmdRead(ctx, w, args)
	case "write", "w":
		return r.cmdWrite(ctx, w, args)
	case "call", "c":
		return r.cmdCall(ctx, w, args)
	case "reload":
		return r.cmdReload(ctx, w)
	case "stats":
		r.cmdStats(w)
		return nil
	case "export":
		return r.cmdExport(w)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}

func (r *Runner) cmdTree(w io.Writer, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: tree [prefix]", ErrUsage)
	}
	root := r.session.Schema()
	if root == nil {
		return odrive.ErrNoSchema
	}

	prefix := ""
	if len(args) == 1 {
		prefix = strings.TrimSuffix(args[0], ".")
	}
	out, err := r.formatter.FormatTree(root, prefix)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func (r *Runner) cmdInfo(w io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: info <path>", ErrUsage)
	}
	f := *r.formatter
	f.ShowIDs = true
	d, err := r.session.Resolve(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(w, f.FormatDescriptor(d))
	return nil
}

func (r *Runner) cmdRead(ctx context.Context, w io.Writer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: read <path> [path...]", ErrUsage)
	}
	for _, path := range args {
		v, err := r.session.ReadValue(ctx, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s = %s\n", path, r.formatter.FormatValue(v))
	}
	return nil
}

func (r *Runner) cmdWrite(ctx context.Context, w io.Writer, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: write <path> <value>", ErrUsage)
	}
	path := args[0]

	d, err := r.session.Resolve(path)
	if err != nil {
		return err
	}
	if !d.Writable() {
		return fmt.Errorf("%s: %w", path, odrive.ErrReadOnly)
	}
	v, err := inspect.ParseValue(args[1], d.Type)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := r.session.WriteValue(ctx, path, v); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s <- %s\n", path, r.formatter.FormatValue(v))
	return nil
}

func (r *Runner) cmdCall(ctx context.Context, w io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: call <path>", ErrUsage)
	}
	if err := r.session.Invoke(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s() called\n", args[0])
	return nil
}

func (r *Runner) cmdReload(ctx context.Context, w io.Writer) error {
	if err := r.reload(ctx); err != nil {
		return err
	}
	root := r.session.Schema()
	if root == nil {
		return odrive.ErrNoSchema
	}
	fmt.Fprintf(w, "Schema reloaded (%d bytes)\n", len(root.Document()))
	return nil
}

func (r *Runner) cmdStats(w io.Writer) {
	st := r.session.Stats()
	fmt.Fprintf(w, "%-13s %s\n", "Session:", r.session.ID())
	if s := r.session.Serial(); s != "" {
		fmt.Fprintf(w, "%-13s %s\n", "Serial:", s)
	}
	fmt.Fprintf(w, "%-13s %d\n", "Exchanges:", st.Exchanges)
	fmt.Fprintf(w, "%-13s %d\n", "Failures:", st.Failures)
	fmt.Fprintf(w, "%-13s %d\n", "Out of order:", st.OutOfOrder)
	fmt.Fprintf(w, "%-13s %d\n", "Bytes out:", st.BytesOut)
	fmt.Fprintf(w, "%-13s %d\n", "Bytes in:", st.BytesIn)
}

func (r *Runner) cmdExport(w io.Writer) error {
	root := r.session.Schema()
	if root == nil {
		return odrive.ErrNoSchema
	}
	return root.ExportYAML(w)
}
