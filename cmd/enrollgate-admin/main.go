// Command enrollgate-admin lists and resolves pending access requests through the HTTP API
//
//	enrollgate-admin list [-kind course|qbank]
//	enrollgate-admin approve <request-id>
//	enrollgate-admin deny [-reason text] <request-id>
//	enrollgate-admin delete <request-id>
//	enrollgate-admin version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"enrollgate/internal/core/gate"
	"enrollgate/internal/core/version"
	"enrollgate/internal/modkit/httpkit"
	"enrollgate/internal/platform/config"
	perr "enrollgate/internal/platform/errors"
	"enrollgate/internal/platform/logger"
	"enrollgate/internal/services/adminview"
	"enrollgate/internal/services/api/access/domain"
)

const serviceName = "enrollgate-admin"

var errUsage = errors.New("usage: enrollgate-admin list|approve|deny|delete|version [flags] [request-id]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, config.New())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run executes one subcommand; the view's confirm re-fetch is awaited before the final render
func run(ctx context.Context, args []string, out io.Writer, cfg config.Conf) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	if cmd == "version" {
		bi := version.Info(serviceName)
		_, err := fmt.Fprintf(out, "%s %s (%s, %s)\n", bi.Service, bi.Version, bi.Commit, bi.Date)
		return err
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	kindFlag := fs.String("kind", "", "course or qbank; empty lists both")
	reason := fs.String("reason", "", "denial reason shown in the audit trail")
	if err := fs.Parse(rest); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	switch cmd {
	case "list":
	case "approve", "deny", "delete":
		if fs.NArg() != 1 {
			return fmt.Errorf("%w: %s needs one request id", errUsage, cmd)
		}
	default:
		return errUsage
	}

	var kind gate.ContentKind
	if *kindFlag != "" {
		k, err := gate.ParseKind(*kindFlag)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		kind = k
	}

	ac := cfg.Prefix("ADMIN_")
	token, err := adminToken(ac)
	if err != nil {
		return err
	}
	client := adminview.NewClient(adminview.ClientOptions{
		BaseURL: ac.MayString("API_URL", "http://localhost:4000/api/v1"),
		Token:   token,
	})
	view := adminview.New(client, adminview.Options{
		Kind:         kind,
		ConfirmDelay: cfg.Prefix("ACCESS_").MayDuration("CONFIRM_DELAY", adminview.DefaultConfirmDelay),
		Logger:       logger.Named("admin"),
	})

	if _, err := view.Refresh(ctx); err != nil {
		return err
	}

	if cmd != "list" {
		id := fs.Arg(0)
		var res domain.Resolution
		switch cmd {
		case "approve":
			res, err = view.Approve(ctx, id)
		case "deny":
			res, err = view.Deny(ctx, id, *reason)
		default:
			res, err = view.DeleteOrphaned(ctx, id)
		}
		switch {
		case perr.IsCode(err, perr.ErrorCodeNotFound):
			fmt.Fprintf(out, "%s: already resolved\n", id)
		case err != nil:
			return err
		default:
			fmt.Fprintf(out, "%s: %s\n", id, res.Outcome)
		}
		view.Settle()
	}

	return render(out, view.Snapshot())
}

// adminToken prefers a literal ADMIN_API_TOKEN and otherwise mints a short-lived one from ADMIN_JWT_SECRET
func adminToken(ac config.Conf) (string, error) {
	if t := ac.MayString("API_TOKEN", ""); t != "" {
		return t, nil
	}
	secret := ac.MayString("JWT_SECRET", "")
	if secret == "" {
		return "", errors.New("set ADMIN_API_TOKEN or ADMIN_JWT_SECRET")
	}
	return httpkit.SignJWT(httpkit.JWTConfig{
		Secret: []byte(secret),
		Issuer: ac.MayString("JWT_ISSUER", ""),
	}, ac.MayString("SUBJECT", "admin-cli"), httpkit.RoleAdmin, 5*time.Minute)
}

func render(out io.Writer, s adminview.Snapshot) error {
	if s.Empty() {
		_, err := fmt.Fprintln(out, "no pending requests")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tLEARNER\tUNIT\tREQUESTED\tFLAGS")
	for _, r := range s.Rows {
		var flags []string
		if r.Orphaned {
			flags = append(flags, "orphaned")
		}
		if r.IntegrityFault {
			flags = append(flags, "integrity-fault")
		}
		if r.State == adminview.Lingering {
			flags = append(flags, "lingering")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.ContentKind, r.LearnerID, r.ContentUnitID,
			r.RequestedAt.Format(time.RFC3339), strings.Join(flags, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if s.IntegrityFault() {
		fmt.Fprintf(out, "\nINTEGRITY FAULT: %d request(s) coexist with an enrollment\n", len(s.Faults))
		for _, f := range s.Faults {
			fmt.Fprintf(out, "  request %s learner %s unit %s\n", f.RequestID, f.LearnerID, f.ContentUnitID)
		}
	}
	return nil
}
