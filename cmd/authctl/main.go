// Authctl is a command-line client for the login API.
//
//	authctl [-addr host:port] <command> [flags]
//
// Commands: register, login, refresh, revoke, change-password, data, admin-data.
// Passwords are read from the terminal when -password is not given. Tokens are taken from
// -token or AUTHCTL_TOKEN.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	adminv1 "login-api/api/admin/v1"
	authv1 "login-api/api/auth/v1"
	protectedv1 "login-api/api/protected/v1"
)

const callTimeout = 10 * time.Second

var errUsage = errors.New("usage")

type clients struct {
	auth      authv1.AuthServiceClient
	protected protectedv1.ProtectedServiceClient
	admin     adminv1.AdminServiceClient
}

// prompter reads a secret named by label.
type prompter func(label string) (string, error)

func main() {
	addr := flag.String("addr", envOr("AUTHCTL_ADDR", "localhost:8080"), "login API gRPC address")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "authctl: dial %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	c := clients{
		auth:      authv1.NewAuthServiceClient(conn),
		protected: protectedv1.NewProtectedServiceClient(conn),
		admin:     adminv1.NewAdminServiceClient(conn),
	}
	err = run(c, flag.Arg(0), flag.Args()[1:], os.Stdout, readTerminalSecret)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		usage()
		os.Exit(2)
	default:
		if st, ok := status.FromError(err); ok {
			fmt.Fprintf(os.Stderr, "authctl: %s: %s\n", st.Code(), st.Message())
		} else {
			fmt.Fprintf(os.Stderr, "authctl: %v\n", err)
		}
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: authctl [-addr host:port] <command> [flags]

commands:
  register         -username -email [-name] [-password]
  login            -username [-password]
  refresh          -access-token -refresh-token
  revoke           [-token]
  change-password  -username [-current] [-new]
  data             [-token]
  admin-data       [-token]`)
}

func run(c clients, cmd string, args []string, out io.Writer, prompt prompter) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	switch cmd {
	case "register":
		username := fs.String("username", "", "")
		email := fs.String("email", "", "")
		name := fs.String("name", "", "")
		password := fs.String("password", "", "")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		pw, err := secret(*password, "Password", prompt)
		if err != nil {
			return err
		}
		resp, err := c.auth.Register(ctx, &authv1.RegisterRequest{Username: *username, Email: *email, Name: *name, Password: pw})
		if err != nil {
			return err
		}
		return printJSON(out, resp)

	case "login":
		username := fs.String("username", "", "")
		password := fs.String("password", "", "")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		pw, err := secret(*password, "Password", prompt)
		if err != nil {
			return err
		}
		resp, err := c.auth.Login(ctx, &authv1.LoginRequest{Username: *username, Password: pw})
		if err != nil {
			return err
		}
		return printJSON(out, resp)

	case "refresh":
		access := fs.String("access-token", os.Getenv("AUTHCTL_TOKEN"), "")
		refresh := fs.String("refresh-token", os.Getenv("AUTHCTL_REFRESH_TOKEN"), "")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		resp, err := c.auth.Refresh(ctx, &authv1.RefreshRequest{AccessToken: *access, RefreshToken: *refresh})
		if err != nil {
			return err
		}
		return printJSON(out, resp)

	case "change-password":
		username := fs.String("username", "", "")
		current := fs.String("current", "", "")
		next := fs.String("new", "", "")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		cur, err := secret(*current, "Current password", prompt)
		if err != nil {
			return err
		}
		nw, err := secret(*next, "New password", prompt)
		if err != nil {
			return err
		}
		resp, err := c.auth.ChangePassword(ctx, &authv1.ChangePasswordRequest{Username: *username, CurrentPassword: cur, NewPassword: nw})
		if err != nil {
			return err
		}
		return printJSON(out, resp)

	case "revoke", "data", "admin-data":
		token := fs.String("token", os.Getenv("AUTHCTL_TOKEN"), "")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		ctx = withBearer(ctx, *token)
		var (
			resp any
			err  error
		)
		switch cmd {
		case "revoke":
			resp, err = c.auth.Revoke(ctx, &authv1.RevokeRequest{})
		case "data":
			resp, err = c.protected.GetData(ctx, &protectedv1.GetDataRequest{})
		default:
			resp, err = c.admin.GetData(ctx, &adminv1.GetDataRequest{})
		}
		if err != nil {
			return err
		}
		return printJSON(out, resp)
	}
	return errUsage
}

func withBearer(ctx context.Context, token string) context.Context {
	token = strings.TrimSpace(token)
	if token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func secret(flagValue, label string, prompt prompter) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return prompt(label)
}

func readTerminalSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%s: stdin is not a terminal, pass it as a flag", strings.ToLower(label))
	}
	fmt.Fprintf(os.Stderr, "%s: ", label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
