package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New("not signed in: run campusctl login")

func (a *cli) signupCommand() *cobra.Command {
	var (
		email, password, fullName, role string
		collegeName, companyName        string
		major, location, industry, web  string
		collegeID                       int64
		graduationYear                  int
	)

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Example: `  campusctl signup --email ada@uni.edu --password s3cretpass --name "Ada L" --role student --major CS
  campusctl signup --email hr@acme.io --password s3cretpass --name "HR" --role company --company-name Acme`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			extra := map[string]any{}
			setString := func(key, value string) {
				if value != "" {
					extra[key] = value
				}
			}
			setString("collegeName", collegeName)
			setString("companyName", companyName)
			setString("major", major)
			setString("location", location)
			setString("industry", industry)
			setString("website", web)
			if collegeID > 0 {
				extra["collegeId"] = collegeID
			}
			if graduationYear > 0 {
				extra["graduationYear"] = graduationYear
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			if authErr := c.SignUp(cmd.Context(), email, password, fullName, role, extra); authErr != nil {
				return authErr
			}
			st := c.State()
			fmt.Fprintf(a.out, "Signed up as %s (%s)\n", st.User.Email, st.Role)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&email, "email", "", "Account email")
	f.StringVar(&password, "password", "", "Password (min 8 chars, letters and digits)")
	f.StringVar(&fullName, "name", "", "Full name")
	f.StringVar(&role, "role", "student", "student, college or company")
	f.StringVar(&collegeName, "college-name", "", "College name (college role)")
	f.StringVar(&companyName, "company-name", "", "Company name (company role)")
	f.StringVar(&major, "major", "", "Major (student role)")
	f.Int64Var(&collegeID, "college-id", 0, "College id (student role)")
	f.IntVar(&graduationYear, "graduation-year", 0, "Graduation year (student role)")
	f.StringVar(&location, "location", "", "Location (college role)")
	f.StringVar(&industry, "industry", "", "Industry (company role)")
	f.StringVar(&web, "website", "", "Website (college or company role)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *cli) loginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if authErr := c.SignIn(cmd.Context(), email, password); authErr != nil {
				return authErr
			}
			st := c.State()
			fmt.Fprintf(a.out, "Signed in as %s (%s)\n", st.User.Email, st.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *cli) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account, profile and role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.Load(cmd.Context()); err != nil {
				return err
			}
			st := c.State()
			if !st.Authenticated {
				return errNotSignedIn
			}
			return a.printJSON(st)
		},
	}
}

func (a *cli) profileCommand() *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Profile commands",
	}
	profile.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Re-fetch and print the current profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.Load(cmd.Context()); err != nil {
				return err
			}
			if !c.State().Authenticated {
				return errNotSignedIn
			}
			if err := c.RefreshProfile(cmd.Context()); err != nil {
				return err
			}
			st := c.State()
			return a.printJSON(map[string]any{"profile": st.Profile, "role": st.Role})
		},
	})
	return profile
}

func (a *cli) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and forget the token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.Load(cmd.Context()); err != nil {
				a.logger.Debug().Err(err).Msg("Session load failed before logout")
			}
			if err := c.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

func (a *cli) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream notifications (inquiries, connection requests) until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.Load(cmd.Context()); err != nil {
				return err
			}
			if !c.State().Authenticated {
				return errNotSignedIn
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return streamNotifications(ctx, a.v.GetString(apiURLKey), c.Token(), a.out)
		},
	}
}

// streamNotifications prints one JSON event per line until ctx ends or the
// server closes the socket.
func streamNotifications(ctx context.Context, apiURL, token string, out io.Writer) error {
	u, err := url.Parse(strings.TrimRight(apiURL, "/") + "/api/notifications/ws")
	if err != nil {
		return fmt.Errorf("parse api url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("open notification stream: %s", resp.Status)
		}
		return fmt.Errorf("open notification stream: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read notification: %w", err)
		}
		// Several events may arrive in one frame, newline separated
		for _, line := range bytes.Split(data, []byte{'\n'}) {
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			if _, err := fmt.Fprintln(out, string(line)); err != nil {
				return err
			}
		}
	}
}
