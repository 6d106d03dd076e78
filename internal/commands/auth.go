package commands

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/coachboard/coachboard-client/internal/models"
	"github.com/coachboard/coachboard-client/internal/session"
)

var (
	loginUsername string
	loginPassword string
	loginGoogle   bool

	registerEmail    string
	registerUsername string
	registerPassword string
	registerFullName string

	callbackAccess  string
	callbackRefresh string
	callbackError   string

	whoamiRefresh bool
)

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with username or email",
	Long: `Log in with your coachboard credentials. The username may also be your email.

Missing values are prompted for on stdin. Use --google to print the Google
sign-in URL, then pass the final callback URL to 'coachboard oauth-callback'.`,
	RunE: runLogin,
}

var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE:  runRegister,
}

var OAuthCallbackCmd = &cobra.Command{
	Use:   "oauth-callback [callback-url]",
	Short: "Finish a Google sign-in from its callback URL",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runOAuthCallback,
}

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored credentials",
	RunE:  runLogout,
}

var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and stored session",
	Long:  `Show the configuration and the stored session without contacting the backend.`,
	RunE:  runStatus,
}

var WhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Validate the session and show the current user",
	RunE:  runWhoami,
}

var TokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the stored token set",
}

var tokenRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh token for a new access token",
	RunE:  runTokenRefresh,
}

func init() {
	LoginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username or email")
	LoginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password")
	LoginCmd.Flags().BoolVar(&loginGoogle, "google", false, "Print the Google sign-in URL instead")

	RegisterCmd.Flags().StringVar(&registerEmail, "email", "", "Email address")
	RegisterCmd.Flags().StringVar(&registerUsername, "username", "", "Username")
	RegisterCmd.Flags().StringVar(&registerPassword, "password", "", "Password")
	RegisterCmd.Flags().StringVar(&registerFullName, "full-name", "", "Full name")

	OAuthCallbackCmd.Flags().StringVar(&callbackAccess, "access-token", "", "access_token query value")
	OAuthCallbackCmd.Flags().StringVar(&callbackRefresh, "refresh-token", "", "refresh_token query value")
	OAuthCallbackCmd.Flags().StringVar(&callbackError, "error", "", "error query value")

	WhoamiCmd.Flags().BoolVar(&whoamiRefresh, "refresh", false, "Reload the profile and report failures")

	TokenCmd.AddCommand(tokenRefreshCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	return withApp(cmd, session.RouteLogin, func(a *app) error {
		if loginGoogle {
			fmt.Fprintln(a.out, titleStyle.Render("Google sign-in"))
			fmt.Fprintf(a.out, "Open this URL in a browser:\n  %s\n\n", a.api.GoogleLoginURL())
			fmt.Fprintln(a.out, dimStyle.Render("Then run: coachboard oauth-callback '<callback url>'"))
			return nil
		}

		username, err := a.prompt("Username or email", loginUsername)
		if err != nil {
			return err
		}
		password, err := a.prompt("Password", loginPassword)
		if err != nil {
			return err
		}

		user, err := a.sessions.Login(cmd.Context(), username, password)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("Logged in as %s (%s)", user.Username, user.Email)))
		return nil
	})
}

func runRegister(cmd *cobra.Command, args []string) error {
	return withApp(cmd, screenRegister, func(a *app) error {
		req := models.RegisterRequest{FullName: registerFullName}
		var err error
		if req.Email, err = a.prompt("Email", registerEmail); err != nil {
			return err
		}
		if req.Username, err = a.prompt("Username", registerUsername); err != nil {
			return err
		}
		if req.Password, err = a.prompt("Password", registerPassword); err != nil {
			return err
		}

		user, err := a.sessions.Register(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("Welcome, %s! You are logged in.", user.Username)))
		return nil
	})
}

// callbackFromFlags builds the callback from the individual flags. --error
// takes the raw query value, so it is decoded once here.
func callbackFromFlags() session.OAuthCallback {
	msg, err := url.QueryUnescape(callbackError)
	if err != nil {
		msg = callbackError
	}
	return session.OAuthCallback{
		AccessToken:  callbackAccess,
		RefreshToken: callbackRefresh,
		Error:        msg,
	}
}

func runOAuthCallback(cmd *cobra.Command, args []string) error {
	return withApp(cmd, session.RouteCallback, func(a *app) error {
		cb := callbackFromFlags()
		if len(args) == 1 {
			parsed, err := session.ParseOAuthCallback(args[0])
			if err != nil {
				return err
			}
			cb = parsed
		}

		if err := a.sessions.CompleteOAuthCallback(cb); err != nil {
			fmt.Fprintln(a.errOut, errorStyle.Render(err.Error()))
			fmt.Fprintf(a.errOut, "%s\n", dimStyle.Render(fmt.Sprintf("Returning to login in %s...", session.DefaultRedirectDelay)))
			<-a.sessions.PendingRedirect()
			return err
		}

		s := a.sessions.CurrentSession(cmd.Context())
		if s.User == nil {
			return errors.New("signed in, but the profile could not be loaded")
		}
		fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("Logged in as %s (%s)", s.User.Username, s.User.Email)))
		return nil
	})
}

func runLogout(cmd *cobra.Command, args []string) error {
	return withApp(cmd, session.RouteDashboard, func(a *app) error {
		if err := a.sessions.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, successStyle.Render("Logged out"))
		return nil
	})
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withApp(cmd, session.RouteDashboard, func(a *app) error {
		s := a.provider.Session()
		if JSONOutput {
			cached, err := a.provider.CachedUser()
			if err != nil {
				a.logger.Warn("failed to read cached user", "error", err)
			}
			return printJSON(a.out, map[string]any{
				"config":        a.cfgPath,
				"api_url":       a.cfg.APIURL,
				"session_store": a.cfg.Session.Store,
				"session_path":  a.cfg.Session.Path,
				"cache_backend": a.cfg.Cache.Backend,
				"state":         s.State(),
				"has_refresh":   s.RefreshToken != "",
				"cached_user":   cached,
			})
		}

		fmt.Fprintln(a.out, titleStyle.Render("coachboard status"))
		fmt.Fprintln(a.out)
		printField(a.out, "Config", a.cfgPath)
		printField(a.out, "API", a.cfg.APIURL)
		printField(a.out, "Session store", fmt.Sprintf("%s (%s)", a.cfg.Session.Store, a.cfg.Session.Path))
		printField(a.out, "Cache", a.cfg.Cache.Backend)
		fmt.Fprintln(a.out)

		if s.State() == session.StateAnonymous {
			printField(a.out, "Session", warnStyle.Render("not logged in"))
			fmt.Fprintln(a.out, dimStyle.Render("Run 'coachboard login' to authenticate"))
			return nil
		}

		printField(a.out, "Session", successStyle.Render("logged in"))
		if exp, ok := session.TokenExpiry(s.AccessToken); ok {
			remaining := time.Until(exp).Round(time.Second)
			if remaining <= 0 {
				printField(a.out, "Token", errorStyle.Render("expired "+exp.Local().Format(time.RFC1123)))
			} else {
				printField(a.out, "Token", fmt.Sprintf("expires in %s", remaining))
			}
		}
		printField(a.out, "Refresh token", s.RefreshToken != "")
		if cached, err := a.provider.CachedUser(); err == nil && cached != nil {
			printField(a.out, "Last user", fmt.Sprintf("%s (%s)", cached.Username, cached.Email))
		}
		return nil
	})
}

func runWhoami(cmd *cobra.Command, args []string) error {
	return withApp(cmd, session.RouteDashboard, func(a *app) error {
		var user *models.User
		if whoamiRefresh {
			u, err := a.sessions.RefreshProfile(cmd.Context())
			if err != nil {
				return err
			}
			user = u
		} else {
			s := a.sessions.CurrentSession(cmd.Context())
			if s.User == nil {
				return fmt.Errorf("%w, run 'coachboard login'", session.ErrNoSession)
			}
			user = s.User
		}

		if JSONOutput {
			return printJSON(a.out, user)
		}
		printField(a.out, "ID", user.ID)
		printField(a.out, "Username", user.Username)
		printField(a.out, "Email", user.Email)
		printField(a.out, "Name", user.FullName)
		if user.Role != "" {
			printField(a.out, "Role", user.Role)
		}
		if user.ProfilePicture != nil {
			printField(a.out, "Photo", *user.ProfilePicture)
		}
		return nil
	})
}

func runTokenRefresh(cmd *cobra.Command, args []string) error {
	return withApp(cmd, session.RouteDashboard, func(a *app) error {
		if err := a.sessions.RefreshTokens(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(a.out, successStyle.Render("Token refreshed"))
		return nil
	})
}
