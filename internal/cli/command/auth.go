package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/gamesvc-go/internal/cli/output"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/core/provider"
)

// AuthCommand groups sign-in and server-side access.
func AuthCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Player sign-in",
		Subcommands: []*cli.Command{
			{
				Name:   "signin",
				Usage:  "Sign the player in",
				Action: signInAction,
			},
			{
				Name:  "access",
				Usage: "Sign in and request a server-side auth code",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "client-id", Usage: "OAuth web client id", Required: true},
					&cli.BoolFlag{Name: "force-refresh", Usage: "Request a refresh token"},
					&cli.StringSliceFlag{Name: "scope", Usage: "Additional scope: email, profile, openid (repeatable)"},
				},
				Action: accessAction,
			},
		},
	}
}

func authProvider(c *cli.Context) (provider.Auth, error) {
	env, err := openEnv(c)
	if err != nil {
		return nil, err
	}
	if a := env.manager.Auth(); a != nil {
		return a, nil
	}
	return nil, disabled("auth")
}

// signIn authenticates, animating a spinner in table mode.
func signIn(c *cli.Context, a provider.Auth) (*domain.Player, error) {
	if a.IsAuthenticated() {
		return a.CurrentPlayer(), nil
	}
	if ParseGlobalFlags(c).Output != output.FormatTable {
		return a.Authenticate(c.Context)
	}
	s := output.NewSpinner(stderr(c), "Signing in")
	s.Start()
	p, err := a.Authenticate(c.Context)
	if err != nil {
		s.Fail("sign-in failed")
		return nil, err
	}
	s.Stop()
	return p, nil
}

func signInAction(c *cli.Context) error {
	a, err := authProvider(c)
	if err != nil {
		return err
	}
	p, err := signIn(c, a)
	if err != nil {
		return err
	}
	return render(c, p)
}

func accessAction(c *cli.Context) error {
	a, err := authProvider(c)
	if err != nil {
		return err
	}
	if _, err := signIn(c, a); err != nil {
		return err
	}

	clientID, refresh := c.String("client-id"), c.Bool("force-refresh")
	names := c.StringSlice("scope")
	if len(names) == 0 {
		code, err := a.RequestServerSideAccess(c.Context, clientID, refresh)
		if err != nil {
			return err
		}
		return render(c, &domain.AuthResponse{AuthCode: code})
	}

	scopes := make([]domain.AuthScope, 0, len(names))
	for _, n := range names {
		s, err := domain.ParseAuthScope(n)
		if err != nil {
			return err
		}
		scopes = append(scopes, s)
	}
	resp, err := a.RequestServerSideAccessWithScopes(c.Context, clientID, refresh, scopes)
	if err != nil {
		return err
	}
	return render(c, resp)
}
