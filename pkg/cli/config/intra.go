package config

import (
	"context"
	"log/slog"

	"github.com/secmon-lab/slotwatch/pkg/domain/interfaces"
	"github.com/secmon-lab/slotwatch/pkg/domain/model"
	"github.com/secmon-lab/slotwatch/pkg/service/intra"
	"github.com/secmon-lab/slotwatch/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Intra holds CLI flags for the intra endpoints. Overriding them is mostly
// useful against a staging instance or a local fake.
type Intra struct {
	signInURL    string
	projectsURL  string
	profileURL   string
	debugProject string
}

// Flags returns CLI flags for intra endpoint configuration
func (x *Intra) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "intra-signin-url",
			Usage:       "Sign-in endpoint of the intra",
			Category:    "Intra",
			Value:       intra.DefaultSignInURL,
			Sources:     cli.EnvVars("SLOTWATCH_INTRA_SIGNIN_URL"),
			Destination: &x.signInURL,
		},
		&cli.StringFlag{
			Name:        "intra-projects-url",
			Usage:       "Per-project base URL of the intra",
			Category:    "Intra",
			Value:       intra.DefaultProjectsURL,
			Sources:     cli.EnvVars("SLOTWATCH_INTRA_PROJECTS_URL"),
			Destination: &x.projectsURL,
		},
		&cli.StringFlag{
			Name:        "intra-profile-url",
			Usage:       "Profile base URL of the intra (used by the debug project)",
			Category:    "Intra",
			Value:       intra.DefaultProfileURL,
			Sources:     cli.EnvVars("SLOTWATCH_INTRA_PROFILE_URL"),
			Destination: &x.profileURL,
		},
		&cli.StringFlag{
			Name:        "intra-debug-project",
			Usage:       "Project identifier rerouted to the profile slots endpoint",
			Category:    "Intra",
			Value:       intra.DefaultDebugProject,
			Sources:     cli.EnvVars("SLOTWATCH_INTRA_DEBUG_PROJECT"),
			Destination: &x.debugProject,
		},
	}
}

// LogValue exposes the endpoint configuration for structured logging
func (x Intra) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("signin_url", x.signInURL),
		slog.String("projects_url", x.projectsURL),
		slog.String("profile_url", x.profileURL),
		slog.String("debug_project", x.debugProject),
	)
}

// Factory builds intra sessions bound to the configured endpoints
func (x *Intra) Factory() usecase.IntraFactory {
	return func(ctx context.Context, cfg *model.Config) (interfaces.IntraClient, error) {
		return intra.New(ctx, cfg.Login, cfg.Password,
			intra.WithEndpoints(x.signInURL, x.projectsURL, x.profileURL),
			intra.WithDebugProject(x.debugProject),
		)
	}
}
