package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MyCarrier-DevOps/resolve-git-ref/internal/adapters/git"
	"github.com/MyCarrier-DevOps/resolve-git-ref/internal/domain"
)

// resolve command flags.
var (
	owner string
	repo  string
	ref   string
	token string
)

func newResolveCmd(deps *Dependencies) *cobra.Command {
	resolveCmd := &cobra.Command{
		Use:   "resolve [owner/repo | repository-url]",
		Short: "Resolve a single ref and print {sha, fqRef} as JSON",
		Long: `Resolve a branch or tag of a remote repository and print the result as JSON.

The repository is given either as a positional owner/repo slug or remote URL,
or with --owner and --repo. Without --ref the remote's default branch is used.
A short --ref matches both refs/heads/<ref> and refs/tags/<ref>; whichever the
remote advertises first wins. Exits non-zero when the ref is not found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args, deps)
		},
	}

	resolveCmd.Flags().StringVar(&owner, "owner", "", "Repository owner")
	resolveCmd.Flags().StringVar(&repo, "repo", "", "Repository name")
	resolveCmd.Flags().StringVarP(&ref, "ref", "r", "", "Branch, tag or fully-qualified ref (default: remote default branch)")
	resolveCmd.Flags().StringVarP(&token, "token", "t", "", "Access token for private repositories")

	return resolveCmd
}

// runResolve executes a single resolution with injected dependencies.
func runResolve(cmd *cobra.Command, args []string, deps *Dependencies) error {
	ctx, log, cfg, err := setup(cmd, deps)
	if err != nil {
		return err
	}

	input := domain.ResolveInput{
		Owner:      owner,
		Repo:       repo,
		Ref:        ref,
		Credential: token,
	}
	if len(args) > 0 {
		if input.Owner != "" || input.Repo != "" {
			return errors.New("repository given both as argument and via --owner/--repo")
		}
		input.Owner, input.Repo, err = git.ParseRepository(args[0])
		if err != nil {
			return err
		}
	}
	if input.Credential == "" {
		input.Credential = cfg.DefaultToken
	}

	resolver, err := newResolver(ctx, deps, cfg, log)
	if err != nil {
		return err
	}

	result, err := resolver.Resolve(ctx, input)
	if err != nil {
		log.Error(ctx, "failed to resolve ref", err, nil)
		var rerr *domain.ResolveError
		if errors.As(err, &rerr) && rerr.Kind == domain.KindValidation {
			return fmt.Errorf("invalid input: %w", err)
		}
		return err
	}
	if result == nil {
		return fmt.Errorf("%w: %s/%s %s", ErrRefNotFound, input.Owner, input.Repo, input.Ref)
	}

	writer := deps.OutputWriterFactory()
	if err := writer.WriteResolution(result); err != nil {
		log.Error(ctx, "failed to write output", err, nil)
		return fmt.Errorf("output error: %w", err)
	}

	return nil
}
