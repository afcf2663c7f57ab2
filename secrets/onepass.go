package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/1password/onepassword-sdk-go"
)

// ErrMissingSecret is returned when a required secret is in neither the environment nor 1password.
var ErrMissingSecret = errors.New("missing required secret")

// Resolver looks up a 1password secret reference such as op://vault/item/field.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// Secrets holds the credentials the bot needs at startup.
type Secrets struct {
	DiscordToken string
	LLMAPIKey    string
	PostgresURL  string
}

// Spec names one secret: its environment variable and its 1password reference.
type Spec struct {
	Env      string
	Ref      string
	Required bool
}

// ProviderKeyEnv returns the environment variable holding the API key for provider.
func ProviderKeyEnv(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// Options says which secrets the current configuration needs.
type Options struct {
	Provider string
	// LocalModel is set when the openai provider points at a llama.cpp server, which takes no key.
	LocalModel      bool
	RequirePostgres bool
}

// Specs lists the secrets for opts.
func Specs(opts Options) (discord, llm, postgres Spec) {
	keyEnv := ProviderKeyEnv(opts.Provider)
	discord = Spec{Env: "DISCORD_BOT_TOKEN", Ref: "op://pedro/DISCORD_SECRET/credential", Required: true}
	llm = Spec{Env: keyEnv, Ref: "op://pedro/" + keyEnv + "/credential", Required: !opts.LocalModel}
	postgres = Spec{Env: "POSTGRES_URL", Ref: "op://pedro/POSTGRES_URL/credential", Required: opts.RequirePostgres}
	return discord, llm, postgres
}

// Load reads secrets from the environment. When OP_SA holds a service account token, anything
// missing is resolved from 1password.
func Load(ctx context.Context, opts Options) (Secrets, error) {
	var resolver Resolver
	if token := os.Getenv("OP_SA"); token != "" {
		client, err := onepassword.NewClient(
			ctx,
			onepassword.WithServiceAccountToken(token),
			onepassword.WithIntegrationInfo("STAR Interview Bot", "v1.0.0"),
		)
		if err != nil {
			return Secrets{}, fmt.Errorf("error creating 1password client: %w", err)
		}
		resolver = client.Secrets()
	}
	return load(ctx, os.Getenv, resolver, opts)
}

func load(ctx context.Context, getenv func(string) string, resolver Resolver, opts Options) (Secrets, error) {
	discordSpec, llmSpec, postgresSpec := Specs(opts)

	var s Secrets
	var missing []string
	for _, item := range []struct {
		spec Spec
		dst  *string
	}{
		{discordSpec, &s.DiscordToken},
		{llmSpec, &s.LLMAPIKey},
		{postgresSpec, &s.PostgresURL},
	} {
		value, err := lookup(ctx, getenv, resolver, item.spec)
		if err != nil {
			return Secrets{}, err
		}
		if value == "" && item.spec.Required {
			missing = append(missing, item.spec.Env)
		}
		*item.dst = value
	}

	if len(missing) > 0 {
		return Secrets{}, fmt.Errorf("%w: %s", ErrMissingSecret, strings.Join(missing, ", "))
	}
	return s, nil
}

func lookup(ctx context.Context, getenv func(string) string, resolver Resolver, spec Spec) (string, error) {
	if v := getenv(spec.Env); v != "" {
		return v, nil
	}
	if resolver == nil || !spec.Required {
		return "", nil
	}
	v, err := resolver.Resolve(ctx, spec.Ref)
	if err != nil {
		return "", fmt.Errorf("error resolving secret %s: %w", spec.Env, err)
	}
	return v, nil
}
