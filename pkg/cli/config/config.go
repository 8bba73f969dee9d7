package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/model/auth"
	domainConfig "github.com/trm-lab/argus/pkg/domain/model/config"
	"github.com/trm-lab/argus/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the application configuration: the registered
// organizations with their approval chain templates and risk appetite
// definitions, plus the static API tokens.
type AppConfig struct {
	Organizations []Organization `toml:"organization"`
	Tokens        []Token        `toml:"token"`

	path string
}

// Organization represents one tenant configuration
type Organization struct {
	ID        string              `toml:"id"`
	Name      string              `toml:"name"`
	Chains    []ChainTemplate     `toml:"chain"`
	Appetites []AppetiteThreshold `toml:"appetite"`
}

// ChainTemplate is a configured approval chain for one workflow type
type ChainTemplate struct {
	WorkflowType string      `toml:"workflow_type"`
	Steps        []ChainStep `toml:"step"`
}

// ChainStep is one approver slot in a chain template
type ChainStep struct {
	ApproverRole   string `toml:"approver_role"`
	ApproverUserID string `toml:"approver_user_id"`
	ApproverName   string `toml:"approver_name"`
}

// AppetiteThreshold is the board-approved tolerance for one risk category
type AppetiteThreshold struct {
	Category              string  `toml:"category"`
	RiskTolerance         float64 `toml:"risk_tolerance"`
	EarlyWarningThreshold float64 `toml:"early_warning_threshold"`
}

// Token maps a static bearer token to a caller identity
type Token struct {
	Token        string `toml:"token"`
	UserID       string `toml:"user_id"`
	Name         string `toml:"name"`
	Role         string `toml:"role"`
	Organization string `toml:"organization"`
}

// Validate checks if the Organization is valid
func (o *Organization) Validate() error {
	if o.ID == "" {
		return goerr.New("organization id is required")
	}
	if o.Name == "" {
		return goerr.New("organization name is required", goerr.V("id", o.ID))
	}

	chainTypes := make(map[string]bool)
	for _, chain := range o.Chains {
		if _, err := types.ParseWorkflowType(chain.WorkflowType); err != nil {
			return goerr.Wrap(err, "invalid chain workflow type", goerr.V("org", o.ID))
		}
		if chainTypes[chain.WorkflowType] {
			return goerr.New("duplicate chain workflow type",
				goerr.V("org", o.ID), goerr.V("workflow_type", chain.WorkflowType))
		}
		chainTypes[chain.WorkflowType] = true

		if len(chain.Steps) == 0 {
			return goerr.New("chain template has no steps",
				goerr.V("org", o.ID), goerr.V("workflow_type", chain.WorkflowType))
		}
		for _, step := range chain.Steps {
			if _, err := types.ParseRole(step.ApproverRole); err != nil {
				return goerr.Wrap(err, "invalid chain approver role",
					goerr.V("org", o.ID), goerr.V("workflow_type", chain.WorkflowType))
			}
		}
	}

	categories := make(map[string]bool)
	for _, app := range o.Appetites {
		if app.Category == "" {
			return goerr.New("appetite category is required", goerr.V("org", o.ID))
		}
		if categories[app.Category] {
			return goerr.New("duplicate appetite category",
				goerr.V("org", o.ID), goerr.V("category", app.Category))
		}
		categories[app.Category] = true

		if app.RiskTolerance < 0 || app.RiskTolerance > 100 {
			return goerr.New("risk tolerance must be between 0 and 100",
				goerr.V("org", o.ID), goerr.V("category", app.Category),
				goerr.V("tolerance", app.RiskTolerance))
		}
		if app.EarlyWarningThreshold < 0 || app.EarlyWarningThreshold > app.RiskTolerance {
			return goerr.New("early warning threshold must be between 0 and the risk tolerance",
				goerr.V("org", o.ID), goerr.V("category", app.Category),
				goerr.V("threshold", app.EarlyWarningThreshold))
		}
	}

	return nil
}

// Validate checks if the Token is valid
func (t *Token) Validate() error {
	if t.Token == "" {
		return goerr.New("token value is required", goerr.V("user_id", t.UserID))
	}
	if t.UserID == "" {
		return goerr.New("token user_id is required")
	}
	if t.Organization == "" {
		return goerr.New("token organization is required", goerr.V("user_id", t.UserID))
	}
	if _, err := types.ParseRole(t.Role); err != nil {
		return goerr.Wrap(err, "invalid token role", goerr.V("user_id", t.UserID))
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if len(a.Organizations) == 0 {
		return goerr.New("at least one organization is required")
	}

	orgIDs := make(map[string]bool)
	for _, org := range a.Organizations {
		if err := org.Validate(); err != nil {
			return goerr.Wrap(err, "invalid organization")
		}
		if orgIDs[org.ID] {
			return goerr.New("duplicate organization ID", goerr.V("id", org.ID))
		}
		orgIDs[org.ID] = true
	}

	tokens := make(map[string]bool)
	for _, token := range a.Tokens {
		if err := token.Validate(); err != nil {
			return goerr.Wrap(err, "invalid token")
		}
		if tokens[token.Token] {
			return goerr.New("duplicate token value", goerr.V("user_id", token.UserID))
		}
		tokens[token.Token] = true

		if !orgIDs[token.Organization] {
			return goerr.New("token references unknown organization",
				goerr.V("user_id", token.UserID), goerr.V("organization", token.Organization))
		}
	}

	return nil
}

// Flags returns CLI flags for application configuration
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to the TOML configuration file",
			Required:    true,
			Sources:     cli.EnvVars("ARGUS_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Configure loads and validates the configuration file, returning the
// organization registry and the static token resolver built from it.
func (a *AppConfig) Configure() (*model.OrgRegistry, *StaticTokens, error) {
	loaded, err := LoadAppConfiguration(a.path)
	if err != nil {
		return nil, nil, err
	}
	*a = *loaded

	return a.Registry(), a.TokenResolver(), nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}
	config.path = path

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V("path", path))
	}

	return &config, nil
}

// Registry builds the organization registry from the configuration
func (a *AppConfig) Registry() *model.OrgRegistry {
	registry := model.NewOrgRegistry()
	for _, org := range a.Organizations {
		chains := make(map[string][]domainConfig.ChainStep, len(org.Chains))
		for _, chain := range org.Chains {
			steps := make([]domainConfig.ChainStep, len(chain.Steps))
			for i, step := range chain.Steps {
				steps[i] = domainConfig.ChainStep{
					ApproverRole:   step.ApproverRole,
					ApproverUserID: step.ApproverUserID,
					ApproverName:   step.ApproverName,
				}
			}
			chains[chain.WorkflowType] = steps
		}

		appetites := make([]domainConfig.AppetiteDefinition, len(org.Appetites))
		for i, app := range org.Appetites {
			appetites[i] = domainConfig.AppetiteDefinition{
				Category:              app.Category,
				RiskTolerance:         app.RiskTolerance,
				EarlyWarningThreshold: app.EarlyWarningThreshold,
			}
		}

		registry.Register(&model.OrgEntry{
			Organization: model.Organization{ID: org.ID, Name: org.Name},
			Chains:       chains,
			Appetites:    appetites,
		})
	}
	return registry
}

// TokenResolver builds the static token resolver from the configuration
func (a *AppConfig) TokenResolver() *StaticTokens {
	identities := make(map[string]*auth.Identity, len(a.Tokens))
	for _, t := range a.Tokens {
		identities[t.Token] = &auth.Identity{
			UserID: t.UserID,
			Name:   t.Name,
			Role:   types.Role(t.Role),
			OrgID:  t.Organization,
		}
	}
	return &StaticTokens{identities: identities}
}

// StaticTokens resolves bearer tokens against the configured token table
type StaticTokens struct {
	identities map[string]*auth.Identity
}

// Resolve returns the identity for a token, or false when unknown
func (s *StaticTokens) Resolve(token string) (*auth.Identity, bool) {
	id, ok := s.identities[token]
	if !ok {
		return nil, false
	}
	// Copy so callers cannot mutate the shared table
	out := *id
	return &out, true
}
