package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/diillson/ads-budget-realloc-go/internal/domain/repository"
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultReportName = "budget-plan"
	DefaultPadding    = "5%"
	DefaultListenAddr = ":8080"
)

// ConfigRepositoryImpl implementa o ConfigRepository.
type ConfigRepositoryImpl struct{}

// NewConfigRepository cria uma nova implementação do ConfigRepository.
func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{}
}

// LoadConfigFile carrega um arquivo de configuração TOML, YAML ou JSON.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	fileExtension := filepath.Ext(filePath)
	fileExtension = strings.ToLower(fileExtension)

	// Verifica se o arquivo existe
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config types.Config

	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", fileExtension)
	}

	return &config, nil
}

// Resolve carrega o arquivo de configuração (se houver) e aplica por cima os
// valores passados por flag. Flags sempre vencem o arquivo.
func (r *ConfigRepositoryImpl) Resolve(args *types.CLIArgs) (*types.Config, error) {
	config := &types.Config{}
	if args.ConfigFile != "" {
		loaded, err := r.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if len(args.Platforms) > 0 {
		config.Platforms = args.Platforms
	}
	overrideString(&config.Meta.AccessToken, args.MetaToken)
	overrideString(&config.Meta.AdAccountID, args.MetaAccount)
	overrideString(&config.Google.CustomerID, args.GoogleCustomer)
	overrideString(&config.Google.CredentialsFile, args.GoogleCredentials)
	overrideFloat(&config.TotalMonthlyBudget, args.TotalMonthlyBudget)
	overrideFloat(&config.Meta.TotalMonthlyBudget, args.MetaBudget)
	overrideFloat(&config.Google.TotalMonthlyBudget, args.GoogleBudget)
	overrideString(&config.Padding, args.Padding)
	if len(args.DateRange) > 0 {
		config.DateRange = args.DateRange
	}
	overrideString(&config.ReportName, args.ReportName)
	if len(args.ReportType) > 0 {
		config.ReportType = args.ReportType
	}
	overrideString(&config.Dir, args.Dir)
	overrideString(&config.S3Bucket, args.S3Bucket)
	overrideString(&config.S3Prefix, args.S3Prefix)
	overrideString(&config.AWSProfile, args.AWSProfile)
	overrideString(&config.ListenAddr, args.ListenAddr)

	for field, budget := range map[string]float64{
		"total monthly budget":        config.TotalMonthlyBudget,
		"Meta total monthly budget":   config.Meta.TotalMonthlyBudget,
		"Google total monthly budget": config.Google.TotalMonthlyBudget,
	} {
		if budget < 0 {
			return nil, &types.InputValidationError{Field: field, Reason: "must be >= 0"}
		}
	}

	applyDefaults(config)
	return config, nil
}

func overrideString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func overrideFloat(dst *float64, value *float64) {
	if value != nil {
		*dst = *value
	}
}

func applyDefaults(config *types.Config) {
	if config.Padding == "" {
		config.Padding = DefaultPadding
	}
	if config.ReportName == "" {
		config.ReportName = DefaultReportName
	}
	if len(config.ReportType) == 0 {
		config.ReportType = []string{"csv"}
	}
	if config.ListenAddr == "" {
		config.ListenAddr = DefaultListenAddr
	}
	config.Meta.AdAccountID = strings.TrimSpace(config.Meta.AdAccountID)
	config.Google.CustomerID = strings.TrimSpace(config.Google.CustomerID)
}
