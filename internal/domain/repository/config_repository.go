package repository

import (
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
)

// ConfigRepository defines the interface for loading configuration files.
type ConfigRepository interface {
	LoadConfigFile(filePath string) (*types.Config, error)
	Resolve(args *types.CLIArgs) (*types.Config, error)
}
