package login

import "fmt"

// RepositoryConfig contains configuration for creating a login repository
type RepositoryConfig struct {
	// DB is required for PostgreSQL repositories
	DB DBTX
	// DataDir is required for file-based repositories
	DataDir string
}

// NewLoginRepository creates a new login repository based on the persistence type
func NewLoginRepository(persistenceType string, config RepositoryConfig) (LoginRepository, error) {
	switch persistenceType {
	case "postgres", "postgresql":
		if config.DB == nil {
			return nil, fmt.Errorf("db required for postgres repository")
		}
		return NewPostgresLoginRepository(config.DB), nil
	case "file":
		if config.DataDir == "" {
			return nil, fmt.Errorf("dataDir required for file repository")
		}
		return NewFileLoginRepository(config.DataDir)
	case "memory":
		return NewInMemoryLoginRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s (supported: postgres, file, memory)", persistenceType)
	}
}
