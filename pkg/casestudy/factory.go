package casestudy

import "fmt"

// RepositoryConfig contains configuration for creating a case-study repository
type RepositoryConfig struct {
	// DB is required for PostgreSQL repositories
	DB DBTX
	// DataDir is required for file-based repositories
	DataDir string
}

// NewCaseStudyRepository creates a new case-study repository based on the persistence type
func NewCaseStudyRepository(persistenceType string, config RepositoryConfig) (CaseStudyRepository, error) {
	switch persistenceType {
	case "postgres", "postgresql":
		if config.DB == nil {
			return nil, fmt.Errorf("db required for postgres repository")
		}
		return NewPostgresCaseStudyRepository(config.DB), nil
	case "file":
		if config.DataDir == "" {
			return nil, fmt.Errorf("dataDir required for file repository")
		}
		return NewFileCaseStudyRepository(config.DataDir)
	case "memory":
		return NewInMemoryCaseStudyRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s (supported: postgres, file, memory)", persistenceType)
	}
}
