package config

import "fmt"

// StageEndpoints are the per-stage service locations.
type StageEndpoints struct {
	DataAPIURL      string
	AdminURL        string
	AWSRoleARN      string
	DocumentsBucket string
}

const (
	productionAccountRole = "arn:aws:iam::050019655025:role/infrastructure"
	previewAccountRole    = "arn:aws:iam::381494870249:role/infrastructure"
)

// EndpointsForStage maps a stage name to its endpoints. Production and
// staging data live in the production AWS account.
func EndpointsForStage(stage string) (StageEndpoints, error) {
	ep := StageEndpoints{
		AWSRoleARN:      productionAccountRole,
		DocumentsBucket: fmt.Sprintf("digitalmarketplace-documents-%s-%s", stage, stage),
	}
	switch stage {
	case "development":
		ep.DataAPIURL = "http://localhost:5000"
		ep.AdminURL = "http://localhost/admin"
		ep.AWSRoleARN = previewAccountRole
	case "preview":
		ep.DataAPIURL = "https://api.preview.marketplace.team"
		ep.AdminURL = "https://www.preview.marketplace.team/admin"
		ep.AWSRoleARN = previewAccountRole
	case "staging":
		ep.DataAPIURL = "https://api.staging.marketplace.team"
		ep.AdminURL = "https://www.staging.marketplace.team/admin"
	case "production":
		ep.DataAPIURL = "https://api.digitalmarketplace.service.gov.uk"
		ep.AdminURL = "https://www.digitalmarketplace.service.gov.uk/admin"
	default:
		return StageEndpoints{}, fmt.Errorf("unknown stage %q", stage)
	}
	return ep, nil
}
