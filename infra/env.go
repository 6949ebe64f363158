package infra

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/caarlos0/env/v11"
)

// EdgeRegion is the region Lambda@Edge functions are created in.
const EdgeRegion = "us-east-1"

type deployEnvironment struct {
	DeployAccount  string `env:"CDK_DEPLOY_ACCOUNT"`
	DeployRegion   string `env:"CDK_DEPLOY_REGION"`
	DefaultAccount string `env:"CDK_DEFAULT_ACCOUNT"`
	DefaultRegion  string `env:"CDK_DEFAULT_REGION"`
}

// EnvironmentFromEnv determines the account and region to deploy to. The
// CDK_DEPLOY_* variables take precedence over the CDK_DEFAULT_* variables
// set by the cdk cli; the region falls back to EdgeRegion.
func EnvironmentFromEnv() (*awscdk.Environment, error) {
	var e deployEnvironment
	if err := env.Parse(&e); err != nil {
		return nil, err
	}

	account, region := e.DeployAccount, e.DeployRegion
	if account == "" || region == "" {
		account, region = e.DefaultAccount, e.DefaultRegion
	}

	if region == "" {
		region = EdgeRegion
	}

	environment := &awscdk.Environment{
		Region: jsii.String(region),
	}
	if account != "" {
		environment.Account = jsii.String(account)
	}

	return environment, nil
}
