package platform

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// AWSClients bundles the service clients the provisioners and reflector
// need, all built from one shared SDK configuration.
type AWSClients struct {
	S3   *s3.Client
	Glue *glue.Client
	SQS  *sqs.Client
}

// NewAWSClients loads the default AWS SDK configuration for region and
// constructs one client per service.
func NewAWSClients(ctx context.Context, region string) (*AWSClients, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &AWSClients{
		S3:   s3.NewFromConfig(cfg),
		Glue: glue.NewFromConfig(cfg),
		SQS:  sqs.NewFromConfig(cfg),
	}, nil
}
