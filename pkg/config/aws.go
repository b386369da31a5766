package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// LoadAWSConfig resolves credentials and region the standard SDK way. A set
// EndpointURL routes every service to that address (LocalStack in development).
func LoadAWSConfig(ctx context.Context, a AWS) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if a.Region != "" {
		opts = append(opts, awsconfig.WithRegion(a.Region))
	}
	if a.EndpointURL != "" {
		endpoint := a.EndpointURL
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:           endpoint,
				SigningRegion: region,
				PartitionID:   "aws",
			}, nil
		})
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

func NewSQSClient(ctx context.Context, a AWS) (*sqs.Client, error) {
	cfg, err := LoadAWSConfig(ctx, a)
	if err != nil {
		return nil, err
	}
	return sqs.NewFromConfig(cfg), nil
}
