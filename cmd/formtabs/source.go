package main

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/formtabs/internal/config"
	"github.com/vango-dev/formtabs/internal/errors"
	"github.com/vango-dev/formtabs/pkg/formdef"
)

// newSource returns the definition source cfg selects. S3 credentials
// come from the default AWS chain: environment, shared config and
// profiles, then instance or pod roles.
func newSource(ctx context.Context, cfg *config.Config) (formdef.Source, error) {
	if !cfg.UsesS3() {
		return formdef.NewDirSource(cfg.FormsPath()), nil
	}

	s3cfg := cfg.Source.S3
	var opts []func(*awsconfig.LoadOptions) error
	if s3cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(s3cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.New("E040").Wrap(err).
			WithDetail("The AWS configuration for bucket " + s3cfg.Bucket + " could not be loaded.").
			WithSuggestion("Check AWS_PROFILE, AWS_REGION and the shared config files")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = s3cfg.UsePathStyle
		if s3cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
		}
	})
	return formdef.NewS3Source(client, s3cfg.Bucket, s3cfg.Prefix), nil
}
