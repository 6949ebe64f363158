package infra_test

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwa-iframe/edgeshim/infra"
	"github.com/pwa-iframe/edgeshim/router"
)

func testEnv() *awscdk.Environment {
	return &awscdk.Environment{
		Account: jsii.String("123456789012"),
		Region:  jsii.String("us-east-1"),
	}
}

func TestNewFrameStack(t *testing.T) {
	app := awscdk.NewApp(nil)

	props := validProps(t)
	props.StackProps = awscdk.StackProps{Env: testEnv()}

	stack, err := infra.NewFrameStack(app, "FrameStack", props)
	require.NoError(t, err)

	assert.Len(t, stack.Buckets, 2)
	assert.Len(t, stack.Distributions, 3)
	assert.Contains(t, stack.EdgeFunctions, "website/origin-response")
	assert.Contains(t, stack.EdgeFunctions, "proxy/origin-response")

	template := assertions.Template_FromStack(stack.Stack, nil)

	// page and website buckets, and the log bucket
	template.ResourceCountIs(jsii.String("AWS::S3::Bucket"), jsii.Number(3))
	template.ResourceCountIs(jsii.String("AWS::CloudFront::Distribution"), jsii.Number(3))
	// two edge functions and the content generator
	template.ResourceCountIs(jsii.String("AWS::Lambda::Function"), jsii.Number(3))
	template.ResourceCountIs(jsii.String("AWS::CloudFormation::CustomResource"), jsii.Number(1))

	template.HasResourceProperties(jsii.String("AWS::Lambda::Function"), map[string]interface{}{
		"Handler": "bootstrap",
		"Runtime": "provided.al2023",
	})

	template.HasResourceProperties(jsii.String("AWS::CloudFormation::CustomResource"), map[string]interface{}{
		"bucketName": assertions.Match_AnyValue(),
		"originUrl":  assertions.Match_AnyValue(),
		"proxyUrl":   assertions.Match_AnyValue(),
		"update":     "test-token",
	})

	template.HasResourceProperties(jsii.String("AWS::CloudFront::Distribution"), map[string]interface{}{
		"DistributionConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"Comment":           "website",
			"DefaultRootObject": "index.html",
			"DefaultCacheBehavior": assertions.Match_ObjectLike(&map[string]interface{}{
				"ViewerProtocolPolicy": "redirect-to-https",
				"LambdaFunctionAssociations": assertions.Match_ArrayWith(&[]interface{}{
					assertions.Match_ObjectLike(&map[string]interface{}{
						"EventType": "origin-response",
					}),
				}),
			}),
		}),
	})

	template.HasResourceProperties(jsii.String("AWS::CloudFront::Distribution"), map[string]interface{}{
		"DistributionConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"Comment": "pwa",
			"DefaultCacheBehavior": assertions.Match_ObjectLike(&map[string]interface{}{
				"LambdaFunctionAssociations": assertions.Match_Absent(),
			}),
		}),
	})

	outputs := template.FindOutputs(jsii.String("*"), nil)
	assert.Len(t, *outputs, 3)

	template.HasResourceProperties(jsii.String("AWS::CloudFront::Distribution"), map[string]interface{}{
		"DistributionConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"Comment": "proxy",
			"Logging": assertions.Match_ObjectLike(&map[string]interface{}{
				"Bucket": assertions.Match_AnyValue(),
			}),
		}),
	})

	warnings := assertions.Annotations_FromStack(stack.Stack).FindWarning(
		jsii.String("*"),
		assertions.Match_StringLikeRegexp(jsii.String("Lambda@Edge only runs Node.js and Python")),
	)
	assert.Len(t, *warnings, len(stack.EdgeFunctions))
}

func TestNewFrameStack_DisableLogging(t *testing.T) {
	app := awscdk.NewApp(nil)

	props := validProps(t)
	props.StackProps = awscdk.StackProps{Env: testEnv()}
	props.DisableLogging = true

	stack, err := infra.NewFrameStack(app, "QuietStack", props)
	require.NoError(t, err)

	assert.Nil(t, stack.LogBucket)

	template := assertions.Template_FromStack(stack.Stack, nil)
	template.ResourceCountIs(jsii.String("AWS::S3::Bucket"), jsii.Number(2))

	distributions := template.FindResources(jsii.String("AWS::CloudFront::Distribution"), map[string]interface{}{
		"Properties": map[string]interface{}{
			"DistributionConfig": assertions.Match_ObjectLike(&map[string]interface{}{
				"Logging": assertions.Match_Absent(),
			}),
		},
	})
	assert.Len(t, *distributions, 3)
}

func TestNewFrameStack_Extended(t *testing.T) {
	app := awscdk.NewApp(nil)

	props := validProps(t)
	props.StackProps = awscdk.StackProps{Env: testEnv()}
	props.Topology = router.DefaultTopology(router.TopologyOptions{
		ExtendedOriginDomain: "acer.example",
		Gate:                 true,
	})
	props.Transform.AncestorHost = "pwa.example"
	props.SiteDirs = map[string]string{router.BucketWebsite: t.TempDir()}

	stack, err := infra.NewFrameStack(app, "ExtendedStack", props)
	require.NoError(t, err)

	assert.Len(t, stack.Distributions, 6)
	assert.Contains(t, stack.EdgeFunctions, "proxy/viewer-request")
	assert.Contains(t, stack.EdgeFunctions, "acer-add-headers/origin-response")

	template := assertions.Template_FromStack(stack.Stack, nil)

	template.ResourceCountIs(jsii.String("AWS::CloudFront::Distribution"), jsii.Number(6))

	template.HasResourceProperties(jsii.String("AWS::CloudFormation::CustomResource"), map[string]interface{}{
		"acerOriginUrl":        assertions.Match_AnyValue(),
		"acerAddHeadersUrl":    assertions.Match_AnyValue(),
		"acerRemoveHeadersUrl": assertions.Match_AnyValue(),
	})

	template.HasResourceProperties(jsii.String("AWS::CloudFront::Distribution"), map[string]interface{}{
		"DistributionConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"Comment": "proxy",
			"DefaultCacheBehavior": assertions.Match_ObjectLike(&map[string]interface{}{
				"LambdaFunctionAssociations": assertions.Match_ArrayWith(&[]interface{}{
					assertions.Match_ObjectLike(&map[string]interface{}{"EventType": "viewer-request"}),
					assertions.Match_ObjectLike(&map[string]interface{}{"EventType": "origin-response"}),
				}),
			}),
		}),
	})

	template.ResourceCountIs(jsii.String("Custom::CDKBucketDeployment"), jsii.Number(1))
}

func TestNewFrameStack_InvalidProps(t *testing.T) {
	app := awscdk.NewApp(nil)

	props := validProps(t)
	props.AssetDir = ""

	_, err := infra.NewFrameStack(app, "InvalidStack", props)
	assert.ErrorIs(t, err, infra.ErrInvalidProps)
}
