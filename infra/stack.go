package infra

import (
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront/experimental"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfrontorigins"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3deployment"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/samber/lo"

	"github.com/pwa-iframe/edgeshim/edge"
	"github.com/pwa-iframe/edgeshim/generator"
	"github.com/pwa-iframe/edgeshim/router"
)

// FrameStack is the deployed topology: buckets, distributions with their
// edge functions, and the page content resource.
type FrameStack struct {
	awscdk.Stack

	Buckets       map[string]awss3.Bucket
	Distributions map[string]awscloudfront.Distribution

	// EdgeFunctions is keyed by distribution and stage, e.g.
	// "proxy/origin-response".
	EdgeFunctions map[string]experimental.EdgeFunction

	// LogBucket receives the standard logs of every distribution, unless
	// logging is disabled.
	LogBucket awss3.Bucket

	ContentFunction awslambda.Function
	Content         awscdk.CustomResource
}

type stackBuilder struct {
	*FrameStack

	props    *StackProps
	stageDir string
	deploys  []awss3deployment.BucketDeployment
}

// NewFrameStack declares the stack for the topology of the props.
func NewFrameStack(scope constructs.Construct, id string, props *StackProps) (*FrameStack, error) {
	if err := props.Validate(); err != nil {
		return nil, err
	}

	stageDir := props.StageDir
	if stageDir == "" {
		dir, err := os.MkdirTemp("", "edgeshim-assets-")
		if err != nil {
			return nil, err
		}
		stageDir = dir
	}

	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)

	b := &stackBuilder{
		FrameStack: &FrameStack{
			Stack:         stack,
			Buckets:       map[string]awss3.Bucket{},
			Distributions: map[string]awscloudfront.Distribution{},
			EdgeFunctions: map[string]experimental.EdgeFunction{},
		},
		props:    props,
		stageDir: stageDir,
	}

	if region := stack.Region(); !*awscdk.Token_IsUnresolved(region) && *region != EdgeRegion {
		logWarning(stack, "edge functions are created in a separate %s stack", EdgeRegion)
	}

	b.buckets()

	if !props.DisableLogging {
		b.LogBucket = awss3.NewBucket(stack, jsii.String("LogBucket"), &awss3.BucketProps{
			BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
			Encryption:        awss3.BucketEncryption_S3_MANAGED,
			EnforceSSL:        jsii.Bool(true),
			// CloudFront writes logs through ACLs
			ObjectOwnership: awss3.ObjectOwnership_OBJECT_WRITER,
		})
	}

	for _, d := range props.Topology.Distributions {
		if _, err := b.distribution(d); err != nil {
			return nil, err
		}
	}

	if err := b.content(); err != nil {
		return nil, err
	}

	for _, d := range props.Topology.Distributions {
		awscdk.NewCfnOutput(stack, jsii.String(constructID(d.Name, "Url")), &awscdk.CfnOutputProps{
			Description: jsii.String(fmt.Sprintf("domain of the %s distribution", d.Name)),
			Value:       b.Distributions[d.Name].DistributionDomainName(),
		})
	}

	return b.FrameStack, nil
}

func (b *stackBuilder) buckets() {
	for _, name := range b.props.Topology.Buckets() {
		bucket := awss3.NewBucket(b.Stack, jsii.String(constructID(name, "Bucket")), &awss3.BucketProps{
			BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
			Encryption:        awss3.BucketEncryption_S3_MANAGED,
			EnforceSSL:        jsii.Bool(true),
		})
		b.Buckets[name] = bucket

		dir, ok := b.props.SiteDirs[name]
		if !ok {
			continue
		}

		deploy := awss3deployment.NewBucketDeployment(b.Stack, jsii.String(constructID(name, "Deployment")), &awss3deployment.BucketDeploymentProps{
			Sources: &[]awss3deployment.ISource{
				awss3deployment.Source_Asset(jsii.String(dir), nil),
			},
			DestinationBucket: bucket,
			// keeps the generated page in the page bucket
			Prune: jsii.Bool(name != b.props.Topology.PageBucket),
		})
		b.deploys = append(b.deploys, deploy)
	}
}

// distribution declares the distribution and, first, the distribution it
// uses as origin. The topology is validated to be free of origin cycles.
func (b *stackBuilder) distribution(d router.Distribution) (awscloudfront.Distribution, error) {
	if dist, ok := b.Distributions[d.Name]; ok {
		return dist, nil
	}

	origin, err := b.origin(d)
	if err != nil {
		return nil, err
	}

	edgeLambdas, err := b.edgeLambdas(d)
	if err != nil {
		return nil, err
	}

	behavior := &awscloudfront.BehaviorOptions{
		Origin:               origin,
		ViewerProtocolPolicy: awscloudfront.ViewerProtocolPolicy_REDIRECT_TO_HTTPS,
	}
	if len(edgeLambdas) > 0 {
		behavior.EdgeLambdas = &edgeLambdas
	}

	distProps := &awscloudfront.DistributionProps{
		Comment:         jsii.String(d.Name),
		DefaultBehavior: behavior,
	}
	if b.LogBucket != nil {
		distProps.EnableLogging = jsii.Bool(true)
		distProps.LogBucket = b.LogBucket
		distProps.LogFilePrefix = jsii.String(d.Name + "/")
	}
	if d.DefaultRootObject != "" {
		distProps.DefaultRootObject = jsii.String(d.DefaultRootObject)
	}

	dist := awscloudfront.NewDistribution(b.Stack, jsii.String(constructID(d.Name, "Distribution")), distProps)
	b.Distributions[d.Name] = dist

	return dist, nil
}

func (b *stackBuilder) origin(d router.Distribution) (awscloudfront.IOrigin, error) {
	var path *string
	if d.Origin.Path != "" {
		path = jsii.String(d.Origin.Path)
	}

	switch d.Origin.Kind {
	case router.OriginBucket:
		return awscloudfrontorigins.S3BucketOrigin_WithOriginAccessControl(b.Buckets[d.Origin.Name], &awscloudfrontorigins.S3BucketOriginWithOACProps{
			OriginPath: path,
		}), nil
	case router.OriginHTTP:
		return awscloudfrontorigins.NewHttpOrigin(jsii.String(d.Origin.Domain), &awscloudfrontorigins.HttpOriginProps{
			OriginPath: path,
		}), nil
	case router.OriginDistribution:
		next, _ := b.props.Topology.Distribution(d.Origin.Name)

		dist, err := b.distribution(next)
		if err != nil {
			return nil, err
		}

		return awscloudfrontorigins.NewHttpOrigin(dist.DistributionDomainName(), &awscloudfrontorigins.HttpOriginProps{
			OriginPath: path,
		}), nil
	}

	return nil, fmt.Errorf("%w: unknown origin kind %q", router.ErrInvalidTopology, d.Origin.Kind)
}

var eventTypes = map[edge.Stage]awscloudfront.LambdaEdgeEventType{
	edge.StageViewerRequest:  awscloudfront.LambdaEdgeEventType_VIEWER_REQUEST,
	edge.StageOriginRequest:  awscloudfront.LambdaEdgeEventType_ORIGIN_REQUEST,
	edge.StageOriginResponse: awscloudfront.LambdaEdgeEventType_ORIGIN_RESPONSE,
	edge.StageViewerResponse: awscloudfront.LambdaEdgeEventType_VIEWER_RESPONSE,
}

// edgeLambdas declares one edge function per stage of the distribution,
// running the stage's functions in order.
func (b *stackBuilder) edgeLambdas(d router.Distribution) ([]*awscloudfront.EdgeLambda, error) {
	var lambdas []*awscloudfront.EdgeLambda

	for _, stage := range edge.Stages {
		names := d.Functions(stage)
		if len(names) == 0 {
			continue
		}

		dir, err := StageFunction(b.stageDir, b.props.BinaryPath(), FunctionAsset{
			Name:      d.Name + "-" + stage.String(),
			Functions: names,
			Config:    FunctionConfig(names, b.props.Transform, b.props.Gate, b.props.Generator),
		})
		if err != nil {
			return nil, err
		}

		id := constructID(d.Name, stage.String(), "Function")
		fn := experimental.NewEdgeFunction(b.Stack, jsii.String(id), &experimental.EdgeFunctionProps{
			Runtime:     awslambda.Runtime_PROVIDED_AL2023(),
			Handler:     jsii.String(BootstrapName),
			Code:        awslambda.Code_FromAsset(jsii.String(dir), nil),
			Description: jsii.String(fmt.Sprintf("%s %s: %s", d.Name, stage, strings.Join(names, ", "))),
		})
		b.EdgeFunctions[d.Name+"/"+stage.String()] = fn

		logInfo(fn, "%s runs %v on %s", d.Name, names, stage)
		logWarning(fn, "Lambda@Edge only runs Node.js and Python: CloudFront rejects the %s runtime of %s on deploy", *awslambda.Runtime_PROVIDED_AL2023().Name(), id)

		lambdas = append(lambdas, &awscloudfront.EdgeLambda{
			EventType:       eventTypes[stage],
			FunctionVersion: fn.CurrentVersion(),
		})
	}

	return lambdas, nil
}

// content declares the content generator function and the custom resource
// that invokes it with the distribution domains.
func (b *stackBuilder) content() error {
	dir, err := StageFunction(b.stageDir, b.props.BinaryPath(), FunctionAsset{
		Name:      generator.Name,
		Functions: []string{generator.Name},
		Config:    FunctionConfig([]string{generator.Name}, b.props.Transform, b.props.Gate, b.props.Generator),
	})
	if err != nil {
		return err
	}

	fn := awslambda.NewFunction(b.Stack, jsii.String("ContentGeneratorFunction"), &awslambda.FunctionProps{
		Runtime:     awslambda.Runtime_PROVIDED_AL2023(),
		Handler:     jsii.String(BootstrapName),
		Code:        awslambda.Code_FromAsset(jsii.String(dir), nil),
		Description: jsii.String("renders the page embedding the distributions"),
	})
	b.ContentFunction = fn

	pageBucket := b.Buckets[b.props.Topology.PageBucket]
	pageBucket.GrantPut(fn, nil)

	properties := map[string]interface{}{
		"bucketName": pageBucket.BucketName(),
		"update":     jsii.String(b.props.Update),
	}
	for _, d := range b.props.Topology.Distributions {
		if d.PageProperty != "" {
			properties[d.PageProperty] = b.Distributions[d.Name].DistributionDomainName()
		}
	}

	resource := awscdk.NewCustomResource(b.Stack, jsii.String("PageContent"), &awscdk.CustomResourceProps{
		ServiceToken: fn.FunctionArn(),
		Properties:   &properties,
	})
	for _, deploy := range b.deploys {
		resource.Node().AddDependency(deploy)
	}
	b.Content = resource

	return nil
}

// constructID joins name parts into a PascalCase construct id.
func constructID(parts ...string) string {
	return lo.PascalCase(strings.Join(parts, " "))
}
