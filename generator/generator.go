package generator

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/cfn"
	"go.uber.org/zap"
)

// Name is the function name of the content generator.
const Name = "content-generator"

const (
	DefaultObjectKey   = "index.html"
	DefaultContentType = "text/html"
	DefaultTitle       = "This is PWA website"
)

type Config struct {
	// ObjectKey is the key the page is written to
	ObjectKey string `conf:"object_key"`

	// ContentType is the content type of the page
	ContentType string `conf:"content_type"`

	// Title is the heading of the page
	Title string `conf:"title"`

	// Directory makes the generator write to a local directory instead
	// of S3 when set
	Directory string `conf:"directory"`
}

var DefaultConfig = Config{
	ObjectKey:   DefaultObjectKey,
	ContentType: DefaultContentType,
	Title:       DefaultTitle,
}

// Generator renders the page and writes it to the page bucket on
// custom resource create and update.
type Generator struct {
	store Store
	cfg   Config
	log   *zap.Logger
}

func New(store Store, cfg Config, log *zap.Logger) *Generator {
	if cfg.ObjectKey == "" {
		cfg.ObjectKey = DefaultObjectKey
	}
	if cfg.ContentType == "" {
		cfg.ContentType = DefaultContentType
	}

	return &Generator{
		store: store,
		cfg:   cfg,
		log:   log.With(zap.String("function", Name)),
	}
}

// NewStore returns a DirStore when a directory is configured, and an
// S3Store otherwise.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	if cfg.Directory != "" {
		return NewDirStore(cfg.Directory), nil
	}

	return LoadS3Store(ctx)
}

// Generate renders the page described by the properties and writes it.
// It returns the written object.
func (g *Generator) Generate(ctx context.Context, props Properties) (Object, error) {
	page := props.Page()
	page.Title = g.cfg.Title

	body, err := Render(page)
	if err != nil {
		return Object{}, fmt.Errorf("render page: %w", err)
	}

	obj := Object{
		Bucket:      props.BucketName,
		Key:         g.cfg.ObjectKey,
		ContentType: g.cfg.ContentType,
		Body:        body,
	}

	if err := g.store.PutObject(ctx, obj); err != nil {
		return Object{}, err
	}

	return obj, nil
}

// HandleEvent handles a custom resource event. Create and update write
// the page, delete leaves written objects in place. The returned data is
// empty on success.
func (g *Generator) HandleEvent(ctx context.Context, event cfn.Event) (string, map[string]interface{}, error) {
	log := g.log.With(
		zap.String("request_type", string(event.RequestType)),
		zap.String("request_id", event.RequestID),
		zap.String("logical_resource_id", event.LogicalResourceID),
	)

	switch event.RequestType {
	case cfn.RequestCreate, cfn.RequestUpdate:
	case cfn.RequestDelete:
		log.Info("delete requested, leaving page in place")
		return event.PhysicalResourceID, map[string]interface{}{}, nil
	default:
		return event.PhysicalResourceID, nil, fmt.Errorf("unknown request type %s", event.RequestType)
	}

	props, err := ParseProperties(event.ResourceProperties)
	if err != nil {
		log.Error("invalid properties", zap.Error(err))
		return event.PhysicalResourceID, nil, err
	}

	obj, err := g.Generate(ctx, props)
	if err != nil {
		log.Error("failed to generate page", zap.Error(err))
		return event.PhysicalResourceID, nil, err
	}

	log.Info("generated page",
		zap.String("bucket", obj.Bucket),
		zap.String("key", obj.Key),
		zap.Int("size", len(obj.Body)),
	)

	return obj.Bucket + "/" + obj.Key, map[string]interface{}{}, nil
}

// LambdaHandler returns a Lambda handler that reports the outcome of
// HandleEvent to the pre-signed response URL of the event.
func (g *Generator) LambdaHandler() cfn.CustomResourceLambdaFunction {
	return cfn.LambdaWrap(g.HandleEvent)
}
