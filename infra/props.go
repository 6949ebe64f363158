package infra

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/pwa-iframe/edgeshim/functions"
	"github.com/pwa-iframe/edgeshim/gate"
	"github.com/pwa-iframe/edgeshim/generator"
	"github.com/pwa-iframe/edgeshim/router"
	"github.com/pwa-iframe/edgeshim/transform"
)

var (
	ErrInvalidProps  = errors.New("invalid stack props")
	ErrUnknownBucket = errors.New("unknown bucket")
)

type StackProps struct {
	awscdk.StackProps `validate:"-"`

	// AssetDir is the directory holding the linux build of the binary.
	AssetDir string `validate:"required,dir"`

	// BinaryName is the name of the binary in AssetDir.
	BinaryName string

	// StageDir is where function bundles are staged. A temporary
	// directory is used when empty.
	StageDir string `validate:"omitempty,dir"`

	Topology router.Topology `validate:"-"`

	// SiteDirs maps bucket names to local directories deployed into them.
	SiteDirs map[string]string `validate:"omitempty,dive,keys,required,endkeys,required,dir"`

	Transform transform.Config `validate:"-"`
	Gate      gate.Config      `validate:"-"`
	Generator generator.Config `validate:"-"`

	// Update is passed to the page content resource. Changing it rewrites
	// the page on deploy; the synth time is used when empty.
	Update string

	// DisableLogging turns off the standard logging every distribution
	// writes by default.
	DisableLogging bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the props and fills in defaults.
func (p *StackProps) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil", ErrInvalidProps)
	}

	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProps, err)
	}

	if p.BinaryName == "" {
		p.BinaryName = DefaultBinaryName
	}

	if info, err := os.Stat(p.BinaryPath()); err != nil {
		return fmt.Errorf("%w: binary: %w", ErrInvalidProps, err)
	} else if info.IsDir() {
		return fmt.Errorf("%w: binary %s is a directory", ErrInvalidProps, p.BinaryPath())
	}

	if err := p.Topology.Validate(); err != nil {
		return err
	}

	if err := functions.CheckTopology(p.Topology); err != nil {
		return err
	}

	if lo.Contains(p.Topology.FunctionNames(), transform.NameAddContentSecurityPolicy) && p.Transform.AncestorHost == "" {
		return fmt.Errorf("%w: %s: %w", ErrInvalidProps, transform.NameAddContentSecurityPolicy, transform.ErrMissingAncestorHost)
	}

	if p.Topology.PageBucket == "" {
		return fmt.Errorf("%w: topology has no page bucket", ErrInvalidProps)
	}

	buckets := p.Topology.Buckets()
	for bucket := range p.SiteDirs {
		if !lo.Contains(buckets, bucket) {
			return fmt.Errorf("%w: %w: %s", ErrInvalidProps, ErrUnknownBucket, bucket)
		}
	}

	if p.Update == "" {
		p.Update = time.Now().UTC().Format(time.RFC3339Nano)
	}

	return nil
}

func (p *StackProps) BinaryPath() string {
	return filepath.Join(p.AssetDir, p.BinaryName)
}

// ParseSiteDirs parses bucket=dir pairs into a SiteDirs map.
func ParseSiteDirs(pairs []string) (map[string]string, error) {
	dirs := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		bucket, dir, ok := strings.Cut(pair, "=")
		if !ok || bucket == "" || dir == "" {
			return nil, fmt.Errorf("%w: site dir %q, expected bucket=dir", ErrInvalidProps, pair)
		}
		dirs[bucket] = dir
	}

	return dirs, nil
}
