package generator

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrMissingProperty  = errors.New("missing property")
	ErrInvalidProperty  = errors.New("invalid property")
	ErrInvalidSchema    = errors.New("invalid properties schema")
	ErrDecodeProperties = errors.New("failed to decode properties")
)

// MissingPropertyError names a required property absent from the request.
type MissingPropertyError struct {
	Property string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("missing property: %s", e.Property)
}

func (e *MissingPropertyError) Is(target error) bool {
	return target == ErrMissingProperty
}

// Properties are the resource properties of a content generation request.
type Properties struct {
	BucketName string `mapstructure:"bucketName"`
	OriginURL  string `mapstructure:"originUrl"`
	ProxyURL   string `mapstructure:"proxyUrl"`

	AcerOriginURL        string `mapstructure:"acerOriginUrl"`
	AcerAddHeadersURL    string `mapstructure:"acerAddHeadersUrl"`
	AcerRemoveHeadersURL string `mapstructure:"acerRemoveHeadersUrl"`

	// Update changes on every deployment so the resource is updated, and
	// the page rewritten, even when the endpoints are unchanged.
	Update string `mapstructure:"update"`
}

//go:embed properties.schema.json
var propertiesSchema json.RawMessage

var propertiesSchemaLoader = gojsonschema.NewBytesLoader(propertiesSchema)

// ParseProperties validates and decodes the raw property map.
func ParseProperties(raw map[string]any) (Properties, error) {
	var props Properties

	if raw == nil {
		raw = map[string]any{}
	}

	schema, err := gojsonschema.NewSchema(propertiesSchemaLoader)
	if err != nil {
		return props, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return props, fmt.Errorf("%w: %w", ErrInvalidProperty, err)
	}

	if err := resultError(result); err != nil {
		return props, err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &props,
	})
	if err != nil {
		return props, fmt.Errorf("%w: %w", ErrDecodeProperties, err)
	}

	if err := decoder.Decode(raw); err != nil {
		return props, fmt.Errorf("%w: %w", ErrDecodeProperties, err)
	}

	return props, nil
}

// resultError turns schema violations into an error. Missing required
// properties take precedence over other violations.
func resultError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	var invalid []string
	for _, e := range result.Errors() {
		if e.Type() == "required" {
			if property, ok := e.Details()["property"].(string); ok {
				return &MissingPropertyError{Property: property}
			}
		}
		invalid = append(invalid, e.String())
	}

	return fmt.Errorf("%w: %s", ErrInvalidProperty, strings.Join(invalid, "; "))
}

// Page returns the page the properties describe.
func (p Properties) Page() Page {
	frames := []Frame{
		{
			Domain:      p.ProxyURL,
			Label:       "Iframe from Proxy URL",
			Description: "The proxy URL is removed x-frame-options header by CloudFront & Lambda@Edge, it's embed content success.",
		},
		{
			Domain:      p.OriginURL,
			Label:       "Iframe from Origin URL",
			Description: "The origin URL is added x-frame-options header, it's embed content failed.",

			DescriptionFirst: true,
		},
	}

	if p.AcerOriginURL != "" {
		frames = append(frames, Frame{
			Domain:      p.AcerOriginURL,
			Label:       "Iframe from Acer Origin URL",
			Description: "The acer origin URL is served as is.",
		})
	}
	if p.AcerAddHeadersURL != "" {
		frames = append(frames, Frame{
			Domain:      p.AcerAddHeadersURL,
			Label:       "Iframe from Acer Add Headers URL",
			Description: "The acer add headers URL is added a content-security-policy header allowing this page to embed it.",
		})
	}
	if p.AcerRemoveHeadersURL != "" {
		frames = append(frames, Frame{
			Domain:      p.AcerRemoveHeadersURL,
			Label:       "Iframe from Acer Remove Headers URL",
			Description: "The acer remove headers URL is removed x-frame-options and redirect headers by CloudFront & Lambda@Edge.",
		})
	}

	return Page{Frames: frames}
}
