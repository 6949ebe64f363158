package router

import (
	"github.com/pwa-iframe/edgeshim/edge"
	"github.com/pwa-iframe/edgeshim/gate"
	"github.com/pwa-iframe/edgeshim/transform"
)

const (
	DistributionWebsite           = "website"
	DistributionProxy             = "proxy"
	DistributionPwa               = "pwa"
	DistributionAcerOrigin        = "acer-origin"
	DistributionAcerAddHeaders    = "acer-add-headers"
	DistributionAcerRemoveHeaders = "acer-remove-headers"

	BucketWebsite = "website"
	BucketPwa     = "pwa"

	DefaultRootObject = "index.html"
)

// TopologyOptions tunes the default topology.
type TopologyOptions struct {
	// ProxyOriginDomain is the origin of the proxy distribution. The
	// website distribution is used when empty.
	ProxyOriginDomain string `conf:"proxy_origin_domain"`

	// ExtendedOriginDomain adds the acer distributions, all fronting
	// this domain, when set.
	ExtendedOriginDomain string `conf:"extended_origin_domain"`

	// Gate attaches the viewer-request gate to the proxy distribution.
	Gate bool `conf:"gate"`
}

// DefaultTopology returns the demonstration topology: a website that
// forbids framing, a proxy in front of it that allows framing again, and
// the PWA that embeds both.
func DefaultTopology(opts TopologyOptions) Topology {
	proxyOrigin := Origin{Kind: OriginDistribution, Name: DistributionWebsite}
	if opts.ProxyOriginDomain != "" {
		proxyOrigin = Origin{Kind: OriginHTTP, Domain: opts.ProxyOriginDomain}
	}

	proxy := Distribution{
		Name:   DistributionProxy,
		Origin: proxyOrigin,
		Associations: []Association{
			{Stage: edge.StageOriginResponse, Functions: []string{transform.NameStripFrameOptions}},
		},
		PageProperty: "proxyUrl",
	}
	if opts.Gate {
		proxy.Associations = append([]Association{
			{Stage: edge.StageViewerRequest, Functions: []string{gate.Name}},
		}, proxy.Associations...)
	}

	distributions := []Distribution{
		{
			Name:              DistributionWebsite,
			Origin:            Origin{Kind: OriginBucket, Name: BucketWebsite},
			DefaultRootObject: DefaultRootObject,
			Associations: []Association{
				{Stage: edge.StageOriginResponse, Functions: []string{transform.NameAddFrameOptions}},
			},
			PageProperty: "originUrl",
		},
		proxy,
		{
			Name:              DistributionPwa,
			Origin:            Origin{Kind: OriginBucket, Name: BucketPwa},
			DefaultRootObject: DefaultRootObject,
		},
	}

	if opts.ExtendedOriginDomain != "" {
		origin := Origin{Kind: OriginHTTP, Domain: opts.ExtendedOriginDomain}

		distributions = append(distributions,
			Distribution{
				Name:         DistributionAcerOrigin,
				Origin:       origin,
				PageProperty: "acerOriginUrl",
			},
			Distribution{
				Name:   DistributionAcerAddHeaders,
				Origin: origin,
				Associations: []Association{
					{Stage: edge.StageOriginResponse, Functions: []string{transform.NameAddContentSecurityPolicy}},
				},
				PageProperty: "acerAddHeadersUrl",
			},
			Distribution{
				Name:   DistributionAcerRemoveHeaders,
				Origin: origin,
				Associations: []Association{
					{Stage: edge.StageOriginResponse, Functions: []string{transform.NameStripFrameOptionsRedirect}},
				},
				PageProperty: "acerRemoveHeadersUrl",
			},
		)
	}

	return Topology{
		Distributions: distributions,
		PageBucket:    BucketPwa,
	}
}
