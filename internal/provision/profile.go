package provision

import (
	_ "embed"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/prosceniumhq/proscenium/internal/browserbase"
)

//go:embed profile.yaml
var profileYAML []byte

// Profile is the static capability profile every session is created with.
// It ships embedded in the binary; deployments that need a different shape
// rebuild rather than reconfigure.
type Profile struct {
	Viewport struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"viewport"`
	SolveCaptchas bool `yaml:"solve_captchas"`
	BlockAds      bool `yaml:"block_ads"`
	Fingerprint   struct {
		Devices          []string `yaml:"devices"`
		Locales          []string `yaml:"locales"`
		OperatingSystems []string `yaml:"operating_systems"`
		Browsers         []string `yaml:"browsers"`
	} `yaml:"fingerprint"`
}

// LoadProfile parses the embedded capability profile.
func LoadProfile() (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(profileYAML, &p); err != nil {
		return Profile{}, fmt.Errorf("parse capability profile: %w", err)
	}
	if p.Viewport.Width <= 0 || p.Viewport.Height <= 0 {
		return Profile{}, fmt.Errorf("capability profile has invalid viewport %dx%d",
			p.Viewport.Width, p.Viewport.Height)
	}
	return p, nil
}

// MustProfile parses the embedded profile and panics on error. The profile
// is compiled in, so a failure here is a build defect, not a runtime one.
func MustProfile() Profile {
	p, err := LoadProfile()
	if err != nil {
		panic(err)
	}
	return p
}

// BrowserSettings converts the profile to the provider wire shape.
func (p Profile) BrowserSettings() *browserbase.BrowserSettings {
	solve := p.SolveCaptchas
	blockAds := p.BlockAds
	return &browserbase.BrowserSettings{
		Viewport: &browserbase.Viewport{
			Width:  p.Viewport.Width,
			Height: p.Viewport.Height,
		},
		SolveCaptchas: &solve,
		BlockAds:      &blockAds,
		Fingerprint: &browserbase.Fingerprint{
			Devices:          p.Fingerprint.Devices,
			Locales:          p.Fingerprint.Locales,
			OperatingSystems: p.Fingerprint.OperatingSystems,
			Browsers:         p.Fingerprint.Browsers,
		},
	}
}
