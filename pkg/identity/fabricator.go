package identity

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Candidate sets for persona generation. Values mirror what real desktop
// browsers report; a fingerprint assembled from them is internally
// consistent with the user-agent families below.
var (
	screenResolutions = []string{
		"1920x1080", "1366x768", "1536x864", "1440x900", "1280x720",
		"2560x1440", "1600x900", "1024x768", "1280x800", "1920x1200",
	}
	languages = []string{
		"en-US,en;q=0.9", "en-GB,en;q=0.9", "en-CA,en;q=0.9",
		"fr-FR,fr;q=0.9", "de-DE,de;q=0.9", "es-ES,es;q=0.9",
	}
	chromeVersions  = []string{"120.0.0.0", "119.0.0.0", "118.0.0.0", "117.0.0.0"}
	firefoxVersions = []string{"121.0", "120.0", "119.0", "118.0"}
	safariVersions  = []string{"17.1", "17.0", "16.6", "16.5"}
)

// Fingerprint describes the device profile presented by an identity.
// Immutable after fabrication.
type Fingerprint struct {
	ScreenWidth         int
	ScreenHeight        int
	Language            string
	Platform            string
	HardwareConcurrency int
	DeviceMemory        int
}

// Fabricator produces randomized browser personas. The random source is
// injectable so tests can seed it and assert exact distributions.
type Fabricator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFabricator creates a fabricator seeded from the current time
func NewFabricator() *Fabricator {
	return NewFabricatorWithSource(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewFabricatorWithSource creates a fabricator using the given random source
func NewFabricatorWithSource(rng *rand.Rand) *Fabricator {
	return &Fabricator{rng: rng}
}

// Fingerprint generates a random device profile
func (f *Fabricator) Fingerprint() Fingerprint {
	f.mu.Lock()
	defer f.mu.Unlock()

	res := screenResolutions[f.rng.Intn(len(screenResolutions))]
	parts := strings.SplitN(res, "x", 2)
	width, _ := strconv.Atoi(parts[0])
	height, _ := strconv.Atoi(parts[1])

	fp := Fingerprint{
		ScreenWidth:  width,
		ScreenHeight: height,
		Language:     languages[f.rng.Intn(len(languages))],
	}

	if f.rng.Float64() > 0.5 {
		fp.Platform = "Win32"
	} else {
		fp.Platform = "MacIntel"
	}
	if f.rng.Float64() > 0.5 {
		fp.HardwareConcurrency = 4
	} else {
		fp.HardwareConcurrency = 8
	}
	if f.rng.Float64() > 0.5 {
		fp.DeviceMemory = 4
	} else {
		fp.DeviceMemory = 8
	}

	return fp
}

// UserAgent generates a random user-agent string from one of three browser
// families, chosen uniformly
func (f *Fabricator) UserAgent() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.rng.Intn(3) {
	case 0:
		return f.chromeUA()
	case 1:
		return f.firefoxUA()
	default:
		return f.safariUA()
	}
}

func (f *Fabricator) chromeUA() string {
	version := chromeVersions[f.rng.Intn(len(chromeVersions))]
	platform := "Windows NT 10.0; Win64; x64"
	if f.rng.Float64() <= 0.5 {
		platform = "Macintosh; Intel Mac OS X 10_15_7"
	}
	return fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%s Safari/537.36", platform, version)
}

func (f *Fabricator) firefoxUA() string {
	version := firefoxVersions[f.rng.Intn(len(firefoxVersions))]
	platform := "Windows NT 10.0; Win64; x64; rv:109.0"
	if f.rng.Float64() <= 0.5 {
		platform = "Macintosh; Intel Mac OS X 10.15; rv:109.0"
	}
	return fmt.Sprintf("Mozilla/5.0 (%s) Gecko/20100101 Firefox/%s", platform, version)
}

func (f *Fabricator) safariUA() string {
	version := safariVersions[f.rng.Intn(len(safariVersions))]
	return fmt.Sprintf("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/%s Safari/605.1.15", version)
}
