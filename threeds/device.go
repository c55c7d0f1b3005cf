package threeds

import (
	// Go Internal Packages
	"strconv"
)

// DeviceData is the browser fingerprint supplied with a verification to
// help the directory server avoid challenges and timeouts.
type DeviceData struct {
	JavaEnabled       string
	JavascriptEnabled string
	Language          string
	ColorDepth        string
	ScreenHeight      string
	ScreenWidth       string
	TimeZone          string
	Channel           string
}

// DeviceProbe reads browser properties. Any single read may fail.
type DeviceProbe interface {
	JavaEnabled() (bool, error)
	Language() (string, error)
	ColorDepth() (int, error)
	ScreenSize() (width int, height int, err error)
	TimezoneOffset() (int, error)
}

// Safe defaults used when a probe read fails. Collection is best-effort:
// a broken property never aborts the verification flow.
const (
	defaultLanguage     = "en-US"
	defaultColorDepth   = "24"
	defaultScreenHeight = "768"
	defaultScreenWidth  = "1024"
)

// CollectDeviceData gathers the fingerprint field by field, substituting a
// safe constant for every property that cannot be read. A nil probe yields
// all defaults.
func CollectDeviceData(probe DeviceProbe) DeviceData {
	data := DeviceData{
		JavaEnabled:       "false",
		JavascriptEnabled: "true",
		Language:          defaultLanguage,
		ColorDepth:        defaultColorDepth,
		ScreenHeight:      defaultScreenHeight,
		ScreenWidth:       defaultScreenWidth,
		TimeZone:          "0",
		Channel:           "Browser",
	}
	if probe == nil {
		return data
	}

	if java, err := probe.JavaEnabled(); err == nil {
		data.JavaEnabled = strconv.FormatBool(java)
	}
	if lang, err := probe.Language(); err == nil && lang != "" {
		data.Language = lang
	}
	if depth, err := probe.ColorDepth(); err == nil {
		data.ColorDepth = strconv.Itoa(depth)
	}
	if width, height, err := probe.ScreenSize(); err == nil {
		data.ScreenWidth = strconv.Itoa(width)
		data.ScreenHeight = strconv.Itoa(height)
	}
	if tz, err := probe.TimezoneOffset(); err == nil {
		data.TimeZone = strconv.Itoa(tz)
	}
	return data
}
