package stealth

import (
	"fmt"
	"math/rand"
	"net/http"

	"github.com/pkg/errors"
)

type Mode string

const (
	// ModeFast sends a minimal header set over HTTP/1.1.
	ModeFast Mode = "fast"
	// ModeStealth impersonates Chrome, Client Hints included, over HTTP/2.
	ModeStealth Mode = "stealth"
	// ModeAggressive is stealth plus an egress proxy taken from the pool.
	ModeAggressive Mode = "aggressive"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFast, ModeStealth, ModeAggressive:
		return Mode(s), nil
	default:
		return "", errors.Errorf("invalid execution mode: %q", s)
	}
}

var chromeVersions = []string{"122", "123", "124"}

const fastUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

func pickChromeVersion() string {
	return chromeVersions[rand.Intn(len(chromeVersions))]
}

func chromeHeaders(version string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", fmt.Sprintf("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 "+
		"(KHTML, like Gecko) Chrome/%s.0.0.0 Safari/537.36", version))
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Accept-Language", "en-US,en;q=0.9,de;q=0.8")
	h.Set("sec-ch-ua", fmt.Sprintf(`"Chromium";v="%s", "Google Chrome";v="%s", "Not-A.Brand";v="99"`, version, version))
	h.Set("sec-ch-ua-mobile", "?0")
	h.Set("sec-ch-ua-platform", `"Windows"`)
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-origin")
	return h
}

func headersFor(mode Mode, chromeVersion string) http.Header {
	if mode == ModeFast {
		h := http.Header{}
		h.Set("User-Agent", fastUserAgent)
		h.Set("Accept", "application/json")
		return h
	}
	return chromeHeaders(chromeVersion)
}
