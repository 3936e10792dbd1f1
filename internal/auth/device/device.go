// Package device turns a User-Agent header into a short label such as
// "Chrome on macOS" for audit records.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

var osNames = map[string]string{
	"Mac OS X":  "macOS",
	"iPhone OS": "iOS",
	"CPU OS":    "iPadOS",
}

// Label extracts a human-readable device name.
func Label(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return unknownDevice
	}

	ua := useragent.New(userAgent)
	if ua.Bot() {
		name, _ := ua.Browser()
		if name == "" {
			return "Bot"
		}
		return name + " (bot)"
	}

	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	os := ua.OSInfo().Name
	if friendly, ok := osNames[os]; ok {
		os = friendly
	}
	if ua.Mobile() && ua.Platform() != "" && os == "" {
		os = ua.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}
	return browser + " on " + os
}
