// Package transport reports the quality of the network link the daemon is reached over.
package transport

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	procWireless = "/proc/net/wireless"

	// maxLinkQuality is the link quality most drivers report at full signal.
	maxLinkQuality = 70
)

// Wireless reads the link quality of one wireless interface.
type Wireless struct {
	path  string
	iface string
}

func NewWireless(iface string) *Wireless {
	return &Wireless{path: procWireless, iface: iface}
}

// SignalQuality returns the link quality scaled to 0..100. ok is false when the interface
// is absent or the file cannot be read, for example on wired hosts.
func (w *Wireless) SignalQuality() (int, bool) {
	if w == nil || w.iface == "" {
		return 0, false
	}
	f, err := os.Open(w.path)
	if err != nil {
		return 0, false
	}
	defer f.Close()
	return parseWireless(f, w.iface)
}

// parseWireless scans the /proc/net/wireless table:
//
//	Inter-| sta-|   Quality        |   Discarded packets               | Missed | WE
//	 face | tus | link level noise |  nwid  crypt   frag  retry   misc | beacon | 22
//	 wlan0: 0000   54.  -56.  -256        0      0      0      0     17        0
func parseWireless(r io.Reader, iface string) (int, bool) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		name, rest, found := strings.Cut(sc.Text(), ":")
		if !found || strings.TrimSpace(name) != iface {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) < 2 {
			return 0, false
		}
		link, err := strconv.ParseFloat(strings.TrimSuffix(fields[1], "."), 64)
		if err != nil {
			return 0, false
		}
		return scaleQuality(link), true
	}
	return 0, false
}

func scaleQuality(link float64) int {
	q := int(link*100/maxLinkQuality + 0.5)
	switch {
	case q < 0:
		return 0
	case q > 100:
		return 100
	}
	return q
}
