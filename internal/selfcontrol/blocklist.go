package selfcontrol

import (
	"os"

	"howett.net/plist"
)

// Blocklist is the settings file handed to SelfControl's --install. The
// key names are SelfControl's, not ours.
type Blocklist struct {
	HostBlacklist    []string `plist:"HostBlacklist"`
	BlockAsWhitelist bool     `plist:"BlockAsWhitelist"`
}

// WriteBlocklist renders the blocklist as an XML property list, the
// format SelfControl reads.
func WriteBlocklist(path string, hosts []string, whitelist bool) error {
	if hosts == nil {
		hosts = []string{}
	}
	b, err := plist.MarshalIndent(Blocklist{
		HostBlacklist:    hosts,
		BlockAsWhitelist: whitelist,
	}, plist.XMLFormat, "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
