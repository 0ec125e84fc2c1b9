package selfcontrol

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"howett.net/plist"
)

func TestParseIsRunning(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		out     string
		want    bool
		wantErr bool
	}{
		{
			name: "running",
			out:  "2024-01-05 22:00:01.123 org.eyebeam.SelfControl[4242:131072] YES\n",
			want: true,
		},
		{
			name: "not running",
			out:  "2024-01-05 08:15:00.001 org.eyebeam.SelfControl[4242:131072] NO\n",
			want: false,
		},
		{
			name: "status buried in other output",
			out:  "objc[4242]: Class SCSettings is implemented in both...\n2024-01-05 22:00:01.123 org.eyebeam.SelfControl[4242:131072] YES\ntrailer noise\n",
			want: true,
		},
		{
			name:    "unrecognized output",
			out:     "segmentation fault\n",
			wantErr: true,
		},
		{
			name:    "empty output",
			out:     "",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIsRunning([]byte(tt.out))
			if tt.wantErr {
				if !errors.Is(err, ErrUndetectable) {
					t.Fatalf("err = %v, want ErrUndetectable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseIsRunning: %v", err)
			}
			if got != tt.want {
				t.Fatalf("parseIsRunning = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteBlocklist(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "blocklist")

	hosts := []string{"twitter.com", "reddit.com"}
	if err := WriteBlocklist(path, hosts, true); err != nil {
		t.Fatalf("WriteBlocklist: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read blocklist: %v", err)
	}

	var got Blocklist
	if _, err := plist.Unmarshal(b, &got); err != nil {
		t.Fatalf("plist unmarshal: %v", err)
	}
	if len(got.HostBlacklist) != 2 || got.HostBlacklist[0] != "twitter.com" {
		t.Fatalf("HostBlacklist = %v", got.HostBlacklist)
	}
	if !got.BlockAsWhitelist {
		t.Fatal("BlockAsWhitelist lost")
	}
}

func TestWriteBlocklistEmptyHosts(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "blocklist")

	if err := WriteBlocklist(path, nil, false); err != nil {
		t.Fatalf("WriteBlocklist: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read blocklist: %v", err)
	}
	var got Blocklist
	if _, err := plist.Unmarshal(b, &got); err != nil {
		t.Fatalf("plist unmarshal: %v", err)
	}
	if got.HostBlacklist == nil || len(got.HostBlacklist) != 0 {
		t.Fatalf("HostBlacklist = %#v, want empty array", got.HostBlacklist)
	}
	if got.BlockAsWhitelist {
		t.Fatal("BlockAsWhitelist should be false")
	}
}
