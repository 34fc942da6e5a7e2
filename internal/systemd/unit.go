// Package systemd renders the unit file for running taskgate serve under
// systemd with the data root as the only writable path.
package systemd

import (
	"fmt"
	"path/filepath"
	"strings"
)

// UnitName is the file name init-systemd writes.
const UnitName = "taskgate.service"

// UnitOptions parameterize the unit file.
type UnitOptions struct {
	Binary     string
	ConfigPath string
	DataRoot   string
	User       string
}

// Unit returns the unit file text.
func Unit(o UnitOptions) (string, error) {
	if !filepath.IsAbs(o.Binary) {
		return "", fmt.Errorf("binary path must be absolute, got %q", o.Binary)
	}
	if !filepath.IsAbs(o.DataRoot) {
		return "", fmt.Errorf("data root must be absolute, got %q", o.DataRoot)
	}

	start := o.Binary + " serve"
	if o.ConfigPath != "" {
		start += " --config " + o.ConfigPath
	}

	var b strings.Builder
	b.WriteString(`[Unit]
Description=taskgate sandboxed task server
After=network-online.target
Wants=network-online.target

[Service]
Type=simple
`)
	if o.User != "" {
		fmt.Fprintf(&b, "User=%s\n", o.User)
	}
	fmt.Fprintf(&b, "Environment=TASKGATE_DATA_ROOT=%s\n", o.DataRoot)
	fmt.Fprintf(&b, "ExecStart=%s\n", start)
	fmt.Fprintf(&b, "ReadWritePaths=%s\n", o.DataRoot)
	b.WriteString(`Restart=on-failure
RestartSec=2
NoNewPrivileges=true
PrivateTmp=true
ProtectSystem=strict
ProtectHome=read-only

[Install]
WantedBy=multi-user.target
`)
	return b.String(), nil
}
