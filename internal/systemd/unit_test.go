package systemd

import (
	"strings"
	"testing"
)

func TestUnit(t *testing.T) {
	unit, err := Unit(UnitOptions{
		Binary:     "/usr/local/bin/taskgate",
		ConfigPath: "/etc/taskgate/config.yaml",
		DataRoot:   "/data",
		User:       "taskgate",
	})
	if err != nil {
		t.Fatalf("Unit: %v", err)
	}
	for _, want := range []string{
		"ExecStart=/usr/local/bin/taskgate serve --config /etc/taskgate/config.yaml\n",
		"User=taskgate\n",
		"Environment=TASKGATE_DATA_ROOT=/data\n",
		"ReadWritePaths=/data\n",
		"ProtectSystem=strict\n",
		"[Install]\nWantedBy=multi-user.target\n",
	} {
		if !strings.Contains(unit, want) {
			t.Errorf("unit missing %q:\n%s", want, unit)
		}
	}
}

func TestUnitOmitsOptional(t *testing.T) {
	unit, err := Unit(UnitOptions{Binary: "/usr/bin/taskgate", DataRoot: "/srv/data"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(unit, "User=") || strings.Contains(unit, "--config") {
		t.Errorf("optional fields rendered:\n%s", unit)
	}
}

func TestUnitRejectsRelativePaths(t *testing.T) {
	tests := []UnitOptions{
		{Binary: "taskgate", DataRoot: "/data"},
		{Binary: "/usr/bin/taskgate", DataRoot: "data"},
	}
	for _, o := range tests {
		if _, err := Unit(o); err == nil {
			t.Errorf("expected error for %+v", o)
		}
	}
}
