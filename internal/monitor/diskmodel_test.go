package monitor

import (
	"context"
	"testing"
)

func TestBaseDevice(t *testing.T) {
	tests := []struct {
		device string
		want   string
	}{
		{"/dev/sda1", "sda"},
		{"/dev/sdb", "sdb"},
		{"/dev/sda12", "sda"},
		{"/dev/nvme0n1p1", "nvme0n1"},
		{"/dev/nvme1n1", "nvme1n1"},
		{"/dev/mmcblk0p2", "mmcblk0"},
		{"/dev/vda3", "vda"},
		{"tmpfs", "tmpfs"},
		{"/dev/mapper/root", "mapper/root"},
	}
	for _, tt := range tests {
		t.Run(tt.device, func(t *testing.T) {
			if got := BaseDevice(tt.device); got != tt.want {
				t.Errorf("BaseDevice(%q) = %q, want %q", tt.device, got, tt.want)
			}
		})
	}
}

func TestResolveLabel(t *testing.T) {
	models := map[string]string{
		"nvme0n1": "Samsung SSD 970 EVO",
		"sdb":     "SanDisk Ultra",
	}
	tests := []struct {
		name   string
		mount  string
		base   string
		models map[string]string
		want   string
	}{
		{"root with model", "/", "nvme0n1", models, "Samsung SSD 970 EVO"},
		{"root without model", "/", "sda", models, "System"},
		{"root empty table", "/", "nvme0n1", nil, "System"},
		{"home ignores model", "/home", "nvme0n1", models, "Home"},
		{"external with model", "/media/alex/USB", "sdb", models, "SanDisk Ultra"},
		{"external without model", "/mnt/backup", "sdc", models, "backup"},
		{"trailing slash", "/mnt/data/", "sdc", nil, "/mnt/data/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveLabel(tt.mount, tt.base, tt.models); got != tt.want {
				t.Errorf("ResolveLabel(%q, %q) = %q, want %q", tt.mount, tt.base, got, tt.want)
			}
		})
	}
}

func TestParseLsblk(t *testing.T) {
	output := "sda     ATA      WDC WD10EZEX-08W\n" +
		"nvme0n1          Samsung SSD 970 EVO Plus 1TB\n" +
		"loop0\n" +
		"\n" +
		"sr0     HL-DT-ST DVDRAM\n"

	got := ParseLsblk(output)
	want := map[string]string{
		"sda":     "ATA WDC WD10EZEX-08W",
		"nvme0n1": "Samsung SSD 970 EVO Plus 1TB",
		"sr0":     "HL-DT-ST DVDRAM",
	}
	if len(got) != len(want) {
		t.Fatalf("ParseLsblk() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ParseLsblk()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestLsblkModels(t *testing.T) {
	runner := newFakeRunner().set("lsblk -ndo NAME,VENDOR,MODEL", "sda ATA Disk\n", nil)
	models, err := NewLsblk(runner).Models(context.Background())
	if err != nil {
		t.Fatalf("Models() error = %v", err)
	}
	if models["sda"] != "ATA Disk" {
		t.Errorf("Models()[sda] = %q, want %q", models["sda"], "ATA Disk")
	}

	if _, err := NewLsblk(newFakeRunner().setMissing("lsblk")).Models(context.Background()); err == nil {
		t.Error("Models() without lsblk should fail")
	}
}
