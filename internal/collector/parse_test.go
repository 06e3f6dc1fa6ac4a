package collector

import "testing"

func TestParseTemperature(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"temp=56.4'C\n", 56.4, false},
		{"temp=41.0'C", 41.0, false},
		{"cpu 3 cores, temp=48.25'C", 48.25, false},
		{"temp=56'C", 0, true},
		{"", 0, true},
		{"VCHI initialization failed", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTemperature(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTemperature(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTemperature(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

const topOutput = `top - 10:21:07 up 3 days,  2:11,  1 user,  load average: 0.08, 0.12, 0.09
Tasks: 173 total,   1 running, 171 sleeping,   1 stopped,   0 zombie
%Cpu(s):  1.6 us,  1.6 sy,  0.0 ni, 96.8 id,  0.0 wa,  0.0 hi,  0.0 si,  0.0 st
MiB Mem :    924.2 total,    389.1 free,    201.6 used,    333.5 buff/cache
`

func TestParseTaskCount(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{"summary line", "Tasks: 173 total, 1 running, 171 sleeping, 1 stopped, 0 zombie", 173, false},
		{"full top output skips uptime line", topOutput, 173, false},
		{"no tasks line", "top - 10:21:07 up 3 days", 0, true},
		{"tasks line without number", "Tasks: none", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTaskCount(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

const iwconfigOutput = `wlan0     IEEE 802.11  ESSID:"home"
          Mode:Managed  Frequency:2.437 GHz  Access Point: B8:27:EB:00:00:01
          Bit Rate=72.2 Mb/s   Tx-Power=31 dBm
          Retry short limit:7   RTS thr:off   Fragment thr:off
          Power Management:on
          Link Quality=55/70  Signal level=-55 dBm
          Rx invalid nwid:0  Rx invalid crypt:0  Rx invalid frag:0
`

func TestParseSignalLevel(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{"iwconfig output", iwconfigOutput, 55, false},
		{"value without label", "-55 dBm \n", 0, true},
		{"signal only", "Signal level=-61 dBm", 61, false},
		{"quality style", "Link Quality=60/100  Signal level=60/100", 60, false},
		{"not associated", "wlan0     unassociated  ESSID:off/any", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSignalLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseSignalLevel_NeverNegative(t *testing.T) {
	got, err := ParseSignalLevel("Signal level=-40 dBm")
	if err != nil {
		t.Fatal(err)
	}
	if got != 40 {
		t.Errorf("got %d, want magnitude 40", got)
	}
}

func TestParseSerial(t *testing.T) {
	cpuinfo := "processor\t: 0\nHardware\t: BCM2835\nRevision\t: a02082\nSerial\t\t: 0000000084d82aad\nModel\t\t: Raspberry Pi 3 Model B Rev 1.2\n"
	got, ok := ParseSerial(cpuinfo)
	if !ok || got != "0000000084d82aad" {
		t.Errorf("ParseSerial = (%q, %v)", got, ok)
	}

	if _, ok := ParseSerial("processor\t: 0\nmodel name\t: x86\n"); ok {
		t.Error("expected no serial on x86 cpuinfo")
	}
}
