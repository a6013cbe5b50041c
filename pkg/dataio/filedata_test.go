package dataio

import (
	"testing"
	"time"

	"github.com/ErichSuter/fmu-dataio/pkg/fmuresults"
)

func TestSanitizeStem(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"VOLANTIS GP. Top", "volantis_gp_top"},
		{"Valysar Fm.", "valysar_fm"},
		{"Håp øvre ære", "haap_oevre_aere"},
		{"a  b", "a_b"},
		{"with:colon", "with_colon"},
	}
	for _, tc := range tests {
		if got := sanitizeStem(tc.in); got != tc.want {
			t.Errorf("sanitizeStem(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMakeFilestem(t *testing.T) {
	d0 := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	d1 := time.Date(2020, 12, 24, 0, 0, 0, 0, time.UTC)

	if got := makeFilestem("", "TopVolantis", "", nil, nil); got != "topvolantis" {
		t.Fatalf("plain stem = %q", got)
	}
	if got := makeFilestem("Geogrid", "TopVolantis", "DS extract", nil, nil); got != "geogrid--topvolantis--ds_extract" {
		t.Fatalf("tagged stem = %q", got)
	}
	// The later date comes first in the suffix.
	if got := makeFilestem("", "amplitude", "", &d0, &d1); got != "amplitude--20201224_20180101" {
		t.Fatalf("time window stem = %q", got)
	}
	if got := makeFilestem("", "amplitude", "", &d1, nil); got != "amplitude--20201224" {
		t.Fatalf("single time stem = %q", got)
	}
}

func TestMakeSharePath(t *testing.T) {
	got := makeSharePath(fmuresults.KindSurface, false, false, "", "topvolantis--depth", ".gri")
	if got != "share/results/maps/topvolantis--depth.gri" {
		t.Fatalf("results path = %q", got)
	}
	got = makeSharePath(fmuresults.KindTable, true, false, "", "volumes", ".csv")
	if got != "share/observations/tables/volumes.csv" {
		t.Fatalf("observations path = %q", got)
	}
	got = makeSharePath(fmuresults.KindSurface, true, true, "sub", "amplitude", ".gri")
	if got != "share/preprocessed/maps/sub/amplitude.gri" {
		t.Fatalf("preprocessed path = %q", got)
	}
}

func TestStripRealizationSegment(t *testing.T) {
	got := stripRealizationSegment("realization-4/iter-0/share/results/maps/top.gri")
	if got != "iter-0/share/results/maps/top.gri" {
		t.Fatalf("stripped = %q", got)
	}
	// Paths without a realization segment pass through unchanged.
	if got := stripRealizationSegment("share/results/maps/top.gri"); got != "share/results/maps/top.gri" {
		t.Fatalf("stripped = %q", got)
	}
}
