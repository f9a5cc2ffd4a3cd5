package core_test

import (
	"testing"

	"github.com/aretw0/minbar/pkg/core"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Al-Noor Center":        "al-noor-center",
		"a   b":                 "a-b",
		"  Masjid_Al/Huda\\ ":   "masjid-al-huda-",
		"":                      "",
		"---":                   "-",
		"Already-slugged":       "already-slugged",
		"East London Mosque 2 ": "east-london-mosque-2",
	}
	for in, want := range cases {
		if got := core.Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	inputs := []string{
		"Al-Noor Center",
		"a   b",
		" _/\\ ",
		"ÇAMLICA  Camii",
		"tab\tinside",
		"--x--y__z//",
		" nbsp edge ",
	}
	for _, in := range inputs {
		once := core.Slugify(in)
		if twice := core.Slugify(once); twice != once {
			t.Errorf("Slugify not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}
