package raw

import "testing"

func TestRawGetters(t *testing.T) {
	t.Setenv("EG_RAW_LEVEL", " debug ")
	t.Setenv("EG_RAW_CALLER", "on")
	t.Setenv("EG_RAW_OFF", "nope")
	t.Setenv("EG_RAW_N", "5")
	t.Setenv("EG_RAW_NEG", "-1")

	c := New().Prefix("EG_RAW_")
	if c.Get("LEVEL", "info") != "debug" || c.Get("UNSET", "info") != "info" {
		t.Fatalf("Get")
	}
	if !c.GetBool("CALLER", false) || c.GetBool("OFF", true) || !c.GetBool("UNSET", true) {
		t.Fatalf("GetBool")
	}
	if c.GetInt("N", 0) != 5 || c.GetInt("NEG", 9) != 9 || c.GetInt("UNSET", 2) != 2 {
		t.Fatalf("GetInt")
	}
}
